// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/goccy/go-json"
	"github.com/tomtom215/nextbasket/internal/basket"
)

// keyPrefix namespaces rule records inside the database.
const keyPrefix = "rule:"

// DefaultMaxConflictRetries bounds how often an upsert is retried after a
// transaction conflict.
const DefaultMaxConflictRetries = 8

// Config configures a BadgerStore.
type Config struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps the database in memory only.
	InMemory bool

	// SyncWrites fsyncs every commit.
	SyncWrites bool

	// Compression enables Snappy block compression.
	Compression bool

	// MaxConflictRetries bounds upsert retries on transaction conflicts.
	// Zero uses DefaultMaxConflictRetries.
	MaxConflictRetries int
}

// BadgerStore is a Store backed by BadgerDB.
type BadgerStore struct {
	db         *badger.DB
	maxRetries int
	owned      bool
	now        func() time.Time
}

// OpenBadger opens (or creates) the database described by cfg.
// The returned store owns the database and closes it on Close.
func OpenBadger(cfg Config) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("store path is required unless in_memory is set")
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites
	if cfg.Compression {
		opts.Compression = options.Snappy
	}

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, &ConnectionError{Err: fmt.Errorf("open BadgerDB: %w", err)}
	}

	s := NewBadgerStore(db, cfg.MaxConflictRetries)
	s.owned = true
	return s, nil
}

// NewBadgerStore wraps an already open database. The caller keeps ownership
// of db; Close on the returned store does not close it.
func NewBadgerStore(db *badger.DB, maxConflictRetries int) *BadgerStore {
	if maxConflictRetries <= 0 {
		maxConflictRetries = DefaultMaxConflictRetries
	}
	return &BadgerStore{
		db:         db,
		maxRetries: maxConflictRetries,
		now:        time.Now,
	}
}

// BadgerConnector returns a Connector that opens a fresh BadgerStore from cfg
// on every call.
func BadgerConnector(cfg Config) Connector {
	return func(ctx context.Context) (Store, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return OpenBadger(cfg)
	}
}

func ruleKey(key basket.ItemSet) []byte {
	return []byte(keyPrefix + key.Key())
}

// Upsert implements Store.
func (s *BadgerStore) Upsert(ctx context.Context, key basket.ItemSet, proba float64, next []string) (UpsertResult, error) {
	var result UpsertResult

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		err := s.db.Update(func(txn *badger.Txn) error {
			now := s.now().UTC()

			var rule *StoredRule
			item, err := txn.Get(ruleKey(key))
			switch {
			case errors.Is(err, badger.ErrKeyNotFound):
				rule = newStoredRule(key, proba, next, now)
				result = Inserted
			case err != nil:
				return err
			default:
				rule, err = decodeRule(item)
				if err != nil {
					return err
				}
				rule.apply(proba, next, now)
				result = Updated
			}

			data, err := json.Marshal(rule)
			if err != nil {
				return fmt.Errorf("marshal rule: %w", err)
			}
			return txn.Set(ruleKey(key), data)
		})

		if errors.Is(err, badger.ErrConflict) && attempt < s.maxRetries {
			continue
		}
		if errors.Is(err, badger.ErrDBClosed) {
			return 0, &ConnectionError{Err: err}
		}
		if err != nil {
			return 0, fmt.Errorf("upsert rule %s: %w", key, err)
		}
		return result, nil
	}
}

// Lookup implements Store.
func (s *BadgerStore) Lookup(ctx context.Context, key basket.ItemSet) (*StoredRule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rule *StoredRule
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(ruleKey(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		rule, err = decodeRule(item)
		return err
	})
	if errors.Is(err, badger.ErrDBClosed) {
		return nil, &ConnectionError{Err: err}
	}
	if err != nil {
		return nil, fmt.Errorf("lookup rule %s: %w", key, err)
	}
	return rule, nil
}

// List implements Store.
func (s *BadgerStore) List(ctx context.Context) ([]StoredRule, error) {
	out := make([]StoredRule, 0)
	prefix := []byte(keyPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			rule, err := decodeRule(it.Item())
			if err != nil {
				return err
			}
			out = append(out, *rule)
		}
		return nil
	})
	if errors.Is(err, badger.ErrDBClosed) {
		return nil, &ConnectionError{Err: err}
	}
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	return out, nil
}

// Ping implements Store.
func (s *BadgerStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db == nil || s.db.IsClosed() {
		return &ConnectionError{Err: badger.ErrDBClosed}
	}
	return nil
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	if !s.owned || s.db.IsClosed() {
		return nil
	}
	return s.db.Close()
}

// decodeRule unmarshals the value of item.
func decodeRule(item *badger.Item) (*StoredRule, error) {
	var rule StoredRule
	err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rule)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: key %q: %v", ErrRuleCorrupt, item.Key(), err)
	}
	if rule.Proba == nil {
		rule.Proba = []float64{}
	}
	if rule.NextProduct == nil {
		rule.NextProduct = []string{}
	}
	return &rule, nil
}

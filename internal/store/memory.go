// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/nextbasket/internal/basket"
)

var errMemoryClosed = errors.New("memory store closed")

// MemoryStore implements Store using in-memory storage.
// This is useful for testing or when persistence is not required.
type MemoryStore struct {
	mu     sync.RWMutex
	rules  map[string]*StoredRule
	closed bool
	now    func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rules: make(map[string]*StoredRule),
		now:   time.Now,
	}
}

// Upsert implements Store.
func (m *MemoryStore) Upsert(ctx context.Context, key basket.ItemSet, proba float64, next []string) (UpsertResult, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, &ConnectionError{Err: errMemoryClosed}
	}

	now := m.now().UTC()
	if rule, ok := m.rules[key.Key()]; ok {
		rule.apply(proba, next, now)
		return Updated, nil
	}
	m.rules[key.Key()] = newStoredRule(key, proba, next, now)
	return Inserted, nil
}

// Lookup implements Store.
func (m *MemoryStore) Lookup(ctx context.Context, key basket.ItemSet) (*StoredRule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, &ConnectionError{Err: errMemoryClosed}
	}
	rule, ok := m.rules[key.Key()]
	if !ok {
		return nil, nil
	}
	return rule.clone(), nil
}

// List implements Store.
func (m *MemoryStore) List(ctx context.Context) ([]StoredRule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, &ConnectionError{Err: errMemoryClosed}
	}

	keys := make([]string, 0, len(m.rules))
	for k := range m.rules {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]StoredRule, 0, len(keys))
	for _, k := range keys {
		out = append(out, *m.rules[k].clone())
	}
	return out, nil
}

// Ping implements Store.
func (m *MemoryStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return &ConnectionError{Err: errMemoryClosed}
	}
	return nil
}

// Close implements Store. A closed MemoryStore rejects every call.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

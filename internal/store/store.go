// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/nextbasket/internal/basket"
)

var (
	// ErrStoreUnavailable matches every failure to reach the rule store.
	ErrStoreUnavailable = errors.New("rule store unavailable")

	// ErrRuleCorrupt indicates a stored record could not be decoded.
	ErrRuleCorrupt = errors.New("stored rule is corrupt")
)

// ConnectionError reports that the rule store could not be reached or
// stopped accepting writes. It is the only merge failure that aborts a run.
type ConnectionError struct {
	Err error
}

// Error implements error.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("rule store connection: %v", e.Err)
}

// Unwrap exposes both ErrStoreUnavailable and the cause to errors.Is.
func (e *ConnectionError) Unwrap() []error {
	return []error{ErrStoreUnavailable, e.Err}
}

// Store is a keyed collection of StoredRule records.
// Implementations must make Upsert atomic per key.
type Store interface {
	// Upsert appends proba to the history of key and adds next to its
	// consequent set, creating the record when absent.
	Upsert(ctx context.Context, key basket.ItemSet, proba float64, next []string) (UpsertResult, error)

	// Lookup returns the record for key, or nil, nil when there is none.
	Lookup(ctx context.Context, key basket.ItemSet) (*StoredRule, error)

	// List returns every record ordered by canonical key.
	List(ctx context.Context) ([]StoredRule, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the connection.
	Close() error
}

// Connector opens a connection to a Store.
type Connector func(ctx context.Context) (Store, error)

// Shared returns a Connector that hands out s without transferring
// ownership: closing the returned Store leaves s open. It lets a long-lived
// process share one store between the merger and the API.
func Shared(s Store) Connector {
	return func(context.Context) (Store, error) {
		return sharedStore{s}, nil
	}
}

type sharedStore struct {
	Store
}

func (sharedStore) Close() error { return nil }

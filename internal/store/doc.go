// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

/*
Package store persists association rules across mining runs.

Each antecedent basket owns exactly one StoredRule. Merging a freshly mined
rule table never replaces a record: the rule's confidence is appended to the
Proba history and its consequents are added to the Next_Product set. Records
are never deleted, so repeated runs over overlapping periods accumulate.

# Backends

  - BadgerStore: embedded BadgerDB, keys "rule:" + canonical basket key,
    JSON values. Upserts run read-modify-write inside one transaction and
    are retried on conflict, giving per-key atomicity.
  - MemoryStore: mutex-guarded map with the same semantics.

# Merging

Merger opens a store through a Connector, pings it, writes every row of a
rules.Table and always closes the connection:

	merger := store.NewMerger(store.BadgerConnector(cfg), store.MergerConfig{}, logger)
	report, err := merger.Merge(ctx, table)
	if errors.Is(err, store.ErrStoreUnavailable) {
	    // the run could not reach the store
	}

A failed row write is logged and counted, and the merge continues. Writes
pass through a circuit breaker; once it opens the merge stops and reports a
*ConnectionError.
*/
package store

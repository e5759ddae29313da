// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

package recommend

import (
	"context"

	"github.com/tomtom215/nextbasket/internal/basket"
	"github.com/tomtom215/nextbasket/internal/rules"
	"github.com/tomtom215/nextbasket/internal/store"
)

// TableSource serves rules from an in-memory rule table.
type TableSource struct {
	table *rules.Table
}

// NewTableSource wraps table. A nil table has no rules.
func NewTableSource(table *rules.Table) *TableSource {
	return &TableSource{table: table}
}

// LookupRule implements RuleSource using the highest-confidence row for the
// antecedent.
func (s *TableSource) LookupRule(_ context.Context, antecedent basket.ItemSet) (Candidate, bool, error) {
	row, ok := s.table.Lookup(antecedent)
	if !ok || row.NextProduct.Empty() {
		return Candidate{}, false, nil
	}
	return Candidate{Product: row.NextProduct.First(), Confidence: row.Proba}, true, nil
}

// StoreSource serves rules accumulated in a rule store.
type StoreSource struct {
	store store.Store
}

// NewStoreSource wraps st. The caller keeps ownership of st.
func NewStoreSource(st store.Store) *StoreSource {
	return &StoreSource{store: st}
}

// LookupRule implements RuleSource. The candidate is the first consequent
// ever recorded for the antecedent, paired with the latest confidence.
func (s *StoreSource) LookupRule(ctx context.Context, antecedent basket.ItemSet) (Candidate, bool, error) {
	rule, err := s.store.Lookup(ctx, antecedent)
	if err != nil {
		return Candidate{}, false, err
	}
	if rule == nil || len(rule.NextProduct) == 0 {
		return Candidate{}, false, nil
	}
	return Candidate{Product: rule.NextProduct[0], Confidence: rule.LatestProba()}, true, nil
}

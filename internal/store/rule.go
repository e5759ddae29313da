// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

package store

import (
	"time"

	"github.com/tomtom215/nextbasket/internal/basket"
)

// UpsertResult tells whether an upsert created or extended a record.
type UpsertResult int

const (
	// Inserted means no record existed for the key.
	Inserted UpsertResult = iota + 1

	// Updated means an existing record was extended.
	Updated
)

// String returns the metric label for the result.
func (r UpsertResult) String() string {
	switch r {
	case Inserted:
		return "inserted"
	case Updated:
		return "updated"
	default:
		return "unknown"
	}
}

// StoredRule is the persistent record for one antecedent basket.
type StoredRule struct {
	// Basket is the antecedent and the record's key.
	Basket basket.ItemSet `json:"Basket"`

	// Proba holds every confidence ever merged, oldest first.
	Proba []float64 `json:"Proba"`

	// NextProduct holds every consequent product ever merged, in first-seen
	// order and without duplicates.
	NextProduct []string `json:"Next_Product"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// newStoredRule creates the record for a first merge of key.
func newStoredRule(key basket.ItemSet, proba float64, next []string, now time.Time) *StoredRule {
	r := &StoredRule{
		Basket:      key,
		Proba:       []float64{},
		NextProduct: []string{},
		CreatedAt:   now,
	}
	r.apply(proba, next, now)
	return r
}

// apply appends proba to the history and adds the products of next that are
// not yet present.
func (r *StoredRule) apply(proba float64, next []string, now time.Time) {
	r.Proba = append(r.Proba, proba)

	seen := make(map[string]struct{}, len(r.NextProduct)+len(next))
	for _, p := range r.NextProduct {
		seen[p] = struct{}{}
	}
	for _, p := range next {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		r.NextProduct = append(r.NextProduct, p)
	}

	r.UpdatedAt = now
}

// LatestProba returns the most recently merged confidence, or 0 for an
// empty history.
func (r *StoredRule) LatestProba() float64 {
	if len(r.Proba) == 0 {
		return 0
	}
	return r.Proba[len(r.Proba)-1]
}

// clone returns a deep copy.
func (r *StoredRule) clone() *StoredRule {
	c := *r
	c.Proba = append([]float64(nil), r.Proba...)
	c.NextProduct = append([]string(nil), r.NextProduct...)
	return &c
}

// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

// Package rules turns mined association rules into a queryable rule table.
//
// A Table is sorted by Proba descending and is never modified after Build,
// so it can be shared between the store merger and any number of concurrent
// recommendation lookups.
package rules

import (
	"sort"

	"github.com/goccy/go-json"
	"github.com/tomtom215/nextbasket/internal/basket"
	"github.com/tomtom215/nextbasket/internal/mining"
)

// Row is the externally visible form of one association rule.
type Row struct {
	// Basket is the antecedent.
	Basket basket.ItemSet `json:"Basket"`

	// NextProduct is the consequent.
	NextProduct basket.ItemSet `json:"Next_Product"`

	// Proba is the rule confidence.
	Proba float64 `json:"Proba"`
}

// Table is an immutable, Proba-descending list of rows.
type Table struct {
	rows []Row

	// index maps an antecedent key to the position of its first row
	index map[string]int
}

// Build converts rules into a Table sorted by Proba descending.
// Rows with equal Proba keep their mining order.
func Build(mined []mining.AssociationRule) *Table {
	rows := make([]Row, len(mined))
	for i, r := range mined {
		rows[i] = Row{
			Basket:      r.Antecedent,
			NextProduct: r.Consequent,
			Proba:       r.Confidence,
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Proba > rows[j].Proba
	})

	index := make(map[string]int, len(rows))
	for i, row := range rows {
		key := row.Basket.Key()
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}

	return &Table{rows: rows, index: index}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Empty reports whether the table holds no rules.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// Rows returns a copy of the rows in table order.
func (t *Table) Rows() []Row {
	if t == nil {
		return []Row{}
	}
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// Lookup returns the highest-Proba row whose antecedent equals key.
func (t *Table) Lookup(key basket.ItemSet) (Row, bool) {
	if t == nil {
		return Row{}, false
	}
	i, ok := t.index[key.Key()]
	if !ok {
		return Row{}, false
	}
	return t.rows[i], true
}

// Antecedents returns the number of distinct antecedents.
func (t *Table) Antecedents() int {
	if t == nil {
		return 0
	}
	return len(t.index)
}

// MarshalJSON emits the rows as a JSON array.
func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Rows())
}

// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

package recommend

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/tomtom215/nextbasket/internal/basket"
	"github.com/tomtom215/nextbasket/internal/metrics"
)

// MatchKind tells which lookup tier produced a suggestion.
type MatchKind int

const (
	// MatchNone means no rule covered the basket.
	MatchNone MatchKind = iota

	// MatchExact means a rule for the whole basket was used.
	MatchExact

	// MatchFallback means a single-item rule was used.
	MatchFallback
)

// String returns the lowercase name of the kind.
func (k MatchKind) String() string {
	switch k {
	case MatchExact:
		return "exact"
	case MatchFallback:
		return "fallback"
	default:
		return "none"
	}
}

// MarshalJSON encodes the kind as its name.
func (k MatchKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Suggestion is the engine's answer for one basket.
type Suggestion struct {
	Product    string    `json:"product"`
	Confidence float64   `json:"confidence"`
	Match      MatchKind `json:"match"`
}

// NoSuggestion is returned when the rules do not cover a basket.
var NoSuggestion = Suggestion{Match: MatchNone}

// Found reports whether s carries a product.
func (s Suggestion) Found() bool {
	return s.Match != MatchNone
}

// Candidate is the consequent a rule source offers for an antecedent.
type Candidate struct {
	Product    string
	Confidence float64
}

// RuleSource finds the rule whose antecedent equals a given itemset.
type RuleSource interface {
	LookupRule(ctx context.Context, antecedent basket.ItemSet) (Candidate, bool, error)
}

// Engine performs two-tier next-product lookups.
type Engine struct {
	source RuleSource
}

// NewEngine creates an Engine reading rules from source.
func NewEngine(source RuleSource) *Engine {
	return &Engine{source: source}
}

// Suggest returns the most probable next product not already in items.
//
// Lookup runs in two tiers:
//  1. Exact: the rule whose antecedent is the whole basket.
//  2. Fallback: for each item in sorted order, the rule whose antecedent is
//     that item alone. The first usable candidate wins.
//
// A candidate is usable when its product is non-empty and not already in
// the basket. When no tier yields one, Suggest returns NoSuggestion with a
// nil error; only a failing rule source produces an error.
//
// Example usage:
//
//	engine := recommend.NewEngine(recommend.NewStoreSource(st))
//	s, err := engine.Suggest(ctx, basket.NewItemSet("A", "B"))
//	if err == nil && s.Found() {
//	    fmt.Println(s.Product, s.Confidence, s.Match)
//	}
func (e *Engine) Suggest(ctx context.Context, items basket.ItemSet) (Suggestion, error) {
	s, err := e.suggest(ctx, items)
	if err != nil {
		return NoSuggestion, err
	}
	metrics.RecordRecommendation(s.Match.String())
	return s, nil
}

func (e *Engine) suggest(ctx context.Context, items basket.ItemSet) (Suggestion, error) {
	if items.Empty() {
		return NoSuggestion, nil
	}

	cand, ok, err := e.source.LookupRule(ctx, items)
	if err != nil {
		return NoSuggestion, fmt.Errorf("exact lookup %s: %w", items, err)
	}
	if ok && usable(cand, items) {
		return Suggestion{Product: cand.Product, Confidence: cand.Confidence, Match: MatchExact}, nil
	}

	for _, item := range items.Items() {
		if err := ctx.Err(); err != nil {
			return NoSuggestion, err
		}

		single := basket.NewItemSet(item)
		if single.Equal(items) {
			// Already tried as the exact match
			continue
		}

		cand, ok, err := e.source.LookupRule(ctx, single)
		if err != nil {
			return NoSuggestion, fmt.Errorf("fallback lookup %s: %w", single, err)
		}
		if ok && usable(cand, items) {
			return Suggestion{Product: cand.Product, Confidence: cand.Confidence, Match: MatchFallback}, nil
		}
	}

	return NoSuggestion, nil
}

// usable reports whether cand can be offered for items. An empty product
// code is a valid basket member but never a suggestion.
func usable(cand Candidate, items basket.ItemSet) bool {
	return cand.Product != "" && !items.Contains(cand.Product)
}

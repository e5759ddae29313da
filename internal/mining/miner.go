// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

package mining

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/tomtom215/nextbasket/internal/basket"
)

// maxRuleItemsetSize bounds the subset enumeration of a single itemset.
// A frequent itemset this large would yield over 2^62 candidate splits.
const maxRuleItemsetSize = 62

// Config holds the mining thresholds.
type Config struct {
	// MinSupportRatio is the minimum fraction of baskets an itemset must
	// appear in to be frequent. Must be in (0, 1].
	MinSupportRatio float64 `json:"min_support_ratio"`

	// MinConfidenceRatio is the minimum confidence a rule must reach to be
	// kept. Must be in (0, 1].
	MinConfidenceRatio float64 `json:"min_confidence_ratio"`
}

// DefaultConfig returns thresholds suited to retail baskets, where
// co-purchase support and confidence per pair are typically low.
func DefaultConfig() Config {
	return Config{
		MinSupportRatio:    0.005,
		MinConfidenceRatio: 0.005,
	}
}

// Validate checks both ratios are in (0, 1].
func (c Config) Validate() error {
	if c.MinSupportRatio <= 0 || c.MinSupportRatio > 1 {
		return fmt.Errorf("min support ratio must be in (0, 1], got %v", c.MinSupportRatio)
	}
	if c.MinConfidenceRatio <= 0 || c.MinConfidenceRatio > 1 {
		return fmt.Errorf("min confidence ratio must be in (0, 1], got %v", c.MinConfidenceRatio)
	}
	return nil
}

// FrequentItemset is an itemset whose support meets the minimum.
type FrequentItemset struct {
	Items basket.ItemSet `json:"items"`

	// Support is the number of baskets containing every member.
	Support int `json:"support"`
}

// AssociationRule states that baskets containing Antecedent also contain
// Consequent with probability Confidence.
type AssociationRule struct {
	Antecedent basket.ItemSet `json:"antecedent"`
	Consequent basket.ItemSet `json:"consequent"`
	Confidence float64        `json:"confidence"`
}

// Result is the outcome of one mining run.
type Result struct {
	// FrequentItemsets are sorted by size, then canonical key.
	FrequentItemsets []FrequentItemset `json:"frequent_itemsets"`

	// Rules are ordered by source itemset, then by antecedent enumeration.
	Rules []AssociationRule `json:"rules"`

	// TotalBaskets is the number of baskets mined.
	TotalBaskets int `json:"total_baskets"`

	// MinSupportCount is MinSupportRatio * TotalBaskets.
	MinSupportCount float64 `json:"min_support_count"`

	// Duration is how long mining took.
	Duration time.Duration `json:"duration"`
}

// Miner runs FP-growth over baskets and derives association rules.
// A Miner holds no per-run state and is safe for concurrent use.
type Miner struct {
	config Config
	logger zerolog.Logger
}

// New creates a Miner after validating the thresholds.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(cfg Config, logger zerolog.Logger) (*Miner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mining config: %w", err)
	}
	return &Miner{
		config: cfg,
		logger: logger.With().Str("component", "miner").Logger(),
	}, nil
}

// Config returns the thresholds this miner applies.
func (m *Miner) Config() Config {
	return m.config
}

// run carries the state of one Mine call.
type run struct {
	ctx      context.Context
	total    int
	minSup   float64
	supports map[string]FrequentItemset
}

// frequent reports whether count baskets out of total reach the minimum
// support ratio. The boundary is inclusive. Dividing rather than multiplying
// keeps a ratio exactly at the threshold from being lost to rounding.
func (r *run) frequent(count int) bool {
	return float64(count)/float64(r.total) >= r.minSup
}

// Mine finds all frequent itemsets and derives rules from them.
//
// Mining runs in four stages:
//  1. Items below the support ratio are dropped and each basket becomes a
//     path in an FP-tree, most frequent items first.
//  2. The tree is mined recursively through conditional trees, recording
//     every frequent itemset with its support count.
//  3. Each frequent itemset of two or more items is split into every
//     (antecedent, consequent) pair; a split is kept when
//     support(itemset) / support(antecedent) reaches the confidence ratio.
//  4. Itemsets are sorted by size, then key.
//
// An empty input yields an empty Result. When no single item is frequent,
// mining is cancelled, or it fails internally (including a panic), Mine
// returns a *MiningError and no result; callers treat that as "no rules"
// for the run.
//
// Example usage:
//
//	miner, err := mining.New(mining.DefaultConfig(), logger)
//	res, err := miner.Mine(ctx, basket.ItemSets(baskets))
//	if errors.Is(err, mining.ErrMiningFailure) {
//	    // skip the period
//	}
//	table := rules.Build(res.Rules)
func (m *Miner) Mine(ctx context.Context, sets []basket.ItemSet) (res *Result, err error) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = &MiningError{Baskets: len(sets), Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if len(sets) == 0 {
		return &Result{
			FrequentItemsets: []FrequentItemset{},
			Rules:            []AssociationRule{},
		}, nil
	}

	r := &run{
		ctx:      ctx,
		total:    len(sets),
		minSup:   m.config.MinSupportRatio,
		supports: make(map[string]FrequentItemset),
	}

	paths := make([]weightedPath, 0, len(sets))
	for _, s := range sets {
		if s.Empty() {
			continue
		}
		paths = append(paths, weightedPath{items: s.Items(), count: 1})
	}

	tree := buildTree(paths, r.frequent)
	if tree.empty() {
		return nil, &MiningError{Baskets: len(sets), Err: ErrNoFrequentItems}
	}

	if err := r.mineTree(tree, nil); err != nil {
		return nil, &MiningError{Baskets: len(sets), Err: err}
	}

	itemsets := r.sortedItemsets()

	rules, err := r.deriveRules(itemsets, m.config.MinConfidenceRatio)
	if err != nil {
		return nil, &MiningError{Baskets: len(sets), Err: err}
	}

	res = &Result{
		FrequentItemsets: itemsets,
		Rules:            rules,
		TotalBaskets:     len(sets),
		MinSupportCount:  m.config.MinSupportRatio * float64(len(sets)),
		Duration:         time.Since(start),
	}

	m.logger.Debug().
		Int("baskets", res.TotalBaskets).
		Int("frequent_itemsets", len(res.FrequentItemsets)).
		Int("rules", len(res.Rules)).
		Dur("duration", res.Duration).
		Msg("mining complete")

	return res, nil
}

// mineTree records every frequent itemset ending in suffix found in tree,
// recursing into conditional trees. Items are visited least frequent first.
func (r *run) mineTree(tree *fpTree, suffix []string) error {
	for i := len(tree.order) - 1; i >= 0; i-- {
		if err := r.ctx.Err(); err != nil {
			return err
		}

		item := tree.order[i]
		itemset := make([]string, 0, len(suffix)+1)
		itemset = append(itemset, suffix...)
		itemset = append(itemset, item)

		set := basket.NewItemSet(itemset...)
		r.supports[set.Key()] = FrequentItemset{
			Items:   set,
			Support: tree.header[item].support,
		}

		cond := buildTree(tree.conditionalBase(item), r.frequent)
		if cond.empty() {
			continue
		}
		if err := r.mineTree(cond, itemset); err != nil {
			return err
		}
	}
	return nil
}

// sortedItemsets returns the collected itemsets ordered by size, then key.
func (r *run) sortedItemsets() []FrequentItemset {
	out := make([]FrequentItemset, 0, len(r.supports))
	for _, fi := range r.supports {
		out = append(out, fi)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Items.Len() != out[j].Items.Len() {
			return out[i].Items.Len() < out[j].Items.Len()
		}
		return out[i].Items.Key() < out[j].Items.Key()
	})
	return out
}

// deriveRules splits every frequent itemset of size >= 2 into each
// (antecedent, consequent) pair of non-empty complementary subsets and keeps
// those whose confidence reaches minConf.
func (r *run) deriveRules(itemsets []FrequentItemset, minConf float64) ([]AssociationRule, error) {
	rules := make([]AssociationRule, 0)

	for _, fi := range itemsets {
		n := fi.Items.Len()
		if n < 2 {
			continue
		}
		if n > maxRuleItemsetSize {
			return nil, fmt.Errorf("itemset of %d items is too large to split", n)
		}
		if err := r.ctx.Err(); err != nil {
			return nil, err
		}

		members := fi.Items.Items()
		full := uint64(1)<<uint(n) - 1

		for mask := uint64(1); mask < full; mask++ {
			ante := make([]string, 0, n)
			cons := make([]string, 0, n)
			for b := 0; b < n; b++ {
				if mask&(1<<uint(b)) != 0 {
					ante = append(ante, members[b])
				} else {
					cons = append(cons, members[b])
				}
			}

			antecedent := basket.NewItemSet(ante...)
			anteSupport, ok := r.supports[antecedent.Key()]
			if !ok || anteSupport.Support == 0 {
				// Every subset of a frequent itemset is frequent
				return nil, fmt.Errorf("missing support for antecedent %s of %s", antecedent, fi.Items)
			}

			confidence := float64(fi.Support) / float64(anteSupport.Support)
			if confidence < minConf {
				continue
			}

			rules = append(rules, AssociationRule{
				Antecedent: antecedent,
				Consequent: basket.NewItemSet(cons...),
				Confidence: confidence,
			})
		}
	}

	return rules, nil
}

// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

// Package mining discovers products that are bought together.
//
// Mining runs FP-growth: item supports are counted, infrequent items are
// dropped, and the remaining items of every basket are inserted into a prefix
// tree ordered by descending support. Frequent itemsets are then extracted by
// recursively building conditional trees for each item.
//
// Every frequent itemset of two or more items is split into all
// (antecedent, consequent) pairs of complementary non-empty subsets. A split
// becomes an AssociationRule when
//
//	support(itemset) / support(antecedent) >= MinConfidenceRatio
//
// Both thresholds are inclusive: an itemset whose support ratio equals
// MinSupportRatio is frequent.
//
// # Determinism
//
// Ties in item support are broken by item code when building trees. The set
// of itemsets and rules does not depend on that order; results are sorted
// before they are returned so repeated runs produce identical output.
//
// # Failures
//
// Mine never returns a partial result. Internal errors, including the case
// where no item is frequent, are reported as *MiningError, which matches
// ErrMiningFailure with errors.Is.
package mining

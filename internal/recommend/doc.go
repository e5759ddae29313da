// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

/*
Package recommend suggests the next product for a basket from association
rules.

# Lookup Order

The Engine answers with the first of:

 1. Exact match: a rule whose antecedent is the whole basket, when its
    consequent is not already in the basket.
 2. Single-item fallback: for each basket item in sorted order, the rule
    whose antecedent is that item alone. The first consequent not already in
    the basket wins; later items are not considered.
 3. NoSuggestion: an empty product with zero confidence. This is a normal
    outcome meaning the rules do not cover the basket.

# Rule Sources

  - TableSource reads the rules.Table mined in the current run.
  - StoreSource reads accumulated rules from a store.Store and uses the most
    recently merged confidence of each record.

The Engine never modifies its source or the basket and is safe for
concurrent use.
*/
package recommend

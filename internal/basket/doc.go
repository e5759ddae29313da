// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

// Package basket turns raw order-detail records into shopping baskets.
//
// An ItemSet is the unit every other package works with: basket contents,
// rule antecedents and rule consequents are all ItemSets. Its Key is the
// canonical encoding used wherever a set must act as a map or store key,
// so lookups never depend on the order products were seen in.
//
//	lines := []basket.OrderLine{
//	    {OrderCode: "1", CustomerCode: "c1", ProductCode: "A"},
//	    {OrderCode: "1", CustomerCode: "c1", ProductCode: "B"},
//	}
//	baskets := basket.Aggregate(lines) // one basket {A, B}
package basket

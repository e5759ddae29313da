// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

package recommend

import (
	"context"

	"github.com/tomtom215/nextbasket/internal/basket"
)

// Annotation pairs a basket with its suggestion.
type Annotation struct {
	OrderCode    string         `json:"OrderCode"`
	CustomerCode string         `json:"CustomerCode"`
	Items        basket.ItemSet `json:"ProductCode"`
	NextProduct  string         `json:"Next_Product"`
	Probability  float64        `json:"Probability"`
	Match        MatchKind      `json:"Match"`
}

// Annotate suggests a next product for every basket, in input order.
// Baskets the rules do not cover carry an empty NextProduct.
func (e *Engine) Annotate(ctx context.Context, baskets []basket.Basket) ([]Annotation, error) {
	out := make([]Annotation, 0, len(baskets))
	for _, b := range baskets {
		s, err := e.Suggest(ctx, b.Items)
		if err != nil {
			return nil, err
		}
		out = append(out, Annotation{
			OrderCode:    b.OrderCode,
			CustomerCode: b.CustomerCode,
			Items:        b.Items,
			NextProduct:  s.Product,
			Probability:  s.Confidence,
			Match:        s.Match,
		})
	}
	return out, nil
}

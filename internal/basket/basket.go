// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

package basket

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// OrderLine is one raw order-detail record.
type OrderLine struct {
	// OrderCode identifies the order.
	OrderCode Code `json:"OrderCode"`

	// CustomerCode identifies the customer who placed the order.
	CustomerCode Code `json:"CustomerCode"`

	// ProductCode identifies the purchased product.
	ProductCode Code `json:"ProductCode"`
}

// Code is an identifier read from order-detail exports.
// Exports carry codes either as JSON strings or as JSON numbers; both decode
// to the same textual form.
type Code string

// UnmarshalJSON accepts a JSON string, number or null.
func (c *Code) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Code(s)
		return nil
	}

	if !isJSONNumber(data) {
		return fmt.Errorf("code must be a string or number, got %s", data)
	}
	*c = Code(data)
	return nil
}

// isJSONNumber reports whether data is a JSON number literal.
func isJSONNumber(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	for i, b := range data {
		switch {
		case b >= '0' && b <= '9':
		case b == '-' && i == 0:
		case b == '.' || b == 'e' || b == 'E' || b == '+' || b == '-':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Basket is the set of distinct products bought in one order by one customer.
type Basket struct {
	OrderCode    string  `json:"OrderCode"`
	CustomerCode string  `json:"CustomerCode"`
	Items        ItemSet `json:"ProductCode"`
}

// basketKey groups order lines.
type basketKey struct {
	order    string
	customer string
}

// Aggregate groups order lines into one Basket per (OrderCode, CustomerCode).
//
// Baskets are returned in order of first appearance of their key. Products
// within a basket are de-duplicated. An empty ProductCode is kept as a member;
// it can never reach a rule unless it is itself frequent.
func Aggregate(lines []OrderLine) []Basket {
	if len(lines) == 0 {
		return []Basket{}
	}

	index := make(map[basketKey]int)
	keys := make([]basketKey, 0)
	products := make([][]string, 0)

	for _, line := range lines {
		k := basketKey{order: string(line.OrderCode), customer: string(line.CustomerCode)}
		i, ok := index[k]
		if !ok {
			i = len(keys)
			index[k] = i
			keys = append(keys, k)
			products = append(products, nil)
		}
		products[i] = append(products[i], string(line.ProductCode))
	}

	baskets := make([]Basket, len(keys))
	for i, k := range keys {
		baskets[i] = Basket{
			OrderCode:    k.order,
			CustomerCode: k.customer,
			Items:        NewItemSet(products[i]...),
		}
	}
	return baskets
}

// ItemSets extracts the item sets of the given baskets, in order.
func ItemSets(baskets []Basket) []ItemSet {
	sets := make([]ItemSet, len(baskets))
	for i := range baskets {
		sets[i] = baskets[i].Items
	}
	return sets
}

// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

package basket

import (
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// keySeparator joins members of a canonical ItemSet key.
// The ASCII unit separator does not appear in product codes.
const keySeparator = "\x1f"

// ItemSet is an immutable, duplicate-free set of product codes.
//
// Members are kept sorted so that two sets with the same members always share
// the same representation and the same Key, regardless of insertion order.
// The zero value is the empty set.
type ItemSet struct {
	items []string
}

// NewItemSet builds an ItemSet from the given product codes.
// Duplicates are collapsed. The input slice is not retained.
func NewItemSet(items ...string) ItemSet {
	if len(items) == 0 {
		return ItemSet{}
	}

	sorted := make([]string, len(items))
	copy(sorted, items)
	sort.Strings(sorted)

	// Compact in place
	out := sorted[:1]
	for _, it := range sorted[1:] {
		if it != out[len(out)-1] {
			out = append(out, it)
		}
	}

	return ItemSet{items: out}
}

// ParseKey rebuilds an ItemSet from a canonical key produced by Key.
func ParseKey(key string) ItemSet {
	if key == "" {
		return ItemSet{}
	}
	return NewItemSet(strings.Split(strings.TrimPrefix(key, keySeparator), keySeparator)...)
}

// Key returns the canonical encoding of the set: each member preceded by
// the separator. Equal sets always produce equal keys, and the empty set
// ("") stays distinct from the set holding only the empty code ("\x1f").
func (s ItemSet) Key() string {
	var b strings.Builder
	for _, it := range s.items {
		b.WriteString(keySeparator)
		b.WriteString(it)
	}
	return b.String()
}

// Len returns the number of members.
func (s ItemSet) Len() int {
	return len(s.items)
}

// Empty reports whether the set has no members.
func (s ItemSet) Empty() bool {
	return len(s.items) == 0
}

// Items returns a sorted copy of the members.
func (s ItemSet) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// First returns the smallest member, or "" for the empty set.
func (s ItemSet) First() string {
	if len(s.items) == 0 {
		return ""
	}
	return s.items[0]
}

// Contains reports whether item is a member.
func (s ItemSet) Contains(item string) bool {
	i := sort.SearchStrings(s.items, item)
	return i < len(s.items) && s.items[i] == item
}

// Equal reports set equality.
func (s ItemSet) Equal(other ItemSet) bool {
	if len(s.items) != len(other.items) {
		return false
	}
	for i := range s.items {
		if s.items[i] != other.items[i] {
			return false
		}
	}
	return true
}

// Union returns a new set containing the members of both sets.
func (s ItemSet) Union(other ItemSet) ItemSet {
	merged := make([]string, 0, len(s.items)+len(other.items))
	merged = append(merged, s.items...)
	merged = append(merged, other.items...)
	return NewItemSet(merged...)
}

// Difference returns the members of s that are not in other.
func (s ItemSet) Difference(other ItemSet) ItemSet {
	out := make([]string, 0, len(s.items))
	for _, it := range s.items {
		if !other.Contains(it) {
			out = append(out, it)
		}
	}
	// Already sorted and unique
	return ItemSet{items: out}
}

// IsDisjoint reports whether the two sets share no member.
func (s ItemSet) IsDisjoint(other ItemSet) bool {
	for _, it := range s.items {
		if other.Contains(it) {
			return false
		}
	}
	return true
}

// String renders the set as {a, b, c}.
// The empty product code is shown as "".
func (s ItemSet) String() string {
	shown := make([]string, len(s.items))
	for i, it := range s.items {
		if it == "" {
			it = `""`
		}
		shown[i] = it
	}
	return "{" + strings.Join(shown, ", ") + "}"
}

// MarshalJSON emits the members as a sorted JSON array.
func (s ItemSet) MarshalJSON() ([]byte, error) {
	if s.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.items)
}

// UnmarshalJSON accepts a JSON array of product codes in any order.
func (s *ItemSet) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*s = NewItemSet(items...)
	return nil
}

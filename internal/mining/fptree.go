// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

package mining

import (
	"sort"
)

// fpNode is a node of a frequent-pattern tree.
type fpNode struct {
	item     string
	count    int
	parent   *fpNode
	children map[string]*fpNode

	// next links nodes carrying the same item (header chain)
	next *fpNode
}

// headerEntry is the head of one item's node chain plus its total support.
type headerEntry struct {
	support int
	head    *fpNode
	tail    *fpNode
}

// fpTree is a prefix tree of transactions restricted to frequent items.
//
// Items along every path are ordered by descending support, ties broken by
// ascending item code, so transactions sharing frequent prefixes share nodes.
type fpTree struct {
	root   *fpNode
	header map[string]*headerEntry

	// order lists frequent items by descending support, then item
	order []string
	rank  map[string]int
}

// weightedPath is a transaction (or conditional prefix path) with a multiplicity.
type weightedPath struct {
	items []string
	count int
}

// buildTree counts item supports over paths, keeps items accepted by frequent,
// and inserts every path's frequent items into a new tree.
func buildTree(paths []weightedPath, frequent func(count int) bool) *fpTree {
	supports := make(map[string]int)
	for _, p := range paths {
		for _, it := range p.items {
			supports[it] += p.count
		}
	}

	order := make([]string, 0, len(supports))
	for it, c := range supports {
		if frequent(c) {
			order = append(order, it)
		}
	}
	sort.Slice(order, func(i, j int) bool {
		si, sj := supports[order[i]], supports[order[j]]
		if si != sj {
			return si > sj
		}
		return order[i] < order[j]
	})

	tree := &fpTree{
		root:   &fpNode{children: make(map[string]*fpNode)},
		header: make(map[string]*headerEntry, len(order)),
		order:  order,
		rank:   make(map[string]int, len(order)),
	}
	for i, it := range order {
		tree.rank[it] = i
		tree.header[it] = &headerEntry{support: supports[it]}
	}

	if len(order) == 0 {
		return tree
	}

	filtered := make([]string, 0)
	for _, p := range paths {
		filtered = filtered[:0]
		for _, it := range p.items {
			if _, ok := tree.rank[it]; ok {
				filtered = append(filtered, it)
			}
		}
		if len(filtered) == 0 {
			continue
		}
		sort.Slice(filtered, func(i, j int) bool {
			return tree.rank[filtered[i]] < tree.rank[filtered[j]]
		})
		tree.insert(filtered, p.count)
	}

	return tree
}

// insert adds one ordered path with the given multiplicity.
func (t *fpTree) insert(items []string, count int) {
	node := t.root
	for _, it := range items {
		child, ok := node.children[it]
		if !ok {
			child = &fpNode{
				item:     it,
				parent:   node,
				children: make(map[string]*fpNode),
			}
			node.children[it] = child

			h := t.header[it]
			if h.head == nil {
				h.head = child
			} else {
				h.tail.next = child
			}
			h.tail = child
		}
		child.count += count
		node = child
	}
}

// empty reports whether the tree holds no frequent item.
func (t *fpTree) empty() bool {
	return len(t.order) == 0
}

// conditionalBase returns the prefix paths leading to every node of item,
// each weighted by that node's count.
func (t *fpTree) conditionalBase(item string) []weightedPath {
	h, ok := t.header[item]
	if !ok {
		return nil
	}

	var base []weightedPath
	for node := h.head; node != nil; node = node.next {
		var prefix []string
		for p := node.parent; p != nil && p != t.root; p = p.parent {
			prefix = append(prefix, p.item)
		}
		if len(prefix) > 0 {
			base = append(base, weightedPath{items: prefix, count: node.count})
		}
	}
	return base
}

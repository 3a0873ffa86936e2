// Copyright ©2024 The gridlogic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package grid defines the cell-domain representation shared by every
// constraint handler, the propagator and the search engine: a Domain
// is a bitmask over [1, values] and a Grid is an ordered sequence of
// Domains, one per cell (spec.md §3).
package grid

import "github.com/loopfield/gridlogic/bitset"

// Domain is the set of values still possible at a cell. Bit v-1 set
// means value v is possible; the zero Domain is a contradiction.
type Domain = bitset.Set

// Grid is an ordered sequence of cell domains, indexed by cell index.
type Grid []Domain

// New allocates a Grid of n cells, each with every value in
// [1, values] possible.
func New(n, values int) Grid {
	full := bitset.Full(values)
	g := make(Grid, n)
	for i := range g {
		g[i] = full
	}
	return g
}

// Clone returns an independent copy of g.
func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	copy(out, g)
	return out
}

// CopyInto copies g into dst, which must already have length
// len(g); used on the hot path to avoid allocating a fresh slice per
// recursion frame.
func (g Grid) CopyInto(dst Grid) {
	copy(dst, g)
}

// IsSolved reports whether every cell's domain is a singleton.
func (g Grid) IsSolved() bool {
	for _, d := range g {
		if !d.IsSingleton() {
			return false
		}
	}
	return true
}

// HasContradiction reports whether any cell's domain is empty.
func (g Grid) HasContradiction() bool {
	for _, d := range g {
		if d.IsEmpty() {
			return true
		}
	}
	return false
}

// Values returns the solved grid as value integers (1-based), valid
// only when IsSolved() is true. Non-singleton cells report 0.
func (g Grid) Values() []int {
	out := make([]int, len(g))
	for i, d := range g {
		if d.IsSingleton() {
			out[i] = bitset.LowestSet(d) + 1
		}
	}
	return out
}

// Equal reports whether g and other have identical domains.
func (g Grid) Equal(other Grid) bool {
	if len(g) != len(other) {
		return false
	}
	for i := range g {
		if g[i] != other[i] {
			return false
		}
	}
	return true
}

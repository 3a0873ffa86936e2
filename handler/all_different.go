// Copyright ©2024 The gridlogic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package handler

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/loopfield/gridlogic/bitset"
	"github.com/loopfield/gridlogic/exclusion"
	"github.com/loopfield/gridlogic/grid"
	"github.com/loopfield/gridlogic/lookup"
	"github.com/loopfield/gridlogic/shape"
)

// AllDifferent enforces that every pair of its cells takes a
// different value. When its cell count equals the shape's value
// count it additionally acts as a House: it is exposed to the
// candidate selector for bivalue branching and gets a hidden-singleton
// pass in EnforceConsistency.
type AllDifferent struct {
	base
	cells []int

	values  int
	isHouse bool
	lt      *lookup.Tables
}

// NewAllDifferent builds an AllDifferent handler over cells.
func NewAllDifferent(cells []int, priority int, essential bool) *AllDifferent {
	return &AllDifferent{base: base{priority: priority, essential: essential}, cells: append([]int(nil), cells...)}
}

func (h *AllDifferent) Name() Name { return "AllDifferent" }

func (h *AllDifferent) Cells() []int { return h.cells }

func (h *AllDifferent) ExclusionCells() []int { return h.cells }

func (h *AllDifferent) Initialize(initialGrid grid.Grid, excl *exclusion.Index, shp shape.Shape) (bool, error) {
	h.values = shp.Values
	h.lt = lookup.For(shp.Values)
	h.isHouse = len(h.cells) == shp.Values
	return true, nil
}

// HouseCells implements engine.House.
func (h *AllDifferent) HouseCells() ([]int, bool) {
	return h.cells, h.isHouse
}

func (h *AllDifferent) EnforceConsistency(g grid.Grid, acc Accumulator) (bool, error) {
	if h.isHouse {
		if ok := h.hiddenSingles(g, acc); !ok {
			return false, nil
		}
	}
	return h.regin(g, acc)
}

// hiddenSingles finds values that appear in exactly one cell's domain
// across the house and forces that cell to that value.
func (h *AllDifferent) hiddenSingles(g grid.Grid, acc Accumulator) bool {
	var seenOnce, seenMany bitset.Set
	owner := make([]int, h.values)
	for _, c := range h.cells {
		d := g[c]
		bitset.Each(d, func(v int) {
			bit := bitset.Set(1 << uint(v))
			if seenMany&bit != 0 {
				return
			}
			if seenOnce&bit != 0 {
				seenOnce &^= bit
				seenMany |= bit
				return
			}
			seenOnce |= bit
			owner[v] = c
		})
	}
	bitset.Each(seenOnce, func(v int) {
		c := owner[v]
		if g[c].IsSingleton() {
			return
		}
		g[c] = bitset.Set(1 << uint(v))
		acc.AddForCell(c)
	})
	return true
}

// regin applies the Régin arc-consistency filter: a cell/value edge
// not in some maximum matching between cells and values cannot appear
// in any consistent completion and is removed. Matching is computed
// via Kuhn's augmenting-path algorithm; the surviving edges are those
// reachable (in either direction) from the matched edge through the
// residual bipartite digraph, computed via strongly connected
// components (gonum graph/simple + graph/topo.TarjanSCC).
func (h *AllDifferent) regin(g grid.Grid, acc Accumulator) (bool, error) {
	n := len(h.cells)
	if n < 2 {
		return true, nil
	}

	matchValue := make([]int, n)   // matchValue[i] = matched value (0-based), -1 if none
	matchCell := make([]int, h.values)
	for i := range matchValue {
		matchValue[i] = -1
	}
	for v := range matchCell {
		matchCell[v] = -1
	}

	var tryAugment func(i int, visited []bool) bool
	tryAugment = func(i int, visited []bool) bool {
		d := g[h.cells[i]]
		for v := 0; v < h.values; v++ {
			if !d.Has(v) || visited[v] {
				continue
			}
			visited[v] = true
			if matchCell[v] == -1 || tryAugment(matchCell[v], visited) {
				matchCell[v] = i
				matchValue[i] = v
				return true
			}
		}
		return false
	}

	matched := 0
	for i := 0; i < n; i++ {
		visited := make([]bool, h.values)
		if tryAugment(i, visited) {
			matched++
		}
	}
	if matched < n {
		return false, nil
	}

	// Node IDs: cell i -> int64(i); value v -> int64(n+v).
	dg := simple.NewDirectedGraph()
	for i := 0; i < n; i++ {
		dg.AddNode(simple.Node(i))
	}
	for v := 0; v < h.values; v++ {
		dg.AddNode(simple.Node(n + v))
	}
	for i := 0; i < n; i++ {
		d := g[h.cells[i]]
		mv := matchValue[i]
		bitset.Each(d, func(v int) {
			if v == mv {
				dg.SetEdge(dg.NewEdge(simple.Node(n+v), simple.Node(i)))
			} else {
				dg.SetEdge(dg.NewEdge(simple.Node(i), simple.Node(n+v)))
			}
		})
	}
	free := make([]int, 0, h.values-n)
	for v := 0; v < h.values; v++ {
		if matchCell[v] == -1 {
			free = append(free, v)
		}
	}
	// A path that ends at a free value also frees the start cell's
	// matched value, so each free value gets an edge back to every cell:
	// such a path then closes into a cycle and shares an SCC.
	for _, a := range free {
		for i := 0; i < n; i++ {
			dg.SetEdge(dg.NewEdge(simple.Node(n+a), simple.Node(i)))
		}
	}

	sccID := make(map[int64]int)
	comps := topo.TarjanSCC(dg)
	for id, comp := range comps {
		for _, node := range comp {
			sccID[node.ID()] = id
		}
	}

	// An unmatched edge (i,v) survives iff it lies on some alternating
	// cycle through the matching or on an alternating path ending at a
	// free value, i.e. iff a path back from n+v to i exists in the
	// residual digraph (free values reach every cell) - equivalently,
	// iff i and n+v fall in the same strongly connected component. Forward reachability
	// from i alone is not enough: i always has a direct edge to every
	// v in its own domain, so that test is trivially satisfied and
	// never removes anything.
	for i := 0; i < n; i++ {
		cell := h.cells[i]
		d := g[cell]
		mv := matchValue[i]
		removed := bitset.Empty
		cellSCC := sccID[int64(i)]
		bitset.Each(d, func(v int) {
			if v == mv {
				return
			}
			if sccID[int64(n+v)] != cellSCC {
				removed = removed.With(v)
			}
		})
		if removed == bitset.Empty {
			continue
		}
		nd := d &^ removed
		if nd.IsEmpty() {
			return false, nil
		}
		if nd != d {
			g[cell] = nd
			acc.AddForCell(cell)
		}
	}
	return true, nil
}

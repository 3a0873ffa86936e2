// Copyright ©2024 The gridlogic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package handler

import (
	"github.com/loopfield/gridlogic/bitset"
	"github.com/loopfield/gridlogic/exclusion"
	"github.com/loopfield/gridlogic/grid"
	"github.com/loopfield/gridlogic/lookup"
	"github.com/loopfield/gridlogic/shape"
)

// BinaryConstraint prunes a pair of cells using the precomputed
// forward/inverse relation tables for key (spec.md §4.1's
// forBinaryKey), always essential since a single relation link must
// survive even once every other cell is fixed.
type BinaryConstraint struct {
	cellA, cellB   int
	key            string
	rel            lookup.RelationFunc
	forward, inverse []bitset.Set
}

func NewBinaryConstraint(a, b int, key string, rel lookup.RelationFunc) *BinaryConstraint {
	return &BinaryConstraint{cellA: a, cellB: b, key: key, rel: rel}
}

func (h *BinaryConstraint) Name() Name { return "BinaryConstraint" }

func (h *BinaryConstraint) Cells() []int { return []int{h.cellA, h.cellB} }

func (h *BinaryConstraint) ExclusionCells() []int { return nil }

func (h *BinaryConstraint) Priority() int { return 0 }

func (h *BinaryConstraint) Essential() bool { return true }

func (h *BinaryConstraint) Initialize(initialGrid grid.Grid, excl *exclusion.Index, shp shape.Shape) (bool, error) {
	h.forward, h.inverse = lookup.BinaryTables(shp.Values, h.key, h.rel)
	return true, nil
}

func (h *BinaryConstraint) EnforceConsistency(g grid.Grid, acc Accumulator) (bool, error) {
	da, db := g[h.cellA], g[h.cellB]
	newB := db & h.forward[da]
	newA := da & h.inverse[db]
	if newA.IsEmpty() || newB.IsEmpty() {
		return false, nil
	}
	if newA != da {
		g[h.cellA] = newA
		acc.AddForCell(h.cellA)
	}
	if newB != db {
		g[h.cellB] = newB
		acc.AddForCell(h.cellB)
	}
	return true, nil
}

// BinaryPairwise requires every unordered pair among cells to satisfy
// a symmetric relation (key, rel); hiddenSingles additionally enables
// house-style hidden-singleton detection across the group (used by
// Renban, whose "consecutive distinct range" relation makes the group
// itself act like a mini house).
type BinaryPairwise struct {
	base
	cells         []int
	key           string
	rel           lookup.RelationFunc
	hiddenSingles bool
	values        int

	forward, inverse []bitset.Set
}

func NewBinaryPairwise(cells []int, key string, rel lookup.RelationFunc, hiddenSingles bool, priority int, essential bool) *BinaryPairwise {
	return &BinaryPairwise{base: base{priority: priority, essential: essential}, cells: append([]int(nil), cells...), key: key, rel: rel, hiddenSingles: hiddenSingles}
}

func (h *BinaryPairwise) Name() Name { return "BinaryPairwise" }

func (h *BinaryPairwise) Cells() []int { return h.cells }

func (h *BinaryPairwise) ExclusionCells() []int { return nil }

func (h *BinaryPairwise) Initialize(initialGrid grid.Grid, excl *exclusion.Index, shp shape.Shape) (bool, error) {
	h.values = shp.Values
	h.forward, h.inverse = lookup.BinaryTables(shp.Values, h.key, h.rel)
	return true, nil
}

func (h *BinaryPairwise) EnforceConsistency(g grid.Grid, acc Accumulator) (bool, error) {
	n := len(h.cells)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			ci, cj := h.cells[i], h.cells[j]
			di, dj := g[ci], g[cj]
			ndj := dj & h.forward[di]
			ndi := di & h.inverse[dj]
			if ndi.IsEmpty() || ndj.IsEmpty() {
				return false, nil
			}
			if ndi != di {
				g[ci] = ndi
				acc.AddForCell(ci)
			}
			if ndj != dj {
				g[cj] = ndj
				acc.AddForCell(cj)
			}
		}
	}
	if h.hiddenSingles {
		var seenOnce, seenMany bitset.Set
		owner := make([]int, h.values)
		for _, c := range h.cells {
			bitset.Each(g[c], func(v int) {
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
	}
	return true, nil
}

// Copyright ©2024 The gridlogic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package handler

import (
	"github.com/loopfield/gridlogic/bitset"
	"github.com/loopfield/gridlogic/exclusion"
	"github.com/loopfield/gridlogic/grid"
	"github.com/loopfield/gridlogic/shape"
)

// RequiredValues requires every value in h.values to appear in at
// least one of h.cells; if strict, no other value may appear in any
// of h.cells either. Feasibility of the "all required values appear"
// half is checked via a Hall-style bipartite matching (required
// value -> a cell that can hold it), the way a system of distinct
// representatives is verified.
type RequiredValues struct {
	base
	cells  []int
	values bitset.Set
	strict bool
}

func NewRequiredValues(cells []int, values bitset.Set, strict bool, priority int, essential bool) *RequiredValues {
	return &RequiredValues{base: base{priority: priority, essential: essential}, cells: append([]int(nil), cells...), values: values, strict: strict}
}

func (h *RequiredValues) Name() Name { return "RequiredValues" }

func (h *RequiredValues) Cells() []int { return h.cells }

func (h *RequiredValues) ExclusionCells() []int { return nil }

func (h *RequiredValues) Initialize(initialGrid grid.Grid, excl *exclusion.Index, shp shape.Shape) (bool, error) {
	if h.strict {
		for _, c := range h.cells {
			initialGrid[c] &= h.values
		}
	}
	return bitset.Popcount(h.values) <= len(h.cells), nil
}

func (h *RequiredValues) EnforceConsistency(g grid.Grid, acc Accumulator) (bool, error) {
	if h.strict {
		for _, c := range h.cells {
			d := g[c]
			nd := d & h.values
			if nd.IsEmpty() {
				return false, nil
			}
			if nd != d {
				g[c] = nd
				acc.AddForCell(c)
			}
		}
	}

	required := bitset.Values(h.values)
	matchCell := make([]int, len(h.cells))
	for i := range matchCell {
		matchCell[i] = -1
	}

	var tryAugment func(v int, visited []bool) bool
	tryAugment = func(v int, visited []bool) bool {
		for i, c := range h.cells {
			if !g[c].Has(v) || visited[i] {
				continue
			}
			visited[i] = true
			if matchCell[i] == -1 || tryAugment(matchCell[i], visited) {
				matchCell[i] = v
				return true
			}
		}
		return false
	}

	for _, v := range required {
		visited := make([]bool, len(h.cells))
		if !tryAugment(v, visited) {
			return false, nil
		}
	}
	return true, nil
}

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

// ValueDependentUniqueValueExclusion is a UniqueValueExclusion variant
// where the set of cells affected depends on the fixed value rather
// than being the cell's static exclusion set (used by AntiTaxicab:
// fixing cell to v excludes v only from the cells that valueMap names
// for that particular v).
type ValueDependentUniqueValueExclusion struct {
	base
	cell     int
	valueMap map[int][]int // 0-based value -> cells to exclude v from
}

func NewValueDependentUniqueValueExclusion(cell int, valueMap map[int][]int) *ValueDependentUniqueValueExclusion {
	return &ValueDependentUniqueValueExclusion{base: base{priority: 0, essential: true}, cell: cell, valueMap: valueMap}
}

func (h *ValueDependentUniqueValueExclusion) Name() Name {
	return "ValueDependentUniqueValueExclusion"
}

func (h *ValueDependentUniqueValueExclusion) Cells() []int { return []int{h.cell} }

func (h *ValueDependentUniqueValueExclusion) ExclusionCells() []int { return nil }

func (h *ValueDependentUniqueValueExclusion) Initialize(initialGrid grid.Grid, excl *exclusion.Index, shp shape.Shape) (bool, error) {
	return true, nil
}

func (h *ValueDependentUniqueValueExclusion) EnforceConsistency(g grid.Grid, acc Accumulator) (bool, error) {
	d := g[h.cell]
	if !d.IsSingleton() {
		return true, nil
	}
	v := bitset.LowestSet(d)
	for _, oc := range h.valueMap[v] {
		if oc == h.cell || !g[oc].Has(v) {
			continue
		}
		g[oc] = g[oc].Without(v)
		if g[oc].IsEmpty() {
			return false, nil
		}
		acc.AddForCell(oc)
	}
	return true, nil
}

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

// uniqueValueExclusion is the implicit handler the engine appends once
// per cell: when a cell is fixed to v, v is removed from the domain of
// every cell the exclusion index records as mutually exclusive with
// it. It is pushed to the front of the worklist ahead of everything
// else discovered in the same propagation pass (spec.md §4.2, §4.3).
type uniqueValueExclusion struct {
	base
	cell int
	excl *exclusion.Index
}

// NewUniqueValueExclusion builds the per-cell handler described above.
// excl must already contain cell's exclusion group.
func NewUniqueValueExclusion(cell int, excl *exclusion.Index) Handler {
	return newUniqueValueExclusion(cell, excl)
}

func newUniqueValueExclusion(cell int, excl *exclusion.Index) *uniqueValueExclusion {
	return &uniqueValueExclusion{base: base{priority: 0, essential: true}, cell: cell, excl: excl}
}

func (h *uniqueValueExclusion) Name() Name { return "UniqueValueExclusion" }

func (h *uniqueValueExclusion) Cells() []int { return []int{h.cell} }

func (h *uniqueValueExclusion) ExclusionCells() []int { return nil }

func (h *uniqueValueExclusion) Initialize(initialGrid grid.Grid, excl *exclusion.Index, shp shape.Shape) (bool, error) {
	return true, nil
}

func (h *uniqueValueExclusion) EnforceConsistency(g grid.Grid, acc Accumulator) (bool, error) {
	d := g[h.cell]
	if !d.IsSingleton() {
		return true, nil
	}
	v := bitset.LowestSet(d)
	for _, oc := range h.excl.GetArray(h.cell) {
		if !g[oc].Has(v) {
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

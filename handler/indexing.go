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

// Indexing requires controlCell == k+1 iff line[k] == value (0-based k
// over line's length, so the control value is a 1-based position), the
// two-way link NumberedRoom is a special case of (control cell being
// the line's own first cell).
type Indexing struct {
	base
	control int
	line    []int
	value   int
}

func NewIndexing(control int, line []int, value int, priority int, essential bool) *Indexing {
	return &Indexing{base: base{priority: priority, essential: essential}, control: control, line: append([]int(nil), line...), value: value}
}

func (h *Indexing) Name() Name { return "Indexing" }

func (h *Indexing) Cells() []int {
	return append([]int{h.control}, h.line...)
}

func (h *Indexing) ExclusionCells() []int { return nil }

func (h *Indexing) Initialize(initialGrid grid.Grid, excl *exclusion.Index, shp shape.Shape) (bool, error) {
	return true, nil
}

func (h *Indexing) EnforceConsistency(g grid.Grid, acc Accumulator) (bool, error) {
	return indexingPropagate(g, acc, h.control, h.line, h.value)
}

// indexingPropagate implements the shared "control==k iff line[k]==v"
// logic used by both Indexing and NumberedRoom.
func indexingPropagate(g grid.Grid, acc Accumulator, control int, line []int, value int) (bool, error) {
	ctrl := g[control]
	var allowedK bitset.Set
	bitset.Each(ctrl, func(k int) {
		if k < len(line) && g[line[k]].Has(value-1) {
			allowedK = allowedK.With(k)
		}
	})
	nd := ctrl & allowedK
	if nd.IsEmpty() {
		return false, nil
	}
	if nd != ctrl {
		g[control] = nd
		acc.AddForCell(control)
	}

	for k, c := range line {
		if !nd.Has(k) {
			d := g[c]
			if !d.Has(value - 1) {
				continue
			}
			ndc := d.Without(value - 1)
			if ndc.IsEmpty() {
				return false, nil
			}
			g[c] = ndc
			acc.AddForCell(c)
		}
	}

	if nd.IsSingleton() {
		k := bitset.LowestSet(nd)
		if k < len(line) {
			c := line[k]
			d := g[c]
			ndc := d & bitset.Set(1<<uint(value-1))
			if ndc.IsEmpty() {
				return false, nil
			}
			if ndc != d {
				g[c] = ndc
				acc.AddForCell(c)
			}
		}
	}
	return true, nil
}

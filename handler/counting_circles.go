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

// CountingCircles requires that for every circled cell holding value
// v, exactly v of the circled cells (including itself) hold value v:
// each circle reports how many circles share its own digit. The
// handler's exact propagation strategy is an open question in the
// source material (spec.md §9); this implementation takes the sound,
// complete-at-fixed-point approach of bounding, for each candidate
// value v, how many circled cells could still hold it, and ruling v
// out everywhere once that count can no longer equal v.
type CountingCircles struct {
	base
	cells  []int
	values int
}

func NewCountingCircles(cells []int, priority int, essential bool) *CountingCircles {
	return &CountingCircles{base: base{priority: priority, essential: essential}, cells: append([]int(nil), cells...)}
}

func (h *CountingCircles) Name() Name { return "CountingCircles" }

func (h *CountingCircles) Cells() []int { return h.cells }

func (h *CountingCircles) ExclusionCells() []int { return nil }

func (h *CountingCircles) Initialize(initialGrid grid.Grid, excl *exclusion.Index, shp shape.Shape) (bool, error) {
	h.values = shp.Values
	return true, nil
}

func (h *CountingCircles) EnforceConsistency(g grid.Grid, acc Accumulator) (bool, error) {
	for v := 1; v <= h.values; v++ {
		bit := v - 1
		fixed, possible := 0, 0
		for _, c := range h.cells {
			d := g[c]
			if d.IsSingleton() && bitset.LowestSet(d) == bit {
				fixed++
				possible++
			} else if d.Has(bit) {
				possible++
			}
		}
		if fixed > v {
			return false, nil
		}
		if possible < v {
			// v can never be reached by enough circles: no cell may
			// hold v.
			if fixed > 0 {
				return false, nil
			}
			for _, c := range h.cells {
				d := g[c]
				if !d.Has(bit) || d.IsSingleton() {
					continue
				}
				nd := d.Without(bit)
				if nd.IsEmpty() {
					return false, nil
				}
				g[c] = nd
				acc.AddForCell(c)
			}
			continue
		}
		if fixed == v {
			// exactly v cells hold v already: no further cell may.
			for _, c := range h.cells {
				d := g[c]
				if d.IsSingleton() || !d.Has(bit) {
					continue
				}
				nd := d.Without(bit)
				if nd.IsEmpty() {
					return false, nil
				}
				g[c] = nd
				acc.AddForCell(c)
			}
		}
	}
	return true, nil
}

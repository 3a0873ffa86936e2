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

// Sum requires cells to be pairwise distinct and to sum to total
// (cage semantics). Pruning uses a memoised subset-sum search over
// the remaining (non-fixed) cells' shared available-value pool.
type Sum struct {
	base
	cells []int
	total int
	lt    *lookup.Tables
}

// NewSum builds a Sum (cage) handler.
func NewSum(cells []int, total int, priority int, essential bool) *Sum {
	return &Sum{base: base{priority: priority, essential: essential}, cells: append([]int(nil), cells...), total: total}
}

func (h *Sum) Name() Name { return "Sum" }

func (h *Sum) Cells() []int { return h.cells }

func (h *Sum) ExclusionCells() []int { return h.cells }

func (h *Sum) Initialize(initialGrid grid.Grid, excl *exclusion.Index, shp shape.Shape) (bool, error) {
	h.lt = lookup.For(shp.Values)
	minSum, maxSum := boundSums(uint32(bitset.Full(shp.Values)), len(h.cells))
	if len(h.cells) > shp.Values || h.total < minSum || h.total > maxSum {
		return false, nil
	}
	return true, nil
}

func (h *Sum) EnforceConsistency(g grid.Grid, acc Accumulator) (bool, error) {
	fixedSum, fixedCount := 0, 0
	var used bitset.Set
	var freeCells []int
	var pool bitset.Set
	for _, c := range h.cells {
		d := g[c]
		if d.IsSingleton() {
			v := bitset.LowestSet(d)
			fixedSum += v + 1
			fixedCount++
			used = used.With(v)
		} else {
			freeCells = append(freeCells, c)
			pool |= d
		}
	}
	if fixedCount == len(h.cells) {
		if fixedSum != h.total {
			return false, nil
		}
		return true, nil
	}

	pool &^= used
	remainingCount := len(h.cells) - fixedCount
	remainingSum := h.total - fixedSum
	usable := usableInSubset(uint32(pool), remainingCount, remainingSum)
	if usable == 0 {
		return false, nil
	}

	for _, c := range freeCells {
		d := g[c]
		nd := d & grid.Domain(usable)
		if nd.IsEmpty() {
			return false, nil
		}
		if nd != d {
			g[c] = nd
			acc.AddForCell(c)
		}
	}
	return true, nil
}

// SumWithNegative requires sum(positive) - sum(negative) == offset,
// with every cell (across both groups) pairwise distinct. Generalises
// Arrow (one negative cell, the arrowhead) and DoubleArrow. Pruning
// here uses per-cell min/max bound propagation (the classic Arrow
// technique) rather than full subset-sum search, since the two pools
// interact through subtraction and a combined combinatorial search
// would need to range over both pools jointly; bound propagation
// stays sound and is cheap to iterate to a fixed point.
type SumWithNegative struct {
	base
	positive, negative []int
	offset             int
	values             int
}

// NewSumWithNegative builds a SumWithNegative handler.
func NewSumWithNegative(positive, negative []int, offset int, priority int, essential bool) *SumWithNegative {
	return &SumWithNegative{
		base:     base{priority: priority, essential: essential},
		positive: append([]int(nil), positive...),
		negative: append([]int(nil), negative...),
		offset:   offset,
	}
}

func (h *SumWithNegative) Name() Name { return "SumWithNegative" }

func (h *SumWithNegative) Cells() []int {
	out := append([]int(nil), h.positive...)
	return append(out, h.negative...)
}

func (h *SumWithNegative) ExclusionCells() []int { return h.Cells() }

func (h *SumWithNegative) Initialize(initialGrid grid.Grid, excl *exclusion.Index, shp shape.Shape) (bool, error) {
	h.values = shp.Values
	return true, nil
}

func (h *SumWithNegative) EnforceConsistency(g grid.Grid, acc Accumulator) (bool, error) {
	// other-side bound: offset = posSum - negSum, so for a positive
	// cell p: p == offset - posSumOthers + negSum, bounded by the
	// extremal values of everything else.
	for pass := 0; pass < 2; pass++ {
		for i, c := range h.positive {
			lo, hi := h.boundFor(g, i, 1)
			if !h.tighten(g, c, lo, hi, acc) {
				return false, nil
			}
		}
		for i, c := range h.negative {
			lo, hi := h.boundFor(g, i, -1)
			if !h.tighten(g, c, lo, hi, acc) {
				return false, nil
			}
		}
	}
	return true, nil
}

// boundFor computes the [lo, hi] bound a single cell in group (at
// index skip, with the given sign in the offset equation) must lie
// within, given the min/max of every other cell in both pools.
func (h *SumWithNegative) boundFor(g grid.Grid, skip int, sign int) (lo, hi int) {
	otherPosMin, otherPosMax := 0, 0
	for i, c := range h.positive {
		if sign == 1 && i == skip {
			continue
		}
		mn, mx := minMax(g[c])
		otherPosMin += mn
		otherPosMax += mx
	}
	otherNegMin, otherNegMax := 0, 0
	for i, c := range h.negative {
		if sign == -1 && i == skip {
			continue
		}
		mn, mx := minMax(g[c])
		otherNegMin += mn
		otherNegMax += mx
	}
	// offset = posSum - negSum => target for this cell.
	if sign == 1 {
		// cell + otherPos - neg(all) = offset => cell = offset - otherPos + neg
		lo = h.offset - otherPosMax + otherNegMin
		hi = h.offset - otherPosMin + otherNegMax
	} else {
		// pos(all) - (cell + otherNeg) = offset => cell = pos(all) - otherNeg - offset
		lo = otherPosMin - otherNegMax - h.offset
		hi = otherPosMax - otherNegMin - h.offset
	}
	return lo, hi
}

func (h *SumWithNegative) tighten(g grid.Grid, cell int, lo, hi int, acc Accumulator) bool {
	d := g[cell]
	nd := d & bitset.Range(clampValue(lo, h.values)-1, clampValue(hi, h.values))
	if nd.IsEmpty() {
		return false
	}
	if nd != d {
		g[cell] = nd
		acc.AddForCell(cell)
	}
	return true
}

func clampValue(v, values int) int {
	if v < 1 {
		return 1
	}
	if v > values {
		return values + 1
	}
	return v
}

func minMax(d bitset.Set) (min, max int) {
	if d.IsEmpty() {
		return 0, 0
	}
	return bitset.LowestSet(d) + 1, bitset.HighestSet(d) + 1
}

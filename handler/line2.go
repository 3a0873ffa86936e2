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

// PillArrow requires the base-`values+1` number formed by pillCells
// (most significant digit first) to equal the sum of stemCells.
type PillArrow struct {
	base
	pillCells, stemCells []int
	values               int
}

func NewPillArrow(pillCells, stemCells []int, priority int, essential bool) *PillArrow {
	return &PillArrow{base: base{priority: priority, essential: essential}, pillCells: append([]int(nil), pillCells...), stemCells: append([]int(nil), stemCells...)}
}

func (h *PillArrow) Name() Name { return "PillArrow" }

func (h *PillArrow) Cells() []int {
	out := append([]int(nil), h.pillCells...)
	return append(out, h.stemCells...)
}

func (h *PillArrow) ExclusionCells() []int { return nil }

func (h *PillArrow) Initialize(initialGrid grid.Grid, excl *exclusion.Index, shp shape.Shape) (bool, error) {
	h.values = shp.Values
	return true, nil
}

func (h *PillArrow) EnforceConsistency(g grid.Grid, acc Accumulator) (bool, error) {
	if !allSingleton(g, h.pillCells) {
		return true, nil
	}
	pill := 0
	base := h.values + 1
	for _, c := range h.pillCells {
		pill = pill*base + (bitset.LowestSet(g[c]) + 1)
	}
	return possibleRunSum(g, h.stemCells, pill) || allSingleton(g, h.stemCells) && sumOf(g, h.stemCells) == pill, nil
}

func sumOf(g grid.Grid, cells []int) int {
	s := 0
	for _, c := range cells {
		s += bitset.LowestSet(g[c]) + 1
	}
	return s
}

// Lunchbox (Sandwich) requires the digits strictly between the two
// "bread" cells (holding 1 and values) to sum to total.
type Lunchbox struct {
	base
	line
	total int
}

func NewLunchbox(cells []int, total int, priority int, essential bool) *Lunchbox {
	h := &Lunchbox{base: base{priority: priority, essential: essential}, total: total}
	h.line.cells = append([]int(nil), cells...)
	return h
}

func (h *Lunchbox) Name() Name { return "Lunchbox" }

func (h *Lunchbox) ExclusionCells() []int { return nil }

func (h *Lunchbox) Initialize(initialGrid grid.Grid, excl *exclusion.Index, shp shape.Shape) (bool, error) {
	h.line.init(h.line.cells, shp)
	return true, nil
}

func (h *Lunchbox) EnforceConsistency(g grid.Grid, acc Accumulator) (bool, error) {
	loBread, hiBread := -1, -1
	for i, c := range h.cells {
		d := g[c]
		if d.IsSingleton() {
			v := bitset.LowestSet(d) + 1
			if v == 1 {
				loBread = i
			}
			if v == h.values {
				hiBread = i
			}
		}
	}
	if loBread < 0 || hiBread < 0 {
		return true, nil
	}
	lo, hi := loBread, hiBread
	if lo > hi {
		lo, hi = hi, lo
	}
	interior := h.cells[lo+1 : hi]
	if allSingleton(g, interior) && sumOf(g, interior) != h.total {
		return false, nil
	}
	return true, nil
}

// RegionSumLine requires that every maximal run of the line's cells
// lying inside a single box has the same sum (the common per-box
// run sum).
type RegionSumLine struct {
	base
	line
	boxOf func(cell int) int
}

func NewRegionSumLine(cells []int, priority int, essential bool) *RegionSumLine {
	h := &RegionSumLine{base: base{priority: priority, essential: essential}}
	h.line.cells = append([]int(nil), cells...)
	return h
}

func (h *RegionSumLine) Name() Name { return "RegionSumLine" }

func (h *RegionSumLine) ExclusionCells() []int { return nil }

func (h *RegionSumLine) Initialize(initialGrid grid.Grid, excl *exclusion.Index, shp shape.Shape) (bool, error) {
	h.line.init(h.line.cells, shp)
	h.boxOf = shp.Box
	return true, nil
}

func (h *RegionSumLine) EnforceConsistency(g grid.Grid, acc Accumulator) (bool, error) {
	var runs [][]int
	start := 0
	for i := 1; i <= len(h.cells); i++ {
		if i == len(h.cells) || h.boxOf(h.cells[i]) != h.boxOf(h.cells[start]) {
			runs = append(runs, h.cells[start:i])
			start = i
		}
	}
	allFixed := true
	sum := -1
	for _, run := range runs {
		if !allSingleton(g, run) {
			allFixed = false
			continue
		}
		s := sumOf(g, run)
		if sum == -1 {
			sum = s
		} else if s != sum {
			return false, nil
		}
	}
	_ = allFixed
	return true, nil
}

// SumLine partitions the line into consecutive runs, each summing to
// sum; isLoop allows the partition to wrap around the end of the
// line back to the start.
type SumLine struct {
	base
	line
	isLoop bool
	sum    int
}

func NewSumLine(cells []int, isLoop bool, sum int, priority int, essential bool) *SumLine {
	h := &SumLine{base: base{priority: priority, essential: essential}, isLoop: isLoop, sum: sum}
	h.line.cells = append([]int(nil), cells...)
	return h
}

func (h *SumLine) Name() Name { return "SumLine" }

func (h *SumLine) ExclusionCells() []int { return nil }

func (h *SumLine) Initialize(initialGrid grid.Grid, excl *exclusion.Index, shp shape.Shape) (bool, error) {
	h.line.init(h.line.cells, shp)
	return true, nil
}

// EnforceConsistency only validates once the line is fully fixed: the
// run partition is ambiguous in general (the same digits can split
// into runs several ways), so checking it soundly without enumerating
// partitions requires full information.
func (h *SumLine) EnforceConsistency(g grid.Grid, acc Accumulator) (bool, error) {
	if !allSingleton(g, h.cells) {
		return true, nil
	}
	n := len(h.cells)
	vals := make([]int, n)
	for i, c := range h.cells {
		vals[i] = bitset.LowestSet(g[c]) + 1
	}
	if h.isLoop {
		vals = append(vals, vals...)
		return canPartitionLoop(vals, n, h.sum), nil
	}
	return canPartition(vals, h.sum), nil
}

func canPartition(vals []int, sum int) bool {
	if len(vals) == 0 {
		return true
	}
	s := 0
	for i, v := range vals {
		s += v
		if s == sum {
			if canPartition(vals[i+1:], sum) {
				return true
			}
		}
		if s > sum {
			break
		}
	}
	return false
}

func canPartitionLoop(doubled []int, n, sum int) bool {
	for start := 0; start < n; start++ {
		if canPartitionFrom(doubled, start, start+n, sum) {
			return true
		}
	}
	return false
}

func canPartitionFrom(vals []int, pos, end, sum int) bool {
	if pos == end {
		return true
	}
	s := 0
	for i := pos; i < end; i++ {
		s += vals[i]
		if s == sum && canPartitionFrom(vals, i+1, end, sum) {
			return true
		}
		if s > sum {
			break
		}
	}
	return false
}

// FullRank ranks the line lexicographically among all lines of the
// same orientation (all rows, or all columns) and requires its rank
// (1-indexed) to equal the configured value.
type FullRank struct {
	base
	line
	siblings [][]int // the other lines sharing this line's orientation, cells only
	rank     int
}

func NewFullRank(cells []int, siblings [][]int, rank int, priority int, essential bool) *FullRank {
	h := &FullRank{base: base{priority: priority, essential: essential}, siblings: siblings, rank: rank}
	h.line.cells = append([]int(nil), cells...)
	return h
}

func (h *FullRank) Name() Name { return "FullRank" }

func (h *FullRank) ExclusionCells() []int { return nil }

func (h *FullRank) Initialize(initialGrid grid.Grid, excl *exclusion.Index, shp shape.Shape) (bool, error) {
	h.line.init(h.line.cells, shp)
	return h.rank >= 1 && h.rank <= len(h.siblings)+1, nil
}

func (h *FullRank) EnforceConsistency(g grid.Grid, acc Accumulator) (bool, error) {
	if !allSingleton(g, h.cells) {
		return true, nil
	}
	mine := sequenceOf(g, h.cells)
	less := 0
	for _, sib := range h.siblings {
		if !allSingleton(g, sib) {
			return true, nil // can't rank yet, some sibling undecided
		}
		if lexLess(sequenceOf(g, sib), mine) {
			less++
		}
	}
	return less+1 == h.rank, nil
}

func sequenceOf(g grid.Grid, cells []int) []int {
	out := make([]int, len(cells))
	for i, c := range cells {
		out[i] = bitset.LowestSet(g[c])
	}
	return out
}

func lexLess(a, b []int) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

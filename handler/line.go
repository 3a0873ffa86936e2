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

// line centralises the ordered-cell-sequence bookkeeping shared by
// the clue/arithmetic line handlers below, the way an embedded helper
// struct would in the teacher's cmd/* tools sharing a flag bag.
type line struct {
	cells  []int
	values int
}

func (l *line) init(cells []int, shp shape.Shape) {
	l.cells = append([]int(nil), cells...)
	l.values = shp.Values
}

func (l *line) Cells() []int { return l.cells }

// Between requires the two endpoint values to strictly bound every
// interior cell's value (endpoints themselves are distinct from the
// interior and from each other, German-whispers-adjacent "between
// line" semantics).
type Between struct {
	base
	line
}

func NewBetween(cells []int, priority int, essential bool) *Between {
	h := &Between{base: base{priority: priority, essential: essential}}
	h.line.cells = append([]int(nil), cells...)
	return h
}

func (h *Between) Name() Name { return "Between" }

func (h *Between) ExclusionCells() []int { return nil }

func (h *Between) Initialize(initialGrid grid.Grid, excl *exclusion.Index, shp shape.Shape) (bool, error) {
	h.line.init(h.line.cells, shp)
	return len(h.cells) >= 2, nil
}

func (h *Between) EnforceConsistency(g grid.Grid, acc Accumulator) (bool, error) {
	return boundedInterior(g, acc, h.cells, false, 0)
}

// Lockout is Between with a minimum absolute gap between the
// endpoints, and the interior strictly outside [min(endpoints),
// max(endpoints)] is disallowed the same way, but the endpoints must
// additionally differ by at least minDiff.
type Lockout struct {
	base
	line
	minDiff int
}

func NewLockout(cells []int, minDiff int, priority int, essential bool) *Lockout {
	h := &Lockout{base: base{priority: priority, essential: essential}, minDiff: minDiff}
	h.line.cells = append([]int(nil), cells...)
	return h
}

func (h *Lockout) Name() Name { return "Lockout" }

func (h *Lockout) ExclusionCells() []int { return nil }

func (h *Lockout) Initialize(initialGrid grid.Grid, excl *exclusion.Index, shp shape.Shape) (bool, error) {
	h.line.init(h.line.cells, shp)
	return len(h.cells) >= 2, nil
}

func (h *Lockout) EnforceConsistency(g grid.Grid, acc Accumulator) (bool, error) {
	return boundedInterior(g, acc, h.cells, true, h.minDiff)
}

// boundedInterior implements the shared Between/Lockout propagation:
// the two endpoints (first and last cell) bound every interior cell
// strictly; lockout additionally requires |a-b| >= minDiff.
func boundedInterior(g grid.Grid, acc Accumulator, cells []int, lockout bool, minDiff int) (bool, error) {
	a, b := cells[0], cells[len(cells)-1]
	da, db := g[a], g[b]
	if da.IsEmpty() || db.IsEmpty() {
		return false, nil
	}

	if lockout {
		aMin, _ := minMax(da)
		_, aMax := minMax(da)
		bMin, _ := minMax(db)
		_, bMax := minMax(db)
		if aMax-bMin < minDiff && bMax-aMin < minDiff {
			return false, nil
		}
	}

	for pass := 0; pass < 2; pass++ {
		aLo, aHi := minMax(da)
		bLo, bHi := minMax(db)
		lo, hi := aLo, aHi
		if bLo < lo {
			lo = bLo
		}
		if bHi > hi {
			hi = bHi
		}
		for _, c := range cells[1 : len(cells)-1] {
			d := g[c]
			// interior must be strictly between min(a,b) and max(a,b)
			nd := d & bitset.Range(lo, hi-1)
			if nd.IsEmpty() {
				return false, nil
			}
			if nd != d {
				g[c] = nd
				acc.AddForCell(c)
			}
		}
		da, db = g[a], g[b]
	}
	return true, nil
}

// Zipper mirrors cells around the line's centre (odd length) or in
// index-sum pairs (even length), requiring each mirrored pair to sum
// to the same value (the centre cell's own value, doubled, for odd
// length).
type Zipper struct {
	base
	line
}

func NewZipper(cells []int, priority int, essential bool) *Zipper {
	h := &Zipper{base: base{priority: priority, essential: essential}}
	h.line.cells = append([]int(nil), cells...)
	return h
}

func (h *Zipper) Name() Name { return "Zipper" }

func (h *Zipper) ExclusionCells() []int { return nil }

func (h *Zipper) Initialize(initialGrid grid.Grid, excl *exclusion.Index, shp shape.Shape) (bool, error) {
	h.line.init(h.line.cells, shp)
	return true, nil
}

func (h *Zipper) EnforceConsistency(g grid.Grid, acc Accumulator) (bool, error) {
	n := len(h.cells)
	odd := n%2 == 1
	var target int = -1
	if odd {
		mid := g[h.cells[n/2]]
		if mid.IsSingleton() {
			target = 2 * (bitset.LowestSet(mid) + 1)
		}
	}
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		ci, cj := h.cells[i], h.cells[j]
		di, dj := g[ci], g[cj]
		if target >= 0 {
			ndi := di & pairSumMask(dj, target, h.values)
			ndj := dj & pairSumMask(di, target, h.values)
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
	if !odd && allSingleton(g, h.cells) {
		want := -1
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			s := sumOf(g, []int{h.cells[i], h.cells[j]})
			if want >= 0 && s != want {
				return false, nil
			}
			want = s
		}
	}
	return true, nil
}

// pairSumMask returns, for a fixed partner domain `other` and target
// sum, the set of values v such that v's 1-indexed partner value
// (target - v) is present in other.
func pairSumMask(other bitset.Set, target, values int) bitset.Set {
	var out bitset.Set
	for v := 1; v <= values; v++ {
		partner := target - v
		if partner >= 1 && partner <= values && other.Has(partner-1) {
			out = out.With(v - 1)
		}
	}
	return out
}

// Skyscraper requires the clue to equal the count of cells visible
// from the line's start looking inward (a cell is visible if it is
// taller than every cell before it).
type Skyscraper struct {
	base
	line
	clue int
}

func NewSkyscraper(cells []int, clue int, priority int, essential bool) *Skyscraper {
	h := &Skyscraper{base: base{priority: priority, essential: essential}, clue: clue}
	h.line.cells = append([]int(nil), cells...)
	return h
}

func (h *Skyscraper) Name() Name { return "Skyscraper" }

func (h *Skyscraper) ExclusionCells() []int { return nil }

func (h *Skyscraper) Initialize(initialGrid grid.Grid, excl *exclusion.Index, shp shape.Shape) (bool, error) {
	h.line.init(h.line.cells, shp)
	return h.clue >= 1 && h.clue <= len(h.cells), nil
}

// EnforceConsistency only prunes when the line is fully fixed (a
// clue-counting handler needs full information to evaluate visibility
// soundly without enumerating permutations); it rejects dead
// assignments and otherwise defers to search.
func (h *Skyscraper) EnforceConsistency(g grid.Grid, acc Accumulator) (bool, error) {
	if !allSingleton(g, h.cells) {
		return true, nil
	}
	count := visibleCount(g, h.cells)
	return count == h.clue, nil
}

func visibleCount(g grid.Grid, cells []int) int {
	best := -1
	count := 0
	for _, c := range cells {
		v := bitset.LowestSet(g[c])
		if v > best {
			best = v
			count++
		}
	}
	return count
}

// HiddenSkyscraper is a Skyscraper variant that starts counting at the
// line's tallest cell (the first occurrence of its maximum) and counts
// the cells visible from there looking forward to the line's end.
type HiddenSkyscraper struct {
	base
	line
	clue int
}

func NewHiddenSkyscraper(cells []int, clue int, priority int, essential bool) *HiddenSkyscraper {
	h := &HiddenSkyscraper{base: base{priority: priority, essential: essential}, clue: clue}
	h.line.cells = append([]int(nil), cells...)
	return h
}

func (h *HiddenSkyscraper) Name() Name { return "HiddenSkyscraper" }

func (h *HiddenSkyscraper) ExclusionCells() []int { return nil }

func (h *HiddenSkyscraper) Initialize(initialGrid grid.Grid, excl *exclusion.Index, shp shape.Shape) (bool, error) {
	h.line.init(h.line.cells, shp)
	return true, nil
}

func (h *HiddenSkyscraper) EnforceConsistency(g grid.Grid, acc Accumulator) (bool, error) {
	if !allSingleton(g, h.cells) {
		return true, nil
	}
	reversed := make([]int, len(h.cells))
	for i, c := range h.cells {
		reversed[len(h.cells)-1-i] = c
	}
	tallestPos := 0
	best := -1
	for i, c := range h.cells {
		v := bitset.LowestSet(g[c])
		if v > best {
			best = v
			tallestPos = i
		}
	}
	count := visibleCount(g, h.cells[tallestPos:])
	return count == h.clue, nil
}

// NumberedRoom requires the cell at position clue-1 from the start of
// the line (clue being the value of the line's first cell) to hold the
// configured room value.
type NumberedRoom struct {
	base
	line
	value int
}

func NewNumberedRoom(cells []int, value int, priority int, essential bool) *NumberedRoom {
	h := &NumberedRoom{base: base{priority: priority, essential: essential}, value: value}
	h.line.cells = append([]int(nil), cells...)
	return h
}

func (h *NumberedRoom) Name() Name { return "NumberedRoom" }

func (h *NumberedRoom) ExclusionCells() []int { return nil }

func (h *NumberedRoom) Initialize(initialGrid grid.Grid, excl *exclusion.Index, shp shape.Shape) (bool, error) {
	h.line.init(h.line.cells, shp)
	return true, nil
}

func (h *NumberedRoom) EnforceConsistency(g grid.Grid, acc Accumulator) (bool, error) {
	return indexingPropagate(g, acc, h.cells[0], h.cells, h.value)
}

// XSum requires the sum of the first N cells (N given by the first
// cell's own value) to equal the clue.
type XSum struct {
	base
	line
	clue int
}

func NewXSum(cells []int, clue int, priority int, essential bool) *XSum {
	h := &XSum{base: base{priority: priority, essential: essential}, clue: clue}
	h.line.cells = append([]int(nil), cells...)
	return h
}

func (h *XSum) Name() Name { return "XSum" }

func (h *XSum) ExclusionCells() []int { return nil }

func (h *XSum) Initialize(initialGrid grid.Grid, excl *exclusion.Index, shp shape.Shape) (bool, error) {
	h.line.init(h.line.cells, shp)
	return true, nil
}

func (h *XSum) EnforceConsistency(g grid.Grid, acc Accumulator) (bool, error) {
	first := g[h.cells[0]]
	var allowedN bitset.Set
	bitset.Each(first, func(k int) {
		n := k + 1
		if n > len(h.cells) {
			return
		}
		if possibleRunSum(g, h.cells[:n], h.clue) {
			allowedN = allowedN.With(k)
		}
	})
	nd := first & allowedN
	if nd.IsEmpty() {
		return false, nil
	}
	if nd != first {
		g[h.cells[0]] = nd
		acc.AddForCell(h.cells[0])
	}
	return true, nil
}

func possibleRunSum(g grid.Grid, cells []int, target int) bool {
	lo, hi := 0, 0
	for _, c := range cells {
		mn, mx := minMax(g[c])
		lo += mn
		hi += mx
	}
	return target >= lo && target <= hi
}

func allSingleton(g grid.Grid, cells []int) bool {
	for _, c := range cells {
		if !g[c].IsSingleton() {
			return false
		}
	}
	return true
}

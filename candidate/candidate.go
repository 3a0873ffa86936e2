// Copyright ©2024 The gridlogic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package candidate picks the next cell (and value) to branch on
// during search, weighing decayed backtrack-trigger statistics
// against domain size, with an optional house-level bivalue
// optimisation (spec.md §4.4).
package candidate

import (
	"math"

	"github.com/loopfield/gridlogic/bitset"
	"github.com/loopfield/gridlogic/grid"
	"github.com/loopfield/gridlogic/lookup"
)

// Guide overrides the selector's choice for one step of a stepped
// search (spec.md §6's stepGuides). A nil *Guide or a field set to
// the sentinel (-1 for Cell, 0 for Value) leaves that part of the
// selection untouched.
type Guide struct {
	Cell  int // cell index, or -1 for "no override"
	Value int // 1-based value, or 0 for "no override"
}

// Result is the outcome of one Select call.
type Result struct {
	CellsTaken  []int
	Value       int
	Count       int
	ForcedCell  int // >= 0 if a house-bivalue pair was found; the partner of CellsTaken[0]
	ForcedValue int
}

// Selector owns the mutable cell-visiting order used by the search
// engine. It is not safe for concurrent use; exactly one engine frame
// stack owns a Selector (spec.md §5).
type Selector struct {
	order  []int
	houses [][]int
	lt     *lookup.Tables
}

// New builds a Selector over n cells, given the list of house cell
// groups (each exactly lt.Values cells) eligible for bivalue
// branching.
func New(n int, houses [][]int, lt *lookup.Tables) *Selector {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return &Selector{order: order, houses: houses, lt: lt}
}

// Order returns the read-only cell-visiting order up to upto (or the
// whole order if upto < 0), matching spec.md's getCellOrder.
func (s *Selector) Order(upto int) []int {
	if upto < 0 || upto > len(s.order) {
		upto = len(s.order)
	}
	return s.order[:upto]
}

// Reset restores the identity permutation.
func (s *Selector) Reset() {
	for i := range s.order {
		s.order[i] = i
	}
}

// positionOf finds the index within order[from:] holding cell,
// returning -1 if not present there.
func (s *Selector) positionOf(from int, cell int) int {
	for i := from; i < len(s.order); i++ {
		if s.order[i] == cell {
			return i
		}
	}
	return -1
}

// Select implements spec.md §4.4's selectNextCandidate. triggers is
// the engine's decayed backtrack-trigger array (read-only here);
// forcedCell/forcedValue (both non-negative) force the next pick
// without running the scoring pass, the way a house-bivalue branch
// forces its second cell after the first alternative fails.
func (s *Selector) Select(depth int, g grid.Grid, triggers []int32, forcedCell, forcedValue int, guide *Guide, isNewNode bool) Result {
	n := len(s.order)

	var chosenIdx int
	var value, count int

	switch {
	case forcedCell >= 0:
		pos := s.positionOf(depth, forcedCell)
		if pos < 0 {
			pos = depth
		}
		chosenIdx = pos
		value = forcedValue
		count = 1

	case g[s.order[depth]].IsSingleton():
		chosenIdx = depth
		value = bitset.LowestSet(g[s.order[depth]]) + 1
		count = 1

	default:
		chosenIdx, value, count = s.scoreScan(depth, g, triggers)
	}

	score := 0.0
	if count > 0 {
		pc := bitset.Popcount(g[s.order[chosenIdx]])
		if pc > 0 {
			score = float64(triggers[s.order[chosenIdx]]) / float64(pc)
		}
	}

	forcedOut, forcedValueOut := -1, 0
	if isNewNode && count > 2 && triggers[s.order[chosenIdx]] > 0 {
		if pairCell, pairOther, pairVal, pairScore, ok := s.houseBivalue(depth, g, triggers, score); ok {
			chosenIdx = s.positionOf(depth, pairCell)
			value = pairVal
			count = 2
			forcedOut = pairOther
			forcedValueOut = pairVal
			_ = pairScore
		}
	}

	if guide != nil {
		if guide.Cell >= 0 {
			if pos := s.positionOf(depth, guide.Cell); pos >= 0 {
				chosenIdx = pos
			}
		}
		if guide.Value > 0 {
			value = guide.Value
		}
		count = bitset.Popcount(g[s.order[chosenIdx]])
		if count == 0 {
			count = 1
		}
	}

	s.order[depth], s.order[chosenIdx] = s.order[chosenIdx], s.order[depth]

	cellsTaken := []int{s.order[depth]}
	if count == 1 {
		end := depth + 1
		for i := depth + 1; i < n; i++ {
			if g[s.order[i]].IsSingleton() {
				s.order[end], s.order[i] = s.order[i], s.order[end]
				end++
			}
		}
		cellsTaken = s.order[depth:end]
	}

	return Result{CellsTaken: cellsTaken, Value: value, Count: count, ForcedCell: forcedOut, ForcedValue: forcedValueOut}
}

// scoreScan performs spec.md §4.4 step 2: scan order[depth:] for the
// cell maximising triggers[cell]/popcount(domain), falling back to
// minimum popcount when every trigger is zero.
func (s *Selector) scoreScan(depth int, g grid.Grid, triggers []int32) (idx, value, count int) {
	n := len(s.order)
	bestIdx := depth
	bestScore := -1.0
	minPopIdx := depth
	minPop := math.MaxInt32

	for i := depth; i < n; i++ {
		cell := s.order[i]
		pc := bitset.Popcount(g[cell])
		if pc == 1 {
			v := bitset.LowestSet(g[cell]) + 1
			return i, v, 1
		}
		if pc < minPop {
			minPop = pc
			minPopIdx = i
		}
		sc := float64(triggers[cell]) / float64(pc)
		if sc > bestScore {
			bestScore = sc
			bestIdx = i
		}
	}

	if bestScore <= 0 {
		bestIdx = minPopIdx
	}
	cell := s.order[bestIdx]
	pc := bitset.Popcount(g[cell])
	if pc == 0 {
		return bestIdx, 0, 0
	}
	return bestIdx, bitset.LowestSet(g[cell]) + 1, pc
}

// houseBivalue implements spec.md §4.4 step 4: look for a value that
// appears in exactly two cells of some house, where at least one of
// those cells has a sufficiently large backtrack trigger, and whose
// pair-score beats the plain selection score.
func (s *Selector) houseBivalue(depth int, g grid.Grid, triggers []int32, score float64) (cellA, cellB, value int, pairScore float64, ok bool) {
	threshold := int32(math.Ceil(2 * score))
	bestScore := score
	found := false

	for _, house := range s.houses {
		qualifies := false
		for _, c := range house {
			if !g[c].IsSingleton() && triggers[c] >= threshold {
				qualifies = true
				break
			}
		}
		if !qualifies {
			continue
		}
		for v := 1; v <= s.lt.Values; v++ {
			bit := v - 1
			var holders [2]int
			count := 0
			for _, c := range house {
				if g[c].Has(bit) {
					count++
					if count <= 2 {
						holders[count-1] = c
					} else {
						break
					}
				}
			}
			if count != 2 {
				continue
			}
			sc := float64(triggers[holders[0]])
			if t1 := float64(triggers[holders[1]]); t1 > sc {
				sc = t1
			}
			if sc > bestScore {
				bestScore = sc
				cellA, cellB, value = holders[0], holders[1], v
				found = true
			}
		}
	}
	return cellA, cellB, value, bestScore, found
}

// Copyright ©2024 The gridlogic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package engine is the internal solver: it owns the recursion-frame
// stack, drives constraint propagation to a fixed point between
// guesses, decays backtrack triggers, and advances the search one
// event at a time so the outer façade can implement countSolutions,
// nthSolution, nthStep and solveAllPossibilities over the same
// resumable state machine (spec.md §4.5).
package engine

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/loopfield/gridlogic/accumulator"
	"github.com/loopfield/gridlogic/bitset"
	"github.com/loopfield/gridlogic/candidate"
	"github.com/loopfield/gridlogic/exclusion"
	"github.com/loopfield/gridlogic/grid"
	"github.com/loopfield/gridlogic/handler"
	"github.com/loopfield/gridlogic/lookup"
	"github.com/loopfield/gridlogic/shape"
)

// decayInterval is the number of branching iterations between
// right-shifts of every backtrack trigger (spec.md §3, §9).
const decayInterval = 1 << 14

// House is implemented by handlers whose cells form a house (every
// value appears exactly once): AllDifferent sets this when it has
// exactly Shape.Values cells. Used for hidden-singleton detection and
// the candidate selector's bivalue branching.
type House interface {
	HouseCells() ([]int, bool)
}

// PriorityOverride is implemented by the Priority handler: it assigns
// explicit priorities to named cells, overriding the sum-of-handler-
// priorities default.
type PriorityOverride interface {
	Overrides() map[int]int
}

// AuxOnly is an optional handler interface: a handler implementing it
// and returning true is only re-run when one of its cells becomes
// fixed, never on a plain domain shrink. Handlers that don't
// implement it are always "ordinary" (conservative: re-run on any
// shrink), which is always sound, only sometimes wasteful.
type AuxOnly interface {
	AuxOnly() bool
}

// Counters mirrors spec.md §3's search counters. Solutions is a
// big.Int because an empty 9x9 grid alone has 6,670,903,752,021,072,
// 936,960 solutions, far beyond an int64.
type Counters struct {
	ValuesTried          int64
	NodesSearched        int64
	Backtracks           int64
	Guesses              int64
	Solutions            *big.Int
	ConstraintsProcessed int64
	ProgressRatio        float64
	ProgressRatioPrev    float64
	BranchesIgnored      float64
}

// EventKind labels what happened on the most recent Advance call.
type EventKind int

const (
	EventNone EventKind = iota
	EventSolution
	EventContradiction
	EventStep
	EventDone
)

// StopOn selects which events pause Advance; EventDone always pauses.
type StopOn struct {
	Solution      bool
	Contradiction bool
	EveryStep     bool
}

// Event reports the outcome of the most recent Advance call.
type Event struct {
	Kind  EventKind
	Cell  int
	Value int
	Grid  grid.Grid
}

type frame struct {
	grid                   grid.Grid
	cellDepth              int
	progressRemaining      float64
	lastContradictionCell  int
	newNode                bool
	forcedCell, forcedValue int
}

// Engine is the internal search engine over a fixed handler set and
// shape. It is not safe for concurrent use.
type Engine struct {
	shp        shape.Shape
	handlers   []handler.Handler
	excl       *exclusion.Index
	priorities []int

	initialGrid  grid.Grid
	initiallySat bool

	frames []frame
	top    int

	acc *accumulator.Accumulator
	sel *candidate.Selector
	lt  *lookup.Tables

	triggers       []int32
	iterSinceDecay int

	counters Counters

	sampleSolution grid.Grid
	uninteresting  []grid.Domain

	guide *candidate.Guide
}

// New builds an Engine over handlers for the given shape. It runs
// Initialize on every handler, builds the cell-exclusion index, adds
// one UniqueValueExclusion handler per cell, computes cell priorities,
// and propagates the resulting initial grid to a fixed point.
func New(shp shape.Shape, handlers []handler.Handler) (*Engine, error) {
	n := shp.Cells()

	ordered := append([]handler.Handler(nil), handlers...)
	sort.SliceStable(ordered, func(i, j int) bool {
		ci, cj := ordered[i].Cells(), ordered[j].Cells()
		if len(ci) != len(cj) {
			return len(ci) < len(cj)
		}
		return joinCells(ci) < joinCells(cj)
	})

	groups := make([][]int, 0, len(ordered))
	for _, h := range ordered {
		if ec := h.ExclusionCells(); len(ec) > 0 {
			groups = append(groups, ec)
		}
	}
	if err := exclusion.Validate(n, groups); err != nil {
		return nil, err
	}
	excl := exclusion.New(n, groups)

	initialGrid := grid.New(n, shp.Values)

	satisfiable := true
	for _, h := range ordered {
		ok, err := h.Initialize(initialGrid, excl, shp)
		if err != nil {
			return nil, fmt.Errorf("engine: handler initialize: %w", err)
		}
		if !ok {
			satisfiable = false
			cells := h.Cells()
			if len(cells) == 0 {
				for c := range initialGrid {
					initialGrid[c] = grid.Domain(bitset.Empty)
				}
			} else {
				for _, c := range cells {
					initialGrid[c] = grid.Domain(bitset.Empty)
				}
			}
		}
	}

	exclusionOf := make([]int, n)
	for i := range exclusionOf {
		exclusionOf[i] = -1
	}
	full := ordered
	for c := 0; c < n; c++ {
		uve := handler.NewUniqueValueExclusion(c, excl)
		exclusionOf[c] = len(full)
		full = append(full, uve)
	}

	priorities := make([]int, n)
	overrides := map[int]int{}
	for _, h := range full {
		for _, c := range h.Cells() {
			priorities[c] += h.Priority()
		}
		if po, ok := h.(PriorityOverride); ok {
			for c, p := range po.Overrides() {
				overrides[c] = p
			}
		}
	}
	for c, p := range overrides {
		priorities[c] = p
	}

	isAux := func(hi int) bool {
		if a, ok := full[hi].(AuxOnly); ok {
			return a.AuxOnly()
		}
		return false
	}
	acc := accumulator.New(full, isAux, exclusionOf, n)

	var houses [][]int
	for _, h := range full {
		if hh, ok := h.(House); ok {
			if cells, isHouse := hh.HouseCells(); isHouse {
				houses = append(houses, cells)
			}
		}
	}

	lt := lookup.For(shp.Values)
	sel := candidate.New(n, houses, lt)

	e := &Engine{
		shp:          shp,
		handlers:     full,
		excl:         excl,
		priorities:   priorities,
		initialGrid:  initialGrid,
		initiallySat: satisfiable,
		acc:          acc,
		sel:          sel,
		lt:           lt,
	}
	e.Reset()
	return e, nil
}

func joinCells(cells []int) string {
	out := make([]byte, 0, len(cells)*4)
	for i, c := range cells {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, []byte(fmt.Sprintf("%d", c))...)
	}
	return string(out)
}

// Reset clears counters and search state and re-seeds backtrack
// triggers from cell priorities, ready for a fresh run.
func (e *Engine) Reset() {
	n := e.shp.Cells()
	e.frames = make([]frame, n+1)
	for i := range e.frames {
		e.frames[i].grid = make(grid.Grid, n)
	}
	e.triggers = make([]int32, n)
	for c, p := range e.priorities {
		e.triggers[c] = int32(p)
	}
	e.iterSinceDecay = 0
	e.counters = Counters{Solutions: new(big.Int)}
	e.sampleSolution = nil
	e.uninteresting = nil
	e.sel.Reset()

	e.top = 0
	if !e.initiallySat {
		return
	}

	e.initialGrid.CopyInto(e.frames[0].grid)
	e.acc.Reset(false)
	e.pushAllHandlers()
	ok, _, err := e.propagate(e.frames[0].grid, -1)
	if err != nil || !ok {
		e.top = 0
		return
	}
	e.frames[0].cellDepth = 0
	e.frames[0].progressRemaining = 1
	e.frames[0].lastContradictionCell = -1
	e.frames[0].newNode = true
	e.frames[0].forcedCell = -1
	e.top = 1
}

// pushAllHandlers schedules every handler once, seeding the initial
// propagation pass before any cell has actually been fixed.
func (e *Engine) pushAllHandlers() {
	for c := 0; c < e.shp.Cells(); c++ {
		e.acc.AddForFixedCell(c)
	}
}

// Counters returns a snapshot of the current search counters.
func (e *Engine) Counters() Counters {
	c := e.counters
	c.Solutions = new(big.Int).Set(e.counters.Solutions)
	return c
}

// Done reports whether the search has been fully exhausted.
func (e *Engine) Done() bool {
	return e.top == 0
}

// CellOrder exposes the selector's current visiting order, read-only.
func (e *Engine) CellOrder(upto int) []int {
	return e.sel.Order(upto)
}

// SetGuide installs a one-shot candidate-selection override for the
// next Advance call's decision, matching spec.md §6's stepGuides.
func (e *Engine) SetGuide(g *candidate.Guide) {
	e.guide = g
}

// InstallUninterestingValues installs the "values already seen
// everywhere" optimisation used by solveAllPossibilities once at
// least two solutions have been found.
func (e *Engine) InstallUninterestingValues(seen []grid.Domain) {
	e.uninteresting = seen
}

// SampleSolution returns the first solution found so far, or nil.
func (e *Engine) SampleSolution() grid.Grid {
	return e.sampleSolution
}

// Advance runs the search until an event matching stop occurs, or the
// search is exhausted (which always pauses). Calling Advance again
// after EventDone is a no-op that keeps returning EventDone.
func (e *Engine) Advance(stop StopOn) Event {
	guide := e.guide
	e.guide = nil

	for e.top > 0 {
		f := &e.frames[e.top-1]
		isNew := f.newNode
		f.newNode = false

		res := e.sel.Select(f.cellDepth, f.grid, e.triggers, f.forcedCell, f.forcedValue, guide, isNew)
		guide = nil // a guide only applies to the first iteration of this Advance call
		f.forcedCell = -1

		if res.Count == 0 {
			e.top--
			if stop.EveryStep {
				return Event{Kind: EventStep}
			}
			continue
		}

		e.counters.NodesSearched++
		e.counters.ValuesTried++

		progressDelta := f.progressRemaining / float64(res.Count)
		f.progressRemaining -= progressDelta

		if e.uninteresting != nil && e.allUninteresting(f.grid) {
			e.counters.BranchesIgnored += progressDelta
			if res.Count > 1 {
				cell := res.CellsTaken[0]
				f.grid[cell] = f.grid[cell].Without(res.Value - 1)
			} else {
				e.top--
			}
			if stop.EveryStep {
				return Event{Kind: EventStep}
			}
			continue
		}

		nextDepth := f.cellDepth + len(res.CellsTaken)
		e.acc.Reset(nextDepth == e.shp.Cells())
		for _, c := range res.CellsTaken {
			e.acc.AddForFixedCell(c)
		}
		if f.lastContradictionCell >= 0 {
			e.acc.AddForCell(f.lastContradictionCell)
		}

		var work *frame
		if res.Count > 1 {
			child := &e.frames[e.top]
			f.grid.CopyInto(child.grid)
			cell := res.CellsTaken[0]
			f.grid[cell] = f.grid[cell].Without(res.Value - 1)
			f.forcedCell, f.forcedValue = res.ForcedCell, res.ForcedValue
			child.cellDepth = nextDepth
			child.progressRemaining = progressDelta
			child.lastContradictionCell = -1
			child.newNode = true
			child.forcedCell = -1
			work = child
			e.top++
			e.counters.Guesses++
		} else {
			work = f
			work.cellDepth = nextDepth
		}

		work.grid[res.CellsTaken[0]] = grid.Domain(1 << uint(res.Value-1))

		e.iterSinceDecay++
		if e.iterSinceDecay >= decayInterval {
			e.iterSinceDecay = 0
			for i := range e.triggers {
				e.triggers[i] >>= 1
			}
		}

		ok, failedCell, err := e.propagate(work.grid, res.CellsTaken[0])
		if err != nil {
			// Programming error: abort the search rather than
			// reporting a false "unsatisfiable" result.
			e.top = 0
			return Event{Kind: EventDone}
		}

		if !ok {
			e.top--
			if e.top > 0 {
				e.frames[e.top-1].lastContradictionCell = failedCell
			}
			e.counters.Backtracks++
			e.triggers[failedCell]++
			e.counters.ProgressRatio += progressDelta
			if stop.Contradiction || stop.EveryStep {
				return Event{Kind: EventContradiction, Cell: failedCell}
			}
			continue
		}

		if nextDepth == e.shp.Cells() {
			e.counters.Solutions.Add(e.counters.Solutions, big.NewInt(1))
			if e.sampleSolution == nil {
				e.sampleSolution = work.grid.Clone()
			}
			e.counters.ProgressRatio += progressDelta
			solGrid := work.grid.Clone()
			e.top--
			if stop.Solution || stop.EveryStep {
				return Event{Kind: EventSolution, Cell: res.CellsTaken[0], Value: res.Value, Grid: solGrid}
			}
			continue
		}

		if stop.EveryStep {
			return Event{Kind: EventStep, Cell: res.CellsTaken[0], Value: res.Value, Grid: work.grid.Clone()}
		}
	}
	return Event{Kind: EventDone}
}

// allUninteresting reports whether every cell's domain is already a
// subset of the "values seen everywhere" snapshot, meaning this
// branch (and everything beneath it) cannot add a new pencilmark.
func (e *Engine) allUninteresting(g grid.Grid) bool {
	for c, d := range g {
		if d&^e.uninteresting[c] != 0 {
			return false
		}
	}
	return true
}

// propagate drains the accumulator, calling EnforceConsistency on
// each queued handler until empty (fixed point) or a contradiction.
// fallbackCell is used to attribute the contradiction to a cell when
// the failing handler's own cells are all still non-empty (a purely
// logical, not domain-emptying, contradiction).
func (e *Engine) propagate(g grid.Grid, fallbackCell int) (ok bool, failedCell int, err error) {
	for {
		hi, has := e.acc.TakeNext()
		if !has {
			return true, -1, nil
		}
		h := e.handlers[hi]
		good, err := h.EnforceConsistency(g, e.acc)
		e.counters.ConstraintsProcessed++
		if err != nil {
			return false, -1, err
		}
		if !good {
			fc := -1
			for _, c := range h.Cells() {
				if g[c].IsEmpty() {
					fc = c
					break
				}
			}
			if fc < 0 {
				fc = fallbackCell
			}
			return false, fc, nil
		}
	}
}

// Shape returns the engine's grid shape.
func (e *Engine) Shape() shape.Shape { return e.shp }

// Exclusions returns the engine's cell-exclusion index.
func (e *Engine) Exclusions() *exclusion.Index { return e.excl }

// Priorities returns the computed per-cell priority (and therefore
// initial backtrack-trigger) values.
func (e *Engine) Priorities() []int { return append([]int(nil), e.priorities...) }

// InitiallySatisfiable reports whether the initial grid survived
// initialization and initial propagation without contradiction.
func (e *Engine) InitiallySatisfiable() bool {
	return e.initiallySat && e.top > 0
}

// Handlers returns the full ordered handler list, including the
// per-cell UniqueValueExclusion handlers appended at construction.
func (e *Engine) Handlers() []handler.Handler { return e.handlers }

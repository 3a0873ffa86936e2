// Copyright ©2024 The gridlogic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package solver is the public façade over package engine: it exposes
// the handful of operations a host actually calls - counting, nth
// solution/step, exhaustive possibility solving, layout validation,
// and progress reporting - without leaking the recursion-frame
// internals (spec.md §6).
package solver

import (
	"fmt"
	"math/big"
	"time"

	"github.com/loopfield/gridlogic/bitset"
	"github.com/loopfield/gridlogic/candidate"
	"github.com/loopfield/gridlogic/engine"
	"github.com/loopfield/gridlogic/grid"
	"github.com/loopfield/gridlogic/handler"
	"github.com/loopfield/gridlogic/shape"
)

// validateNodeBudget is the per-house backtrack budget validateLayout
// spends before giving up on that house and moving to the next
// (spec.md §4.5).
const validateNodeBudget = 200

// State is a point-in-time snapshot of search progress, returned by
// State and handed to an installed ProgressCallback.
type State struct {
	Counters  engine.Counters
	ElapsedMS int64
	Done      bool
}

// DebugState additionally exposes internals useful for diagnosing a
// stuck search; optional per spec.md §6.
type DebugState struct {
	State
	Priorities []int
	CellOrder  []int
}

// ProgressCallback is invoked periodically during a long-running
// operation. It must return promptly and must not mutate the Solver.
type ProgressCallback func(State)

// Step is the result of one nthStep call: the pencilmarks after the
// step, which cells changed since the previous step, and what kind of
// event the step was.
type Step struct {
	Pencilmarks      grid.Grid
	DiffPencilmarks  []int
	LatestCell       int
	LatestValue      int
	IsSolution       bool
	HasContradiction bool
	Values           []int
}

// Solver wraps one engine.Engine, adding the stateful bookkeeping
// (solution/step cursors, progress callback, wall-clock) the façade
// operations need but the engine itself has no business owning.
type Solver struct {
	eng      *engine.Engine
	shp      shape.Shape
	handlers []handler.Handler

	startedAt time.Time
	cb        ProgressCallback
	logFreq   uint

	solutionIndex int
	stepIndex     int
	lastGrid      grid.Grid
}

// New builds a Solver over handlers for shp, initializing and
// propagating once (engine.New's contract).
func New(shp shape.Shape, handlers []handler.Handler) (*Solver, error) {
	eng, err := engine.New(shp, handlers)
	if err != nil {
		return nil, fmt.Errorf("solver: %w", err)
	}
	return &Solver{
		eng:       eng,
		shp:       shp,
		handlers:  append([]handler.Handler(nil), handlers...),
		startedAt: time.Now(),
	}, nil
}

// SetProgressCallback installs cb, invoked every 1<<logFrequency
// nodes searched, and once more when a search finishes.
func (s *Solver) SetProgressCallback(cb ProgressCallback, logFrequency uint) {
	s.cb = cb
	s.logFreq = logFrequency
}

func (s *Solver) notify(done bool) {
	if s.cb == nil {
		return
	}
	mask := int64(1)<<s.logFreq - 1
	if done || s.eng.Counters().NodesSearched&mask == 0 {
		s.cb(s.snapshot(done))
	}
}

func (s *Solver) snapshot(done bool) State {
	return State{
		Counters:  s.eng.Counters(),
		ElapsedMS: time.Since(s.startedAt).Milliseconds(),
		Done:      done,
	}
}

// State returns the current search progress snapshot.
func (s *Solver) State() State { return s.snapshot(s.eng.Done()) }

// DebugState additionally exposes cell priorities and the current
// visiting order.
func (s *Solver) DebugState() DebugState {
	return DebugState{
		State:      s.State(),
		Priorities: s.eng.Priorities(),
		CellOrder:  s.eng.CellOrder(-1),
	}
}

// CountSolutions exhausts the search, returning the total solution
// count. Progress is reported at each notification boundary when a
// callback is installed.
func (s *Solver) CountSolutions() *big.Int {
	s.eng.Reset()
	stop := engine.StopOn{}
	if s.cb != nil {
		stop.EveryStep = true
	}
	for !s.eng.Done() {
		s.eng.Advance(stop)
		s.notify(s.eng.Done())
	}
	return s.eng.Counters().Solutions
}

// NthSolution returns the n'th solution (0-indexed) in visiting
// order, or false if the search is exhausted before reaching it. A
// request for an n no larger than the last one served (including the
// same n again) resets the search and starts over, per spec.md §6.
func (s *Solver) NthSolution(n int) (grid.Grid, bool) {
	if n < s.solutionIndex {
		s.eng.Reset()
		s.solutionIndex = 0
	}
	for {
		ev := s.eng.Advance(engine.StopOn{Solution: true})
		s.notify(s.eng.Done())
		switch ev.Kind {
		case engine.EventSolution:
			idx := s.solutionIndex
			s.solutionIndex++
			if idx == n {
				return ev.Grid, true
			}
		case engine.EventDone:
			return nil, false
		}
	}
}

// NthStep returns the n'th propagation step (0-indexed), applying any
// stepGuides entry for that step number as a one-shot candidate
// override. A request for an n no larger than the last one served
// (including the same n again) resets the search.
func (s *Solver) NthStep(n int, stepGuides map[int]candidate.Guide) (Step, bool) {
	if n < s.stepIndex {
		s.eng.Reset()
		s.stepIndex = 0
		s.lastGrid = nil
	}
	for {
		if g, ok := stepGuides[s.stepIndex]; ok {
			guide := g
			s.eng.SetGuide(&guide)
		}
		ev := s.eng.Advance(engine.StopOn{EveryStep: true})
		s.notify(s.eng.Done())
		if ev.Kind == engine.EventDone {
			return Step{}, false
		}

		step := s.stepFromEvent(ev)
		idx := s.stepIndex
		s.stepIndex++
		if idx == n {
			return step, true
		}
	}
}

func (s *Solver) stepFromEvent(ev engine.Event) Step {
	g := ev.Grid
	if g == nil {
		g = s.lastGrid
	}

	var diff []int
	if s.lastGrid != nil && g != nil {
		for c := range g {
			if g[c] != s.lastGrid[c] {
				diff = append(diff, c)
			}
		}
	}
	s.lastGrid = g

	step := Step{
		Pencilmarks:      g,
		DiffPencilmarks:  diff,
		LatestCell:       ev.Cell,
		LatestValue:      ev.Value,
		IsSolution:       ev.Kind == engine.EventSolution,
		HasContradiction: ev.Kind == engine.EventContradiction,
	}
	if g != nil {
		step.Values = g.Values()
	}
	return step
}

// SolveAllPossibilities exhausts the search, returning the union of
// every solution grid as a per-cell pencilmark set. Once two
// solutions have been found it installs the "values already seen
// everywhere" optimisation to skip branches that cannot contribute a
// new pencilmark (spec.md §4.5).
func (s *Solver) SolveAllPossibilities() []grid.Domain {
	s.eng.Reset()
	seen := make([]grid.Domain, s.shp.Cells())
	solutions := 0
	for !s.eng.Done() {
		ev := s.eng.Advance(engine.StopOn{Solution: true})
		s.notify(s.eng.Done())
		if ev.Kind != engine.EventSolution {
			continue
		}
		for c, d := range ev.Grid {
			seen[c] |= d
		}
		solutions++
		if solutions == 2 {
			s.eng.InstallUninterestingValues(seen)
		}
	}
	return seen
}

// ValidateLayout considers only House handlers (rows, columns, boxes
// and any other exactly-Values-cells AllDifferent group): for each
// house it temporarily fixes the house to the identity permutation
// and runs a node-budgeted search; if any such run finds a solution,
// the layout is reported satisfiable. Otherwise the house with the
// greatest accumulated progress ratio is run to completion, unbudgeted
// (spec.md §4.5).
func (s *Solver) ValidateLayout() bool {
	var houses [][]int
	for _, h := range s.handlers {
		if hh, ok := h.(engine.House); ok {
			if cells, isHouse := hh.HouseCells(); isHouse {
				houses = append(houses, cells)
			}
		}
	}

	var bestHandlers []handler.Handler
	bestProgress := -1.0
	for _, house := range houses {
		trial := append(append([]handler.Handler(nil), s.handlers...), identityGivens(house))
		eng, err := engine.New(s.shp, trial)
		if err != nil || !eng.InitiallySatisfiable() {
			continue
		}

		backtracks := 0
		for !eng.Done() && backtracks < validateNodeBudget {
			ev := eng.Advance(engine.StopOn{Solution: true, Contradiction: true})
			if ev.Kind == engine.EventSolution {
				return true
			}
			if ev.Kind == engine.EventContradiction {
				backtracks++
			}
		}

		if prog := eng.Counters().ProgressRatio; prog > bestProgress {
			bestProgress = prog
			bestHandlers = trial
		}
	}

	if bestHandlers == nil {
		return false
	}
	eng, err := engine.New(s.shp, bestHandlers)
	if err != nil {
		return false
	}
	eng.Advance(engine.StopOn{})
	return eng.Counters().Solutions.Sign() > 0
}

// identityGivens builds a GivenCandidates handler fixing house[i] to
// value i+1, the identity-permutation probe validateLayout uses to
// cheaply test house satisfiability in isolation.
func identityGivens(house []int) handler.Handler {
	masks := make(map[int]bitset.Set, len(house))
	for i, c := range house {
		masks[c] = bitset.Set(1 << uint(i))
	}
	return handler.NewGivenCandidates(masks, 0, true)
}

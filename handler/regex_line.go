// Copyright ©2024 The gridlogic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package handler

import (
	"github.com/loopfield/gridlogic/automaton"
	"github.com/loopfield/gridlogic/bitset"
	"github.com/loopfield/gridlogic/exclusion"
	"github.com/loopfield/gridlogic/grid"
	"github.com/loopfield/gridlogic/shape"
)

// RegexLine requires the sequence of values along cells to be accepted
// by a regular-expression or state-machine automaton, compiled once at
// Initialize into a minimised DFA and walked with a forward/backward
// pass at every EnforceConsistency (spec.md §4.7).
type RegexLine struct {
	base
	cells   []int
	pattern string
	machine *automaton.StateMachine // alternative front-end to pattern; exactly one is set
	dfa     *automaton.DFA
}

func NewRegexLinePattern(cells []int, pattern string, priority int, essential bool) *RegexLine {
	return &RegexLine{base: base{priority: priority, essential: essential}, cells: append([]int(nil), cells...), pattern: pattern}
}

func NewRegexLineMachine(cells []int, m *automaton.StateMachine, priority int, essential bool) *RegexLine {
	return &RegexLine{base: base{priority: priority, essential: essential}, cells: append([]int(nil), cells...), machine: m}
}

func (h *RegexLine) Name() Name { return "RegexLine" }

func (h *RegexLine) Cells() []int { return h.cells }

func (h *RegexLine) ExclusionCells() []int { return nil }

func (h *RegexLine) Initialize(initialGrid grid.Grid, excl *exclusion.Index, shp shape.Shape) (bool, error) {
	if h.machine != nil {
		nfa, err := h.machine.Build(shp.Values)
		if err != nil {
			return false, err
		}
		nfa.CloseOverEpsilonTransitions()
		nfa.RemoveDeadStates(0)
		nfa.ReduceBySimulation()
		h.dfa = automaton.Subset(nfa).Minimize()
	} else {
		d, err := automaton.Compile(h.pattern, shp.Values)
		if err != nil {
			return false, err
		}
		h.dfa = d
	}
	return true, nil
}

// EnforceConsistency walks the DFA forward from the start state along
// cells, intersects the final state set with the accepting states,
// then walks backward pruning each cell's domain to the values that
// can actually participate in some accepting run.
func (h *RegexLine) EnforceConsistency(g grid.Grid, acc Accumulator) (bool, error) {
	n := len(h.cells)
	d := h.dfa
	states := make([]automaton.StateSet, n+1)
	states[0] = states[0].With(d.Start)

	for i := 0; i < n; i++ {
		var next automaton.StateSet
		cur := states[i]
		dom := g[h.cells[i]]
		cur.Each(func(s int) {
			for _, e := range d.Trans[s] {
				if dom&e.Mask != 0 {
					next = next.With(e.Dest)
				}
			}
		})
		if next.IsEmpty() {
			return false, nil
		}
		states[i+1] = next
	}

	var acceptMask automaton.StateSet
	for s, ok := range d.Accept {
		if ok {
			acceptMask = acceptMask.With(s)
		}
	}
	states[n] = states[n].Intersect(acceptMask)
	if states[n].IsEmpty() {
		return false, nil
	}

	for i := n - 1; i >= 0; i-- {
		var supported bitset.Set
		var keepStates automaton.StateSet
		dom := g[h.cells[i]]
		states[i].Each(func(s int) {
			for _, e := range d.Trans[s] {
				if !states[i+1].Has(e.Dest) {
					continue
				}
				reachable := dom & e.Mask
				if reachable == 0 {
					continue
				}
				supported |= reachable
				keepStates = keepStates.With(s)
			}
		})
		if keepStates.IsEmpty() || supported.IsEmpty() {
			return false, nil
		}
		states[i] = keepStates
		nd := dom & supported
		if nd.IsEmpty() {
			return false, nil
		}
		if nd != dom {
			g[h.cells[i]] = nd
			acc.AddForCell(h.cells[i])
		}
	}
	return true, nil
}

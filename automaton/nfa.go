// Copyright ©2024 The gridlogic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package automaton builds and minimises finite automata over a small
// alphabet (grid values 1..values) from either a regular-expression
// pattern or a user-supplied state-machine description, and serialises
// the resulting DFA to a compact binary wire format.
package automaton

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// NFA is a nondeterministic finite automaton over symbols 0..Symbols-1
// (grid values, 0-based). States are plain integers 0..States-1.
type NFA struct {
	States      int
	Symbols     int
	Transitions [][][]int // [state][symbol] -> target states
	Epsilon     [][]int   // [state] -> epsilon-reachable states
	Start       []int
	Accept      []bool
}

// New returns an NFA with states states states and no transitions.
func New(states, symbols int) *NFA {
	n := &NFA{
		States:      states,
		Symbols:     symbols,
		Transitions: make([][][]int, states),
		Epsilon:     make([][]int, states),
		Accept:      make([]bool, states),
	}
	for i := range n.Transitions {
		n.Transitions[i] = make([][]int, symbols)
	}
	return n
}

// AddState appends a new state and returns its index.
func (n *NFA) AddState() int {
	n.Transitions = append(n.Transitions, make([][]int, n.Symbols))
	n.Epsilon = append(n.Epsilon, nil)
	n.Accept = append(n.Accept, false)
	idx := n.States
	n.States++
	return idx
}

// AddTransition adds an edge from -> to on symbol.
func (n *NFA) AddTransition(from, symbol, to int) {
	n.Transitions[from][symbol] = append(n.Transitions[from][symbol], to)
}

// AddEpsilon adds an epsilon edge from -> to.
func (n *NFA) AddEpsilon(from, to int) {
	n.Epsilon[from] = append(n.Epsilon[from], to)
}

// closure returns the set of states reachable from seeds via zero or
// more epsilon edges (seeds included), as a sorted slice.
func (n *NFA) closure(seeds []int) []int {
	seen := make(map[int]bool, len(seeds))
	var stack, out []int
	for _, s := range seeds {
		if !seen[s] {
			seen[s] = true
			stack = append(stack, s)
			out = append(out, s)
		}
	}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, t := range n.Epsilon[s] {
			if !seen[t] {
				seen[t] = true
				stack = append(stack, t)
				out = append(out, t)
			}
		}
	}
	sort.Ints(out)
	return out
}

// CloseOverEpsilonTransitions folds every state's epsilon-reachable
// descendants' transitions and accepting status into the state itself,
// then clears the epsilon adjacency (spec.md §4.7).
func (n *NFA) CloseOverEpsilonTransitions() {
	closures := make([][]int, n.States)
	for s := 0; s < n.States; s++ {
		closures[s] = n.closure([]int{s})
	}
	newTrans := make([][][]int, n.States)
	newAccept := make([]bool, n.States)
	for s := 0; s < n.States; s++ {
		merged := make([][]int, n.Symbols)
		accept := false
		for _, r := range closures[s] {
			accept = accept || n.Accept[r]
			for sym := 0; sym < n.Symbols; sym++ {
				merged[sym] = append(merged[sym], n.Transitions[r][sym]...)
			}
		}
		for sym := range merged {
			merged[sym] = dedupInts(merged[sym])
		}
		newTrans[s] = merged
		newAccept[s] = accept
	}
	n.Transitions = newTrans
	n.Accept = newAccept
	n.Epsilon = make([][]int, n.States)

	startSet := make(map[int]bool)
	for _, s := range n.Start {
		for _, r := range closures[s] {
			startSet[r] = true
		}
	}
	n.Start = n.Start[:0]
	for s := range startSet {
		n.Start = append(n.Start, s)
	}
	sort.Ints(n.Start)
}

func dedupInts(xs []int) []int {
	if len(xs) < 2 {
		return xs
	}
	sort.Ints(xs)
	out := xs[:1]
	for _, x := range xs[1:] {
		if x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}

// RemoveDeadStates drops states unreachable from a start state, states
// that cannot reach an accepting state, and (if maxDepth > 0) states
// whose shortest forward depth plus shortest backward depth to an
// accept state exceeds maxDepth. Call after CloseOverEpsilonTransitions
// so transitions carry no epsilon edges.
func (n *NFA) RemoveDeadStates(maxDepth int) {
	depthFrom := n.bfsDepths(n.Start, false)
	var acceptSeeds []int
	for s, ok := range n.Accept {
		if ok {
			acceptSeeds = append(acceptSeeds, s)
		}
	}
	depthTo := n.bfsDepths(acceptSeeds, true)

	keep := make([]bool, n.States)
	for s := 0; s < n.States; s++ {
		df, ok1 := depthFrom[s]
		dt, ok2 := depthTo[s]
		if !ok1 || !ok2 {
			continue
		}
		if maxDepth > 0 && df+dt > maxDepth {
			continue
		}
		keep[s] = true
	}

	remap := make([]int, n.States)
	next := 0
	for s := 0; s < n.States; s++ {
		if keep[s] {
			remap[s] = next
			next++
		} else {
			remap[s] = -1
		}
	}
	n.RemapStates(remap)
}

// bfsDepths computes shortest-path depth from seeds, following forward
// transitions (reversed=false) or the reverse graph (reversed=true).
func (n *NFA) bfsDepths(seeds []int, reversed bool) map[int]int {
	depth := make(map[int]int, len(seeds))
	var queue []int
	for _, s := range seeds {
		if _, ok := depth[s]; !ok {
			depth[s] = 0
			queue = append(queue, s)
		}
	}
	adj := n.forwardAdjacency()
	if reversed {
		adj = n.reverseAdjacency()
	}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for _, t := range adj[s] {
			if _, ok := depth[t]; !ok {
				depth[t] = depth[s] + 1
				queue = append(queue, t)
			}
		}
	}
	return depth
}

func (n *NFA) forwardAdjacency() [][]int {
	adj := make([][]int, n.States)
	for s := 0; s < n.States; s++ {
		for sym := 0; sym < n.Symbols; sym++ {
			adj[s] = append(adj[s], n.Transitions[s][sym]...)
		}
	}
	return adj
}

func (n *NFA) reverseAdjacency() [][]int {
	adj := make([][]int, n.States)
	for s := 0; s < n.States; s++ {
		for sym := 0; sym < n.Symbols; sym++ {
			for _, t := range n.Transitions[s][sym] {
				adj[t] = append(adj[t], s)
			}
		}
	}
	return adj
}

// RemapStates applies an old->new index permutation (remap[old] == -1
// removes the state), compacting transitions and deduplicating target
// lists that merge as a result.
func (n *NFA) RemapStates(remap []int) {
	newCount := 0
	for _, r := range remap {
		if r >= newCount {
			newCount = r + 1
		}
	}
	newTrans := make([][][]int, newCount)
	newAccept := make([]bool, newCount)
	newEpsilon := make([][]int, newCount)
	for old, r := range remap {
		if r < 0 {
			continue
		}
		merged := make([][]int, n.Symbols)
		for sym := 0; sym < n.Symbols; sym++ {
			for _, t := range n.Transitions[old][sym] {
				if remap[t] >= 0 {
					merged[sym] = append(merged[sym], remap[t])
				}
			}
			merged[sym] = dedupInts(merged[sym])
		}
		newTrans[r] = merged
		newAccept[r] = n.Accept[old]
		for _, t := range n.Epsilon[old] {
			if remap[t] >= 0 {
				newEpsilon[r] = append(newEpsilon[r], remap[t])
			}
		}
	}
	var newStart []int
	seen := make(map[int]bool)
	for _, s := range n.Start {
		if r := remap[s]; r >= 0 && !seen[r] {
			seen[r] = true
			newStart = append(newStart, r)
		}
	}
	sort.Ints(newStart)

	n.States = newCount
	n.Transitions = newTrans
	n.Accept = newAccept
	n.Epsilon = newEpsilon
	n.Start = newStart
}

// ReduceBySimulation computes the forward simulation preorder (p <= q
// iff q can match every transition p makes, by iterative refinement),
// then merges mutually simulating (hence equivalent) states. The
// simulation relation's strongly connected components give the
// equivalence classes, found with the same Tarjan's-SCC condensation
// technique the AllDifferent handler uses for arc-consistency
// filtering.
func (n *NFA) ReduceBySimulation() {
	sim := n.simulationPreorder()

	g := simple.NewDirectedGraph()
	for s := 0; s < n.States; s++ {
		g.AddNode(simple.Node(s))
	}
	for p := 0; p < n.States; p++ {
		for q := 0; q < n.States; q++ {
			if p != q && sim[p][q] {
				g.SetEdge(g.NewEdge(simple.Node(p), simple.Node(q)))
			}
		}
	}
	sccs := topo.TarjanSCC(g)

	remap := make([]int, n.States)
	for i := range remap {
		remap[i] = -1
	}
	for newIdx, scc := range sccs {
		for _, node := range scc {
			remap[node.ID()] = newIdx
		}
	}
	n.RemapStates(remap)
}

// simulationPreorder returns sim[p][q] == true when q simulates p.
func (n *NFA) simulationPreorder() [][]bool {
	sim := make([][]bool, n.States)
	for p := range sim {
		sim[p] = make([]bool, n.States)
		for q := range sim[p] {
			// Initial approximation: q simulates p if q is accepting
			// whenever p is (or p isn't accepting at all).
			sim[p][q] = !n.Accept[p] || n.Accept[q]
		}
	}
	for changed := true; changed; {
		changed = false
		for p := 0; p < n.States; p++ {
			for q := 0; q < n.States; q++ {
				if !sim[p][q] {
					continue
				}
				if !n.simulates(p, q, sim) {
					sim[p][q] = false
					changed = true
				}
			}
		}
	}
	return sim
}

// simulates reports whether, under the current (possibly still
// over-approximated) sim relation, q can match every symbol-transition
// p makes into a state still simulated by some q-successor.
func (n *NFA) simulates(p, q int, sim [][]bool) bool {
	if n.Accept[p] && !n.Accept[q] {
		return false
	}
	for sym := 0; sym < n.Symbols; sym++ {
		for _, pt := range n.Transitions[p][sym] {
			ok := false
			for _, qt := range n.Transitions[q][sym] {
				if sim[pt][qt] {
					ok = true
					break
				}
			}
			if !ok {
				return false
			}
		}
	}
	return true
}


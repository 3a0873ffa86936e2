// Copyright ©2024 The gridlogic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package automaton

import (
	"sort"
	"strconv"
	"strings"

	"github.com/loopfield/gridlogic/bitset"
)

// Edge is a DFA transition grouping every symbol that leads to the
// same destination state into one mask, matching the compact
// (dest, mask) pairs RegexLine walks during forward/backward passes.
type Edge struct {
	Dest int
	Mask bitset.Set
}

// DFA is a deterministic finite automaton with mask-grouped outgoing
// edges per state.
type DFA struct {
	States  int
	Symbols int
	Start   int
	Accept  []bool
	Trans   [][]Edge
}

// Subset builds a DFA from an NFA via subset construction, assuming
// the NFA has already been epsilon-closed (CloseOverEpsilonTransitions)
// so transitions are symbol-only. Destination-state-sets sharing the
// same subset collapse into a single DFA edge whose mask is the union
// of symbols leading there, the per-destination symbol-mask grouping
// spec.md §4.7 describes.
func Subset(n *NFA) *DFA {
	key := func(states []int) string {
		ss := append([]int(nil), states...)
		sort.Ints(ss)
		var b strings.Builder
		for i, s := range ss {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(s))
		}
		return b.String()
	}

	startSet := dedupInts(append([]int(nil), n.Start...))
	sort.Ints(startSet)

	stateOf := map[string]int{}
	var subsets [][]int
	add := func(states []int) int {
		k := key(states)
		if id, ok := stateOf[k]; ok {
			return id
		}
		id := len(subsets)
		stateOf[k] = id
		subsets = append(subsets, states)
		return id
	}
	startID := add(startSet)

	d := &DFA{Symbols: n.Symbols}
	var queue []int
	queue = append(queue, startID)
	seen := map[int]bool{startID: true}

	var edgesByState [][]Edge
	var acceptByState []bool

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		states := subsets[id]

		accepting := false
		for _, s := range states {
			if n.Accept[s] {
				accepting = true
				break
			}
		}
		destBySymbol := make([]string, n.Symbols)
		targetSets := map[string][]int{}
		for sym := 0; sym < n.Symbols; sym++ {
			var union []int
			for _, s := range states {
				union = append(union, n.Transitions[s][sym]...)
			}
			union = dedupInts(union)
			if len(union) == 0 {
				continue
			}
			k := key(union)
			destBySymbol[sym] = k
			targetSets[k] = union
		}

		grouped := map[string]bitset.Set{}
		for sym, k := range destBySymbol {
			if k == "" {
				continue
			}
			grouped[k] = grouped[k].With(sym)
		}

		var edges []Edge
		for k, mask := range grouped {
			target := targetSets[k]
			tid := add(target)
			edges = append(edges, Edge{Dest: tid, Mask: mask})
			if !seen[tid] {
				seen[tid] = true
				queue = append(queue, tid)
			}
		}
		sort.Slice(edges, func(i, j int) bool { return edges[i].Dest < edges[j].Dest })

		for len(edgesByState) <= id {
			edgesByState = append(edgesByState, nil)
			acceptByState = append(acceptByState, false)
		}
		edgesByState[id] = edges
		acceptByState[id] = accepting
	}

	d.States = len(subsets)
	d.Start = startID
	d.Trans = edgesByState
	d.Accept = acceptByState
	return d
}

// Minimize applies Moore's algorithm: states are partitioned by
// accepting status, then iteratively refined by each state's
// per-symbol destination-partition signature until stable; states
// within a final partition are merged.
func (d *DFA) Minimize() *DFA {
	partition := make([]int, d.States)
	for s, ok := range d.Accept {
		if ok {
			partition[s] = 1
		}
	}

	signature := func(s int, partition []int) string {
		destPartition := make([]int, d.Symbols)
		for i := range destPartition {
			destPartition[i] = -1
		}
		for _, e := range d.Trans[s] {
			bitset.Each(e.Mask, func(sym int) {
				destPartition[sym] = partition[e.Dest]
			})
		}
		var b strings.Builder
		b.WriteString(strconv.Itoa(partition[s]))
		for _, p := range destPartition {
			b.WriteByte('|')
			b.WriteString(strconv.Itoa(p))
		}
		return b.String()
	}

	for {
		sigToPartition := map[string]int{}
		newPartition := make([]int, d.States)
		for s := 0; s < d.States; s++ {
			sig := signature(s, partition)
			id, ok := sigToPartition[sig]
			if !ok {
				id = len(sigToPartition)
				sigToPartition[sig] = id
			}
			newPartition[s] = id
		}
		same := true
		for s := range partition {
			if partition[s] != newPartition[s] {
				same = false
				break
			}
		}
		partition = newPartition
		if same {
			break
		}
	}

	classCount := 0
	for _, p := range partition {
		if p+1 > classCount {
			classCount = p + 1
		}
	}
	repOf := make([]int, classCount)
	for i := range repOf {
		repOf[i] = -1
	}
	for s, p := range partition {
		if repOf[p] == -1 {
			repOf[p] = s
		}
	}

	out := &DFA{
		States:  classCount,
		Symbols: d.Symbols,
		Start:   partition[d.Start],
		Accept:  make([]bool, classCount),
		Trans:   make([][]Edge, classCount),
	}
	for p := 0; p < classCount; p++ {
		rep := repOf[p]
		out.Accept[p] = d.Accept[rep]
		merged := map[int]bitset.Set{}
		for _, e := range d.Trans[rep] {
			tp := partition[e.Dest]
			merged[tp] |= e.Mask
		}
		var edges []Edge
		for tp, mask := range merged {
			edges = append(edges, Edge{Dest: tp, Mask: mask})
		}
		sort.Slice(edges, func(i, j int) bool { return edges[i].Dest < edges[j].Dest })
		out.Trans[p] = edges
	}
	return out
}

// Compile runs the standard regex -> NFA -> (dead-state trim) -> DFA ->
// minimize pipeline.
func Compile(pattern string, values int) (*DFA, error) {
	n, err := CompileRegex(pattern, values)
	if err != nil {
		return nil, err
	}
	n.RemoveDeadStates(0)
	return Subset(n).Minimize(), nil
}

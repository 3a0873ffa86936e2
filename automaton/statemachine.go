// Copyright ©2024 The gridlogic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package automaton

import (
	"encoding/json"
	"fmt"
)

const defaultMaxStates = 4096

// StateMachine is a user-supplied automaton description: an arbitrary
// Go value identifies a state, Transition advances it on a 0-based
// grid value, and Accept reports whether a state is accepting. States
// are deduplicated by their canonical JSON encoding, matching spec.md
// §4.7's "canonical JSON serialisation" identity rule.
type StateMachine struct {
	Start      []interface{}
	Transition func(state interface{}, value int) []interface{}
	Accept     func(state interface{}) bool
	MaxDepth   int // 0 means unbounded (still capped by the absolute state limit)
}

// Build explores the state machine by breadth-first search up to
// MaxDepth (if set) and returns the resulting NFA. It returns an error
// if more than defaultMaxStates distinct states are discovered.
func (m *StateMachine) Build(values int) (*NFA, error) {
	type queued struct {
		state interface{}
		depth int
	}

	n := New(0, values)
	idOf := map[string]int{}
	stateOf := map[int]interface{}{}

	canon := func(s interface{}) (string, error) {
		b, err := json.Marshal(s)
		if err != nil {
			return "", fmt.Errorf("automaton: state not JSON-serialisable: %w", err)
		}
		return string(b), nil
	}

	var queue []queued
	for _, s := range m.Start {
		key, err := canon(s)
		if err != nil {
			return nil, err
		}
		if _, ok := idOf[key]; ok {
			continue
		}
		id := n.AddState()
		idOf[key] = id
		stateOf[id] = s
		n.Start = append(n.Start, id)
		queue = append(queue, queued{s, 0})
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		key, err := canon(cur.state)
		if err != nil {
			return nil, err
		}
		id := idOf[key]
		n.Accept[id] = m.Accept(cur.state)

		if m.MaxDepth > 0 && cur.depth >= m.MaxDepth {
			continue
		}
		for v := 0; v < values; v++ {
			nexts := m.Transition(cur.state, v)
			for _, next := range nexts {
				if next == nil {
					continue
				}
				nk, err := canon(next)
				if err != nil {
					return nil, err
				}
				nid, ok := idOf[nk]
				if !ok {
					if len(idOf) >= defaultMaxStates {
						return nil, fmt.Errorf("automaton: state machine exceeds %d states", defaultMaxStates)
					}
					nid = n.AddState()
					idOf[nk] = nid
					stateOf[nid] = next
					queue = append(queue, queued{next, cur.depth + 1})
				}
				n.AddTransition(id, v, nid)
			}
		}
	}
	return n, nil
}

// Copyright ©2024 The gridlogic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package automaton

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestStateMachineBuildRunningSum builds a tiny automaton tracking the
// running sum of digits mod 3, accepting when the sum is 0 mod 3.
func TestStateMachineBuildRunningSum(t *testing.T) {
	m := &StateMachine{
		Start: []interface{}{0.0},
		Transition: func(state interface{}, value int) []interface{} {
			s := int(state.(float64))
			return []interface{}{float64((s + value + 1) % 3)}
		},
		Accept: func(state interface{}) bool {
			return int(state.(float64)) == 0
		},
		MaxDepth: 6,
	}

	n, err := m.Build(9)
	require.NoError(t, err)
	require.Equal(t, 3, n.States)

	n.CloseOverEpsilonTransitions()
	d := Subset(n).Minimize()

	require.True(t, accepts(t, d, 9, "3")) // value 3 -> 0-based 2 -> (0+2+1)%3 == 0
	require.False(t, accepts(t, d, 9, "1"))
}

// Copyright ©2024 The gridlogic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package candidate

import (
	"testing"

	"github.com/loopfield/gridlogic/bitset"
	"github.com/loopfield/gridlogic/grid"
	"github.com/loopfield/gridlogic/lookup"
	"github.com/stretchr/testify/require"
)

func TestSelectSingletonShortCircuits(t *testing.T) {
	lt := lookup.For(4)
	s := New(4, nil, lt)
	g := grid.New(4, 4)
	g[0] = bitset.FromValues([]int{2}) // already fixed to value 3
	triggers := make([]int32, 4)

	res := s.Select(0, g, triggers, -1, 0, nil, true)
	require.Equal(t, 3, res.Value)
	require.Equal(t, 1, res.Count)
	require.Equal(t, []int{0}, res.CellsTaken)
}

func TestSelectForcedCellOverridesScoring(t *testing.T) {
	lt := lookup.For(4)
	s := New(4, nil, lt)
	g := grid.New(4, 4)
	triggers := make([]int32, 4)

	res := s.Select(0, g, triggers, 2, 3, nil, true)
	require.Equal(t, 3, res.Value)
	require.Equal(t, 1, res.Count)
	require.Equal(t, 2, s.order[0])
}

func TestScoreScanPrefersHighestTriggerPerPopcount(t *testing.T) {
	lt := lookup.For(4)
	s := New(4, nil, lt)
	g := grid.New(4, 4)
	// cell 1 has a small domain and a low trigger; cell 2 has the same
	// domain size but a much higher trigger, so it should win.
	g[1] = bitset.FromValues([]int{0, 1})
	g[2] = bitset.FromValues([]int{0, 1})
	triggers := []int32{0, 1, 10, 0}

	idx, _, count := s.scoreScan(0, g, triggers)
	require.Equal(t, 2, s.order[idx])
	require.Equal(t, 2, count)
}

func TestScoreScanFallsBackToMinimumPopcountWhenTriggersZero(t *testing.T) {
	lt := lookup.For(4)
	s := New(4, nil, lt)
	g := grid.New(4, 4)
	g[0] = bitset.FromValues([]int{0, 1, 2})
	g[1] = bitset.FromValues([]int{0, 1})
	triggers := make([]int32, 4)

	idx, _, count := s.scoreScan(0, g, triggers)
	require.Equal(t, 1, s.order[idx])
	require.Equal(t, 2, count)
}

func TestSelectGuideOverridesCellAndValue(t *testing.T) {
	lt := lookup.For(4)
	s := New(4, nil, lt)
	g := grid.New(4, 4)
	triggers := make([]int32, 4)

	guide := &Guide{Cell: 3, Value: 2}
	res := s.Select(0, g, triggers, -1, 0, guide, true)
	require.Equal(t, 2, res.Value)
	require.Equal(t, 3, s.order[0])
}

func TestResetRestoresIdentityOrder(t *testing.T) {
	lt := lookup.For(4)
	s := New(4, nil, lt)
	s.order[0], s.order[3] = s.order[3], s.order[0]
	s.Reset()
	for i, c := range s.order {
		require.Equal(t, i, c)
	}
}

func TestOrderRespectsUpto(t *testing.T) {
	lt := lookup.For(4)
	s := New(4, nil, lt)
	require.Equal(t, []int{0, 1}, s.Order(2))
	require.Equal(t, []int{0, 1, 2, 3}, s.Order(-1))
	require.Equal(t, []int{0, 1, 2, 3}, s.Order(99))
}

func TestSelectAfterSingletonCollectsAllFixedCells(t *testing.T) {
	lt := lookup.For(4)
	s := New(4, nil, lt)
	g := grid.New(4, 4)
	g[0] = bitset.FromValues([]int{1})
	g[1] = bitset.FromValues([]int{2})
	triggers := make([]int32, 4)

	res := s.Select(0, g, triggers, -1, 0, nil, true)
	require.Equal(t, 1, res.Count)
	require.Len(t, res.CellsTaken, 2)
	require.Contains(t, res.CellsTaken, 0)
	require.Contains(t, res.CellsTaken, 1)
}

func TestHouseBivalueFindsPairWhenTriggerExceedsThreshold(t *testing.T) {
	lt := lookup.For(4)
	house := []int{0, 1, 2, 3}
	s := New(4, [][]int{house}, lt)
	g := grid.New(4, 4)
	// value 1 appears in exactly cells {0,1}; everything else is already
	// fixed so they don't interfere.
	g[0] = bitset.FromValues([]int{0, 1})
	g[1] = bitset.FromValues([]int{0, 2})
	g[2] = bitset.FromValues([]int{2})
	g[3] = bitset.FromValues([]int{3})
	triggers := []int32{5, 5, 0, 0}

	cellA, cellB, value, _, ok := s.houseBivalue(0, g, triggers, 0.1)
	require.True(t, ok)
	require.ElementsMatch(t, []int{0, 1}, []int{cellA, cellB})
	require.Equal(t, 1, value)
}

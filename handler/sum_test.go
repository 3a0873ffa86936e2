// Copyright ©2024 The gridlogic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package handler

import (
	"testing"

	"github.com/loopfield/gridlogic/bitset"
	"github.com/loopfield/gridlogic/grid"
	"github.com/stretchr/testify/require"
)

func TestSumInitializeRejectsOutOfBoundTotal(t *testing.T) {
	shp := testShape(4)

	tooLow := NewSum([]int{0, 1}, 1, 0, true) // min possible is 1+2=3
	ok, err := tooLow.Initialize(grid.New(2, 4), nil, shp)
	require.NoError(t, err)
	require.False(t, ok)

	tooHigh := NewSum([]int{0, 1}, 100, 0, true) // max possible is 3+4=7
	ok, err = tooHigh.Initialize(grid.New(2, 4), nil, shp)
	require.NoError(t, err)
	require.False(t, ok)

	inRange := NewSum([]int{0, 1}, 3, 0, true)
	ok, err = inRange.Initialize(grid.New(2, 4), nil, shp)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSumEnforceConsistencyPrunesToReachableTotals(t *testing.T) {
	h := NewSum([]int{0, 1}, 3, 0, true)
	shp := testShape(4)
	_, err := h.Initialize(grid.New(2, 4), nil, shp)
	require.NoError(t, err)

	g := grid.New(2, 4)
	acc := &fakeAcc{}
	ok, err := h.EnforceConsistency(g, acc)
	require.NoError(t, err)
	require.True(t, ok)
	// Only {1,2} sums to 3 across two distinct cells.
	require.Equal(t, bitset.FromValues([]int{0, 1}), g[0])
	require.Equal(t, bitset.FromValues([]int{0, 1}), g[1])
	require.Contains(t, acc.pushed, 0)
	require.Contains(t, acc.pushed, 1)
}

func TestSumEnforceConsistencyAllFixedMatchingTotal(t *testing.T) {
	h := NewSum([]int{0, 1}, 3, 0, true)
	shp := testShape(4)
	_, err := h.Initialize(grid.New(2, 4), nil, shp)
	require.NoError(t, err)

	g := grid.Grid{bitset.FromValues([]int{0}), bitset.FromValues([]int{1})} // 1 + 2 = 3
	acc := &fakeAcc{}
	ok, err := h.EnforceConsistency(g, acc)
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, acc.pushed)
}

func TestSumEnforceConsistencyAllFixedMismatchedTotal(t *testing.T) {
	h := NewSum([]int{0, 1}, 3, 0, true)
	shp := testShape(4)
	_, err := h.Initialize(grid.New(2, 4), nil, shp)
	require.NoError(t, err)

	g := grid.Grid{bitset.FromValues([]int{2}), bitset.FromValues([]int{3})} // 3 + 4 = 7
	acc := &fakeAcc{}
	ok, err := h.EnforceConsistency(g, acc)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSumWithNegativeTightensPositiveCellBound(t *testing.T) {
	h := NewSumWithNegative([]int{0}, []int{1}, 0, 0, true)
	shp := testShape(4)
	_, err := h.Initialize(grid.New(2, 4), nil, shp)
	require.NoError(t, err)

	g := grid.New(2, 4)
	g[1] = bitset.FromValues([]int{2, 3}) // arrowhead restricted to {3,4}

	acc := &fakeAcc{}
	ok, err := h.EnforceConsistency(g, acc)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, bitset.FromValues([]int{2, 3}), g[0])
	require.Contains(t, acc.pushed, 0)
}

func TestSumWithNegativeDetectsContradiction(t *testing.T) {
	h := NewSumWithNegative([]int{0}, []int{1}, 10, 0, true) // unreachable offset for 1..4
	shp := testShape(4)
	_, err := h.Initialize(grid.New(2, 4), nil, shp)
	require.NoError(t, err)

	g := grid.New(2, 4)
	acc := &fakeAcc{}
	ok, err := h.EnforceConsistency(g, acc)
	require.NoError(t, err)
	require.False(t, ok)
}

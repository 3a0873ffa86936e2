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

func TestRequiredValuesInitializeRejectsTooFewCells(t *testing.T) {
	h := NewRequiredValues([]int{0, 1}, bitset.FromValues([]int{0, 1, 2}), false, 0, true)
	shp := testShape(4)
	ok, err := h.Initialize(grid.New(2, 4), nil, shp)
	require.NoError(t, err)
	require.False(t, ok) // 3 required values can't fit into 2 cells
}

func TestRequiredValuesStrictInitializeMasksDomains(t *testing.T) {
	h := NewRequiredValues([]int{0, 1}, bitset.FromValues([]int{0, 1}), true, 0, true)
	shp := testShape(4)
	g := grid.New(2, 4)
	ok, err := h.Initialize(g, nil, shp)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, bitset.FromValues([]int{0, 1}), g[0])
	require.Equal(t, bitset.FromValues([]int{0, 1}), g[1])
}

func TestRequiredValuesEnforceConsistencyStrictPrunesAndDetectsContradiction(t *testing.T) {
	h := NewRequiredValues([]int{0, 1}, bitset.FromValues([]int{0, 1}), true, 0, true)
	shp := testShape(4)
	_, err := h.Initialize(grid.New(2, 4), nil, shp)
	require.NoError(t, err)

	g := grid.Grid{bitset.FromValues([]int{0, 2}), bitset.FromValues([]int{2})} // cell 1 has no allowed value
	acc := &fakeAcc{}
	ok, err := h.EnforceConsistency(g, acc)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRequiredValuesEnforceConsistencyMatchesDistinctCells(t *testing.T) {
	h := NewRequiredValues([]int{0, 1, 2}, bitset.FromValues([]int{0, 1}), false, 0, true)
	shp := testShape(4)
	_, err := h.Initialize(grid.New(3, 4), nil, shp)
	require.NoError(t, err)

	// Value 1 only fits cell 0, value 2 only fits cell 1: a valid
	// system of distinct representatives exists.
	g := grid.Grid{
		bitset.FromValues([]int{0, 2}),
		bitset.FromValues([]int{1, 2}),
		bitset.FromValues([]int{2, 3}),
	}
	acc := &fakeAcc{}
	ok, err := h.EnforceConsistency(g, acc)
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, acc.pushed) // non-strict: no domain mutation, only feasibility
}

func TestRequiredValuesEnforceConsistencyDetectsNoMatching(t *testing.T) {
	h := NewRequiredValues([]int{0, 1}, bitset.FromValues([]int{0, 1}), false, 0, true)
	shp := testShape(4)
	_, err := h.Initialize(grid.New(2, 4), nil, shp)
	require.NoError(t, err)

	// Both required values can only go in cell 0: no distinct
	// representative for value 2.
	g := grid.Grid{bitset.FromValues([]int{0, 1}), bitset.FromValues([]int{2, 3})}
	acc := &fakeAcc{}
	ok, err := h.EnforceConsistency(g, acc)
	require.NoError(t, err)
	require.False(t, ok)
}

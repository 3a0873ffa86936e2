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

func TestAllDifferentInitializeDetectsHouse(t *testing.T) {
	h := NewAllDifferent([]int{0, 1, 2, 3}, 0, true)
	shp := testShape(4)
	ok, err := h.Initialize(grid.New(4, 4), nil, shp)
	require.NoError(t, err)
	require.True(t, ok)

	cells, isHouse := h.HouseCells()
	require.True(t, isHouse)
	require.Equal(t, []int{0, 1, 2, 3}, cells)
}

func TestAllDifferentInitializeNonHouse(t *testing.T) {
	h := NewAllDifferent([]int{0, 1}, 0, true)
	shp := testShape(4)
	_, err := h.Initialize(grid.New(4, 4), nil, shp)
	require.NoError(t, err)
	_, isHouse := h.HouseCells()
	require.False(t, isHouse)
}

func TestAllDifferentHiddenSingleForcesOwner(t *testing.T) {
	h := NewAllDifferent([]int{0, 1, 2, 3}, 0, true)
	shp := testShape(4)
	_, err := h.Initialize(grid.New(4, 4), nil, shp)
	require.NoError(t, err)

	g := grid.New(4, 4)
	// Value 1 (bit 0) only appears in cell 0's domain.
	g[0] = bitset.FromValues([]int{0, 1})
	g[1] = bitset.FromValues([]int{1, 2})
	g[2] = bitset.FromValues([]int{1, 2})
	g[3] = bitset.FromValues([]int{1, 2, 3})

	acc := &fakeAcc{}
	ok, err := h.EnforceConsistency(g, acc)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, g[0].IsSingleton())
	require.Equal(t, 0, bitset.LowestSet(g[0]))
	require.Contains(t, acc.pushed, 0)
}

func TestAllDifferentReginAcceptsAnyCompletableAssignment(t *testing.T) {
	h := NewAllDifferent([]int{0, 1, 2, 3}, 0, true)
	shp := testShape(4)
	_, err := h.Initialize(grid.New(4, 4), nil, shp)
	require.NoError(t, err)

	g := grid.New(4, 4)
	// Every cell can take either of two values and no two cells share
	// the same pair, so no edge is excluded from every maximum matching.
	g[0] = bitset.FromValues([]int{0, 1})
	g[1] = bitset.FromValues([]int{1, 2})
	g[2] = bitset.FromValues([]int{2, 3})
	g[3] = bitset.FromValues([]int{3, 0})
	before := g.Clone()

	acc := &fakeAcc{}
	ok, err := h.EnforceConsistency(g, acc)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, g.Equal(before))
}

// TestAllDifferentReginPrunesValuesUnreachableByAnyMaximumMatching checks
// that an edge absent from every maximum matching - not just the one
// Kuhn's algorithm happens to find - is removed. Cells 0 and 1 between
// them exhaust values 1 and 2, so cell 2 can never take either: doing
// so would strand whichever of cells 0/1 is left without a value. That
// in turn pins cell 2 to value 3, which strips value 3 from cell 3 too,
// leaving cell 3 pinned to value 4.
func TestAllDifferentReginPrunesValuesUnreachableByAnyMaximumMatching(t *testing.T) {
	h := NewAllDifferent([]int{0, 1, 2, 3}, 0, true)
	shp := testShape(4)
	_, err := h.Initialize(grid.New(4, 4), nil, shp)
	require.NoError(t, err)

	g := grid.New(4, 4)
	g[0] = bitset.FromValues([]int{0, 1})
	g[1] = bitset.FromValues([]int{0, 1})
	g[2] = bitset.FromValues([]int{0, 1, 2})
	g[3] = bitset.Full(4)

	acc := &fakeAcc{}
	ok, err := h.EnforceConsistency(g, acc)
	require.NoError(t, err)
	require.True(t, ok)

	require.Equal(t, bitset.FromValues([]int{0, 1}), g[0])
	require.Equal(t, bitset.FromValues([]int{0, 1}), g[1])
	require.True(t, g[2].IsSingleton())
	require.Equal(t, 2, bitset.LowestSet(g[2]))
	require.True(t, g[3].IsSingleton())
	require.Equal(t, 3, bitset.LowestSet(g[3]))
	require.Contains(t, acc.pushed, 2)
	require.Contains(t, acc.pushed, 3)
}

func TestAllDifferentReginDetectsContradiction(t *testing.T) {
	h := NewAllDifferent([]int{0, 1, 2}, 0, true)
	shp := testShape(4)
	_, err := h.Initialize(grid.New(4, 4), nil, shp)
	require.NoError(t, err)

	g := grid.New(4, 4)
	g[0] = bitset.FromValues([]int{0})
	g[1] = bitset.FromValues([]int{0})
	g[2] = bitset.FromValues([]int{0})

	acc := &fakeAcc{}
	ok, err := h.EnforceConsistency(g, acc)
	require.NoError(t, err)
	require.False(t, ok)
}

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

func TestBetweenPrunesInteriorToStrictlyBetweenEndpoints(t *testing.T) {
	h := NewBetween([]int{0, 1, 2, 3}, 0, true)
	shp := testShape(4)
	_, err := h.Initialize(grid.New(4, 4), nil, shp)
	require.NoError(t, err)

	g := grid.Grid{
		bitset.FromValues([]int{0}), // endpoint = value 1
		bitset.Full(4),
		bitset.Full(4),
		bitset.FromValues([]int{3}), // endpoint = value 4
	}
	acc := &fakeAcc{}
	ok, err := h.EnforceConsistency(g, acc)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, bitset.FromValues([]int{1, 2}), g[1]) // values 2,3 only
	require.Equal(t, bitset.FromValues([]int{1, 2}), g[2])
	require.ElementsMatch(t, []int{1, 2}, acc.pushed)
}

func TestLockoutDetectsContradictionWhenGapCannotReachMinDiff(t *testing.T) {
	h := NewLockout([]int{0, 1, 2, 3}, 3, 0, true)
	shp := testShape(4)
	_, err := h.Initialize(grid.New(4, 4), nil, shp)
	require.NoError(t, err)

	g := grid.Grid{
		bitset.FromValues([]int{1, 2}), // values 2,3
		bitset.Full(4),
		bitset.Full(4),
		bitset.FromValues([]int{1, 2}), // values 2,3
	}
	acc := &fakeAcc{}
	ok, err := h.EnforceConsistency(g, acc)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLockoutPrunesInteriorWhenGapIsSatisfiable(t *testing.T) {
	h := NewLockout([]int{0, 1, 2, 3}, 3, 0, true)
	shp := testShape(4)
	_, err := h.Initialize(grid.New(4, 4), nil, shp)
	require.NoError(t, err)

	g := grid.Grid{
		bitset.FromValues([]int{0}), // value 1
		bitset.Full(4),
		bitset.Full(4),
		bitset.FromValues([]int{3}), // value 4
	}
	acc := &fakeAcc{}
	ok, err := h.EnforceConsistency(g, acc)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, bitset.FromValues([]int{1, 2}), g[1])
	require.Equal(t, bitset.FromValues([]int{1, 2}), g[2])
}

func TestZipperMirrorsAroundFixedCentre(t *testing.T) {
	h := NewZipper([]int{0, 1, 2, 3, 4}, 0, true)
	shp := testShape(9)
	_, err := h.Initialize(grid.New(5, 9), nil, shp)
	require.NoError(t, err)

	g := grid.New(5, 9)
	g[2] = bitset.FromValues([]int{4}) // centre fixed to value 5, target sum = 10
	g[4] = bitset.FromValues([]int{8}) // only value 9 left, forcing its mirror to value 1

	acc := &fakeAcc{}
	ok, err := h.EnforceConsistency(g, acc)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, g[0].IsSingleton())
	require.Equal(t, 0, bitset.LowestSet(g[0])) // value 1
	require.Contains(t, acc.pushed, 0)
}

func TestZipperDetectsContradictionWhenNoPartnerSums(t *testing.T) {
	h := NewZipper([]int{0, 1, 2, 3, 4}, 0, true)
	shp := testShape(9)
	_, err := h.Initialize(grid.New(5, 9), nil, shp)
	require.NoError(t, err)

	g := grid.New(5, 9)
	g[2] = bitset.FromValues([]int{4}) // centre fixed to value 5, target sum = 10
	g[0] = bitset.FromValues([]int{0}) // value 1
	g[4] = bitset.FromValues([]int{0}) // value 1: no partner sums to 10 with value 1 fixed on both sides

	acc := &fakeAcc{}
	ok, err := h.EnforceConsistency(g, acc)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSkyscraperAcceptsMatchingVisibleCount(t *testing.T) {
	h := NewSkyscraper([]int{0, 1, 2, 3}, 2, 0, true)
	shp := testShape(4)
	_, err := h.Initialize(grid.New(4, 4), nil, shp)
	require.NoError(t, err)

	// Heights 2,4,1,3: 2 and 4 are visible looking inward, 1 and 3 are not.
	g := grid.Grid{
		bitset.FromValues([]int{1}),
		bitset.FromValues([]int{3}),
		bitset.FromValues([]int{0}),
		bitset.FromValues([]int{2}),
	}
	acc := &fakeAcc{}
	ok, err := h.EnforceConsistency(g, acc)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSkyscraperRejectsMismatchedVisibleCount(t *testing.T) {
	h := NewSkyscraper([]int{0, 1, 2, 3}, 3, 0, true)
	shp := testShape(4)
	_, err := h.Initialize(grid.New(4, 4), nil, shp)
	require.NoError(t, err)

	g := grid.Grid{
		bitset.FromValues([]int{1}),
		bitset.FromValues([]int{3}),
		bitset.FromValues([]int{0}),
		bitset.FromValues([]int{2}),
	}
	acc := &fakeAcc{}
	ok, err := h.EnforceConsistency(g, acc)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSkyscraperDefersWhileAnyCellUnfixed(t *testing.T) {
	h := NewSkyscraper([]int{0, 1, 2, 3}, 2, 0, true)
	shp := testShape(4)
	_, err := h.Initialize(grid.New(4, 4), nil, shp)
	require.NoError(t, err)

	g := grid.New(4, 4)
	acc := &fakeAcc{}
	ok, err := h.EnforceConsistency(g, acc)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestHiddenSkyscraperAcceptsMatchingVisibleCount(t *testing.T) {
	h := NewHiddenSkyscraper([]int{0, 1, 2, 3}, 1, 0, true)
	shp := testShape(4)
	_, err := h.Initialize(grid.New(4, 4), nil, shp)
	require.NoError(t, err)

	// Heights 2,4,1,3: tallest (4) is at position 1, and only it is
	// visible looking inward from there to the end.
	g := grid.Grid{
		bitset.FromValues([]int{1}),
		bitset.FromValues([]int{3}),
		bitset.FromValues([]int{0}),
		bitset.FromValues([]int{2}),
	}
	acc := &fakeAcc{}
	ok, err := h.EnforceConsistency(g, acc)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestHiddenSkyscraperRejectsMismatchedVisibleCount(t *testing.T) {
	h := NewHiddenSkyscraper([]int{0, 1, 2, 3}, 2, 0, true)
	shp := testShape(4)
	_, err := h.Initialize(grid.New(4, 4), nil, shp)
	require.NoError(t, err)

	g := grid.Grid{
		bitset.FromValues([]int{1}),
		bitset.FromValues([]int{3}),
		bitset.FromValues([]int{0}),
		bitset.FromValues([]int{2}),
	}
	acc := &fakeAcc{}
	ok, err := h.EnforceConsistency(g, acc)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestNumberedRoomNarrowsControlAndPrunesLine(t *testing.T) {
	h := NewNumberedRoom([]int{0, 1, 2}, 3, 0, true)
	shp := testShape(4)
	_, err := h.Initialize(grid.New(3, 4), nil, shp)
	require.NoError(t, err)

	g := grid.Grid{
		bitset.FromValues([]int{0, 1, 2}), // control candidates k=0,1,2
		bitset.FromValues([]int{0, 1, 3}), // can't hold value 3
		bitset.Full(4),
	}
	acc := &fakeAcc{}
	ok, err := h.EnforceConsistency(g, acc)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, bitset.FromValues([]int{0, 2}), g[0]) // k=1 ruled out
	require.Contains(t, acc.pushed, 0)
}

func TestXSumPrunesUnreachableCounts(t *testing.T) {
	h := NewXSum([]int{0, 1, 2, 3}, 6, 0, true)
	shp := testShape(4)
	_, err := h.Initialize(grid.New(4, 4), nil, shp)
	require.NoError(t, err)

	g := grid.Grid{
		bitset.Full(4),
		bitset.FromValues([]int{0, 1}), // values 1,2
		bitset.FromValues([]int{2, 3}), // values 3,4
		bitset.Full(4),
	}
	acc := &fakeAcc{}
	ok, err := h.EnforceConsistency(g, acc)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, bitset.FromValues([]int{1, 2, 3}), g[0]) // N=1 (sum can't reach 6) ruled out
	require.Contains(t, acc.pushed, 0)
}

func TestXSumDetectsContradictionWhenClueIsUnreachable(t *testing.T) {
	h := NewXSum([]int{0, 1, 2, 3}, 100, 0, true)
	shp := testShape(4)
	_, err := h.Initialize(grid.New(4, 4), nil, shp)
	require.NoError(t, err)

	g := grid.New(4, 4)
	acc := &fakeAcc{}
	ok, err := h.EnforceConsistency(g, acc)
	require.NoError(t, err)
	require.False(t, ok)
}

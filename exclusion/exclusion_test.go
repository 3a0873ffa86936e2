// Copyright ©2024 The gridlogic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package exclusion

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewBuildsMutualExclusions(t *testing.T) {
	idx := New(5, [][]int{{0, 1, 2}})
	require.True(t, idx.IsMutuallyExclusive(0, 1))
	require.True(t, idx.IsMutuallyExclusive(1, 2))
	require.False(t, idx.IsMutuallyExclusive(0, 3))
	require.False(t, idx.IsMutuallyExclusive(2, 2))
}

func TestGetArraySorted(t *testing.T) {
	idx := New(5, [][]int{{2, 0, 1}})
	require.Equal(t, []int{1, 2}, idx.GetArray(0))
	require.Equal(t, []int{0, 2}, idx.GetArray(1))
}

func TestCacheCellTuplesIntersectsExclusions(t *testing.T) {
	idx := New(6, [][]int{{0, 1, 2}, {1, 2, 3}})
	// 1's exclusions: {0,2,3}; 2's exclusions: {0,1,3}. Intersection: {0,3}.
	require.Equal(t, []int{0, 3}, idx.CacheCellTuples(1, 2))
	// order shouldn't matter
	require.Equal(t, []int{0, 3}, idx.CacheCellTuples(2, 1))
}

func TestCacheCellListIntersectsAcrossGroup(t *testing.T) {
	idx := New(6, [][]int{{0, 1, 2, 3}})
	got := idx.CacheCellList([]int{1, 2, 3})
	require.Equal(t, []int{0}, got)
}

func TestCacheCellListEmptyInput(t *testing.T) {
	idx := New(3, nil)
	require.Nil(t, idx.CacheCellList(nil))
}

func TestValidateRejectsOutOfRangeCell(t *testing.T) {
	require.NoError(t, Validate(9, [][]int{{0, 1, 8}}))
	require.Error(t, Validate(9, [][]int{{0, 9}}))
	require.Error(t, Validate(9, [][]int{{-1, 0}}))
}

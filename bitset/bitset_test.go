// Copyright ©2024 The gridlogic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bitset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPopcount(t *testing.T) {
	require.Equal(t, 0, Popcount(Empty))
	require.Equal(t, 3, Popcount(FromValues([]int{0, 2, 4})))
}

func TestLowestHighestSet(t *testing.T) {
	require.Equal(t, -1, LowestSet(Empty))
	require.Equal(t, -1, HighestSet(Empty))

	s := FromValues([]int{1, 3, 5})
	require.Equal(t, 1, LowestSet(s))
	require.Equal(t, 5, HighestSet(s))
}

func TestHasWithWithout(t *testing.T) {
	var s Set
	s = s.With(2)
	require.True(t, s.Has(2))
	require.False(t, s.Has(3))

	s = s.Without(2)
	require.False(t, s.Has(2))
	require.True(t, s.IsEmpty())
}

func TestIsSingleton(t *testing.T) {
	require.False(t, Empty.IsSingleton())
	require.True(t, FromValues([]int{4}).IsSingleton())
	require.False(t, FromValues([]int{4, 5}).IsSingleton())
}

func TestRange(t *testing.T) {
	require.Equal(t, Empty, Range(3, 3))
	require.Equal(t, Empty, Range(5, 2))

	r := Range(2, 5)
	require.Equal(t, FromValues([]int{2, 3, 4}), r)
}

func TestFull(t *testing.T) {
	require.Equal(t, Empty, Full(0))
	require.Equal(t, FromValues([]int{0, 1, 2}), Full(3))
	require.Equal(t, 9, Popcount(Full(9)))
}

func TestEachVisitsLowestFirst(t *testing.T) {
	var seen []int
	Each(FromValues([]int{5, 1, 3}), func(i int) { seen = append(seen, i) })
	require.Equal(t, []int{1, 3, 5}, seen)
}

func TestValuesRoundTripsFromValues(t *testing.T) {
	idx := []int{0, 4, 8}
	require.Equal(t, idx, Values(FromValues(idx)))
}

func TestNextAfterClear(t *testing.T) {
	s := FromValues([]int{1, 3, 5})
	next := NextAfterClear(s)
	require.Equal(t, FromValues([]int{3, 5}), next)
}

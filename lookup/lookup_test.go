// Copyright ©2024 The gridlogic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lookup

import (
	"testing"

	"github.com/loopfield/gridlogic/bitset"
	"github.com/stretchr/testify/require"
)

func TestForMemoisesByValues(t *testing.T) {
	a := For(9)
	b := For(9)
	require.Same(t, a, b)

	c := For(6)
	require.NotSame(t, a, c)
	require.Equal(t, 6, c.Values)
}

func TestSumAndMinMax(t *testing.T) {
	tabs := For(9)
	m := int(bitset.FromValues([]int{0, 2, 4})) // values 1, 3, 5
	require.Equal(t, uint16(9), tabs.Sum[m])
	require.Equal(t, uint8(1), tabs.Min[m])
	require.Equal(t, uint8(5), tabs.Max[m])
}

func TestValueOnSingleton(t *testing.T) {
	tabs := For(9)
	m := int(bitset.FromValues([]int{3})) // value 4
	require.Equal(t, 4, tabs.Value(m))
}

func TestRangeInfoMarksEmpty(t *testing.T) {
	tabs := For(9)
	require.NotEqual(t, uint32(0), tabs.RangeInfo[0]&emptyRangeInfoBit)
}

func TestReverse(t *testing.T) {
	tabs := For(9)
	m := int(bitset.FromValues([]int{0})) // value 1
	rev := bitset.Set(tabs.Reverse[m])
	// values+1-v = 9+1-1 = 9, so bit index 8 should be set.
	require.True(t, rev.Has(8))
}

func TestBinaryTablesMemoisesByKey(t *testing.T) {
	lessThan := func(a, b int) bool { return a < b }
	f1, i1 := BinaryTables(9, "test:lt", lessThan)
	f2, i2 := BinaryTables(9, "test:lt", lessThan)
	require.Equal(t, f1, f2)
	require.Equal(t, i1, i2)
}

func TestBinaryTablesForwardMatchesRelation(t *testing.T) {
	lessThan := func(a, b int) bool { return a < b }
	fwd, inv := BinaryTables(5, "lookup_test:lt", lessThan)

	// singleton mask for value 3 (bit index 2)
	m := int(bitset.FromValues([]int{2}))
	// forward[m] should contain every v with 3 < v, i.e. {4, 5} -> bits {3,4}
	require.Equal(t, bitset.FromValues([]int{3, 4}), fwd[m])
	// inverse[m] should contain every v with v < 3, i.e. {1, 2} -> bits {0,1}
	require.Equal(t, bitset.FromValues([]int{0, 1}), inv[m])
}

func TestBinaryTablesCombinesOverUnionOfSingletons(t *testing.T) {
	lessThan := func(a, b int) bool { return a < b }
	fwd, _ := BinaryTables(5, "lookup_test:lt2", lessThan)

	m1 := int(bitset.FromValues([]int{0}))    // value 1
	m2 := int(bitset.FromValues([]int{1}))    // value 2
	union := int(bitset.FromValues([]int{0, 1}))

	require.Equal(t, fwd[m1]|fwd[m2], fwd[union])
}

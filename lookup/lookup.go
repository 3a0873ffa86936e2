// Copyright ©2024 The gridlogic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lookup precomputes bitmask -> scalar tables for a fixed
// value count, memoising them process-wide exactly as the teacher's
// biogo-backed readers memoise reference sequences: build once, reuse
// forever, never invalidate.
package lookup

import (
	"sync"

	"github.com/loopfield/gridlogic/bitset"
)

// Tables holds precomputed bitmask -> scalar lookups for one value
// count (1..16). All slices are indexed by bitmask, sized
// 1<<Values.
type Tables struct {
	Values int

	// Popcount[m] is the number of set bits in m.
	Popcount []uint8

	// Min[m] / Max[m] are the smallest/largest value (1-based) whose
	// bit is set in m; zero for an empty mask.
	Min []uint8
	Max []uint8

	// MinMax[m] packs (min<<16)|max so summing packed values over a
	// set of cells yields both the aggregate min and aggregate max in
	// one accumulator.
	MinMax []uint32

	// Sum[m] is the sum of the values whose bits are set in m.
	Sum []uint16

	// Reverse[m] maps every set value v to Values+1-v.
	Reverse []uint16

	// RangeInfo[m] packs min in bits 0-7, max in bits 8-15, an is-fixed
	// flag in bit 16 and the fixed value from bit 17 up, with bit 24
	// set instead when m is empty (0), so that
	// summing RangeInfo over a cell set and inspecting bit 24 detects
	// any empty domain in the group.
	RangeInfo []uint32
}

const emptyRangeInfoBit = 1 << 24

var (
	cacheMu sync.Mutex
	cache   = map[int]*Tables{}
)

// For returns the memoised Tables for the given value count, building
// them on first use. values must be in [1, 16].
func For(values int) *Tables {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if t, ok := cache[values]; ok {
		return t
	}
	t := build(values)
	cache[values] = t
	return t
}

func build(values int) *Tables {
	n := 1 << uint(values)
	t := &Tables{
		Values:    values,
		Popcount:  make([]uint8, n),
		Min:       make([]uint8, n),
		Max:       make([]uint8, n),
		MinMax:    make([]uint32, n),
		Sum:       make([]uint16, n),
		Reverse:   make([]uint16, n),
		RangeInfo: make([]uint32, n),
	}
	for m := 0; m < n; m++ {
		s := bitset.Set(m)
		pc := bitset.Popcount(s)
		t.Popcount[m] = uint8(pc)

		if s.IsEmpty() {
			t.RangeInfo[m] = emptyRangeInfoBit
			continue
		}

		lo := bitset.LowestSet(s) + 1
		hi := bitset.HighestSet(s) + 1
		t.Min[m] = uint8(lo)
		t.Max[m] = uint8(hi)
		t.MinMax[m] = uint32(lo)<<16 | uint32(hi)

		sum := 0
		var rev bitset.Set
		bitset.Each(s, func(i int) {
			v := i + 1
			sum += v
			rev = rev.With(values + 1 - v - 1)
		})
		t.Sum[m] = uint16(sum)
		t.Reverse[m] = uint16(rev)

		info := uint32(lo) | uint32(hi)<<8
		if pc == 1 {
			info |= 1 << 16
			info |= uint32(lo) << 17
		}
		t.RangeInfo[m] = info
	}
	return t
}

// Value returns the singleton value of m (1-based). The result is
// only meaningful when Popcount(m) == 1; callers must guard.
func (t *Tables) Value(m int) int {
	return int(t.Min[m])
}

// RelationFunc reports whether a is related to b, for a, b in
// [1, values].
type RelationFunc func(a, b int) bool

// binKey identifies a memoised binary relation table by the value
// count and a caller-chosen key (e.g. a base64 blob or a name), the
// way spec.md's "forBinaryKey" decodes a compact relation encoding.
type binKey struct {
	values int
	key    string
}

var (
	binMu    sync.Mutex
	binCache = map[binKey][2][]bitset.Set{}
)

// BinaryTables returns the forward and inverse propagation tables for
// a binary relation R over [1, values]^2, building them on first use
// for the given (values, key) pair and memoising the result
// process-wide (per spec.md §4.1's forBinaryKey).
//
// forward[m] = union over a in m of { v : R(a, v) }
// inverse[m] = union over a in m of { v : R(v, a) }
//
// Tables are populated by seeding singletons directly from rel, then
// combining via m's lowest-bit decomposition (T[m] = T[lowbit] |
// T[m &^ lowbit]), which is the "seed singletons, OR over m & (m-1)"
// strategy spec.md describes.
func BinaryTables(values int, key string, rel RelationFunc) (forward, inverse []bitset.Set) {
	binMu.Lock()
	defer binMu.Unlock()
	k := binKey{values, key}
	if tabs, ok := binCache[k]; ok {
		return tabs[0], tabs[1]
	}

	n := 1 << uint(values)
	fwd := make([]bitset.Set, n)
	inv := make([]bitset.Set, n)

	// Seed singletons.
	for v := 1; v <= values; v++ {
		m := 1 << uint(v-1)
		var f, g bitset.Set
		for u := 1; u <= values; u++ {
			if rel(v, u) {
				f = f.With(u - 1)
			}
			if rel(u, v) {
				g = g.With(u - 1)
			}
		}
		fwd[m] = f
		inv[m] = g
	}

	// Combine via lowest-bit decomposition.
	for m := 1; m < n; m++ {
		if bitset.Set(m).IsSingleton() {
			continue
		}
		lowBit := m & (-m)
		rest := m &^ lowBit
		fwd[m] = fwd[lowBit] | fwd[rest]
		inv[m] = inv[lowBit] | inv[rest]
	}

	binCache[k] = [2][]bitset.Set{fwd, inv}
	return fwd, inv
}

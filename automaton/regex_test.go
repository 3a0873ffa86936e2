// Copyright ©2024 The gridlogic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package automaton

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func accepts(t *testing.T, d *DFA, values int, digits string) bool {
	t.Helper()
	state := d.Start
	for _, c := range digits {
		v := int(c-'1')
		ok := false
		for _, e := range d.Trans[state] {
			if e.Mask.Has(v) {
				state = e.Dest
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return d.Accept[state]
}

func TestCompileRegexLiteralConcat(t *testing.T) {
	d, err := Compile("123", 9)
	require.NoError(t, err)
	require.True(t, accepts(t, d, 9, "123"))
	require.False(t, accepts(t, d, 9, "124"))
	require.False(t, accepts(t, d, 9, "12"))
}

func TestCompileRegexAlternation(t *testing.T) {
	d, err := Compile("1|2", 9)
	require.NoError(t, err)
	require.True(t, accepts(t, d, 9, "1"))
	require.True(t, accepts(t, d, 9, "2"))
	require.False(t, accepts(t, d, 9, "3"))
}

func TestCompileRegexStar(t *testing.T) {
	d, err := Compile("1*2", 9)
	require.NoError(t, err)
	require.True(t, accepts(t, d, 9, "2"))
	require.True(t, accepts(t, d, 9, "12"))
	require.True(t, accepts(t, d, 9, "1112"))
	require.False(t, accepts(t, d, 9, "1"))
}

func TestCompileRegexPlus(t *testing.T) {
	d, err := Compile("1+2", 9)
	require.NoError(t, err)
	require.False(t, accepts(t, d, 9, "2"))
	require.True(t, accepts(t, d, 9, "12"))
	require.True(t, accepts(t, d, 9, "112"))
}

func TestCompileRegexOptional(t *testing.T) {
	d, err := Compile("1?2", 9)
	require.NoError(t, err)
	require.True(t, accepts(t, d, 9, "2"))
	require.True(t, accepts(t, d, 9, "12"))
	require.False(t, accepts(t, d, 9, "112"))
}

func TestCompileRegexDot(t *testing.T) {
	d, err := Compile("1.3", 9)
	require.NoError(t, err)
	require.True(t, accepts(t, d, 9, "123"))
	require.True(t, accepts(t, d, 9, "153"))
	require.False(t, accepts(t, d, 9, "12"))
}

func TestCompileRegexClass(t *testing.T) {
	d, err := Compile("[1-3]9", 9)
	require.NoError(t, err)
	require.True(t, accepts(t, d, 9, "19"))
	require.True(t, accepts(t, d, 9, "39"))
	require.False(t, accepts(t, d, 9, "49"))
}

func TestCompileRegexNegatedClass(t *testing.T) {
	d, err := Compile("[^12]", 9)
	require.NoError(t, err)
	require.True(t, accepts(t, d, 9, "3"))
	require.False(t, accepts(t, d, 9, "1"))
	require.False(t, accepts(t, d, 9, "2"))
}

func TestCompileRegexBraceExact(t *testing.T) {
	d, err := Compile("1{3}", 9)
	require.NoError(t, err)
	require.True(t, accepts(t, d, 9, "111"))
	require.False(t, accepts(t, d, 9, "11"))
	require.False(t, accepts(t, d, 9, "1111"))
}

func TestCompileRegexBraceRange(t *testing.T) {
	d, err := Compile("1{2,3}", 9)
	require.NoError(t, err)
	require.False(t, accepts(t, d, 9, "1"))
	require.True(t, accepts(t, d, 9, "11"))
	require.True(t, accepts(t, d, 9, "111"))
	require.False(t, accepts(t, d, 9, "1111"))
}

func TestCompileRegexBraceUnbounded(t *testing.T) {
	d, err := Compile("1{2,}", 9)
	require.NoError(t, err)
	require.False(t, accepts(t, d, 9, "1"))
	require.True(t, accepts(t, d, 9, "11"))
	require.True(t, accepts(t, d, 9, "11111"))
}

func TestCompileRegexGroup(t *testing.T) {
	d, err := Compile("(12)+", 9)
	require.NoError(t, err)
	require.True(t, accepts(t, d, 9, "12"))
	require.True(t, accepts(t, d, 9, "1212"))
	require.False(t, accepts(t, d, 9, "1"))
	require.False(t, accepts(t, d, 9, "121"))
}

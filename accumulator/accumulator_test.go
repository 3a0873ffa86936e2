// Copyright ©2024 The gridlogic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package accumulator

import (
	"testing"

	"github.com/loopfield/gridlogic/exclusion"
	"github.com/loopfield/gridlogic/grid"
	"github.com/loopfield/gridlogic/handler"
	"github.com/loopfield/gridlogic/shape"
	"github.com/stretchr/testify/require"
)

// stubHandler is a minimal handler.Handler for queue-ordering tests;
// it never actually propagates anything.
type stubHandler struct {
	cells     []int
	essential bool
}

func (s *stubHandler) Cells() []int          { return s.cells }
func (s *stubHandler) ExclusionCells() []int { return nil }
func (s *stubHandler) Priority() int         { return 0 }
func (s *stubHandler) Essential() bool       { return s.essential }
func (s *stubHandler) Initialize(grid.Grid, *exclusion.Index, shape.Shape) (bool, error) {
	return true, nil
}
func (s *stubHandler) EnforceConsistency(grid.Grid, handler.Accumulator) (bool, error) {
	return true, nil
}

func TestAccumulatorEnqueuesExclusionHandlerForFixedCell(t *testing.T) {
	excl := exclusion.New(3, nil)
	hs := []handler.Handler{handler.NewUniqueValueExclusion(0, excl)}
	isAux := func(int) bool { return false }
	exclusionOf := []int{0, -1, -1}

	a := New(hs, isAux, exclusionOf, 3)
	a.Reset(false)

	a.AddForFixedCell(0)
	hi, ok := a.TakeNext()
	require.True(t, ok)
	require.Equal(t, 0, hi)

	_, ok = a.TakeNext()
	require.False(t, ok)
}

func TestAddForCellSkipsActiveHandler(t *testing.T) {
	hs := []handler.Handler{&stubHandler{cells: []int{0, 1}, essential: true}}
	isAux := func(int) bool { return false }
	a := New(hs, isAux, []int{-1, -1}, 2)
	a.Reset(false)

	a.AddForCell(0)
	hi, ok := a.TakeNext()
	require.True(t, ok)
	require.Equal(t, 0, hi)

	// handler 0 is now "active"; re-adding for its own cell should not
	// requeue it.
	a.AddForCell(1)
	_, ok = a.TakeNext()
	require.False(t, ok)
}

func TestResetSwitchesToEssentialOnly(t *testing.T) {
	essential := &stubHandler{cells: []int{0}, essential: true}
	nonEssential := &stubHandler{cells: []int{0}, essential: false}
	hs := []handler.Handler{essential, nonEssential}
	isAux := func(int) bool { return false }
	a := New(hs, isAux, []int{-1}, 1)
	a.Reset(true)

	a.AddForFixedCell(0)
	hi, ok := a.TakeNext()
	require.True(t, ok)
	require.Equal(t, 0, hi) // only the essential handler queued

	_, ok = a.TakeNext()
	require.False(t, ok)
}

func TestQueueIsFIFO(t *testing.T) {
	hs := []handler.Handler{
		&stubHandler{cells: []int{0}, essential: true},
		&stubHandler{cells: []int{1}, essential: true},
	}
	isAux := func(int) bool { return false }
	a := New(hs, isAux, []int{-1, -1}, 2)
	a.Reset(false)

	a.AddForCell(0)
	a.AddForCell(1)

	hi, ok := a.TakeNext()
	require.True(t, ok)
	require.Equal(t, 0, hi)

	hi, ok = a.TakeNext()
	require.True(t, ok)
	require.Equal(t, 1, hi)
}

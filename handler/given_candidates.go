// Copyright ©2024 The gridlogic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package handler

import (
	"github.com/loopfield/gridlogic/bitset"
	"github.com/loopfield/gridlogic/exclusion"
	"github.com/loopfield/gridlogic/grid"
	"github.com/loopfield/gridlogic/shape"
)

// GivenCandidates ANDs each cell's domain with a fixed candidate
// mask, the way a puzzle's pencilmark givens restrict a cell before
// search begins.
type GivenCandidates struct {
	base
	cells []int
	masks map[int]bitset.Set
}

func NewGivenCandidates(masks map[int]bitset.Set, priority int, essential bool) *GivenCandidates {
	cells := make([]int, 0, len(masks))
	for c := range masks {
		cells = append(cells, c)
	}
	return &GivenCandidates{base: base{priority: priority, essential: essential}, cells: cells, masks: masks}
}

func (h *GivenCandidates) Name() Name { return "GivenCandidates" }

func (h *GivenCandidates) Cells() []int { return h.cells }

func (h *GivenCandidates) ExclusionCells() []int { return nil }

func (h *GivenCandidates) Initialize(initialGrid grid.Grid, excl *exclusion.Index, shp shape.Shape) (bool, error) {
	for c, mask := range h.masks {
		initialGrid[c] &= mask
		if initialGrid[c].IsEmpty() {
			return false, nil
		}
	}
	return true, nil
}

func (h *GivenCandidates) EnforceConsistency(g grid.Grid, acc Accumulator) (bool, error) {
	for c, mask := range h.masks {
		d := g[c]
		nd := d & mask
		if nd.IsEmpty() {
			return false, nil
		}
		if nd != d {
			g[c] = nd
			acc.AddForCell(c)
		}
	}
	return true, nil
}

// False is an immediate, unconditional contradiction, used to encode
// a cage/arrow shape that is unsatisfiable purely from its geometry
// (e.g. more cells than distinct values allow).
type False struct {
	base
}

func NewFalse() *False { return &False{base: base{priority: 0, essential: true}} }

func (h *False) Name() Name { return "False" }

func (h *False) Cells() []int { return nil }

func (h *False) ExclusionCells() []int { return nil }

func (h *False) Initialize(initialGrid grid.Grid, excl *exclusion.Index, shp shape.Shape) (bool, error) {
	return false, nil
}

func (h *False) EnforceConsistency(g grid.Grid, acc Accumulator) (bool, error) {
	return false, nil
}

// Jigsaw and NoBoxes are structural markers: they never run during
// propagation (Cells() is empty) and exist only so the compiler can
// type-switch on them at setup time to decide whether to emit
// jigsaw-region or box AllDifferent handlers.
type Jigsaw struct {
	base
	Regions [][]int
}

func NewJigsaw(regions [][]int) *Jigsaw { return &Jigsaw{Regions: regions} }

func (h *Jigsaw) Name() Name { return "Jigsaw" }

func (h *Jigsaw) Cells() []int { return nil }

func (h *Jigsaw) ExclusionCells() []int { return nil }

func (h *Jigsaw) Initialize(initialGrid grid.Grid, excl *exclusion.Index, shp shape.Shape) (bool, error) {
	return true, nil
}

func (h *Jigsaw) EnforceConsistency(g grid.Grid, acc Accumulator) (bool, error) { return true, nil }

type NoBoxes struct {
	base
}

func NewNoBoxes() *NoBoxes { return &NoBoxes{} }

func (h *NoBoxes) Name() Name { return "NoBoxes" }

func (h *NoBoxes) Cells() []int { return nil }

func (h *NoBoxes) ExclusionCells() []int { return nil }

func (h *NoBoxes) Initialize(initialGrid grid.Grid, excl *exclusion.Index, shp shape.Shape) (bool, error) {
	return true, nil
}

func (h *NoBoxes) EnforceConsistency(g grid.Grid, acc Accumulator) (bool, error) { return true, nil }

// Priority overrides cell priorities (and therefore initial
// backtrack-trigger values) for named cells, bypassing the
// sum-of-handler-priorities default.
type Priority struct {
	base
	overrides map[int]int
}

func NewPriority(overrides map[int]int) *Priority { return &Priority{overrides: overrides} }

func (h *Priority) Name() Name { return "Priority" }

func (h *Priority) Cells() []int { return nil }

func (h *Priority) ExclusionCells() []int { return nil }

func (h *Priority) Initialize(initialGrid grid.Grid, excl *exclusion.Index, shp shape.Shape) (bool, error) {
	return true, nil
}

func (h *Priority) EnforceConsistency(g grid.Grid, acc Accumulator) (bool, error) { return true, nil }

// Overrides implements engine.PriorityOverride.
func (h *Priority) Overrides() map[int]int { return h.overrides }

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

// LocalEntropy requires the four cells of a 2x2 region to cover all
// three "entropy groups" (the value range split into low/mid/high
// thirds): at least one of the four cells must be able to hold a
// low value, one a mid value, one a high value. Checked via a
// Hall-style bipartite matching between the three groups and the
// four cells, the same technique RequiredValues uses.
type LocalEntropy struct {
	base
	cells  []int
	groups [3]bitset.Set
}

func NewLocalEntropy(cells []int, priority int, essential bool) *LocalEntropy {
	return &LocalEntropy{base: base{priority: priority, essential: essential}, cells: append([]int(nil), cells...)}
}

func (h *LocalEntropy) Name() Name { return "LocalEntropy" }

func (h *LocalEntropy) Cells() []int { return h.cells }

func (h *LocalEntropy) ExclusionCells() []int { return nil }

func (h *LocalEntropy) Initialize(initialGrid grid.Grid, excl *exclusion.Index, shp shape.Shape) (bool, error) {
	// Classic 1..9 -> {1,2,3}/{4,5,6}/{7,8,9}, generalised by thirds
	// for other value counts (any remainder falls into the high
	// group).
	third := shp.Values / 3
	b1, b2 := third, 2*third
	h.groups[0] = bitset.Range(0, b1)
	h.groups[1] = bitset.Range(b1, b2)
	h.groups[2] = bitset.Range(b2, shp.Values)
	return true, nil
}

func (h *LocalEntropy) EnforceConsistency(g grid.Grid, acc Accumulator) (bool, error) {
	matchCell := make([]int, len(h.cells))
	for i := range matchCell {
		matchCell[i] = -1
	}

	var tryAugment func(group int, visited []bool) bool
	tryAugment = func(group int, visited []bool) bool {
		for i, c := range h.cells {
			if g[c]&h.groups[group] == 0 || visited[i] {
				continue
			}
			visited[i] = true
			if matchCell[i] == -1 || tryAugment(matchCell[i], visited) {
				matchCell[i] = group
				return true
			}
		}
		return false
	}

	for group := 0; group < 3; group++ {
		visited := make([]bool, len(h.cells))
		if !tryAugment(group, visited) {
			return false, nil
		}
	}
	return true, nil
}

// Copyright ©2024 The gridlogic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package handler defines the constraint-handler contract (spec.md
// §4.2) and the family of concrete handlers that implement it:
// AllDifferent/House, Sum and its variants, line constraints,
// required-values, binary constraints, and the structural markers
// consumed only at setup time.
//
// Handlers are plain values owned exclusively by the solver that
// holds them; they never retain references to each other and never
// block, matching spec.md §5's single-threaded, non-suspending
// propagation model.
package handler

import (
	"github.com/loopfield/gridlogic/exclusion"
	"github.com/loopfield/gridlogic/grid"
	"github.com/loopfield/gridlogic/shape"
)

// Accumulator is the worklist a handler schedules other handlers onto
// when it tightens a domain. Implemented by package accumulator; kept
// as an interface here (rather than imported directly) so that
// handler has no dependency on the scheduling package.
type Accumulator interface {
	// AddForCell enqueues the ordinary handlers registered against
	// cell, skipping whichever handler is currently executing.
	AddForCell(cell int)
}

// Handler is the common contract every constraint implements.
type Handler interface {
	// Cells returns the cells this handler constrains. May be empty
	// for purely structural handlers (Jigsaw, NoBoxes, Priority).
	Cells() []int

	// ExclusionCells returns the subset of Cells() that must
	// pairwise differ under this handler.
	ExclusionCells() []int

	// Priority is a non-negative weight seeding cell-priority scores
	// and, through them, the initial backtrack-trigger values.
	Priority() int

	// Essential reports whether this handler must re-run even when
	// the accumulator is skipping non-essential handlers (all cells
	// fixed).
	Essential() bool

	// Initialize performs one-shot setup, possibly tightening
	// initialGrid to apply unconditional restrictions. It returns
	// false if the constraint can never be satisfied.
	Initialize(initialGrid grid.Grid, excl *exclusion.Index, shp shape.Shape) (bool, error)

	// EnforceConsistency prunes domains of Cells() (and only those
	// cells) to restore consistency, returning false on
	// contradiction. On tightening a cell's domain it should call
	// acc.AddForCell for every affected cell.
	EnforceConsistency(g grid.Grid, acc Accumulator) (bool, error)
}

// Name identifies a handler's concrete kind, used for deterministic
// ordering (spec.md §4.5: handlers sorted by (len(cells), name,
// joined cells)) and for diagnostics.
type Name string

// Named is implemented by every concrete handler so the solver can
// order and describe them without a type switch.
type Named interface {
	Name() Name
}

// base centralises the priority/essential bookkeeping most handlers
// share, the way the teacher's cmd/* tools share small embedded
// "flag bag" structs rather than repeating fields.
type base struct {
	priority  int
	essential bool
}

func (b base) Priority() int  { return b.priority }
func (b base) Essential() bool { return b.essential }

// Copyright ©2024 The gridlogic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package accumulator implements the handler worklist: a
// fixed-capacity singly-linked FIFO over handler indices, scheduling
// handlers to (re-)run during propagation (spec.md §4.3).
package accumulator

import "github.com/loopfield/gridlogic/handler"

const (
	notQueued = -2
	tailMark  = -1
)

// Accumulator schedules constraint handlers for re-execution. The
// queue is a singly-linked list threaded through the next array:
// notQueued (-2) means the handler is idle, tailMark (-1) means it is
// the current tail, anything else is the index of the next queued
// handler. This gives O(1) enqueue/dequeue with O(1) membership
// checks, at the cost of only ever holding one pending occurrence of
// a handler at a time (exactly what spec.md §4.3 asks for).
type Accumulator struct {
	handlers []handler.Handler

	// ordinaryAll[cell] / ordinaryEssential[cell] are the handlers to
	// re-run when cell's domain shrinks without becoming fixed;
	// ordinaryEssential is the subset with Essential() == true.
	ordinaryAll       [][]int
	ordinaryEssential [][]int

	// auxHandlers[cell] run only when cell becomes fixed.
	auxHandlers [][]int

	// exclusionHandlers[cell] is the index of the single
	// UniqueValueExclusion handler for that cell, or -1.
	exclusionHandlers []int

	next []int32
	head int
	tail int

	skipNonEssential bool
	ordinary         [][]int // points at ordinaryAll or ordinaryEssential depending on mode

	active int // index of the handler currently being run, or -1
}

// New builds an Accumulator over the given handlers. isAux reports,
// for each handler index, whether that handler should be treated as
// "aux" (run only on fixing) rather than "ordinary" (run on any
// shrink); exclusionOf maps a cell to the index of its
// UniqueValueExclusion handler, or -1 if none.
func New(handlers []handler.Handler, isAux func(handlerIdx int) bool, exclusionOf []int, numCells int) *Accumulator {
	a := &Accumulator{
		handlers:          handlers,
		ordinaryAll:       make([][]int, numCells),
		ordinaryEssential: make([][]int, numCells),
		auxHandlers:       make([][]int, numCells),
		exclusionHandlers: exclusionOf,
		next:              make([]int32, len(handlers)),
		active:            -1,
	}
	for i := range a.next {
		a.next[i] = notQueued
	}
	for hi, h := range handlers {
		aux := isAux(hi)
		for _, c := range h.Cells() {
			if aux {
				a.auxHandlers[c] = append(a.auxHandlers[c], hi)
				continue
			}
			a.ordinaryAll[c] = append(a.ordinaryAll[c], hi)
			if h.Essential() {
				a.ordinaryEssential[c] = append(a.ordinaryEssential[c], hi)
			}
		}
	}
	a.ordinary = a.ordinaryAll
	return a
}

// Reset clears the queue and selects the ordinary lookup to use:
// every ordinary handler normally, or only essential ones when
// skipNonEssential is set (used once every cell is fixed).
func (a *Accumulator) Reset(skipNonEssential bool) {
	a.head = notQueued
	a.tail = notQueued
	for i := range a.next {
		a.next[i] = notQueued
	}
	a.skipNonEssential = skipNonEssential
	if skipNonEssential {
		a.ordinary = a.ordinaryEssential
	} else {
		a.ordinary = a.ordinaryAll
	}
	a.active = -1
}

func (a *Accumulator) push(hi int) {
	if hi < 0 || a.next[hi] != notQueued {
		return
	}
	if a.head == notQueued {
		a.head = hi
		a.tail = hi
		a.next[hi] = tailMark
		return
	}
	a.next[a.tail] = int32(hi)
	a.next[hi] = tailMark
	a.tail = hi
}

// pushFront pushes hi to the front of the queue, used for the
// exclusion handler so it runs before anything else discovered in
// this propagation pass.
func (a *Accumulator) pushFront(hi int) {
	if hi < 0 || a.next[hi] != notQueued {
		return
	}
	if a.head == notQueued {
		a.head = hi
		a.tail = hi
		a.next[hi] = tailMark
		return
	}
	a.next[hi] = int32(a.head)
	a.head = hi
}

// AddForFixedCell enqueues the exclusion handler (at the front) plus
// the aux and ordinary handlers registered for a newly fixed cell.
func (a *Accumulator) AddForFixedCell(cell int) {
	if a.exclusionHandlers != nil {
		if hi := a.exclusionHandlers[cell]; hi >= 0 {
			a.pushFront(hi)
		}
	}
	if !a.skipNonEssential {
		for _, hi := range a.auxHandlers[cell] {
			a.push(hi)
		}
	} else {
		for _, hi := range a.auxHandlers[cell] {
			if a.handlers[hi].Essential() {
				a.push(hi)
			}
		}
	}
	for _, hi := range a.ordinary[cell] {
		a.push(hi)
	}
}

// AddForCell enqueues the ordinary handlers registered for cell,
// except the handler currently being run (implements handler.Accumulator).
func (a *Accumulator) AddForCell(cell int) {
	for _, hi := range a.ordinary[cell] {
		if hi == a.active {
			continue
		}
		a.push(hi)
	}
}

// TakeNext pops the head of the queue, recording it as the active
// handler, and returns (handlerIndex, true), or (0, false) if empty.
func (a *Accumulator) TakeNext() (int, bool) {
	if a.head == notQueued {
		return 0, false
	}
	hi := a.head
	if a.head == a.tail {
		a.head = notQueued
		a.tail = notQueued
	} else {
		a.head = int(a.next[hi])
	}
	a.next[hi] = notQueued
	a.active = hi
	return hi, true
}

// IsEmpty reports whether the queue has no pending handlers.
func (a *Accumulator) IsEmpty() bool {
	return a.head == notQueued
}

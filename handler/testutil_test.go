// Copyright ©2024 The gridlogic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package handler

import "github.com/loopfield/gridlogic/shape"

// fakeAcc records which cells were pushed, standing in for the real
// accumulator in handler-level unit tests.
type fakeAcc struct {
	pushed []int
}

func (a *fakeAcc) AddForCell(cell int) { a.pushed = append(a.pushed, cell) }

func testShape(values int) shape.Shape {
	s, err := shape.New(values, values)
	if err != nil {
		panic(err)
	}
	return s
}

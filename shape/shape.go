// Copyright ©2024 The gridlogic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package shape describes the rectangular grid a puzzle is played on:
// its dimensions, cell indexing, default box tiling and cell-id
// formatting. Shape values are immutable once constructed and are
// cheap to pass by value, the way the teacher passes its small flag
// structs by value through its cmd/* pipelines.
package shape

import "fmt"

// Shape describes a rows x cols grid whose houses (rows, columns and
// default boxes) each contain exactly Values cells.
type Shape struct {
	Rows      int
	Cols      int
	Values    int
	BoxHeight int
	BoxWidth  int
}

// Cells is the total number of cells in the grid.
func (s Shape) Cells() int {
	return s.Rows * s.Cols
}

// MaxSum is the sum of all values 1..Values, the largest sum a full
// house can produce.
func (s Shape) MaxSum() int {
	return s.Values * (s.Values + 1) / 2
}

// New builds a Shape with the default box tiling for square grids and
// validates the invariants from spec.md §3: Values == max(Rows, Cols),
// BoxHeight*BoxWidth == Values, and BoxHeight divides Rows or Cols
// (BoxWidth is not checked against the other dimension).
func New(rows, cols int) (Shape, error) {
	values := rows
	if cols > values {
		values = cols
	}
	bh, bw, err := defaultBoxDims(values)
	if err != nil {
		return Shape{}, err
	}
	return NewWithBoxes(rows, cols, bh, bw)
}

// NewWithBoxes builds a Shape with an explicit box tiling, e.g. for
// 6x6 grids (2x3 boxes) or 4x4 grids (2x2 boxes).
func NewWithBoxes(rows, cols, boxHeight, boxWidth int) (Shape, error) {
	values := rows
	if cols > values {
		values = cols
	}
	if rows <= 0 || cols <= 0 {
		return Shape{}, fmt.Errorf("shape: rows and cols must be positive, got %d x %d", rows, cols)
	}
	if values > 16 {
		return Shape{}, fmt.Errorf("shape: values %d exceeds maximum of 16", values)
	}
	if boxHeight*boxWidth != values {
		return Shape{}, fmt.Errorf("shape: box %dx%d does not tile %d values", boxHeight, boxWidth, values)
	}
	if rows%boxHeight != 0 && cols%boxHeight != 0 {
		// Boxes must tile the grid in at least one orientation; classic
		// Sudoku tiles rows into rows/boxHeight bands.
		return Shape{}, fmt.Errorf("shape: box height %d does not tile rows=%d or cols=%d", boxHeight, rows, cols)
	}
	return Shape{Rows: rows, Cols: cols, Values: values, BoxHeight: boxHeight, BoxWidth: boxWidth}, nil
}

// defaultBoxDims picks a box tiling for square NxN grids, matching
// conventional Sudoku variants: 4->2x2, 6->2x3, 9->3x3, 16->4x4.
func defaultBoxDims(values int) (height, width int, err error) {
	switch values {
	case 1:
		return 1, 1, nil
	case 4:
		return 2, 2, nil
	case 6:
		return 2, 3, nil
	case 8:
		return 2, 4, nil
	case 9:
		return 3, 3, nil
	case 10:
		return 2, 5, nil
	case 12:
		return 3, 4, nil
	case 16:
		return 4, 4, nil
	}
	for h := 1; h*h <= values; h++ {
		if values%h == 0 {
			height, width = h, values/h
		}
	}
	if height == 0 {
		return 0, 0, fmt.Errorf("shape: no default box tiling for values=%d", values)
	}
	return height, width, nil
}

// Index returns the cell index of (row, col).
func (s Shape) Index(row, col int) int {
	return row*s.Cols + col
}

// RowCol returns the (row, col) of a cell index.
func (s Shape) RowCol(cell int) (row, col int) {
	return cell / s.Cols, cell % s.Cols
}

// Box returns the box index (row-major over the box grid) containing
// cell.
func (s Shape) Box(cell int) int {
	row, col := s.RowCol(cell)
	boxRow := row / s.BoxHeight
	boxCol := col / s.BoxWidth
	boxesPerRow := s.Cols / s.BoxWidth
	return boxRow*boxesPerRow + boxCol
}

// CellID formats a cell index as the conventional 1-indexed "RxCy"
// label used throughout the variant-Sudoku literature (and in
// spec.md's §8 worked examples).
func (s Shape) CellID(cell int) string {
	row, col := s.RowCol(cell)
	return fmt.Sprintf("R%dC%d", row+1, col+1)
}

// Row returns the cell indices of row r, in column order.
func (s Shape) Row(r int) []int {
	out := make([]int, s.Cols)
	for c := 0; c < s.Cols; c++ {
		out[c] = s.Index(r, c)
	}
	return out
}

// Col returns the cell indices of column c, in row order.
func (s Shape) Col(c int) []int {
	out := make([]int, s.Rows)
	for r := 0; r < s.Rows; r++ {
		out[r] = s.Index(r, c)
	}
	return out
}

// BoxCells returns the cell indices of box b, in row-major order.
func (s Shape) BoxCells(b int) []int {
	boxesPerRow := s.Cols / s.BoxWidth
	boxRow := b / boxesPerRow
	boxCol := b % boxesPerRow
	out := make([]int, 0, s.Values)
	for r := boxRow * s.BoxHeight; r < (boxRow+1)*s.BoxHeight; r++ {
		for c := boxCol * s.BoxWidth; c < (boxCol+1)*s.BoxWidth; c++ {
			out = append(out, s.Index(r, c))
		}
	}
	return out
}

// NumBoxRows and NumBoxCols report the box grid dimensions.
func (s Shape) NumBoxRows() int { return s.Rows / s.BoxHeight }
func (s Shape) NumBoxCols() int { return s.Cols / s.BoxWidth }

// NumBoxes reports the total number of default boxes.
func (s Shape) NumBoxes() int {
	return s.NumBoxRows() * s.NumBoxCols()
}

// Copyright ©2024 The gridlogic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/loopfield/gridlogic/bitset"
	"github.com/loopfield/gridlogic/compiler"
	"github.com/loopfield/gridlogic/handler"
	"github.com/loopfield/gridlogic/shape"
)

// puzzleFile is the on-disk JSON shape of a puzzle definition: a grid
// shape, a flat map of given cells, and the subset of the declarative
// constraint catalogue a command-line user is likely to reach for.
// Richer constraint kinds remain available to library callers via
// package compiler directly.
type puzzleFile struct {
	Rows      int    `json:"rows"`
	Cols      int    `json:"cols"`
	BoxHeight int    `json:"boxHeight,omitempty"`
	BoxWidth  int    `json:"boxWidth,omitempty"`
	NoBoxes   bool   `json:"noBoxes,omitempty"`
	Givens    map[string]int `json:"givens,omitempty"`

	Cages    []cageSpec    `json:"cages,omitempty"`
	Thermos  [][]int       `json:"thermos,omitempty"`
	Whispers []whisperSpec `json:"whispers,omitempty"`
	Renbans  [][]int       `json:"renbans,omitempty"`
	Palindromes [][]int    `json:"palindromes,omitempty"`
	Zippers  [][]int       `json:"zippers,omitempty"`
}

type cageSpec struct {
	Cells []int `json:"cells"`
	Sum   int   `json:"sum"`
}

type whisperSpec struct {
	Cells []int `json:"cells"`
	Diff  int   `json:"diff"`
}

// loadPuzzle reads and compiles a puzzle definition from path.
func loadPuzzle(path string) (shape.Shape, []handler.Handler, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return shape.Shape{}, nil, fmt.Errorf("gridlogic: read puzzle: %w", err)
	}

	var pf puzzleFile
	if err := json.Unmarshal(raw, &pf); err != nil {
		return shape.Shape{}, nil, fmt.Errorf("gridlogic: parse puzzle: %w", err)
	}

	var shp shape.Shape
	if pf.BoxHeight > 0 && pf.BoxWidth > 0 {
		shp, err = shape.NewWithBoxes(pf.Rows, pf.Cols, pf.BoxHeight, pf.BoxWidth)
	} else {
		shp, err = shape.New(pf.Rows, pf.Cols)
	}
	if err != nil {
		return shape.Shape{}, nil, fmt.Errorf("gridlogic: invalid shape: %w", err)
	}

	var constraints []compiler.Constraint
	for _, c := range pf.Cages {
		c := c
		constraints = append(constraints, compiler.Constraint{Cage: &compiler.Cage{Cells: c.Cells, Sum: c.Sum}})
	}
	for _, cells := range pf.Thermos {
		cells := cells
		constraints = append(constraints, compiler.Constraint{Thermo: &compiler.Thermo{Cells: cells}})
	}
	for _, w := range pf.Whispers {
		w := w
		constraints = append(constraints, compiler.Constraint{Whisper: &compiler.Whisper{Cells: w.Cells, Diff: w.Diff}})
	}
	for _, cells := range pf.Renbans {
		cells := cells
		constraints = append(constraints, compiler.Constraint{Renban: &compiler.Renban{Cells: cells}})
	}
	for _, cells := range pf.Palindromes {
		cells := cells
		constraints = append(constraints, compiler.Constraint{Palindrome: &compiler.Palindrome{Cells: cells}})
	}
	for _, cells := range pf.Zippers {
		cells := cells
		constraints = append(constraints, compiler.Constraint{Zipper: &compiler.Zipper{Cells: cells}})
	}

	hs, err := compiler.Compile(shp, constraints, compiler.Options{NoBoxes: pf.NoBoxes})
	if err != nil {
		return shape.Shape{}, nil, fmt.Errorf("gridlogic: compile constraints: %w", err)
	}

	if len(pf.Givens) > 0 {
		masks := make(map[int]bitset.Set, len(pf.Givens))
		for cellStr, value := range pf.Givens {
			cell, err := strconv.Atoi(cellStr)
			if err != nil {
				return shape.Shape{}, nil, fmt.Errorf("gridlogic: given key %q is not a cell index: %w", cellStr, err)
			}
			masks[cell] = bitset.Set(1 << uint(value-1))
		}
		hs = append(hs, handler.NewGivenCandidates(masks, 0, true))
	}

	return shp, hs, nil
}

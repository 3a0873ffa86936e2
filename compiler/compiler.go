// Copyright ©2024 The gridlogic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compiler translates a tree of declarative constraints (the
// puzzle-author-facing vocabulary: cages, thermometers, whispers,
// zippers, and the rest of the variant-Sudoku catalogue) into the
// ordered handler.Handler stream the engine actually runs (spec.md
// §4.8). It owns no solving logic of its own; every rule below just
// picks a handler constructor and feeds it cells.
package compiler

import (
	"fmt"

	"github.com/loopfield/gridlogic/bitset"
	"github.com/loopfield/gridlogic/handler"
	"github.com/loopfield/gridlogic/lookup"
	"github.com/loopfield/gridlogic/shape"
)

// Constraint is one node of the declarative constraint tree a puzzle
// author assembles. Exactly one of the typed fields should be set;
// Compile switches on whichever field is non-nil (checked in field
// order) rather than using reflection, matching spec.md's "tree of
// declarative constraints" framing without inventing an interface
// hierarchy per constraint kind.
type Constraint struct {
	Cage          *Cage
	Thermo        *Thermo
	Whisper       *Whisper
	Renban        *Renban
	Modular       *Modular
	Entropic      *Entropic
	Palindrome    *Palindrome
	Zipper        *Zipper
	StrictKropki  *StrictKropki
	StrictXV      *StrictXV
	Windoku       *Windoku
	DisjointSets  *DisjointSets
	GlobalEntropy *GlobalEntropy
	Given         *Given
}

// Cage is a killer-cage: cells must be pairwise distinct and sum to
// Sum.
type Cage struct {
	Cells []int
	Sum   int
}

// Thermo is a thermometer: cells must strictly increase from the bulb
// outward.
type Thermo struct {
	Cells []int
}

// Whisper is a German-whispers line: adjacent cells must differ by at
// least Diff.
type Whisper struct {
	Cells []int
	Diff  int
}

// Renban is a Renban line: cells must form a set of consecutive
// values, all distinct, in any order.
type Renban struct {
	Cells []int
}

// Modular is a modular line: every window of Mod consecutive cells
// must take pairwise-distinct residues mod Mod.
type Modular struct {
	Cells []int
	Mod   int
}

// Entropic is an entropic line: every window of 3 consecutive cells
// must draw one value from each of the low/mid/high third of the
// value range.
type Entropic struct {
	Cells []int
}

// Palindrome requires cell i and its mirror to hold equal values.
type Palindrome struct {
	Cells []int
}

// Zipper requires each mirrored pair (measured from both ends of
// Cells) to sum to the same total as every other pair, pivoting on
// the centre cell for odd lengths.
type Zipper struct {
	Cells []int
}

// StrictKropki marks every orthogonally adjacent pair of the grid as
// constrained (black/white dot or none); Compile adds a negative
// BinaryConstraint for every adjacent pair not already covered by one
// of the Dots.
type StrictKropki struct {
	Cells []int // not consulted by Compile; every adjacent pair of the grid is considered
	Dots  []KropkiDot
}

// KropkiDot is one already-placed black (White=false, ratio 2) or
// white (White=true, consecutive) dot between two adjacent cells.
type KropkiDot struct {
	A, B  int
	White bool
}

// StrictXV marks every orthogonally adjacent pair as constrained by
// an X (sum 10), a V (sum 5), or neither; Compile adds a negative
// BinaryConstraint - "does not sum to 5 or 10" - for every adjacent
// pair not already covered by an XV marker.
type StrictXV struct {
	Cells []int
	Marks []XVMark
}

// XVMark is one already-placed X or V marker between two adjacent
// cells.
type XVMark struct {
	A, B int
	Sum  int // 5 (V) or 10 (X)
}

// Windoku adds extra AllDifferent houses over the given regions (the
// four windoku boxes), on top of the default row/col/box houses.
type Windoku struct {
	Regions [][]int
}

// DisjointSets adds one AllDifferent handler per disjoint-set group
// (cell i of every default box, for each i), on top of the default
// row/col/box houses.
type DisjointSets struct {
	Regions [][]int
}

// GlobalEntropy requires every 2x2 square of the grid to contain one
// low, one mid and one high value (ties broken the same way as
// Entropic).
type GlobalEntropy struct{}

// Given fixes cell to value before search begins.
type Given struct {
	Cell  int
	Value int
}

// Options controls the always-appended default houses.
type Options struct {
	// NoBoxes suppresses the default per-box AllDifferent handlers
	// (spec.md §4.8's "unless NoBoxes").
	NoBoxes bool
	// Regions overrides the default rectangular box tiling with an
	// arbitrary (e.g. Jigsaw) partition of the grid into shp.Values
	// regions of shp.Values cells each. Nil uses shp's BoxHeight x
	// BoxWidth tiling.
	Regions [][]int
}

// Compile translates constraints (plus the always-present row/column/
// box houses) into an ordered handler.Handler stream. It never
// mutates shp or the input constraints.
func Compile(shp shape.Shape, constraints []Constraint, opts Options) ([]handler.Handler, error) {
	var out []handler.Handler

	for _, c := range constraints {
		hs, err := compileOne(shp, c)
		if err != nil {
			return nil, err
		}
		out = append(out, hs...)
	}

	out = append(out, compileDefaultHouses(shp, opts)...)
	return out, nil
}

func compileOne(shp shape.Shape, c Constraint) ([]handler.Handler, error) {
	switch {
	case c.Cage != nil:
		return compileCage(*c.Cage), nil
	case c.Thermo != nil:
		return compileThermo(*c.Thermo), nil
	case c.Whisper != nil:
		return compileWhisper(*c.Whisper), nil
	case c.Renban != nil:
		return compileRenban(*c.Renban), nil
	case c.Modular != nil:
		return compileModular(*c.Modular), nil
	case c.Entropic != nil:
		return compileEntropic(shp, *c.Entropic), nil
	case c.Palindrome != nil:
		return compilePalindrome(*c.Palindrome), nil
	case c.Zipper != nil:
		return compileZipper(*c.Zipper), nil
	case c.StrictKropki != nil:
		return compileStrictKropki(shp, *c.StrictKropki), nil
	case c.StrictXV != nil:
		return compileStrictXV(shp, *c.StrictXV), nil
	case c.Windoku != nil:
		return compileRegionHouses(c.Windoku.Regions), nil
	case c.DisjointSets != nil:
		return compileRegionHouses(c.DisjointSets.Regions), nil
	case c.GlobalEntropy != nil:
		return compileGlobalEntropy(shp), nil
	case c.Given != nil:
		mask := bitset.Set(1 << uint(c.Given.Value-1))
		return []handler.Handler{handler.NewGivenCandidates(map[int]bitset.Set{c.Given.Cell: mask}, 0, true)}, nil
	default:
		return nil, fmt.Errorf("compiler: empty constraint node")
	}
}

// compileCage lowers a killer cage to Sum + AllDifferent (spec.md
// §4.8).
func compileCage(c Cage) []handler.Handler {
	return []handler.Handler{
		handler.NewSum(c.Cells, c.Sum, 0, false),
		handler.NewAllDifferent(c.Cells, 0, false),
	}
}

// compileThermo lowers a thermometer to a chain of strictly-less
// BinaryConstraints between consecutive cells.
func compileThermo(c Thermo) []handler.Handler {
	out := make([]handler.Handler, 0, len(c.Cells)-1)
	for i := 0; i+1 < len(c.Cells); i++ {
		out = append(out, handler.NewBinaryConstraint(c.Cells[i], c.Cells[i+1], "thermo:lt", strictlyLess))
	}
	return out
}

func strictlyLess(a, b int) bool { return a < b }

// compileWhisper lowers a German-whispers line to a chain of
// |a-b|>=diff BinaryConstraints between consecutive cells.
func compileWhisper(c Whisper) []handler.Handler {
	rel := whisperRelation(c.Diff)
	key := fmt.Sprintf("whisper:%d", c.Diff)
	out := make([]handler.Handler, 0, len(c.Cells)-1)
	for i := 0; i+1 < len(c.Cells); i++ {
		out = append(out, handler.NewBinaryConstraint(c.Cells[i], c.Cells[i+1], key, rel))
	}
	return out
}

func whisperRelation(diff int) lookup.RelationFunc {
	return func(a, b int) bool {
		d := a - b
		if d < 0 {
			d = -d
		}
		return d >= diff
	}
}

// compileRenban lowers a Renban line to one BinaryPairwise over the
// "consecutive distinct range" relation, with hidden singles enabled
// (the group's values must exactly fill a run of len(cells)
// consecutive values, which behaves like a miniature house once the
// run is pinned down).
func compileRenban(c Renban) []handler.Handler {
	n := len(c.Cells)
	rel := renbanRelation(n)
	key := fmt.Sprintf("renban:%d", n)
	return []handler.Handler{handler.NewBinaryPairwise(c.Cells, key, rel, true, 0, false)}
}

func renbanRelation(n int) lookup.RelationFunc {
	return func(a, b int) bool {
		if a == b {
			return false
		}
		d := a - b
		if d < 0 {
			d = -d
		}
		return d < n
	}
}

// compileModular lowers a modular line to a sliding-window
// BinaryPairwise per window of mod consecutive cells, requiring
// distinct residues mod mod within each window.
func compileModular(c Modular) []handler.Handler {
	rel := modularRelation(c.Mod)
	key := fmt.Sprintf("modular:%d", c.Mod)
	var out []handler.Handler
	for i := 0; i+c.Mod <= len(c.Cells); i++ {
		window := append([]int(nil), c.Cells[i:i+c.Mod]...)
		out = append(out, handler.NewBinaryPairwise(window, key, rel, false, 0, false))
	}
	return out
}

func modularRelation(mod int) lookup.RelationFunc {
	return func(a, b int) bool {
		return ((a - 1) % mod) != ((b - 1) % mod)
	}
}

// compileEntropic lowers an entropic line to a sliding-window
// BinaryPairwise per window of 3 consecutive cells, requiring one
// value from each value-range third.
func compileEntropic(shp shape.Shape, c Entropic) []handler.Handler {
	rel := entropicRelation(shp.Values)
	key := fmt.Sprintf("entropic:%d", shp.Values)
	var out []handler.Handler
	for i := 0; i+3 <= len(c.Cells); i++ {
		window := append([]int(nil), c.Cells[i:i+3]...)
		out = append(out, handler.NewBinaryPairwise(window, key, rel, false, 0, false))
	}
	return out
}

func entropicRelation(values int) lookup.RelationFunc {
	third := (values + 2) / 3
	band := func(v int) int {
		b := (v - 1) / third
		if b > 2 {
			b = 2
		}
		return b
	}
	return func(a, b int) bool { return band(a) != band(b) }
}

// compilePalindrome lowers a palindrome line to equality
// BinaryConstraints across mirrored pairs.
func compilePalindrome(c Palindrome) []handler.Handler {
	n := len(c.Cells)
	var out []handler.Handler
	for i := 0; i < n/2; i++ {
		a, b := c.Cells[i], c.Cells[n-1-i]
		out = append(out, handler.NewBinaryConstraint(a, b, "palindrome:eq", equalRelation))
	}
	return out
}

func equalRelation(a, b int) bool { return a == b }

// compileZipper lowers a zipper line to a SumWithNegative handler per
// mirrored pair (pair sums must all equal each other): fixing the
// first pair's sum as an offset and constraining every other pair to
// match it via (pairSum - firstPairSum == 0), folded as positive =
// the pair, negative = the first pair. The centre cell of an
// odd-length zipper is left unconstrained by this loop, matching
// spec.md §4.8's "or centre-cell" carve-out (a lone centre cell
// trivially equals itself).
func compileZipper(c Zipper) []handler.Handler {
	n := len(c.Cells)
	if n < 2 {
		return nil
	}
	first := [2]int{c.Cells[0], c.Cells[n-1]}
	var out []handler.Handler
	for i := 1; i < n/2; i++ {
		a, b := c.Cells[i], c.Cells[n-1-i]
		out = append(out, handler.NewSumWithNegative([]int{a, b}, first[:], 0, 0, false))
	}
	return out
}

// adjacentPairs returns every orthogonally adjacent cell pair in shp,
// each oriented (lower index, higher index).
func adjacentPairs(shp shape.Shape) [][2]int {
	var out [][2]int
	for r := 0; r < shp.Rows; r++ {
		for c := 0; c < shp.Cols; c++ {
			cell := shp.Index(r, c)
			if c+1 < shp.Cols {
				out = append(out, [2]int{cell, shp.Index(r, c+1)})
			}
			if r+1 < shp.Rows {
				out = append(out, [2]int{cell, shp.Index(r+1, c)})
			}
		}
	}
	return out
}

// compileStrictKropki adds a negative BinaryConstraint - "not
// consecutive and not a 2:1 ratio" - for every adjacent pair not
// already covered by a placed dot (spec.md §4.8).
func compileStrictKropki(shp shape.Shape, c StrictKropki) []handler.Handler {
	covered := map[[2]int]bool{}
	for _, d := range c.Dots {
		covered[orderedPair(d.A, d.B)] = true
	}
	var out []handler.Handler
	for _, p := range adjacentPairs(shp) {
		if covered[p] {
			continue
		}
		out = append(out, handler.NewBinaryConstraint(p[0], p[1], "kropki:neg", notKropkiRelation))
	}
	return out
}

func notKropkiRelation(a, b int) bool {
	if a == b+1 || b == a+1 {
		return false
	}
	if a == 2*b || b == 2*a {
		return false
	}
	return true
}

// compileStrictXV adds a negative BinaryConstraint - "does not sum to
// 5 or 10" - for every adjacent pair not already covered by a placed
// XV marker.
func compileStrictXV(shp shape.Shape, c StrictXV) []handler.Handler {
	covered := map[[2]int]bool{}
	for _, m := range c.Marks {
		covered[orderedPair(m.A, m.B)] = true
	}
	var out []handler.Handler
	for _, p := range adjacentPairs(shp) {
		if covered[p] {
			continue
		}
		out = append(out, handler.NewBinaryConstraint(p[0], p[1], "xv:neg", notXVRelation))
	}
	return out
}

func notXVRelation(a, b int) bool {
	s := a + b
	return s != 5 && s != 10
}

func orderedPair(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// compileRegionHouses adds one AllDifferent handler per region,
// shared by Windoku and DisjointSets.
func compileRegionHouses(regions [][]int) []handler.Handler {
	out := make([]handler.Handler, 0, len(regions))
	for _, r := range regions {
		out = append(out, handler.NewAllDifferent(r, 0, false))
	}
	return out
}

// compileGlobalEntropy adds a LocalEntropy handler per 2x2 square of
// the grid.
func compileGlobalEntropy(shp shape.Shape) []handler.Handler {
	var out []handler.Handler
	for r := 0; r+1 < shp.Rows; r++ {
		for c := 0; c+1 < shp.Cols; c++ {
			cells := []int{
				shp.Index(r, c), shp.Index(r, c+1),
				shp.Index(r+1, c), shp.Index(r+1, c+1),
			}
			out = append(out, handler.NewLocalEntropy(cells, 0, false))
		}
	}
	return out
}

// compileDefaultHouses appends the always-present row, column and
// (unless NoBoxes) box AllDifferent handlers.
func compileDefaultHouses(shp shape.Shape, opts Options) []handler.Handler {
	var out []handler.Handler
	for r := 0; r < shp.Rows; r++ {
		out = append(out, handler.NewAllDifferent(shp.Row(r), 0, true))
	}
	for c := 0; c < shp.Cols; c++ {
		out = append(out, handler.NewAllDifferent(shp.Col(c), 0, true))
	}
	if opts.NoBoxes {
		return out
	}
	boxes := opts.Regions
	if boxes == nil {
		boxes = CompileBoxes(shp, nil)
	}
	for _, b := range boxes {
		out = append(out, handler.NewAllDifferent(b, 0, true))
	}
	return out
}

// CompileBoxes returns the region list used for the box houses: the
// shape's default BoxHeight x BoxWidth tiling, or regions verbatim
// when non-nil (an arbitrary Jigsaw partition). This generalises the
// classic fixed-3x3-box assumption to irregular regions the way the
// Jigsaw handler requires, and is shared between Compile's default
// path and any caller wiring a handler.Jigsaw marker directly.
func CompileBoxes(shp shape.Shape, regions [][]int) [][]int {
	if regions != nil {
		return regions
	}
	out := make([][]int, shp.NumBoxes())
	for b := range out {
		out[b] = shp.BoxCells(b)
	}
	return out
}

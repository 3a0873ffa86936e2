// Copyright ©2024 The gridlogic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/loopfield/gridlogic/bitset"
	"github.com/loopfield/gridlogic/shape"
	"github.com/loopfield/gridlogic/solver"
)

// outputFormat is a pflag.Value so `solve --format` rejects anything
// but its two known spellings at parse time, the way cobra/pflag's own
// flag types do for enums.
type outputFormat string

const (
	formatGrid outputFormat = "grid"
	formatJSON outputFormat = "json"
)

func (f *outputFormat) String() string { return string(*f) }

func (f *outputFormat) Set(s string) error {
	switch outputFormat(s) {
	case formatGrid, formatJSON:
		*f = outputFormat(s)
		return nil
	default:
		return fmt.Errorf("must be %q or %q", formatGrid, formatJSON)
	}
}

func (f *outputFormat) Type() string { return "format" }

var _ pflag.Value = (*outputFormat)(nil)

func newSolveCmd(log *zerolog.Logger) *cobra.Command {
	format := formatGrid
	cmd := &cobra.Command{
		Use:   "solve <puzzle.json>",
		Short: "print the first solution found",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shp, hs, err := loadPuzzle(args[0])
			if err != nil {
				return err
			}
			s, err := solver.New(shp, hs)
			if err != nil {
				return fmt.Errorf("gridlogic: build solver: %w", err)
			}
			attachProgress(s, log)

			g, ok := s.NthSolution(0)
			if !ok {
				fmt.Println("no solution")
				return nil
			}
			if format == formatJSON {
				return printGridJSON(shp, g.Values())
			}
			printGrid(shp, g.Values())
			return nil
		},
	}
	cmd.Flags().Var(&format, "format", `output format: "grid" or "json"`)
	return cmd
}

func printGridJSON(shp shape.Shape, values []int) error {
	rows := make([][]int, shp.Rows)
	for r := range rows {
		row := make([]int, shp.Cols)
		copy(row, values[shp.Index(r, 0):shp.Index(r, 0)+shp.Cols])
		rows[r] = row
	}
	out, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("gridlogic: encode solution: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func newCountCmd(log *zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "count <puzzle.json>",
		Short: "count every solution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shp, hs, err := loadPuzzle(args[0])
			if err != nil {
				return err
			}
			s, err := solver.New(shp, hs)
			if err != nil {
				return fmt.Errorf("gridlogic: build solver: %w", err)
			}
			attachProgress(s, log)

			fmt.Println(s.CountSolutions().String())
			return nil
		},
	}
}

func newValidateCmd(log *zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <puzzle.json>",
		Short: "report whether the row/column/box layout is satisfiable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shp, hs, err := loadPuzzle(args[0])
			if err != nil {
				return err
			}
			s, err := solver.New(shp, hs)
			if err != nil {
				return fmt.Errorf("gridlogic: build solver: %w", err)
			}
			attachProgress(s, log)

			if s.ValidateLayout() {
				fmt.Println("satisfiable")
			} else {
				fmt.Println("unsatisfiable")
			}
			return nil
		},
	}
}

func newPossibilitiesCmd(log *zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "possibilities <puzzle.json>",
		Short: "print the union of candidates across every solution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shp, hs, err := loadPuzzle(args[0])
			if err != nil {
				return err
			}
			s, err := solver.New(shp, hs)
			if err != nil {
				return fmt.Errorf("gridlogic: build solver: %w", err)
			}
			attachProgress(s, log)

			seen := s.SolveAllPossibilities()
			for c, d := range seen {
				fmt.Printf("%s: %v\n", shp.CellID(c), bitset.Values(d))
			}
			return nil
		},
	}
}

func attachProgress(s *solver.Solver, log *zerolog.Logger) {
	s.SetProgressCallback(func(st solver.State) {
		if !verbose && !st.Done {
			return
		}
		log.Info().
			Int64("nodes", st.Counters.NodesSearched).
			Int64("backtracks", st.Counters.Backtracks).
			Str("solutions", st.Counters.Solutions.String()).
			Int64("elapsedMs", st.ElapsedMS).
			Bool("done", st.Done).
			Msg("progress")
	}, logFrequency)
}

func printGrid(shp shape.Shape, values []int) {
	for r := 0; r < shp.Rows; r++ {
		for c := 0; c < shp.Cols; c++ {
			if c > 0 {
				fmt.Print(" ")
			}
			fmt.Print(values[shp.Index(r, c)])
		}
		fmt.Println()
	}
}

// Copyright ©2024 The gridlogic Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command gridlogic is a command-line front end over package solver:
// it loads a JSON puzzle definition and runs one of the façade
// operations (solve, count, validate, possibilities) against it,
// logging progress with zerolog the way the teacher's cmd/* tools log
// with the standard logger, just structured.
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	logFrequency uint
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	root := &cobra.Command{
		Use:           "gridlogic",
		Short:         "gridlogic solves and validates variant-Sudoku puzzles",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every progress notification, not just completion")
	root.PersistentFlags().UintVar(&logFrequency, "log-frequency", 20, "report progress every 1<<n nodes searched")

	root.AddCommand(newSolveCmd(&log))
	root.AddCommand(newCountCmd(&log))
	root.AddCommand(newValidateCmd(&log))
	root.AddCommand(newPossibilitiesCmd(&log))

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("gridlogic failed")
	}
}

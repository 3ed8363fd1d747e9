// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Habits - a personal habit tracker for the command line.
It records habit completions and reports current and longest streaks per habit.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bartekus/habits/cmd/habits/commands/stats"
	"github.com/bartekus/habits/cmd/habits/internal/app"
	"github.com/bartekus/habits/cmd/habits/internal/clierr"
)

// NewRootCmd constructs the habits root Cobra command.
func NewRootCmd() *cobra.Command {
	version := os.Getenv("HABITS_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}

	cmd := &cobra.Command{
		Use:           "habits",
		Short:         "Habits - track habits and streaks",
		Long:          "Habits records daily and weekly habit completions and reports streaks and statistics.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	pf := cmd.PersistentFlags()
	pf.String(app.FlagConfig, "", "config file (default .habits.yaml in the working or home directory)")
	pf.String(app.FlagDB, "", "data file path (overrides storage.path)")
	pf.String(app.FlagDriver, "", "storage driver: sqlite or json (overrides storage.driver)")
	pf.StringP(app.FlagOutput, "o", "", "output format: table or json (overrides output.format)")
	pf.Bool(app.FlagNoColor, false, "disable colored output")
	pf.BoolP(app.FlagVerbose, "v", false, "enable verbose output")

	cmd.SetFlagErrorFunc(clierr.FlagError)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of habits",
		Args:  clierr.Args(cobra.NoArgs),
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "habits version %s\n", version)
		},
	})

	cmd.AddCommand(NewCreateCommand())
	cmd.AddCommand(NewCompleteCommand())
	cmd.AddCommand(NewListCommand())
	cmd.AddCommand(NewViewCommand())
	cmd.AddCommand(stats.NewStatsCommand())
	cmd.AddCommand(NewSeedCommand())
	cmd.AddCommand(NewReportCommand())

	return cmd
}

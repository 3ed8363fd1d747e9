// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stats contains the `habits stats` Cobra subcommands.
package stats

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bartekus/habits/cmd/habits/internal/app"
	"github.com/bartekus/habits/cmd/habits/internal/clierr"
	"github.com/bartekus/habits/internal/habit"
	"github.com/bartekus/habits/internal/stats"
)

const flagAsOf = "as-of"

// NewStatsCommand returns the `habits stats` command.
func NewStatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Streak statistics",
		Long:  "Streak statistics for all habits, the longest streaks, one periodicity or a single habit.",
		Args:  clierr.Args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().String(flagAsOf, "", "reference time (RFC3339 or YYYY-MM-DD), default now")

	cmd.AddCommand(newAllCommand())
	cmd.AddCommand(newLongestStreaksCommand())
	cmd.AddCommand(newPeriodicityCommand())
	cmd.AddCommand(newHabitCommand())

	return cmd
}

// query loads a snapshot and the reference time, then hands both to fn.
func query(cmd *cobra.Command, fn func(env *app.Env, tracked []habit.Tracked, now time.Time) error) error {
	return app.Run(cmd, func(env *app.Env) error {
		asOf, _ := cmd.Flags().GetString(flagAsOf)
		now, err := env.ReferenceTime(asOf)
		if err != nil {
			return err
		}
		tracked, err := env.Store.Snapshot(cmd.Context())
		if err != nil {
			return err
		}
		return fn(env, tracked, now)
	})
}

func newAllCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Current and longest streak of every habit",
		Args:  clierr.Args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return query(cmd, func(env *app.Env, tracked []habit.Tracked, now time.Time) error {
				rows, err := stats.All(tracked, now)
				if err != nil {
					return err
				}
				return env.Renderer(now).Streaks("All habits", rows)
			})
		},
	}
}

func newLongestStreaksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "longest-streaks",
		Short: "Habits ranked by longest streak",
		Args:  clierr.Args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return query(cmd, func(env *app.Env, tracked []habit.Tracked, now time.Time) error {
				rows, err := stats.LongestStreaks(tracked, now)
				if err != nil {
					return err
				}
				return env.Renderer(now).Streaks("Longest streaks", rows)
			})
		},
	}
}

func newPeriodicityCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "periodicity <periodicity>",
		Short: "Streaks of habits with the given periodicity",
		Args:  clierr.Args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return query(cmd, func(env *app.Env, tracked []habit.Tracked, now time.Time) error {
				rows, err := stats.ByPeriodicity(tracked, args[0], now)
				if err != nil {
					return err
				}
				p, _ := habit.ParsePeriodicity(args[0])
				return env.Renderer(now).Streaks(fmt.Sprintf("Habits with periodicity %s", p), rows)
			})
		},
	}
}

func newHabitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "habit <habit_id>",
		Short: "Streak analysis of a single habit",
		Args:  clierr.Args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return query(cmd, func(env *app.Env, tracked []habit.Tracked, now time.Time) error {
				summary, err := stats.ForHabit(tracked, args[0], now)
				if err != nil {
					return err
				}
				return env.Renderer(now).Summary(summary, nil)
			})
		},
	}
}

package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bartekus/habits/cmd/habits/internal/app"
	"github.com/bartekus/habits/cmd/habits/internal/clierr"
	"github.com/bartekus/habits/internal/habit"
)

// NewCompleteCommand returns the `habits complete` command.
func NewCompleteCommand() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "complete <habit_id>",
		Short: "Mark a habit as completed",
		Long:  "Record a completion for a habit, now or at the time given with --at.",
		Args:  clierr.Args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd, func(env *app.Env) error {
				ctx := cmd.Context()
				now := env.Now()

				when, err := env.ReferenceTime(at)
				if err != nil {
					return err
				}
				if when.After(now) {
					return fmt.Errorf("%w: completion time %s is in the future",
						habit.ErrInvalidReferenceTime, when.Format(time.RFC3339))
				}

				h, err := env.Store.Habit(ctx, args[0])
				if err != nil {
					return err
				}
				if err := env.Store.AddCompletion(ctx, h.ID, when); err != nil {
					return err
				}
				return env.Renderer(now).Completed(h, when)
			})
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "completion time (RFC3339 or YYYY-MM-DD), default now")
	return cmd
}

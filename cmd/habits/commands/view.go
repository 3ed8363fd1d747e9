package commands

import (
	"github.com/spf13/cobra"

	"github.com/bartekus/habits/cmd/habits/internal/app"
	"github.com/bartekus/habits/cmd/habits/internal/clierr"
	"github.com/bartekus/habits/internal/habit"
	"github.com/bartekus/habits/internal/stats"
)

// NewViewCommand returns the `habits view` command.
func NewViewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view <habit_id>",
		Short: "Show a habit with its completion history",
		Args:  clierr.Args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd, func(env *app.Env) error {
				ctx := cmd.Context()
				h, err := env.Store.Habit(ctx, args[0])
				if err != nil {
					return err
				}
				history, err := env.Store.Completions(ctx, h.ID)
				if err != nil {
					return err
				}

				now := env.Now()
				summary, err := stats.Summarize(habit.Tracked{Habit: h, Completions: history}, now)
				if err != nil {
					return err
				}
				return env.Renderer(now).Summary(summary, history)
			})
		},
	}
}

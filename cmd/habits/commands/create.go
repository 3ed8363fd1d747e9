package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bartekus/habits/cmd/habits/internal/app"
	"github.com/bartekus/habits/cmd/habits/internal/clierr"
	"github.com/bartekus/habits/internal/habit"
)

// NewCreateCommand returns the `habits create` command.
func NewCreateCommand() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <name> <periodicity>",
		Short: "Create a new habit",
		Long:  "Create a new habit. Periodicity is one of: daily, weekly.",
		Args:  clierr.Args(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd, func(env *app.Env) error {
				h, err := habit.New(args[0], args[1], description, env.Now())
				if err != nil {
					return err
				}
				if err := env.Store.CreateHabit(cmd.Context(), h); err != nil {
					return err
				}
				env.Log.Debug("habit created", zap.String("id", h.ID), zap.String("periodicity", string(h.Periodicity)))
				return env.Renderer(env.Now()).Created(h)
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "optional habit description")
	return cmd
}

package commands

import (
	"github.com/spf13/cobra"

	"github.com/bartekus/habits/cmd/habits/internal/app"
	"github.com/bartekus/habits/cmd/habits/internal/clierr"
	"github.com/bartekus/habits/internal/stats"
)

// NewListCommand returns the `habits list` command.
func NewListCommand() *cobra.Command {
	var periodicity string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List habits",
		Args:  clierr.Args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd, func(env *app.Env) error {
				tracked, err := env.Store.Snapshot(cmd.Context())
				if err != nil {
					return err
				}

				now := env.Now()
				var rows []stats.Row
				if cmd.Flags().Changed("periodicity") {
					rows, err = stats.ByPeriodicity(tracked, periodicity, now)
				} else {
					rows, err = stats.All(tracked, now)
				}
				if err != nil {
					return err
				}
				return env.Renderer(now).Habits(rows)
			})
		},
	}

	cmd.Flags().StringVarP(&periodicity, "periodicity", "p", "", "only list habits with this periodicity (daily, weekly)")
	return cmd
}

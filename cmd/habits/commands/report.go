package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bartekus/habits/cmd/habits/internal/app"
	"github.com/bartekus/habits/cmd/habits/internal/clierr"
	"github.com/bartekus/habits/internal/report"
	"github.com/bartekus/habits/internal/stats"
)

// NewReportCommand returns the `habits report` command.
func NewReportCommand() *cobra.Command {
	var (
		out  string
		asOf string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a Markdown statistics report",
		Long:  "Generate a Markdown report of streaks, completion rates and suggestions for every habit.",
		Args:  clierr.Args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd, func(env *app.Env) error {
				now, err := env.ReferenceTime(asOf)
				if err != nil {
					return err
				}
				tracked, err := env.Store.Snapshot(cmd.Context())
				if err != nil {
					return err
				}
				summaries, err := stats.SummarizeAll(tracked, now)
				if err != nil {
					return err
				}

				if out == "" {
					_, err := fmt.Fprint(cmd.OutOrStdout(), report.Generate(summaries, now))
					return err
				}
				if err := report.Write(out, summaries, now); err != nil {
					env.Log.Error("writing report", zap.String("path", out), zap.Error(err))
					return err
				}
				return env.Renderer(now).ReportWritten(out)
			})
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "write the report to this file instead of stdout")
	cmd.Flags().StringVar(&asOf, "as-of", "", "reference time (RFC3339 or YYYY-MM-DD), default now")
	return cmd
}

package commands

import (
	"math/rand/v2"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bartekus/habits/cmd/habits/internal/app"
	"github.com/bartekus/habits/cmd/habits/internal/clierr"
	"github.com/bartekus/habits/internal/seed"
)

// NewSeedCommand returns the `habits seed` command.
func NewSeedCommand() *cobra.Command {
	var (
		file     string
		days     int
		randSeed uint64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create habits with simulated completion history",
		Long: `Create the habits listed in a YAML seed file and simulate their completions
over the last --days days. Without --file the built-in example habits are used.`,
		Args: clierr.Args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd, func(env *app.Env) error {
				if days <= 0 {
					return clierr.Newf(clierr.ExitUsage, "--days must be positive (got %d)", days)
				}
				f, err := seed.Load(file)
				if err != nil {
					return clierr.Wrapf(clierr.ExitInvalidInput, err, "loading seed file %q", file)
				}

				now := env.Now()
				if !cmd.Flags().Changed("rand-seed") {
					randSeed = uint64(now.UnixNano())
				}
				env.Log.Debug("seeding habits",
					zap.Int("habits", len(f.Habits)), zap.Int("days", days), zap.Uint64("rand_seed", randSeed))

				results, err := seed.Generate(cmd.Context(), env.Store, f, seed.Options{
					Days: days,
					Now:  now,
					Rand: rand.New(rand.NewPCG(randSeed, randSeed)),
				})
				if err != nil {
					return err
				}
				return env.Renderer(now).Seeded(results)
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "seed YAML file (default: built-in examples)")
	cmd.Flags().IntVar(&days, "days", seed.DefaultDays, "days of simulated history")
	cmd.Flags().Uint64Var(&randSeed, "rand-seed", 0, "random seed for reproducible history")
	return cmd
}

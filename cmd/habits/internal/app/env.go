// Package app assembles the per-invocation dependencies shared by the
// habits subcommands: configuration, logger, store, clock and renderer.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bartekus/habits/cmd/habits/internal/clierr"
	"github.com/bartekus/habits/internal/config"
	"github.com/bartekus/habits/internal/habit"
	"github.com/bartekus/habits/internal/logging"
	"github.com/bartekus/habits/internal/render"
	"github.com/bartekus/habits/internal/store"
)

// Persistent flag names registered on the root command.
const (
	FlagConfig  = "config"
	FlagDB      = "db"
	FlagDriver  = "driver"
	FlagOutput  = "output"
	FlagNoColor = "no-color"
	FlagVerbose = "verbose"
)

const dateLayout = "2006-01-02"

// Clock returns the current time.
type Clock func() time.Time

type clockKey struct{}

// WithClock returns a context whose commands read the time from clock.
func WithClock(ctx context.Context, clock Clock) context.Context {
	return context.WithValue(ctx, clockKey{}, clock)
}

func clockFrom(ctx context.Context) Clock {
	if ctx != nil {
		if c, ok := ctx.Value(clockKey{}).(Clock); ok && c != nil {
			return c
		}
	}
	return time.Now
}

// Env holds what a command needs to run.
type Env struct {
	Config *config.Config
	Log    *zap.Logger
	Store  store.Store
	Loc    *time.Location

	clock Clock
	cmd   *cobra.Command
}

// Load reads configuration, applies flag overrides and opens the store.
// Callers must Close the returned Env.
func Load(cmd *cobra.Command) (*Env, error) {
	flags := cmd.Flags()
	cfgPath, _ := flags.GetString(FlagConfig)

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}

	if v, _ := flags.GetString(FlagDriver); v != "" {
		cfg.Storage.Driver = v
	}
	if v, _ := flags.GetString(FlagDB); v != "" {
		cfg.Storage.Path = v
	}
	if v, _ := flags.GetString(FlagOutput); v != "" {
		cfg.Output.Format = strings.ToLower(v)
	}
	if v, _ := flags.GetBool(FlagNoColor); v {
		cfg.Output.Color = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, clierr.Wrap(clierr.ExitUsage, "invalid settings", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	verbose, _ := flags.GetBool(FlagVerbose)
	log, err := logging.New(cfg.Log, verbose)
	if err != nil {
		return nil, err
	}

	path, err := cfg.DataPath()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cmd.Context(), cfg.Storage.Driver, path, log)
	if err != nil {
		log.Error("opening store", zap.String("driver", cfg.Storage.Driver), zap.String("path", path), zap.Error(err))
		return nil, err
	}
	log.Debug("store opened", zap.String("driver", cfg.Storage.Driver), zap.String("path", path))

	return &Env{
		Config: cfg,
		Log:    log,
		Store:  st,
		Loc:    loc,
		clock:  clockFrom(cmd.Context()),
		cmd:    cmd,
	}, nil
}

// Close releases the store and flushes the logger.
func (e *Env) Close() error {
	err := e.Store.Close()
	_ = e.Log.Sync()
	return err
}

// Now returns the current time in the configured zone.
func (e *Env) Now() time.Time {
	return e.clock().In(e.Loc)
}

// Renderer returns an output renderer measuring relative times against now.
func (e *Env) Renderer(now time.Time) *render.Renderer {
	return render.New(e.cmd.OutOrStdout(), e.Config.Output.Format == config.FormatJSON, e.Config.Output.Color, now)
}

// ReferenceTime resolves an optional --as-of style value, defaulting to Now.
func (e *Env) ReferenceTime(value string) (time.Time, error) {
	if value == "" {
		return e.Now(), nil
	}
	return e.ParseTime(value)
}

// ParseTime accepts RFC3339 timestamps or YYYY-MM-DD dates. Dates resolve to
// midnight in the configured zone.
func (e *Env) ParseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(e.Loc), nil
	}
	if t, err := time.ParseInLocation(dateLayout, value, e.Loc); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: cannot parse %q (want RFC3339 or YYYY-MM-DD)", habit.ErrInvalidReferenceTime, value)
}

// Run loads the environment for cmd, calls fn and closes the environment.
// Errors come back with the exit code matching their domain kind.
func Run(cmd *cobra.Command, fn func(env *Env) error) (err error) {
	env, err := Load(cmd)
	if err != nil {
		return clierr.FromDomain(err)
	}
	defer func() {
		if cerr := env.Close(); cerr != nil && err == nil {
			err = clierr.FromDomain(cerr)
		}
	}()
	return clierr.FromDomain(fn(env))
}

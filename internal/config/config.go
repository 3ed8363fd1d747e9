// Package config loads habits settings from defaults, an optional YAML file
// and HABITS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata" // embedded zoneinfo for clock.timezone
)

// Config is the top-level configuration.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
	Output  OutputConfig  `mapstructure:"output"`
	Clock   ClockConfig   `mapstructure:"clock"`
}

// StorageConfig selects the store driver and data file.
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

// LogConfig holds zap logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OutputConfig holds CLI rendering settings.
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// ClockConfig holds the time zone used for calendar bucketing.
type ClockConfig struct {
	Timezone string `mapstructure:"timezone"`
}

// Defaults.
const (
	DefaultDriver       = "sqlite"
	DefaultLogLevel     = "warn"
	DefaultLogFormat    = "console"
	DefaultOutputFormat = "table"
	DefaultOutputColor  = true
	DefaultDataDir      = ".habits"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Sentinel errors for configuration validation.
var (
	// ErrInvalidDriver indicates an unsupported storage driver.
	ErrInvalidDriver = errors.New("storage.driver must be sqlite or json")
	// ErrInvalidLogFormat indicates an unsupported log encoder.
	ErrInvalidLogFormat = errors.New("log.format must be console or json")
	// ErrInvalidOutputFormat indicates an unsupported output format.
	ErrInvalidOutputFormat = errors.New("output.format must be table or json")
	// ErrInvalidTimezone indicates an unknown IANA time zone.
	ErrInvalidTimezone = errors.New("clock.timezone is not a known time zone")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "sqlite", "json":
	default:
		return fmt.Errorf("%w (got %q)", ErrInvalidDriver, c.Storage.Driver)
	}

	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w (got %q)", ErrInvalidLogFormat, c.Log.Format)
	}

	switch c.Output.Format {
	case FormatTable, FormatJSON:
	default:
		return fmt.Errorf("%w (got %q)", ErrInvalidOutputFormat, c.Output.Format)
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Clock.Timezone; empty means the local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Clock.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Clock.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, c.Clock.Timezone)
	}
	return loc, nil
}

// DataPath returns Storage.Path, or the default file under the user's home
// directory for the configured driver.
func (c *Config) DataPath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	name := "habits.db"
	if c.Storage.Driver == "json" {
		name = "habits.json"
	}
	return filepath.Join(home, DefaultDataDir, name), nil
}

// Package store persists habits and completion events.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bartekus/habits/internal/habit"
)

// Driver names accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverJSON   = "json"
)

// ErrUnknownDriver indicates an unsupported storage driver name.
var ErrUnknownDriver = errors.New("unknown storage driver")

// Store is the habit and completion record store.
type Store interface {
	// CreateHabit persists a new habit. Names are unique.
	CreateHabit(ctx context.Context, h habit.Habit) error
	// AddCompletion appends a completion event for an existing habit.
	AddCompletion(ctx context.Context, habitID string, at time.Time) error
	// Import writes a batch of habits with their completions. Either the
	// whole batch is stored or nothing is.
	Import(ctx context.Context, batch []habit.Tracked) error
	// Habit returns a single habit by ID.
	Habit(ctx context.Context, id string) (habit.Habit, error)
	// Habits returns all habits in insertion order.
	Habits(ctx context.Context) ([]habit.Habit, error)
	// Completions returns a habit's completion times, oldest first.
	Completions(ctx context.Context, habitID string) ([]time.Time, error)
	// Snapshot returns every habit with its completions, in insertion order.
	Snapshot(ctx context.Context) ([]habit.Tracked, error)
	Close() error
}

// Open returns a store for the named driver rooted at path.
func Open(ctx context.Context, driver, path string, log *zap.Logger) (Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	switch driver {
	case DriverSQLite:
		return OpenSQLite(ctx, path, log)
	case DriverJSON:
		return OpenJSON(path, log), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

func notFound(id string) error {
	return fmt.Errorf("%w: %q", habit.ErrHabitNotFound, id)
}

func duplicate(name string) error {
	return fmt.Errorf("%w: a habit named %q already exists", habit.ErrDuplicateHabit, name)
}

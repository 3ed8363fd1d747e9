// Package seed creates habits from a YAML definition file and fills them with
// a simulated completion history.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bartekus/habits/internal/habit"
)

//go:embed default_habits.yaml
var defaultHabits []byte

const hoursPerDay = 24

// DefaultDays is the default length of the simulated history.
const DefaultDays = 28

// ErrInvalidSeed indicates a malformed seed file.
var ErrInvalidSeed = errors.New("invalid seed file")

// TimeRange bounds the hour of day at which simulated completions happen.
type TimeRange struct {
	StartHour int `yaml:"start_hour"`
	EndHour   int `yaml:"end_hour"`
}

// HabitSpec describes one habit to create and how often to complete it.
type HabitSpec struct {
	Name           string    `yaml:"name"`
	Periodicity    string    `yaml:"periodicity"`
	Description    string    `yaml:"description"`
	CompletionRate float64   `yaml:"completion_rate"`
	TimeRange      TimeRange `yaml:"completion_time_range"`
}

// File matches the top-level shape of a seed YAML file.
type File struct {
	Habits []HabitSpec `yaml:"habits"`
}

// Writer is the subset of the store used for seeding. Import must store the
// whole batch or nothing.
type Writer interface {
	Import(ctx context.Context, batch []habit.Tracked) error
}

// Options controls history generation.
type Options struct {
	// Days of history ending at Now.
	Days int
	Now  time.Time
	Rand *rand.Rand
}

// Result reports what was generated for one habit.
type Result struct {
	Habit       habit.Habit `json:"habit"`
	Completions int         `json:"completions"`
	TargetRate  float64     `json:"target_rate"`
	ActualRate  float64     `json:"actual_rate"`
}

// Load reads a seed file; an empty path selects the built-in defaults.
func Load(path string) (*File, error) {
	if path == "" {
		return Parse(defaultHabits)
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is user supplied on purpose
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates seed YAML.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	if len(f.Habits) == 0 {
		return nil, fmt.Errorf("%w: no habits defined", ErrInvalidSeed)
	}
	seen := make(map[string]int, len(f.Habits))
	for i, spec := range f.Habits {
		if err := spec.validate(); err != nil {
			return nil, fmt.Errorf("%w: habit #%d (%q): %w", ErrInvalidSeed, i+1, spec.Name, err)
		}
		name := strings.TrimSpace(spec.Name)
		if first, ok := seen[name]; ok {
			return nil, fmt.Errorf("%w: habit #%d repeats the name %q of habit #%d", ErrInvalidSeed, i+1, name, first)
		}
		seen[name] = i + 1
	}
	return &f, nil
}

func (s HabitSpec) validate() error {
	if _, err := habit.ParsePeriodicity(s.Periodicity); err != nil {
		return err
	}
	if s.CompletionRate < 0 || s.CompletionRate > 1 {
		return fmt.Errorf("completion_rate %v must be between 0 and 1", s.CompletionRate)
	}
	r := s.TimeRange
	if r.StartHour < 0 || r.EndHour >= hoursPerDay || r.StartHour > r.EndHour {
		return fmt.Errorf("completion_time_range %d-%d must satisfy 0 <= start <= end <= 23", r.StartHour, r.EndHour)
	}
	return nil
}

// Generate creates every habit in f with a creation time Days before Now and
// simulates completions for each day up to Now. Weekly habits are only
// completed on Mondays. Slots whose completion time would fall after Now are
// left out. The whole batch is handed to w in a single Import.
func Generate(ctx context.Context, w Writer, f *File, opts Options) ([]Result, error) {
	if opts.Days <= 0 {
		return nil, fmt.Errorf("%w: days must be positive (got %d)", ErrInvalidSeed, opts.Days)
	}
	if opts.Rand == nil {
		return nil, errors.New("seed: random source is required")
	}
	if opts.Now.IsZero() {
		return nil, fmt.Errorf("%w: seed reference time is not set", habit.ErrInvalidReferenceTime)
	}

	start := opts.Now.AddDate(0, 0, -opts.Days)
	results := make([]Result, 0, len(f.Habits))
	batch := make([]habit.Tracked, 0, len(f.Habits))
	for _, spec := range f.Habits {
		h, err := habit.New(spec.Name, spec.Periodicity, spec.Description, start)
		if err != nil {
			return nil, err
		}

		t := habit.Tracked{Habit: h, Completions: []time.Time{}}
		res := Result{Habit: h, TargetRate: spec.CompletionRate * 100}
		slots := 0
		for d := 0; d <= opts.Days; d++ {
			date := start.AddDate(0, 0, d)
			if h.Periodicity == habit.Weekly && date.Weekday() != time.Monday {
				continue
			}
			hour := spec.TimeRange.StartHour + opts.Rand.IntN(spec.TimeRange.EndHour-spec.TimeRange.StartHour+1)
			y, m, day := date.Date()
			at := time.Date(y, m, day, hour, 0, 0, 0, opts.Now.Location())
			if at.After(opts.Now) {
				continue
			}
			slots++
			if opts.Rand.Float64() >= spec.CompletionRate {
				continue
			}
			t.Completions = append(t.Completions, at)
		}
		res.Completions = len(t.Completions)
		if slots > 0 {
			res.ActualRate = float64(res.Completions) / float64(slots) * 100
		}
		results = append(results, res)
		batch = append(batch, t)
	}

	if err := w.Import(ctx, batch); err != nil {
		return nil, err
	}
	return results, nil
}

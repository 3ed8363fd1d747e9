// Package stats combines per-habit streak results into the query shapes the
// CLI exposes. All functions are pure over a snapshot of habits and
// completions; none of them touch the store.
package stats

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/bartekus/habits/internal/habit"
	"github.com/bartekus/habits/internal/streak"
)

// Row is the streak result of one habit.
type Row struct {
	Habit  habit.Habit   `json:"habit"`
	Streak streak.Result `json:"streak"`
}

// All computes a row for every habit, keeping the input order.
func All(tracked []habit.Tracked, now time.Time) ([]Row, error) {
	rows := make([]Row, 0, len(tracked))
	for _, t := range tracked {
		row, err := compute(t, now)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LongestStreaks orders rows by longest streak, highest first.
// Ties are broken by habit ID ascending.
func LongestStreaks(tracked []habit.Tracked, now time.Time) ([]Row, error) {
	rows, err := All(tracked, now)
	if err != nil {
		return nil, err
	}
	SortByLongest(rows)
	return rows, nil
}

// SortByLongest sorts rows in place by longest streak descending, then habit ID ascending.
func SortByLongest(rows []Row) {
	slices.SortStableFunc(rows, func(a, b Row) int {
		if c := cmp.Compare(b.Streak.Longest, a.Streak.Longest); c != 0 {
			return c
		}
		return cmp.Compare(a.Habit.ID, b.Habit.ID)
	})
}

// ByPeriodicity computes rows for habits with the given periodicity only.
// No match yields an empty slice, not an error.
func ByPeriodicity(tracked []habit.Tracked, periodicity string, now time.Time) ([]Row, error) {
	p, err := habit.ParsePeriodicity(periodicity)
	if err != nil {
		return nil, err
	}
	return All(FilterByPeriodicity(tracked, p), now)
}

// ForHabit summarizes the habit with the given ID.
func ForHabit(tracked []habit.Tracked, id string, now time.Time) (Summary, error) {
	t, err := Find(tracked, id)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(t, now)
}

// FilterByPeriodicity returns the tracked habits with periodicity p, in input order.
func FilterByPeriodicity(tracked []habit.Tracked, p habit.Periodicity) []habit.Tracked {
	out := make([]habit.Tracked, 0, len(tracked))
	for _, t := range tracked {
		if t.Habit.Periodicity == p {
			out = append(out, t)
		}
	}
	return out
}

// Find returns the tracked habit with the given ID.
func Find(tracked []habit.Tracked, id string) (habit.Tracked, error) {
	for _, t := range tracked {
		if t.Habit.ID == id {
			return t, nil
		}
	}
	return habit.Tracked{}, fmt.Errorf("%w: %q", habit.ErrHabitNotFound, id)
}

func compute(t habit.Tracked, now time.Time) (Row, error) {
	res, err := streak.Compute(t.Habit.Periodicity, t.Completions, now)
	if err != nil {
		return Row{}, fmt.Errorf("habit %s: %w", t.Habit.ID, err)
	}
	return Row{Habit: t.Habit, Streak: res}, nil
}

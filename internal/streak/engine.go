// Package streak computes streak metrics for a single habit from its
// completion history. Every computation is relative to a caller-supplied
// reference time; nothing in this package reads the system clock.
package streak

import (
	"fmt"
	"slices"
	"time"

	"github.com/bartekus/habits/internal/habit"
)

// Result holds the streak metrics of one habit at a reference time.
type Result struct {
	Current        int        `json:"current"`
	Longest        int        `json:"longest"`
	LastCompletion *time.Time `json:"last_completion,omitempty"`
	Broken         bool       `json:"broken"`
	// Periods is the number of distinct periods with at least one completion.
	Periods int `json:"periods"`
	// Breaks is the number of gaps between consecutive completed periods.
	Breaks int `json:"breaks"`
}

// Compute buckets completions by periodicity and scans the distinct periods
// for runs. completions may be unordered and contain several entries per period.
//
// The current streak is the run ending in now's period or the one right before
// it; anything older counts as broken. A habit without completions is not broken.
func Compute(p habit.Periodicity, completions []time.Time, now time.Time) (Result, error) {
	if !p.Valid() {
		return Result{}, fmt.Errorf("%w: %q", habit.ErrUnknownPeriodicity, string(p))
	}
	if now.IsZero() {
		return Result{}, fmt.Errorf("%w: reference time is not set", habit.ErrInvalidReferenceTime)
	}

	loc := now.Location()
	nowIdx, err := PeriodIndex(p, now, loc)
	if err != nil {
		return Result{}, err
	}

	var last time.Time
	seen := make(map[int64]struct{}, len(completions))
	indices := make([]int64, 0, len(completions))
	for _, c := range completions {
		if c.After(now) {
			return Result{}, fmt.Errorf("%w: %s precedes completion at %s",
				habit.ErrInvalidReferenceTime, now.Format(time.RFC3339), c.Format(time.RFC3339))
		}
		if c.After(last) {
			last = c
		}
		idx, err := PeriodIndex(p, c, loc)
		if err != nil {
			return Result{}, err
		}
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		indices = append(indices, idx)
	}

	if len(indices) == 0 {
		return Result{}, nil
	}
	slices.Sort(indices)

	longest, run, breaks := 1, 1, 0
	for i := 1; i < len(indices); i++ {
		if indices[i]-indices[i-1] == 1 {
			run++
		} else {
			run = 1
			breaks++
		}
		longest = max(longest, run)
	}

	current := 0
	if nowIdx-indices[len(indices)-1] <= 1 {
		current = run
	}

	lastCopy := last
	return Result{
		Current:        current,
		Longest:        longest,
		LastCompletion: &lastCopy,
		Broken:         current == 0,
		Periods:        len(indices),
		Breaks:         breaks,
	}, nil
}

package stats

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize/english"

	"github.com/bartekus/habits/internal/habit"
	"github.com/bartekus/habits/internal/streak"
)

const percent = 100

// Suggestion thresholds.
const (
	lowRateThreshold    = 30
	mediumRateThreshold = 70
	breakRatioDivisor   = 3
)

// Summary extends a Row with completion-rate and break analysis.
type Summary struct {
	Row
	TotalCompletions int      `json:"total_completions"`
	CompletionRate   float64  `json:"completion_rate"`
	Suggestions      []string `json:"suggestions"`
}

// Summarize analyzes one habit at reference time now.
//
// The completion rate is the share of periods with a completion, counted from
// the earlier of the habit's creation and its first completion up to and
// including now's period.
func Summarize(t habit.Tracked, now time.Time) (Summary, error) {
	row, err := compute(t, now)
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		Row:              row,
		TotalCompletions: len(t.Completions),
	}

	rate, err := completionRate(t, row.Streak, now)
	if err != nil {
		return Summary{}, fmt.Errorf("habit %s: %w", t.Habit.ID, err)
	}
	s.CompletionRate = rate
	s.Suggestions = Suggest(s)
	return s, nil
}

// SummarizeAll summarizes every habit, keeping the input order.
func SummarizeAll(tracked []habit.Tracked, now time.Time) ([]Summary, error) {
	out := make([]Summary, 0, len(tracked))
	for _, t := range tracked {
		s, err := Summarize(t, now)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func completionRate(t habit.Tracked, res streak.Result, now time.Time) (float64, error) {
	if res.Periods == 0 {
		return 0, nil
	}

	start := t.Habit.CreatedAt
	for _, c := range t.Completions {
		if start.IsZero() || c.Before(start) {
			start = c
		}
	}

	loc := now.Location()
	first, err := streak.PeriodIndex(t.Habit.Periodicity, start, loc)
	if err != nil {
		return 0, err
	}
	last, err := streak.PeriodIndex(t.Habit.Periodicity, now, loc)
	if err != nil {
		return 0, err
	}

	total := last - first + 1
	if total <= 0 {
		return 0, nil
	}
	return min(float64(res.Periods)/float64(total)*percent, percent), nil
}

// Suggest derives improvement tips from a summary.
func Suggest(s Summary) []string {
	var tips []string

	if s.CompletionRate < lowRateThreshold {
		tips = append(tips, "Consider making this habit easier or breaking it into smaller steps")
	}
	if s.CompletionRate < mediumRateThreshold {
		tips = append(tips, "You're making progress! Try setting specific times for this habit")
	}

	if float64(s.Streak.Current) < float64(s.Streak.Longest)/2 {
		tips = append(tips, fmt.Sprintf("You've had a longer streak (%s)! Try to beat your record",
			english.Plural(s.Streak.Longest, s.Habit.Periodicity.Unit(), "")))
	}

	if s.TotalCompletions > 0 && float64(s.Streak.Breaks) > float64(s.TotalCompletions)/breakRatioDivisor {
		tips = append(tips, "Consider setting reminders to maintain consistency")
	}

	return tips
}

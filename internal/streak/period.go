package streak

import (
	"fmt"
	"time"

	"github.com/bartekus/habits/internal/habit"
)

const secondsPerDay = 24 * 60 * 60

// epochMondayOffset is the day index of Monday 1970-01-05, the first ISO week start
// after the Unix epoch (1970-01-01 was a Thursday).
const epochMondayOffset = 4

const daysPerWeek = 7

// PeriodIndex buckets t into an integer period count since the epoch.
// Calendar dates are taken in loc. Weeks start on Monday (ISO-8601).
func PeriodIndex(p habit.Periodicity, t time.Time, loc *time.Location) (int64, error) {
	if loc == nil {
		loc = time.UTC
	}
	day := dayIndex(t.In(loc))
	switch p {
	case habit.Daily:
		return day, nil
	case habit.Weekly:
		return floorDiv(day-epochMondayOffset, daysPerWeek), nil
	default:
		return 0, fmt.Errorf("%w: %q", habit.ErrUnknownPeriodicity, string(p))
	}
}

// dayIndex counts civil days since 1970-01-01 for t's own calendar date,
// independent of its zone offset or DST.
func dayIndex(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

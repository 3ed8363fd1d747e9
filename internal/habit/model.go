// SPDX-License-Identifier: AGPL-3.0-or-later

// Package habit defines the habit and completion data model shared by the
// store, the streak engine and the command layer.
package habit

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Periodicity is the recurrence unit of a habit.
type Periodicity string

const (
	Daily  Periodicity = "daily"
	Weekly Periodicity = "weekly"
)

// Periodicities lists every recognized periodicity in display order.
func Periodicities() []Periodicity {
	return []Periodicity{Daily, Weekly}
}

// ParsePeriodicity normalizes s and checks it against the known periodicities.
func ParsePeriodicity(s string) (Periodicity, error) {
	p := Periodicity(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q (must be one of: %s)", ErrUnknownPeriodicity, s, periodicityList())
	}
	return p, nil
}

// Valid reports whether p is a recognized periodicity.
func (p Periodicity) Valid() bool {
	for _, known := range Periodicities() {
		if p == known {
			return true
		}
	}
	return false
}

// Unit returns the singular noun for one period ("day", "week").
func (p Periodicity) Unit() string {
	switch p {
	case Daily:
		return "day"
	case Weekly:
		return "week"
	default:
		return "period"
	}
}

func periodicityList() string {
	names := make([]string, 0, len(Periodicities()))
	for _, p := range Periodicities() {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}

// Habit is a tracked habit definition. It is immutable once created.
type Habit struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Periodicity Periodicity `json:"periodicity"`
	Description string      `json:"description,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Completion records that a habit was performed at a point in time.
type Completion struct {
	HabitID     string    `json:"habit_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// Tracked pairs a habit with its completion timestamps in no particular order.
type Tracked struct {
	Habit       Habit
	Completions []time.Time
}

// NewID returns a fresh habit identifier.
func NewID() string {
	return uuid.NewString()
}

// New validates the inputs and builds a habit with a fresh ID.
func New(name string, periodicity string, description string, createdAt time.Time) (Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Habit{}, fmt.Errorf("%w: habit name must not be empty", ErrInvalidInput)
	}
	p, err := ParsePeriodicity(periodicity)
	if err != nil {
		return Habit{}, err
	}
	if createdAt.IsZero() {
		return Habit{}, fmt.Errorf("%w: creation time must be set", ErrInvalidInput)
	}
	return Habit{
		ID:          NewID(),
		Name:        name,
		Periodicity: p,
		Description: strings.TrimSpace(description),
		CreatedAt:   createdAt,
	}, nil
}

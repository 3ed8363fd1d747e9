package habit

import "errors"

// Sentinel errors for the habit domain. Callers wrap them with context naming
// the offending input; use errors.Is to classify.
var (
	// ErrUnknownPeriodicity indicates a periodicity value that is not recognized.
	ErrUnknownPeriodicity = errors.New("unknown periodicity")
	// ErrHabitNotFound indicates no habit exists for the given identifier.
	ErrHabitNotFound = errors.New("habit not found")
	// ErrInvalidReferenceTime indicates a reference time earlier than a completion.
	ErrInvalidReferenceTime = errors.New("invalid reference time")
	// ErrInvalidInput indicates malformed user input such as an empty name.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDuplicateHabit indicates a habit with the same name already exists.
	ErrDuplicateHabit = errors.New("duplicate habit")
)

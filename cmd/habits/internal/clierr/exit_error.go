package clierr

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bartekus/habits/internal/habit"
)

// Process exit codes.
const (
	ExitGeneric              = 1
	ExitUsage                = 2
	ExitUnknownPeriodicity   = 3
	ExitHabitNotFound        = 4
	ExitInvalidInput         = 5
	ExitInvalidReferenceTime = 6
)

type ExitCoder interface {
	error
	ExitCode() int
}

// ExitError is an error that carries an explicit process exit code.
// It supports wrapping via Unwrap so errors.Is/As work as expected.
type ExitError struct {
	code  int
	msg   string
	cause error
}

func (e *ExitError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	if e.msg == "" {
		return e.cause.Error()
	}
	return fmt.Sprintf("%s: %v", e.msg, e.cause)
}

func (e *ExitError) ExitCode() int { return e.code }

// Unwrap enables errors.Is/As to traverse the underlying cause.
func (e *ExitError) Unwrap() error { return e.cause }

// New creates an ExitError with a message.
func New(code int, msg string) error {
	return &ExitError{code: normalize(code), msg: msg}
}

// Wrap creates an ExitError that wraps an underlying cause.
func Wrap(code int, msg string, cause error) error {
	if cause == nil {
		return New(code, msg)
	}
	return &ExitError{code: normalize(code), msg: msg, cause: cause}
}

// Newf is a formatted variant.
func Newf(code int, format string, args ...any) error {
	return &ExitError{code: normalize(code), msg: fmt.Sprintf(format, args...)}
}

// Wrapf is a formatted variant that wraps.
func Wrapf(code int, cause error, format string, args ...any) error {
	return Wrap(code, fmt.Sprintf(format, args...), cause)
}

// FromDomain attaches the exit code matching a domain error kind.
// Errors that already carry a code are returned unchanged.
func FromDomain(err error) error {
	if err == nil {
		return nil
	}
	var ec ExitCoder
	if errors.As(err, &ec) {
		return err
	}
	return &ExitError{code: codeFor(err), cause: err}
}

// Args marks positional argument failures as usage errors.
func Args(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return Wrap(ExitUsage, "usage: "+cmd.UseLine(), err)
		}
		return nil
	}
}

// FlagError marks flag parsing failures as usage errors.
func FlagError(cmd *cobra.Command, err error) error {
	return Wrap(ExitUsage, "usage: "+cmd.UseLine(), err)
}

// ExitCodeOf extracts an exit code from any error, defaulting to 1.
func ExitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var ec ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return ExitGeneric
}

func codeFor(err error) int {
	switch {
	case errors.Is(err, habit.ErrUnknownPeriodicity):
		return ExitUnknownPeriodicity
	case errors.Is(err, habit.ErrHabitNotFound):
		return ExitHabitNotFound
	case errors.Is(err, habit.ErrInvalidInput), errors.Is(err, habit.ErrDuplicateHabit):
		return ExitInvalidInput
	case errors.Is(err, habit.ErrInvalidReferenceTime):
		return ExitInvalidReferenceTime
	default:
		return ExitGeneric
	}
}

func normalize(code int) int {
	// Exit code 0 means success; errors should never be 0.
	if code <= 0 {
		return ExitGeneric
	}
	return code
}

package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain. Callers branch with errors.Is; the
// wrap helpers below attach context while keeping the sentinel
// reachable.
var (
	// ErrValidation marks bad input shape: empty titles, invalid dates,
	// negative durations.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a reference to a nonexistent goal or step.
	ErrNotFound = errors.New("not found")

	// ErrPartialFailure marks a multi-row operation that could not be
	// applied in full. The store rolls back, so nothing is left behind.
	ErrPartialFailure = errors.New("partial failure")

	// ErrExternalService marks an AI call that was unreachable, timed
	// out, or returned an unusable response.
	ErrExternalService = errors.New("external service failed")
)

// Validationf wraps ErrValidation with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

// NotFoundf wraps ErrNotFound with a formatted message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

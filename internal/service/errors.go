package service

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed input or a reference to a record that
// does not exist. It is surfaced to the caller as-is and never retried.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var (
	// ErrSlotUnavailable means a slot that looked free was taken by the time
	// the booking re-validated it.
	ErrSlotUnavailable = errors.New("slot no longer available")

	// ErrPropagationDepthExceeded aborts a due-date propagation whose chain
	// is deeper than the configured maximum. Nothing is applied.
	ErrPropagationDepthExceeded = errors.New("dependency propagation exceeded maximum depth")
)

// ConflictError is returned by strict checks that refuse to write over an
// existing commitment.
type ConflictError struct {
	Detection ConflictDetection
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("interval conflicts with %d existing event(s)", len(e.Detection.ConflictingEvents))
}

package room

import "errors"

var (
	// ErrMissingKey indicates a provisioning request without an idempotency key.
	ErrMissingKey = errors.New("room idempotency key is required")

	// ErrUnavailable indicates the room service is unreachable.
	ErrUnavailable = errors.New("room service unavailable")

	// ErrTimeout indicates the room request exceeded the configured timeout.
	ErrTimeout = errors.New("room request timed out")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("room retry attempts exhausted")
)

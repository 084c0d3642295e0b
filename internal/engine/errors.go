package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an operation references an order id
	// the store does not hold.
	ErrNotFound = errors.New("order not found")

	// ErrInvalidTransition is returned when a status change is attempted
	// on an order that has already reached a terminal state. The caller
	// lost a race or is acting on a stale view; the stored order is
	// untouched.
	ErrInvalidTransition = errors.New("order already in terminal state")
)

// ValidationError reports a rejected input value. The order is rejected
// before any state change, so the caller can correct and resubmit.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func newValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

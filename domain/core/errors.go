package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrSessionNotFound  = fmt.Errorf("%w: session", ErrNotFound)
	ErrDocumentNotFound = fmt.Errorf("%w: document", ErrNotFound)

	// Session errors
	ErrInvalidTransition = errors.New("invalid session state transition")
	ErrNothingGenerated  = errors.New("no documents have been generated")
)

// NewTransitionError reports an operation attempted in the wrong session state
func NewTransitionError(op string, from fmt.Stringer) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, op, from)
}

// NewStaleError reports work that finished after the session had moved on
func NewStaleError(op string) error {
	return fmt.Errorf("%w: session changed during %s", ErrInvalidTransition, op)
}

// NewNotFoundError reports a missing resource by identifier
func NewNotFoundError(kind error, id string) error {
	return fmt.Errorf("%w with id %s", kind, id)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsTransitionError(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}

package orders

import (
	"errors"
	"fmt"
)

// ErrOrderNotFound is returned when the order id does not exist at all.
var ErrOrderNotFound = errors.New("order not found")

// ValidationError marks bad or missing input. It is always detected
// before any write, so the caller can fix and resubmit.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// AuthorizationError marks an attempt to act on another user's resource.
type AuthorizationError struct {
	Msg string
}

func (e *AuthorizationError) Error() string { return e.Msg }

// StateConflictError marks an operation that is invalid for the entity's
// current state, e.g. cancelling an order that already shipped.
type StateConflictError struct {
	Msg string
}

func (e *StateConflictError) Error() string { return e.Msg }

// PersistenceError wraps a storage failure after the enclosing
// transaction has been rolled back. Nothing was applied.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

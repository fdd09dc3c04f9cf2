package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in
	// the store. Entity-specific variants below wrap it so callers can
	// match either level of granularity with errors.Is.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for the failing rule.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUpdateFailed is returned when an update operation fails, for
	// example because the entity does not exist.
	ErrUpdateFailed = errors.New("update failed")

	// ErrTransactionFailed is returned when a transaction fails to commit
	// or an operation inside it fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrContentNotFound indicates the requested content item is not in the pool.
	ErrContentNotFound = fmt.Errorf("%w: content", ErrNotFound)

	// ErrAssignmentNotFound indicates the (user, content) pair has no assignment.
	ErrAssignmentNotFound = fmt.Errorf("%w: assignment", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StoreError is a custom error type for store-specific failures with
// entity and operation context.
type StoreError struct {
	Entity    string // e.g. "content", "assignment"
	Operation string // e.g. "save", "increment_downvote"
	Message   string
	Err       error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation on %s failed: %s: %v", e.Operation, e.Entity, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

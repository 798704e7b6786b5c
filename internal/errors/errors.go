// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrNotFound         = errors.New("entity not found")
	ErrInvalidState     = errors.New("invalid state for operation")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrValidation       = errors.New("validation failed")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrDatabaseError    = errors.New("database error")
	ErrConfigInvalid    = errors.New("invalid configuration")
)

// ValidationError reports caller-supplied data violating a structural
// rule. It is always raised before any state mutation.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// StateError reports a transition that is illegal given the entity's
// current state.
type StateError struct {
	Entity    string
	ID        string
	Current   string
	Requested string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("state error [%s %s]: cannot %s from %s", e.Entity, e.ID, e.Requested, e.Current)
}

func (e *StateError) Unwrap() error {
	return ErrInvalidState
}

// NewStateError creates a new StateError.
func NewStateError(entity, id, current, requested string) *StateError {
	return &StateError{
		Entity:    entity,
		ID:        id,
		Current:   current,
		Requested: requested,
	}
}

// OperationError reports a request that is structurally valid but
// illegal against current entity data (unapproved counterparty,
// payment cap exceeded, same-owner transfer).
type OperationError struct {
	Operation string
	Entity    string
	ID        string
	Reason    string
}

func (e *OperationError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("operation error [%s] %s %s: %s", e.Operation, e.Entity, e.ID, e.Reason)
	}
	return fmt.Sprintf("operation error [%s] %s: %s", e.Operation, e.Entity, e.Reason)
}

func (e *OperationError) Unwrap() error {
	return ErrInvalidOperation
}

// NewOperationError creates a new OperationError.
func NewOperationError(operation, entity, id, reason string) *OperationError {
	return &OperationError{
		Operation: operation,
		Entity:    entity,
		ID:        id,
		Reason:    reason,
	}
}

// NotFoundError reports a referenced entity id absent from the store.
// Distinct from StateError so callers can tell "doesn't exist" from
// "exists but wrong state".
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

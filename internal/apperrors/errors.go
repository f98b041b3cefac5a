// Package apperrors defines the error vocabulary shared by services and the
// HTTP layer: validation failures and missing-resource lookups. Both wrap
// sentinel errors so callers can classify with errors.Is without depending
// on concrete types.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is wrapped by every missing-resource error.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is wrapped by every validation error.
	ErrInvalidInput = errors.New("invalid input")
)

// NotFoundError reports a lookup for a resource that does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Kind)
	}
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFoundError builds a NotFoundError for the given resource kind and id.
func NewNotFoundError(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// ValidationError reports a rejected input field with a reason.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError builds a ValidationError.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// RequiredError reports a missing required field.
func RequiredError(field string) error {
	return NewValidationError(field, "is required")
}

// IsNotFound reports whether err is (or wraps) a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError reports whether err is (or wraps) a validation error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

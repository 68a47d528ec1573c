package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidStatusTransition is returned when an order status change leaves a terminal state.
	ErrInvalidStatusTransition = errors.New("invalid order status transition")

	// ErrOrderLocked is returned when another request holds the per-order update lock.
	ErrOrderLocked = errors.New("order is being updated by another request")

	// ErrInvalidCredentials is returned by authentication for any username/password mismatch.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a *ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError reports that an entity could not be resolved for the given key.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
}

// NewNotFoundError builds a *NotFoundError for entity.
func NewNotFoundError(entity, key string) *NotFoundError {
	return &NotFoundError{Entity: entity, Key: key}
}

// IsNotFound reports whether err wraps a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

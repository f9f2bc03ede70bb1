// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is usually wrapped by a ValidationError naming the field.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidPassword is returned when a password doesn't meet requirements.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidUpdates is returned when an update names a field outside the
	// operation's allow-list. The whole update is rejected.
	ErrInvalidUpdates = errors.New("invalid updates")
)

// ValidationError describes a single field that failed validation.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError for field. err is the more
// specific cause (for example ErrInvalidEmail) and may be nil.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap exposes both ErrValidation and the specific cause to errors.Is.
func (e *ValidationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Err}
}

// FieldErrors collects every ValidationError inside err (including those
// combined with errors.Join) into a field -> message map. It returns nil when
// err carries no field-level detail.
func FieldErrors(err error) map[string]string {
	fields := make(map[string]string)
	collectFieldErrors(err, fields)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func collectFieldErrors(err error, fields map[string]string) {
	if err == nil {
		return
	}

	if ve, ok := err.(*ValidationError); ok {
		if _, seen := fields[ve.Field]; !seen {
			fields[ve.Field] = ve.Message
		}
		return
	}

	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		for _, inner := range u.Unwrap() {
			collectFieldErrors(inner, fields)
		}
	case interface{ Unwrap() error }:
		collectFieldErrors(u.Unwrap(), fields)
	}
}

package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a record id does not resolve. Callers treat it
	// as an absent result.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the acting user may not perform an operation.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials is returned by login when email or password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError reports missing or malformed input. No record is written
// when one is returned.
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

// Invalid builds a *ValidationError.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NotFound wraps ErrNotFound with the kind and id that missed.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %q %w", kind, id, ErrNotFound)
}

// Required returns a validation error for the first blank value in fields,
// checked in the order given.
func Required(fields ...[2]string) error {
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			return Invalid(f[0], "is required")
		}
	}
	return nil
}

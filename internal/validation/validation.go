// Package validation provides the structured field error used across the
// engine. Ill-formed input is rejected with an *Error naming the offending
// field; it is never silently clamped or coerced.
package validation

import (
	"errors"
	"fmt"
)

// Error describes a rejected input field.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Errorf builds an *Error for the given field.
func Errorf(field, format string, args ...any) *Error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Is reports whether err is a validation error.
func Is(err error) bool {
	var v *Error
	return errors.As(err, &v)
}

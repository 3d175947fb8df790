// Package errs defines the error kinds shared by every layer.
// Callers classify errors with errors.Is against the sentinel kinds.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks bad input: missing fields, malformed payloads,
	// mismatched column/value counts.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a referenced entity or row that does not exist.
	ErrNotFound = errors.New("does not exist")

	// ErrConflict marks an operation against a row in the wrong state,
	// e.g. a soft-deleted record.
	ErrConflict = errors.New("conflict")

	// ErrUnauthorized marks failed authentication.
	ErrUnauthorized = errors.New("unauthorized")
)

// Error carries a kind plus a human message.
type Error struct {
	Kind  error
	Field string
	Msg   string
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Validation returns an ErrValidation naming the offending field.
func Validation(field, format string, args ...any) error {
	return &Error{Kind: ErrValidation, Field: field, Msg: fmt.Sprintf(format, args...)}
}

// Required is the common "field X is required" validation error.
func Required(field string) error {
	return Validation(field, "%s is required", field)
}

// NotFound returns an ErrNotFound for the given entity and id.
func NotFound(entity, id string) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf("%s %s does not exist", entity, id)}
}

// Conflict returns an ErrConflict.
func Conflict(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Msg: fmt.Sprintf(format, args...)}
}

// Unauthorized returns an ErrUnauthorized.
func Unauthorized(msg string) error {
	return &Error{Kind: ErrUnauthorized, Msg: msg}
}

// FieldOf returns the offending field of a validation error, or "".
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}

package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is a recoverable input error returned to the caller
// with a message and, optionally, the submitted values for re-display.
type ValidationError struct {
	Err    error
	Fields []FieldError
	Values map[string]string
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

// NewValidationErrorWithValues echoes the caller's submitted values back
// alongside the error message.
func NewValidationErrorWithValues(err error, values map[string]string, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds, Values: values}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// ConflictError indicates a uniqueness conflict (duplicate ID number,
// duplicate enrollment). It maps to a 409 at the API boundary.
type ConflictError struct {
	Err    error
	Values map[string]string
}

func NewConflictError(err error, values ...map[string]string) error {
	cErr := &ConflictError{Err: err}
	if len(values) > 0 {
		cErr.Values = values[0]
	}
	return cErr
}

func (err ConflictError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

type shutdown struct {
	message string
}

// NewShutdownError returns an irrecoverable error that signals the
// application to terminate (systemic misconfiguration).
func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}

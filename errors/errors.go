// Package errors provides error handling for whereabouts.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - PII-safe error formatting
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrNotFound) {
//	    // handle not found
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is     = crdb.Is
	IsAny  = crdb.IsAny
	As     = crdb.As
	Unwrap = crdb.Unwrap
)

// Sentinel errors for the whereabouts error taxonomy.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrInvalidRequest indicates malformed or badly shaped caller input
	ErrInvalidRequest = New("invalid request")

	// ErrNotFound indicates the referenced entity does not exist
	ErrNotFound = New("not found")

	// ErrConflict indicates a duplicate-creation race. The resolver chain
	// handles it internally by falling back to the existing row; it should
	// never surface to a caller.
	ErrConflict = New("resource conflict")

	// ErrPersistence indicates the store is unavailable or a constraint
	// failed in a way that is not an expected duplicate
	ErrPersistence = New("persistence failure")

	// ErrInference indicates the external classifier failed. Reported
	// per-message on the prediction channel, never fatal to the session.
	ErrInference = New("inference failure")
)

// IsNotFound checks if an error is or wraps ErrNotFound
func IsNotFound(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsInvalidRequest checks if an error is or wraps ErrInvalidRequest
func IsInvalidRequest(err error) bool {
	return err != nil && Is(err, ErrInvalidRequest)
}

// IsConflict checks if an error is or wraps ErrConflict
func IsConflict(err error) bool {
	return err != nil && Is(err, ErrConflict)
}

// IsPersistence checks if an error is or wraps ErrPersistence
func IsPersistence(err error) bool {
	return err != nil && Is(err, ErrPersistence)
}

// IsInference checks if an error is or wraps ErrInference
func IsInference(err error) bool {
	return err != nil && Is(err, ErrInference)
}

// NewNotFound creates a not-found error with a formatted message
func NewNotFound(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}

// NewInvalidRequest creates an invalid-request error with a formatted message
func NewInvalidRequest(format string, args ...interface{}) error {
	return Wrap(ErrInvalidRequest, Newf(format, args...).Error())
}

// WrapPersistence wraps a store error as a persistence failure with context
func WrapPersistence(err error, context string) error {
	return Wrap(Wrap(ErrPersistence, err.Error()), context)
}

// WrapInference wraps a classifier error as an inference failure with context
func WrapInference(err error, context string) error {
	return Wrap(Wrap(ErrInference, err.Error()), context)
}

// HTTPStatus maps the error taxonomy to an HTTP status code.
// Unknown errors map to 500 like persistence failures.
func HTTPStatus(err error) int {
	switch {
	case IsInvalidRequest(err):
		return 400
	case IsNotFound(err):
		return 404
	default:
		return 500
	}
}

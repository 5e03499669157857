// Package errors provides structured error types for wheelhouse.
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: input validation failures (flags, files, names)
//   - PIP_*: failures of the pip subprocess
//   - RENDER_*: failures while generating build files
//   - INTERNAL_*: unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidWheel, "bad wheel filename: %s", name)
//	if errors.Is(err, errors.ErrCodeInvalidWheel) {
//	    // handle
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodePipFailed, origErr, "pip wheel failed")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidFlag         Code = "INVALID_FLAG"
	ErrCodeInvalidRequirements Code = "INVALID_REQUIREMENTS"
	ErrCodeInvalidAnnotations  Code = "INVALID_ANNOTATIONS"
	ErrCodeInvalidWheel        Code = "INVALID_WHEEL"
	ErrCodeInvalidConfig       Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Subprocess errors
	ErrCodePipFailed Code = "PIP_FAILED"

	// Output generation errors
	ErrCodeRender Code = "RENDER_ERROR"
	ErrCodeWrite  Code = "WRITE_ERROR"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Package errors provides structured error types for layerforge.
//
// This package defines error codes and types that enable:
//   - Consistent error handling between the core packages and the CLI
//   - Machine-readable error codes for programmatic handling
//   - User-friendly advisory messages for pre-traversal failures
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - NO_*: Missing prerequisites (short-circuit before traversal)
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidScale, "scale must be positive, got %g", scale)
//	if errors.Is(err, errors.ErrCodeInvalidScale) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidDocument, origErr, "load %s", path)
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
	ErrCodeInvalidScale    Code = "INVALID_SCALE"
	ErrCodeInvalidRotation Code = "INVALID_ROTATION"
	ErrCodeInvalidDocument Code = "INVALID_DOCUMENT"
	ErrCodeInvalidRules    Code = "INVALID_RULES"
	ErrCodeInvalidReport   Code = "INVALID_REPORT"

	// Missing prerequisites: these short-circuit a run before traversal
	// begins and surface as a single advisory message, never a report.
	ErrCodeNoProject     Code = "NO_PROJECT"
	ErrCodeNoTextureSets Code = "NO_TEXTURE_SETS"
	ErrCodeNoSelection   Code = "NO_SELECTION"
	ErrCodeNoSeedSources Code = "NO_SEED_SOURCES"

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

// IsAdvisory reports whether the error is a missing-prerequisite condition
// that should be shown as a plain advisory message instead of a failure.
func IsAdvisory(err error) bool {
	switch GetCode(err) {
	case ErrCodeNoProject, ErrCodeNoTextureSets, ErrCodeNoSelection, ErrCodeNoSeedSources:
		return true
	}
	return false
}

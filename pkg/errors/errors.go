// Package errors provides structured error types for beltflow.
//
// Codes are machine-readable so the CLI and the HTTP server can map failures
// to exit codes and status codes without string matching:
//   - INVALID_*: malformed layouts, catalogs or requests
//   - UNKNOWN_* / NOT_FOUND: references to things that do not exist
//   - CYCLE: the products graph contains a loop
//   - INTERNAL_ERROR: unexpected failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnknownPrototype, "object %d: unknown prototype %q", id, name)
//	if errors.Is(err, errors.ErrCodeUnknownPrototype) {
//	    // ...
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes.
const (
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidLayout    Code = "INVALID_LAYOUT"
	ErrCodeInvalidCatalog   Code = "INVALID_CATALOG"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeDuplicateObject  Code = "DUPLICATE_OBJECT"
	ErrCodeOccupied         Code = "TILE_OCCUPIED"
	ErrCodeUnknownPrototype Code = "UNKNOWN_PROTOTYPE"
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeCycle            Code = "CYCLE"
	ErrCodeInternal         Code = "INTERNAL_ERROR"
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

// Is reports whether any error in err's chain carries the given code.
// Joined errors are searched too.
func Is(err error, code Code) bool {
	return hasCode(err, code)
}

func hasCode(err error, code Code) bool {
	switch x := err.(type) {
	case nil:
		return false
	case *Error:
		return x.Code == code || hasCode(x.Cause, code)
	case interface{ Unwrap() []error }:
		for _, e := range x.Unwrap() {
			if hasCode(e, code) {
				return true
			}
		}
		return false
	case interface{ Code() Code }:
		return x.Code() == code
	case interface{ Unwrap() error }:
		return hasCode(x.Unwrap(), code)
	}
	return false
}

// GetCode extracts the first error code in err's chain.
// Returns empty string if no coded error is found.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var c interface{ Code() Code }
	if errors.As(err, &c) {
		return c.Code()
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

// HTTPStatus maps an error to the status code the server responds with.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidLayout, ErrCodeInvalidCatalog, ErrCodeInvalidFormat,
		ErrCodeDuplicateObject, ErrCodeOccupied, ErrCodeUnknownPrototype:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeCycle:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Package errors provides typed domain errors with machine-readable codes.
//
// Usage:
//
//	// In the engine - return typed errors
//	if lib == nil {
//	    return errors.NotFoundf("library %s", id)
//	}
//
//	// In callers - check with errors.Is
//	if errors.Is(err, errors.ErrNotFound) {
//	    ...
//	}
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
	New    = errors.New
)

// Code represents a machine-readable error code.
type Code string

// Error codes. Extraction, Catalog and TagWrite carry the containment
// policy of the scan pipeline: per-file skip, per-album skip, log-only.
const (
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"
	CodeConflict      Code = "CONFLICT"
	CodeValidation    Code = "VALIDATION"
	CodeExtraction    Code = "EXTRACTION"
	CodeCatalog       Code = "CATALOG"
	CodeTagWrite      Code = "TAG_WRITE"
	CodeInternal      Code = "INTERNAL"
)

// Error is a domain error with a code, message, and optional cause.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, cause: err}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound      = &Error{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists = &Error{Code: CodeAlreadyExists, Message: "already exists"}
	ErrConflict      = &Error{Code: CodeConflict, Message: "conflict"}
	ErrValidation    = &Error{Code: CodeValidation, Message: "validation error"}
	ErrExtraction    = &Error{Code: CodeExtraction, Message: "extraction failed"}
	ErrCatalog       = &Error{Code: CodeCatalog, Message: "catalog request failed"}
	ErrTagWrite      = &Error{Code: CodeTagWrite, Message: "tag write failed"}
	ErrInternal      = &Error{Code: CodeInternal, Message: "internal error"}
)

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with a formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// AlreadyExists creates an already exists error.
func AlreadyExists(msg string) *Error {
	return &Error{Code: CodeAlreadyExists, Message: msg}
}

// Conflict creates a conflict error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// Conflictf creates a conflict error with a formatted message.
func Conflictf(format string, args ...any) *Error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Extraction wraps a per-file extraction failure.
func Extraction(path string, err error) *Error {
	return &Error{Code: CodeExtraction, Message: "extract " + path, cause: err}
}

// Catalog wraps a catalog (network) failure.
func Catalog(msg string, err error) *Error {
	return &Error{Code: CodeCatalog, Message: msg, cause: err}
}

// TagWrite wraps a tag rewrite failure.
func TagWrite(path string, err error) *Error {
	return &Error{Code: CodeTagWrite, Message: "write tags " + path, cause: err}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}

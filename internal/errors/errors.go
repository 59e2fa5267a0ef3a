package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error is the structured error type for ragdex. It carries a stable code
// so callers can branch on failure kind without string matching.
type Error struct {
	// Code is the unique error code (e.g., "ERR_201_FILE_NOT_FOUND").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, External, ...).
	Category Category

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new Error with the given code and message.
// Category is derived from the code.
func New(code string, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
	}
}

// Newf creates a new Error with a formatted message.
func Newf(code string, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates an Error around an existing cause. The cause stays reachable
// through errors.Unwrap and shows up in the message.
func Wrap(err error, code string, message string) *Error {
	if err == nil {
		return nil
	}
	e := New(code, fmt.Sprintf("%s: %v", message, err))
	e.Cause = err
	return e
}

// NotFound creates a file-not-found error.
func NotFound(path string) *Error {
	return Newf(ErrCodeFileNotFound, "file not found: %s", path).WithDetail("path", path)
}

// UnsupportedType creates an unsupported-file-type error.
func UnsupportedType(ext string, supported []string) *Error {
	return Newf(ErrCodeUnsupportedType, "unsupported file type: %s (supported: %s)",
		ext, strings.Join(supported, ", ")).WithDetail("extension", ext)
}

// DimensionMismatch creates a configuration mismatch error for embedding dimensions.
func DimensionMismatch(expected, got int) *Error {
	return Newf(ErrCodeDimensionMismatch,
		"embedding dimension mismatch: index has %d, embedder produces %d", expected, got)
}

// GetCode extracts the error code from an Error anywhere in the chain.
// Returns empty string if no Error is found.
func GetCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

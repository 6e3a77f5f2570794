// Package errors defines the coded errors shared by the client packages,
// the CLI, and the demo server.
//
// An [Error] carries a machine-readable [Code] alongside the human
// message, so callers branch on failure class instead of matching
// strings:
//
//	err := errors.New(errors.ErrCodeInvalidShape, "shape0 must be positive (got %d)", shape0)
//	if errors.Is(err, errors.ErrCodeInvalidShape) {
//		// reject the request
//	}
//
// Wrap attaches a code and context to an underlying error while keeping
// the cause reachable through the standard Unwrap chain:
//
//	return errors.Wrap(errors.ErrCodeNetwork, err, "fetching manifest for %s", guid)
//
// The package also hosts the input validators used at request
// boundaries, so the CLI and the demo server reject bad identifiers the
// same way.
package errors

import (
	"errors"
	"fmt"
)

// Code classifies an error for programmatic handling. Codes are stable
// strings; messages are not.
type Code string

// Validation codes cover inputs rejected before any work happens.
const (
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidLayout    Code = "INVALID_LAYOUT"
	ErrCodeInvalidShape     Code = "INVALID_SHAPE"
	ErrCodeInvalidGUID      Code = "INVALID_GUID"
	ErrCodeInvalidDimension Code = "INVALID_DIMENSION"
	ErrCodeInvalidLineno    Code = "INVALID_LINENO"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidPath      Code = "INVALID_PATH"
)

// Reassembly codes cover tiles that land outside the target matrix and
// gaps left when coverage is required.
const (
	ErrCodeSourceBounds       Code = "OUT_OF_BOUNDS_SOURCE"
	ErrCodeDestBounds         Code = "OUT_OF_BOUNDS_DEST"
	ErrCodeIncompleteCoverage Code = "INCOMPLETE_COVERAGE"
)

// Lookup, transport, and auth codes mirror the server responses they
// are raised from.
const (
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	ErrCodeUnauthorized   Code = "UNAUTHORIZED"
	ErrCodeSessionExpired Code = "SESSION_EXPIRED"

	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error pairs a code with a formatted message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a coded error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a coded error around cause. The cause stays reachable
// through Unwrap.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the chain of err carries the given code.
func Is(err error, code Code) bool {
	return GetCode(err) == code
}

// IsBounds reports whether err is either of the reassembly bounds codes.
func IsBounds(err error) bool {
	return Is(err, ErrCodeSourceBounds) || Is(err, ErrCodeDestBounds)
}

// GetCode extracts the code from the chain of err. It returns the empty
// string when no coded error is present.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var coded interface{ Code() Code }
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return ""
}

// UserMessage returns the message of a coded error without its code
// prefix and cause chain. Other errors pass through unchanged.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// RateLimitedError reports a throttled request along with the server's
// advised wait.
type RateLimitedError struct {
	RetryAfter int // seconds, zero when the server gave no hint
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	}
	return "rate limited"
}

// Code classifies rate limiting for GetCode.
func (e *RateLimitedError) Code() Code {
	return ErrCodeRateLimited
}

// Package errors provides standardized domain errors with codes for the ChapterForge API.
//
// Usage:
//
//	// In services - return typed errors
//	if transcript.Untimed {
//	    return errors.NoTimingInformation("transcript has no per-segment timing")
//	}
//
//	// In handlers - check with errors.Is
//	if errors.Is(err, errors.ErrRateLimited) {
//	    response.TooManyRequests(w, err.Error(), true, logger)
//	    return
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
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

// Error codes used throughout the application.
const (
	CodeMissingTranscript     Code = "MISSING_TRANSCRIPT"
	CodeMalformedTimestamp    Code = "MALFORMED_TIMESTAMP"
	CodeNoTimingInformation   Code = "NO_TIMING_INFORMATION"
	CodeCredentialMissing     Code = "CREDENTIAL_MISSING"
	CodeCredentialInvalid     Code = "CREDENTIAL_INVALID"
	CodeRateLimited           Code = "RATE_LIMITED"
	CodeCompletionUnavailable Code = "COMPLETION_UNAVAILABLE"
	CodeNoChapters            Code = "NO_CHAPTERS"
	CodeExtractionFailed      Code = "EXTRACTION_FAILED"
	CodeValidation            Code = "VALIDATION"
	CodeInternal              Code = "INTERNAL"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeMissingTranscript, CodeValidation, CodeMalformedTimestamp, CodeNoTimingInformation:
		return http.StatusBadRequest
	case CodeCredentialMissing, CodeCredentialInvalid:
		return http.StatusUnauthorized
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeExtractionFailed:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Recoverable reports whether a client can recover from this code by
// generating chapters locally instead of calling the service again.
func (c Code) Recoverable() bool {
	switch c {
	case CodeCredentialMissing, CodeCredentialInvalid, CodeRateLimited,
		CodeCompletionUnavailable, CodeNoChapters, CodeInternal:
		return true
	default:
		return false
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
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

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrMissingTranscript     = &Error{Code: CodeMissingTranscript, Message: "transcript is required"}
	ErrMalformedTimestamp    = &Error{Code: CodeMalformedTimestamp, Message: "malformed timestamp"}
	ErrNoTimingInformation   = &Error{Code: CodeNoTimingInformation, Message: "no timing information"}
	ErrCredentialMissing     = &Error{Code: CodeCredentialMissing, Message: "no API key available"}
	ErrCredentialInvalid     = &Error{Code: CodeCredentialInvalid, Message: "invalid API key"}
	ErrRateLimited           = &Error{Code: CodeRateLimited, Message: "rate limit exceeded"}
	ErrCompletionUnavailable = &Error{Code: CodeCompletionUnavailable, Message: "completion service unavailable"}
	ErrNoChapters            = &Error{Code: CodeNoChapters, Message: "no chapters produced"}
	ErrExtractionFailed      = &Error{Code: CodeExtractionFailed, Message: "no transcript available"}
	ErrValidation            = &Error{Code: CodeValidation, Message: "validation error"}
	ErrInternal              = &Error{Code: CodeInternal, Message: "internal error"}
)

// Constructor functions for creating errors with custom messages.

// MissingTranscript creates a missing transcript error.
func MissingTranscript(msg string) *Error {
	return &Error{Code: CodeMissingTranscript, Message: msg}
}

// MalformedTimestamp creates a malformed timestamp error.
func MalformedTimestamp(msg string) *Error {
	return &Error{Code: CodeMalformedTimestamp, Message: msg}
}

// MalformedTimestampf creates a malformed timestamp error with formatted message.
func MalformedTimestampf(format string, args ...any) *Error {
	return &Error{Code: CodeMalformedTimestamp, Message: fmt.Sprintf(format, args...)}
}

// NoTimingInformation creates a no timing information error.
func NoTimingInformation(msg string) *Error {
	return &Error{Code: CodeNoTimingInformation, Message: msg}
}

// CredentialMissing creates a credential missing error.
func CredentialMissing(msg string) *Error {
	return &Error{Code: CodeCredentialMissing, Message: msg}
}

// CredentialInvalid creates a credential invalid error.
func CredentialInvalid(msg string) *Error {
	return &Error{Code: CodeCredentialInvalid, Message: msg}
}

// RateLimited creates a rate limited error.
func RateLimited(msg string) *Error {
	return &Error{Code: CodeRateLimited, Message: msg}
}

// CompletionUnavailable creates a completion unavailable error.
func CompletionUnavailable(msg string) *Error {
	return &Error{Code: CodeCompletionUnavailable, Message: msg}
}

// NoChapters creates a no chapters error.
func NoChapters(msg string) *Error {
	return &Error{Code: CodeNoChapters, Message: msg}
}

// ExtractionFailed creates an extraction failed error.
func ExtractionFailed(msg string) *Error {
	return &Error{Code: CodeExtractionFailed, Message: msg}
}

// ExtractionFailedf creates an extraction failed error with formatted message.
func ExtractionFailedf(format string, args ...any) *Error {
	return &Error{Code: CodeExtractionFailed, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}

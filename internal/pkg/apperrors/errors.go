package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error so callers and handlers can react without string matching.
type Kind string

const (
	// KindNotFound is an unknown report, holding or news reference.
	KindNotFound Kind = "not_found"
	// KindValidation is malformed or semantically invalid input.
	KindValidation Kind = "validation"
	// KindInvalidState is a transition the report's current status does not allow.
	KindInvalidState Kind = "invalid_state"
	// KindUpstreamUnavailable is a price source failure.
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	// KindStorageFailure is a transaction that could not commit. Rolled back, safe to retry.
	KindStorageFailure Kind = "storage_failure"
)

// Error carries a Kind, a caller-facing message and the optional underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NotFound builds a not-found error such as "report not found: <id>".
func NotFound(resource string, id interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found: %v", resource, id)}
}

// Validation builds a validation error with a formatted message.
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// InvalidState builds an invalid-state error with a formatted message.
func InvalidState(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

// Upstream wraps a price source failure.
func Upstream(message string, cause error) *Error {
	return &Error{Kind: KindUpstreamUnavailable, Message: message, Cause: cause}
}

// Storage wraps a persistence failure. Errors that already carry a Kind are returned unchanged
// so domain errors raised inside a transaction callback survive the rollback.
func Storage(message string, cause error) error {
	if cause == nil {
		return nil
	}
	var e *Error
	if errors.As(cause, &e) {
		return cause
	}
	return &Error{Kind: KindStorageFailure, Message: message, Cause: cause}
}

// KindOf returns the Kind of err, or "" for errors this package did not create.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsNotFound(err error) bool            { return KindOf(err) == KindNotFound }
func IsValidation(err error) bool          { return KindOf(err) == KindValidation }
func IsInvalidState(err error) bool        { return KindOf(err) == KindInvalidState }
func IsUpstreamUnavailable(err error) bool { return KindOf(err) == KindUpstreamUnavailable }
func IsStorageFailure(err error) bool      { return KindOf(err) == KindStorageFailure }

// StatusCode maps err to the HTTP status used by the handlers.
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindInvalidState:
		return http.StatusConflict
	case KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the message safe to return to a client. Storage and unknown errors are masked.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindStorageFailure {
		return e.Message
	}
	return "Internal Server Error"
}

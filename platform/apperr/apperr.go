// Package apperr provides standardized domain error types for the application.
// Services return these typed errors and the HTTP layer maps them to status
// codes and the lead response envelope.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind represents the category of error.
type Kind int

const (
	// KindUnknown is the default error kind when none is specified.
	KindUnknown Kind = iota
	// KindNotFound indicates a resource was not found.
	KindNotFound
	// KindValidation indicates the payload violated the lead schema.
	KindValidation
	// KindBadRequest indicates a malformed request body.
	KindBadRequest
	// KindRateLimited indicates the caller exceeded its request window.
	KindRateLimited
	// KindUnauthorized indicates authentication is required or failed.
	KindUnauthorized
	// KindForbidden indicates the action is not allowed for the caller.
	KindForbidden
	// KindUnavailable indicates a downstream dependency could not take the request.
	KindUnavailable
	// KindInternal indicates an unexpected internal error.
	KindInternal
)

// Error is a domain error with a typed Kind for HTTP mapping.
type Error struct {
	Kind    Kind
	Message string
	Op      string // Operation that failed (optional)
	Err     error  // Underlying error, never shown to callers (optional)
	Details any    // Additional details for response (optional)

	// RetryAfter tells rate-limited callers when to come back (optional).
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the appropriate HTTP status code for this error kind.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindBadRequest:
		return http.StatusBadRequest
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindUnavailable, KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// New creates a new domain error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithOp sets the operation and returns the same error.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// WithDetails sets response details and returns the same error.
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

// Validation creates a validation error.
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// BadRequest creates a bad request error.
func BadRequest(message string) *Error {
	return New(KindBadRequest, message)
}

// RateLimited creates a rate limit error.
func RateLimited(message string, retryAfter time.Duration) *Error {
	return &Error{Kind: KindRateLimited, Message: message, RetryAfter: retryAfter}
}

// Unavailable creates a downstream delivery error.
func Unavailable(message string, err error) *Error {
	return Wrap(KindUnavailable, message, err)
}

// Internal creates an internal server error.
func Internal(message string) *Error {
	return New(KindInternal, message)
}

// NotFound creates a not found error.
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// GetKind extracts the error kind from an error chain.
// Returns KindUnknown if the chain holds no *Error.
func GetKind(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindUnknown
}

// Is checks if err carries an *Error with the given kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}

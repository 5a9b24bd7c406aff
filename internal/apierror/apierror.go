// Package apierror defines the error taxonomy shared by all handlers and
// services. Every 4xx/5xx response goes through this package so that clients
// always receive the same envelope and internals (stack traces, SQL errors)
// never leak in production.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error into the HTTP-facing taxonomy.
type Kind int

const (
	// KindInternal is the default for unexpected failures.
	KindInternal Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindValidation
	KindConflict
)

// Error is the canonical service-layer error. Message is safe to show to
// clients; Violations is only set for KindValidation.
type Error struct {
	Kind       Kind
	Message    string
	Violations []string
	cause      error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Status maps the taxonomy onto HTTP status codes.
func (e *Error) Status() int {
	switch e.Kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func Unauthenticated(msg string) *Error { return &Error{Kind: KindUnauthenticated, Message: msg} }
func Forbidden(msg string) *Error       { return &Error{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) *Error        { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) *Error        { return &Error{Kind: KindConflict, Message: msg} }

func Validation(msg string, violations ...string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Violations: violations}
}

// Internal wraps an unexpected error. The cause is logged server-side only.
func Internal(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: msg, cause: cause}
}

// Validationf builds a validation error with a formatted message.
func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a not-found error with a formatted message.
func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// As extracts an *Error from err, or wraps it as KindInternal.
func As(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal("Internal server error", err)
}

// Response is the JSON envelope for error responses.
type Response struct {
	Message    string   `json:"message"`
	Violations []string `json:"violations,omitempty"`
}

// Payload builds the client-facing body. When production is true the message
// of an internal error is replaced with a generic one.
func (e *Error) Payload(production bool) Response {
	msg := e.Message
	if e.Kind == KindInternal && production {
		msg = "Internal server error"
	}
	return Response{Message: msg, Violations: e.Violations}
}

// Package apperr defines the error taxonomy shared by every layer of the
// service and its mapping to HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeNotFound            Code = "NOT_FOUND"
	CodeUnauthenticated     Code = "UNAUTHENTICATED"
	CodeUnauthorized        Code = "UNAUTHORIZED"
	CodeAlreadyJoined       Code = "ALREADY_JOINED"
	CodeFull                Code = "FULL"
	CodeAlreadyCollaborator Code = "ALREADY_COLLABORATOR"
	CodeUserNotFound        Code = "USER_NOT_FOUND"
	CodeValidation          Code = "VALIDATION_ERROR"
	CodeConflict            Code = "CONFLICT"
	CodeStoreUnavailable    Code = "STORE_UNAVAILABLE"
	CodeInternal            Code = "INTERNAL"
)

// HTTPStatus maps a code to the status returned by the HTTP layer.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound, CodeUserNotFound:
		return http.StatusNotFound
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeUnauthorized:
		return http.StatusForbidden
	case CodeAlreadyJoined, CodeFull, CodeAlreadyCollaborator, CodeConflict:
		return http.StatusConflict
	case CodeValidation:
		return http.StatusBadRequest
	case CodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is the domain error type carried across layers.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message, safe to show to clients
	Cause   error  // Wrapped underlying error
}

func (e *Error) Error() string {
	if e.Cause != nil && e.Code == CodeInternal {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Sentinels for errors.Is comparisons. Only the Code is compared.
var (
	ErrNotFound            = &Error{Code: CodeNotFound, Message: "not found"}
	ErrUnauthenticated     = &Error{Code: CodeUnauthenticated, Message: "not authenticated"}
	ErrUnauthorized        = &Error{Code: CodeUnauthorized, Message: "user not authorized"}
	ErrAlreadyJoined       = &Error{Code: CodeAlreadyJoined, Message: "you have already joined this event"}
	ErrFull                = &Error{Code: CodeFull, Message: "event is fully booked"}
	ErrAlreadyCollaborator = &Error{Code: CodeAlreadyCollaborator, Message: "user is already a collaborator"}
	ErrUserNotFound        = &Error{Code: CodeUserNotFound, Message: "user not found"}
	ErrValidation          = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrConflict            = &Error{Code: CodeConflict, Message: "conflict"}
	ErrStoreUnavailable    = &Error{Code: CodeStoreUnavailable, Message: "store unavailable"}
)

// New builds an error with the given code and message.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Newf builds an error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(code Code, msg string, cause error) *Error {
	return &Error{Code: code, Message: msg, Cause: cause}
}

// NotFound reports a missing resource by name, e.g. NotFound("event").
func NotFound(resource string) *Error {
	return &Error{Code: CodeNotFound, Message: resource + " not found"}
}

// Validation reports invalid input.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Unavailable reports a store timeout or connection failure.
func Unavailable(cause error) *Error {
	return &Error{Code: CodeStoreUnavailable, Message: "store unavailable", Cause: cause}
}

// CodeOf returns the code of the first *Error in err's chain, or
// CodeInternal when there is none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// From converts any error into an *Error, defaulting to CodeInternal.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(CodeInternal, "internal server error", err)
}

package apperrors

import (
	"errors"
	"net/http"
)

// Error codes surfaced in the response envelope
const (
	CodeNotFound     = "NOT_FOUND"
	CodeForbidden    = "FORBIDDEN"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeBadRequest   = "BAD_REQUEST"
	CodeValidation   = "VALIDATION_ERROR"
	CodeDatabase     = "DATABASE_ERROR"
)

// Error is a command/request failure with a stable code and HTTP status.
// Store failures are wrapped as CodeDatabase and never expose internals.
type Error struct {
	Code    string
	Status  int
	Message string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// NotFound reports a missing order, user or service.
func NotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Status: http.StatusNotFound, Message: message}
}

// Forbidden reports a role or ownership mismatch.
func Forbidden(message string) *Error {
	return &Error{Code: CodeForbidden, Status: http.StatusForbidden, Message: message}
}

// Unauthorized reports a missing or invalid credential.
func Unauthorized(message string) *Error {
	return &Error{Code: CodeUnauthorized, Status: http.StatusUnauthorized, Message: message}
}

// BadRequest reports an illegal state transition, inconsistent payment
// configuration or missing required field.
func BadRequest(message string) *Error {
	return &Error{Code: CodeBadRequest, Status: http.StatusBadRequest, Message: message}
}

// Validation reports a malformed command payload.
func Validation(message string) *Error {
	return &Error{Code: CodeValidation, Status: http.StatusBadRequest, Message: message}
}

// Database wraps a store failure behind a generic message.
func Database(cause error) *Error {
	return &Error{Code: CodeDatabase, Status: http.StatusInternalServerError, Message: "A database error occurred", cause: cause}
}

// From normalizes any error into an *Error, wrapping unknown errors as a
// generic database failure so internals never leak to clients.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Database(err)
}

// Package apperror defines the uniform error representation rendered by the
// HTTP error pipeline. Errors are classified at construction time rather than
// by inspecting ad hoc fields later.
package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an error for rendering purposes.
type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindValidation         Kind = "validation"
	KindAuthRequired       Kind = "authentication_required"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindCSRF               Kind = "csrf"
	KindServer             Kind = "server"
)

// Error is the single error shape that flows through the request pipeline.
// Once constructed it is rendered unchanged by the terminal stage.
type Error struct {
	Kind        Kind
	Status      int
	Title       string
	Message     string
	FieldErrors map[string]string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Title
}

// NotFound reports that no route or resource matched the request.
func NotFound() *Error {
	return &Error{
		Kind:    KindNotFound,
		Status:  http.StatusNotFound,
		Title:   "Resource Not Found",
		Message: "The requested resource couldn't be found.",
	}
}

// AuthenticationRequired reports a request that needs a logged-in user.
func AuthenticationRequired() *Error {
	return &Error{
		Kind:        KindAuthRequired,
		Status:      http.StatusUnauthorized,
		Title:       "Authentication required",
		Message:     "Authentication required",
		FieldErrors: map[string]string{"message": "Authentication required"},
	}
}

// InvalidCredentials reports a failed login. The message is deliberately
// generic so callers cannot tell whether the identifier or password was wrong.
func InvalidCredentials() *Error {
	return &Error{
		Kind:    KindInvalidCredentials,
		Status:  http.StatusUnauthorized,
		Title:   "Invalid credentials",
		Message: "Invalid credentials",
	}
}

// CSRF reports a state-mutating request without a valid CSRF token.
func CSRF() *Error {
	return &Error{
		Kind:    KindCSRF,
		Status:  http.StatusForbidden,
		Title:   "Invalid CSRF token",
		Message: "CSRF token missing or invalid",
	}
}

// Validation reports field-level validation failures.
func Validation(fields map[string]string) *Error {
	return &Error{
		Kind:        KindValidation,
		Status:      http.StatusBadRequest,
		Title:       "Validation Error",
		Message:     "The request contained invalid fields",
		FieldErrors: fields,
	}
}

// BadRequest reports a malformed or out-of-sequence client request.
func BadRequest(message string) *Error {
	return &Error{
		Kind:    KindValidation,
		Status:  http.StatusBadRequest,
		Title:   "Bad Request",
		Message: message,
	}
}

// From normalizes any error into an *Error. Errors without an explicit
// classification become a 500 "Server Error".
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return &Error{
		Kind:    KindServer,
		Status:  http.StatusInternalServerError,
		Title:   "Server Error",
		Message: err.Error(),
	}
}

// Package apperr classifies failures that cross the service boundary.
//
// Stores return plain wrapped errors and (nil, nil) for missing rows. The
// service layer converts input problems into validation errors before any
// write happens, and flags storage states that should be impossible as
// internal-consistency errors. The web layer maps each kind to a status code.
package apperr

import (
	"errors"
	"net/http"
)

type AppError struct {
	// Code is a machine-readable identifier such as "VALIDATION_ERROR".
	Code string `json:"code"`
	// Message is safe to show to the user.
	Message string `json:"error"`
	// HTTPStatus is the response status used by the web layer.
	HTTPStatus int `json:"-"`
	// Cause is logged server-side and never serialized.
	Cause error `json:"-"`
	// Details holds per-field validation messages.
	Details map[string]string `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

// ErrInconsistent marks storage states that indicate a bug rather than a user
// mistake, e.g. a conflict-ignoring insert that reports no row and a follow-up
// lookup that cannot find one either.
var ErrInconsistent = errors.New("internal consistency violation")

// Validation reports invalid caller input.
func Validation(msg string, details map[string]string) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// NotFound reports a missing resource, e.g. NotFound("outfit").
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// RateLimited reports that an expensive operation was refused.
func RateLimited(msg string) *AppError {
	return &AppError{
		Code:       "RATE_LIMITED",
		Message:    msg,
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// Unavailable reports a feature that is switched off or whose backend is down.
func Unavailable(msg string) *AppError {
	return &AppError{
		Code:       "UNAVAILABLE",
		Message:    msg,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// Internal wraps an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "an unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// Inconsistent wraps ErrInconsistent with context about what was expected.
func Inconsistent(msg string) *AppError {
	return &AppError{
		Code:       "INCONSISTENT_STATE",
		Message:    msg,
		HTTPStatus: http.StatusInternalServerError,
		Cause:      ErrInconsistent,
	}
}

// As extracts the *AppError from err's chain, or nil.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	ae := As(err)
	return ae != nil && ae.Code == "VALIDATION_ERROR"
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	ae := As(err)
	return ae != nil && ae.Code == "NOT_FOUND"
}

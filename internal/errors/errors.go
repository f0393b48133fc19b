// Package errors provides coded domain errors for the Ad Studio API.
//
// Loader and resolver code returns these (or types that match them via Is), and the
// HTTP boundary maps the Code to a status:
//
//	specs, err := res.AssetSpecsForChannel(ctx, channel)
//	if errors.Is(err, errors.ErrSourceNotFound) || errors.Is(err, errors.ErrConfigValidation) {
//	    // config unavailable, degrade the feature
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
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound         Code = "NOT_FOUND"
	CodeValidation       Code = "VALIDATION"
	CodeMissingParameter Code = "MISSING_PARAMETER"
	CodeUnauthorized     Code = "UNAUTHORIZED"
	CodeTooManyRequests  Code = "TOO_MANY_REQUESTS"
	CodeSourceNotFound   Code = "SOURCE_NOT_FOUND"
	CodeConfigValidation Code = "CONFIG_VALIDATION"
	CodeInternal         Code = "INTERNAL"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
// Config load failures are server faults: the caller did nothing wrong.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation, CodeMissingParameter:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target is an *Error with the same Code.
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

// WithDetails returns a copy of the error carrying details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound         = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation       = &Error{Code: CodeValidation, Message: "validation error"}
	ErrMissingParameter = &Error{Code: CodeMissingParameter, Message: "missing parameter"}
	ErrUnauthorized     = &Error{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrTooManyRequests  = &Error{Code: CodeTooManyRequests, Message: "too many requests"}
	ErrSourceNotFound   = &Error{Code: CodeSourceNotFound, Message: "config source not found"}
	ErrConfigValidation = &Error{Code: CodeConfigValidation, Message: "config validation failed"}
	ErrInternal         = &Error{Code: CodeInternal, Message: "internal error"}
)

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// MissingParameter creates the boundary-only error for an absent required parameter.
func MissingParameter(name string) *Error {
	return &Error{
		Code:    CodeMissingParameter,
		Message: fmt.Sprintf("%s parameter required", name),
		Details: map[string]string{"parameter": name},
	}
}

// Unauthorized creates an unauthorized error.
func Unauthorized(msg string) *Error {
	return &Error{Code: CodeUnauthorized, Message: msg}
}

// TooManyRequests creates a rate limit error.
func TooManyRequests(msg string) *Error {
	return &Error{Code: CodeTooManyRequests, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the Code of the first *Error in err's chain, or CodeInternal.
// Types that only implement Is (such as loader errors) are matched against the
// config sentinels.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	switch {
	case errors.Is(err, ErrSourceNotFound):
		return CodeSourceNotFound
	case errors.Is(err, ErrConfigValidation):
		return CodeConfigValidation
	}
	return CodeInternal
}

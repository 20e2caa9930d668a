package common

import (
	"errors"
	"net/http"
)

// APIError is an error that carries the HTTP status and the user-facing
// message it should be rendered with. Code is an optional machine-readable
// discriminator, e.g. "TWO_FACTOR_REQUIRED".
type APIError struct {
	Status  int
	Message string
	Code    string
	Err     error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// WithCode returns a copy of e carrying the given code.
func (e *APIError) WithCode(code string) *APIError {
	c := *e
	c.Code = code
	return &c
}

// Wrap returns a copy of e that unwraps to err.
func (e *APIError) Wrap(err error) *APIError {
	c := *e
	c.Err = err
	return &c
}

func newAPIError(status int, msg string) *APIError {
	return &APIError{Status: status, Message: msg}
}

func BadRequest(msg string) *APIError   { return newAPIError(http.StatusBadRequest, msg) }
func Unauthorized(msg string) *APIError { return newAPIError(http.StatusUnauthorized, msg) }
func Forbidden(msg string) *APIError    { return newAPIError(http.StatusForbidden, msg) }
func NotFound(msg string) *APIError     { return newAPIError(http.StatusNotFound, msg) }
func RequestTimeout(msg string) *APIError {
	return newAPIError(http.StatusRequestTimeout, msg)
}
func UnprocessableEntity(msg string) *APIError {
	return newAPIError(http.StatusUnprocessableEntity, msg)
}
func TooManyRequests(msg string) *APIError {
	return newAPIError(http.StatusTooManyRequests, msg)
}
func InternalServerError(msg string) *APIError {
	return newAPIError(http.StatusInternalServerError, msg)
}

// AsAPIError extracts an *APIError from err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// StatusOf returns the HTTP status for err, falling back to 500.
func StatusOf(err error) int {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Status
	}
	return http.StatusInternalServerError
}

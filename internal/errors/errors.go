// Package errors defines the HTTP-facing error taxonomy shared by the
// middleware and handler layers.
package errors

import "net/http"

// APIError carries an HTTP status alongside a user-visible message.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
}

func (e *APIError) Error() string { return e.Message }

// BadRequest builds a 400 error.
func BadRequest(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: message}
}

// Unauthorized builds a 401 error.
func Unauthorized(message string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Message: message}
}

// Forbidden builds a 403 error.
func Forbidden(message string) *APIError {
	return &APIError{Status: http.StatusForbidden, Message: message}
}

// NotFound builds a 404 error.
func NotFound(message string) *APIError {
	return &APIError{Status: http.StatusNotFound, Message: message}
}

// TooManyRequests builds a 429 error.
func TooManyRequests(message string) *APIError {
	return &APIError{Status: http.StatusTooManyRequests, Message: message}
}

// Internal builds a 500 error with an opaque message.
func Internal() *APIError {
	return &APIError{Status: http.StatusInternalServerError, Message: "internal server error"}
}

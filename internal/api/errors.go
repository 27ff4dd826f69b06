package api

import (
	"errors"
	"fmt"
)

// Common errors returned by the backend client.
var (
	// ErrServerUnavailable is returned when the backend cannot be reached.
	ErrServerUnavailable = errors.New("backend unavailable")

	// ErrTimeout is returned when a request exceeds its deadline.
	ErrTimeout = errors.New("request timed out")

	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("resource not found")

	// ErrBadPayload is returned when a response body is not valid JSON.
	ErrBadPayload = errors.New("malformed response payload")
)

// APIError wraps a failed backend call with the operation name and, when the
// failure was an HTTP response, the status code.
type APIError struct {
	Op         string // logical operation, e.g. "snapshot.agents"
	StatusCode int    // 0 when the request never produced a response
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("api: %s failed (HTTP %d): %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("api: %s failed: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying error for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

func newAPIError(op string, statusCode int, err error) *APIError {
	return &APIError{Op: op, StatusCode: statusCode, Err: err}
}

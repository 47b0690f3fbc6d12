package remote

import (
	"fmt"
	"net/http"
)

// NetworkError is returned when a request never produced an HTTP response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// UserMessage is shown to end users in place of transport details.
func (e *NetworkError) UserMessage() string {
	return "Could not reach the salon server."
}

// APIError is a non-2xx response from the backend. Message is the server's
// own message and may be empty.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: server returned %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: server returned %d: %s", e.Op, e.StatusCode, e.Message)
}

// UserMessage returns the server's message verbatim.
func (e *APIError) UserMessage() string {
	return e.Message
}

// IsValidation reports whether the server rejected the request content.
func (e *APIError) IsValidation() bool {
	return e.StatusCode == http.StatusBadRequest ||
		e.StatusCode == http.StatusUnprocessableEntity ||
		e.StatusCode == http.StatusRequestEntityTooLarge
}

// IsServer reports whether the server failed to handle a valid request.
func (e *APIError) IsServer() bool {
	return e.StatusCode >= 500
}

package models

import "fmt"

// APIError is the single error shape surfaced for backend calls, REST and
// GraphQL alike. Callers branch on IsNetworkError/IsTimeout/Status instead
// of inspecting raw transport errors.
type APIError struct {
	Message        string `json:"message"`
	Status         int    `json:"status,omitempty"`
	Code           string `json:"code,omitempty"`
	IsNetworkError bool   `json:"is_network_error"`
	IsTimeout      bool   `json:"is_timeout"`
}

func (e *APIError) Error() string {
	switch {
	case e.IsTimeout:
		return fmt.Sprintf("request timed out: %s", e.Message)
	case e.IsNetworkError:
		return fmt.Sprintf("network error: %s", e.Message)
	case e.Status != 0:
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
	default:
		return e.Message
	}
}

// NewNetworkError wraps a transport failure where no response was received.
func NewNetworkError(err error) *APIError {
	return &APIError{Message: err.Error(), IsNetworkError: true}
}

// NewTimeoutError wraps a request that exceeded its configured duration.
func NewTimeoutError(err error) *APIError {
	return &APIError{Message: err.Error(), IsTimeout: true}
}

// NewHTTPError wraps a non-2xx response.
func NewHTTPError(status int, code, message string) *APIError {
	return &APIError{Message: message, Status: status, Code: code}
}

// Retryable reports whether the failure may self-resolve: server errors,
// rate limiting, and transport failures retry; other client errors do not.
func (e *APIError) Retryable() bool {
	if e.IsNetworkError || e.IsTimeout {
		return true
	}
	if e.Status == 429 {
		return true
	}
	return e.Status >= 500
}

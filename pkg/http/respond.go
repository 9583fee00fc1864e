package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/abiolaogu/voxguard-console/internal/models"
)

// ErrorResponse is the standard error envelope returned by every endpoint
type ErrorResponse struct {
	Error   string `json:"error"`             // Machine-readable error code
	Message string `json:"message"`           // Human-readable message
	Details string `json:"details,omitempty"` // Optional additional context
}

// WriteJSON writes a JSON response body with the given status code
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a JSON error response with the given status code
func WriteError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	WriteErrorWithDetails(w, statusCode, errorCode, message, "")
}

// WriteErrorWithDetails writes a JSON error response with additional details
func WriteErrorWithDetails(w http.ResponseWriter, statusCode int, errorCode, message, details string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
		Details: details,
	})
}

// WriteAPIError translates a backend failure into the standard envelope.
// Typed backend errors carry their upstream status through; transport
// failures surface as 502 so the console can distinguish "backend down"
// from its own faults.
func WriteAPIError(w http.ResponseWriter, err error) {
	var apiErr *models.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.IsTimeout:
			WriteError(w, http.StatusGatewayTimeout, "backend_timeout", apiErr.Message)
		case apiErr.IsNetworkError:
			WriteError(w, http.StatusBadGateway, "backend_unreachable", apiErr.Message)
		case apiErr.Status != 0:
			code := apiErr.Code
			if code == "" {
				code = "backend_error"
			}
			WriteError(w, apiErr.Status, code, apiErr.Message)
		default:
			WriteError(w, http.StatusBadGateway, "backend_error", apiErr.Message)
		}
		return
	}

	switch {
	case errors.Is(err, models.ErrNotFound):
		WriteNotFound(w, "resource not found")
	case errors.Is(err, models.ErrUnauthorized):
		WriteUnauthorized(w, "authentication required")
	case errors.Is(err, models.ErrForbidden):
		WriteForbidden(w, "insufficient permissions")
	case errors.Is(err, models.ErrBadRequest):
		WriteBadRequest(w, err.Error())
	case errors.Is(err, models.ErrConflict):
		WriteConflict(w, err.Error())
	default:
		WriteInternalError(w, "an unexpected error occurred")
	}
}

// Common error writers for consistency
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message)
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message)
}

func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, "forbidden", message)
}

func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message)
}

func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, "conflict", message)
}

func WriteTooManyRequests(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, "rate_limit_exceeded", message)
}

func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message)
}

package handlers

import (
	"net/http"
	"strconv"
)

// intQueryParam parses an integer query parameter, returning fallback for
// missing or malformed values.
func intQueryParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

// floatQueryParam parses a float query parameter, returning fallback for
// missing or malformed values.
func floatQueryParam(r *http.Request, name string, fallback float64) float64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}

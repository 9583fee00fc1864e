package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/abiolaogu/voxguard-console/internal/middleware"
	"github.com/abiolaogu/voxguard-console/internal/session"
	pkghttp "github.com/abiolaogu/voxguard-console/pkg/http"
)

// SessionStore defines the session operations the auth handler needs
type SessionStore interface {
	Login(ctx context.Context, email, password string) session.LoginResult
	Logout(ctx context.Context)
	CheckAuth() bool
}

// AuthHandler handles operator login and logout
type AuthHandler struct {
	sessions SessionStore
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(sessions SessionStore) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates an operator against the seeded user table. Bad
// credentials are a structured 401 payload, not a 500.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	result := h.sessions.Login(r.Context(), req.Email, req.Password)
	if !result.Success {
		pkghttp.WriteJSON(w, http.StatusUnauthorized, result)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, result)
}

// Logout clears the current session. Always succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(r.Context())
	pkghttp.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Me returns the operator described by the presented token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, claims.User())
}

package handlers

import (
	"context"
	"net/http"
	"time"

	pkghttp "github.com/abiolaogu/voxguard-console/pkg/http"
)

// BackendPinger checks reachability of the fraud-detection gateway
type BackendPinger interface {
	Health(ctx context.Context) error
}

// HealthHandler reports console liveness plus backend reachability. The
// console stays up when the backend is down so operators still see the
// login page and cached state.
type HealthHandler struct {
	backend BackendPinger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(backend BackendPinger) *HealthHandler {
	return &HealthHandler{backend: backend}
}

// Health responds with the console and backend status.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{
		"status":  "ok",
		"backend": "up",
	}

	// Short deadline: a slow backend must not make the health check slow
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.backend.Health(ctx); err != nil {
		status["backend"] = "down"
	}

	pkghttp.WriteJSON(w, http.StatusOK, status)
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abiolaogu/voxguard-console/internal/acm"
	"github.com/abiolaogu/voxguard-console/internal/middleware"
	"github.com/abiolaogu/voxguard-console/internal/models"
	pkghttp "github.com/abiolaogu/voxguard-console/pkg/http"
	pkglogger "github.com/abiolaogu/voxguard-console/pkg/logger"
)

// AlertReader defines the read path for alerts (REST gateway)
type AlertReader interface {
	ListAlerts(ctx context.Context, q acm.AlertQuery) ([]models.Alert, error)
	GetAlert(ctx context.Context, id string) (*models.Alert, error)
}

// AlertMutator defines the write path for alerts (GraphQL layer)
type AlertMutator interface {
	UpdateAlertStatus(ctx context.Context, id string, status models.Status) error
	AssignAlert(ctx context.Context, id, assignedTo string) error
	SetAlertNotes(ctx context.Context, id, notes string) error
}

// AlertsHandler handles alert listing and analyst actions
type AlertsHandler struct {
	reader  AlertReader
	mutator AlertMutator
	audit   *pkglogger.AuditLogger
}

// NewAlertsHandler creates a new AlertsHandler
func NewAlertsHandler(reader AlertReader, mutator AlertMutator, audit *pkglogger.AuditLogger) *AlertsHandler {
	return &AlertsHandler{reader: reader, mutator: mutator, audit: audit}
}

// List returns alerts matching the optional severity/status/limit filters.
// Unknown filter values fall back to their defaults rather than erroring:
// a stale bookmark with an old severity name should still render a page.
func (h *AlertsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := acm.AlertQuery{Limit: intQueryParam(r, "limit", 0)}
	for _, s := range r.URL.Query()["severity"] {
		q.Severities = append(q.Severities, models.ParseSeverity(s))
	}
	for _, s := range r.URL.Query()["status"] {
		q.Statuses = append(q.Statuses, models.ParseStatus(s))
	}

	alerts, err := h.reader.ListAlerts(r.Context(), q)
	if err != nil {
		pkghttp.WriteAPIError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, alerts)
}

// Get returns a single alert.
func (h *AlertsHandler) Get(w http.ResponseWriter, r *http.Request) {
	alert, err := h.reader.GetAlert(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		pkghttp.WriteAPIError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, alert)
}

// UpdateStatusRequest represents the request body for a status transition
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=NEW INVESTIGATING CONFIRMED RESOLVED FALSE_POSITIVE"`
}

// UpdateStatus transitions an alert's status.
func (h *AlertsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	status := models.ParseStatus(req.Status)

	if err := h.mutator.UpdateAlertStatus(r.Context(), id, status); err != nil {
		pkghttp.WriteAPIError(w, err)
		return
	}

	h.audit.LogAlertAction("alert_status_changed", userID(r), id, map[string]string{"status": string(status)})
	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"id": id, "status": string(status)})
}

// AssignRequest represents the request body for an alert assignment
type AssignRequest struct {
	AssignedTo string `json:"assigned_to" validate:"required,email"`
}

// Assign sets the analyst an alert is assigned to.
func (h *AlertsHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.mutator.AssignAlert(r.Context(), id, req.AssignedTo); err != nil {
		pkghttp.WriteAPIError(w, err)
		return
	}

	h.audit.LogAlertAction("alert_assigned", userID(r), id, map[string]string{
		"assigned_to": pkglogger.SanitizedEmail(req.AssignedTo),
	})
	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"id": id, "assigned_to": req.AssignedTo})
}

// NotesRequest represents the request body for replacing an alert's notes
type NotesRequest struct {
	Notes string `json:"notes" validate:"max=4000"`
}

// SetNotes replaces an alert's free-text notes.
func (h *AlertsHandler) SetNotes(w http.ResponseWriter, r *http.Request) {
	var req NotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.mutator.SetAlertNotes(r.Context(), id, req.Notes); err != nil {
		pkghttp.WriteAPIError(w, err)
		return
	}

	h.audit.LogAlertAction("alert_notes_updated", userID(r), id, nil)
	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"id": id})
}

// userID returns the acting operator's id, or "" outside an authenticated
// request.
func userID(r *http.Request) string {
	if claims := middleware.GetUserFromContext(r); claims != nil {
		return claims.UserID
	}
	return ""
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abiolaogu/voxguard-console/internal/middleware"
	"github.com/abiolaogu/voxguard-console/internal/models"
	pkghttp "github.com/abiolaogu/voxguard-console/pkg/http"
	pkglogger "github.com/abiolaogu/voxguard-console/pkg/logger"
)

// CaseService defines the case operations the handler needs
type CaseService interface {
	ListCases(ctx context.Context, limit int) ([]models.FraudCase, error)
	GetCase(ctx context.Context, id string) (*models.FraudCase, error)
	CreateCase(ctx context.Context, title string, severity models.Severity, assignedTo string, alertIDs []string) (string, error)
	AppendCaseNote(ctx context.Context, caseID, author, content string) (*models.CaseNote, error)
	UpdateCaseStatus(ctx context.Context, id string, status models.CaseStatus) error
}

// CasesHandler handles fraud case management
type CasesHandler struct {
	service CaseService
	audit   *pkglogger.AuditLogger
}

// NewCasesHandler creates a new CasesHandler
func NewCasesHandler(service CaseService, audit *pkglogger.AuditLogger) *CasesHandler {
	return &CasesHandler{service: service, audit: audit}
}

// List returns the most recent cases.
func (h *CasesHandler) List(w http.ResponseWriter, r *http.Request) {
	cases, err := h.service.ListCases(r.Context(), intQueryParam(r, "limit", 50))
	if err != nil {
		pkghttp.WriteAPIError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, cases)
}

// Get returns one case with its full note trail.
func (h *CasesHandler) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.GetCase(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		pkghttp.WriteAPIError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, result)
}

// CreateCaseRequest represents the request body for opening a case
type CreateCaseRequest struct {
	Title      string   `json:"title" validate:"required,min=3,max=200"`
	Severity   string   `json:"severity" validate:"required,oneof=CRITICAL HIGH MEDIUM LOW"`
	AssignedTo string   `json:"assigned_to" validate:"omitempty,email"`
	AlertIDs   []string `json:"alert_ids" validate:"required,min=1,dive,required"`
}

// Create opens a new case linking the given alerts.
func (h *CasesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	id, err := h.service.CreateCase(r.Context(), req.Title, models.ParseSeverity(req.Severity), req.AssignedTo, req.AlertIDs)
	if err != nil {
		pkghttp.WriteAPIError(w, err)
		return
	}

	h.audit.LogCaseAction("case_created", userID(r), id, map[string]string{"severity": req.Severity})
	pkghttp.WriteJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// AppendNoteRequest represents the request body for appending a case note
type AppendNoteRequest struct {
	Content string `json:"content" validate:"required,min=1,max=4000"`
}

// AppendNote appends to a case's note trail. Notes are append-only; there
// is no edit or delete endpoint.
func (h *CasesHandler) AppendNote(w http.ResponseWriter, r *http.Request) {
	var req AppendNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	caseID := chi.URLParam(r, "id")

	author := "system"
	if claims := middleware.GetUserFromContext(r); claims != nil {
		author = claims.Email
	}

	note, err := h.service.AppendCaseNote(r.Context(), caseID, author, req.Content)
	if err != nil {
		pkghttp.WriteAPIError(w, err)
		return
	}

	h.audit.LogCaseAction("case_note_appended", userID(r), caseID, nil)
	pkghttp.WriteJSON(w, http.StatusCreated, note)
}

// UpdateCaseStatusRequest represents the request body for a case transition
type UpdateCaseStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open investigating escalated resolved closed"`
}

// UpdateStatus transitions a case's lifecycle state.
func (h *CasesHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateCaseStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	status := models.ParseCaseStatus(req.Status)

	if err := h.service.UpdateCaseStatus(r.Context(), id, status); err != nil {
		pkghttp.WriteAPIError(w, err)
		return
	}

	h.audit.LogCaseAction("case_status_changed", userID(r), id, map[string]string{"status": string(status)})
	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"id": id, "status": string(status)})
}

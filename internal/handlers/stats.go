package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abiolaogu/voxguard-console/internal/acm"
	"github.com/abiolaogu/voxguard-console/internal/graphql"
	pkghttp "github.com/abiolaogu/voxguard-console/pkg/http"
)

// StatsReader defines the dashboard read operations against the gateway
type StatsReader interface {
	GetStats(ctx context.Context) (*acm.Stats, error)
	ListThreats(ctx context.Context) ([]acm.Threat, error)
	Analytics(ctx context.Context, kind acm.AnalyticsKind) (json.RawMessage, error)
}

// CountsReader defines the aggregate counts query against the GraphQL layer
type CountsReader interface {
	QueryStatusCounts(ctx context.Context) (*graphql.StatusCounts, error)
}

// StatsHandler handles dashboard aggregates, threats, and analytics
type StatsHandler struct {
	stats  StatsReader
	counts CountsReader
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(stats StatsReader, counts CountsReader) *StatsHandler {
	return &StatsHandler{stats: stats, counts: counts}
}

// Stats returns the dashboard aggregate snapshot.
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.GetStats(r.Context())
	if err != nil {
		pkghttp.WriteAPIError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, stats)
}

// Threats returns the tracked fraud patterns.
func (h *StatsHandler) Threats(w http.ResponseWriter, r *http.Request) {
	threats, err := h.stats.ListThreats(r.Context())
	if err != nil {
		pkghttp.WriteAPIError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, threats)
}

// Analytics proxies one of the chart datasets. The kind is validated here
// so a typo'd path fails fast instead of round-tripping to the backend.
func (h *StatsHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	kind := acm.AnalyticsKind(chi.URLParam(r, "kind"))
	if !acm.ValidAnalyticsKind(kind) {
		pkghttp.WriteBadRequest(w, "unknown analytics kind")
		return
	}

	payload, err := h.stats.Analytics(r.Context(), kind)
	if err != nil {
		pkghttp.WriteAPIError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// StatusCounts returns the sidebar badge counts.
func (h *StatsHandler) StatusCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.counts.QueryStatusCounts(r.Context())
	if err != nil {
		pkghttp.WriteAPIError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, counts)
}

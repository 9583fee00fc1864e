package acm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/abiolaogu/voxguard-console/internal/models"
)

// AlertQuery filters the alert listing.
type AlertQuery struct {
	Severities []models.Severity
	Statuses   []models.Status
	Limit      int
}

// Threat is a named fraud pattern tracked by the backend (Wangiri, IRSF,
// CLI masking variants). The console only displays these.
type Threat struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Severity    string    `json:"severity"`
	Description string    `json:"description"`
	LastSeen    time.Time `json:"last_seen"`
}

// Stats is the aggregate snapshot rendered on the dashboard.
type Stats struct {
	TotalAlerts    int            `json:"total_alerts"`
	ActiveAlerts   int            `json:"active_alerts"`
	BySeverity     map[string]int `json:"by_severity"`
	ByStatus       map[string]int `json:"by_status"`
	CallsAnalyzed  int64          `json:"calls_analyzed"`
	BlockedNumbers int            `json:"blocked_numbers"`
}

// AlertUpdate carries the mutable alert fields. Nil fields are untouched.
type AlertUpdate struct {
	Status     *models.Status `json:"status,omitempty"`
	AssignedTo *string        `json:"assigned_to,omitempty"`
	Notes      *string        `json:"notes,omitempty"`
}

// AnalyticsKind names one of the analytics endpoints.
type AnalyticsKind string

const (
	AnalyticsTraffic      AnalyticsKind = "traffic"
	AnalyticsCarriers     AnalyticsKind = "carriers"
	AnalyticsDestinations AnalyticsKind = "destinations"
	AnalyticsHourly       AnalyticsKind = "hourly"
)

// ValidAnalyticsKind reports whether kind names a known analytics endpoint.
func ValidAnalyticsKind(kind AnalyticsKind) bool {
	switch kind {
	case AnalyticsTraffic, AnalyticsCarriers, AnalyticsDestinations, AnalyticsHourly:
		return true
	default:
		return false
	}
}

// ListAlerts fetches alerts matching the query.
func (c *Client) ListAlerts(ctx context.Context, q AlertQuery) ([]models.Alert, error) {
	params := url.Values{}
	for _, s := range q.Severities {
		params.Add("severity", string(s))
	}
	for _, s := range q.Statuses {
		params.Add("status", string(s))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	var alerts []models.Alert
	if err := c.do(ctx, http.MethodGet, "/acm/alerts", params, nil, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// GetAlert fetches a single alert by id.
func (c *Client) GetAlert(ctx context.Context, id string) (*models.Alert, error) {
	var alert models.Alert
	if err := c.do(ctx, http.MethodGet, "/acm/alerts/"+url.PathEscape(id), nil, nil, &alert); err != nil {
		return nil, err
	}
	return &alert, nil
}

// UpdateAlert patches an alert's status/assignment/notes. Retry is skipped:
// a replayed PATCH could clobber a concurrent analyst action.
func (c *Client) UpdateAlert(ctx context.Context, id string, update AlertUpdate) (*models.Alert, error) {
	var alert models.Alert
	if err := c.do(ctx, http.MethodPatch, "/acm/alerts/"+url.PathEscape(id), nil, update, &alert, WithSkipRetry()); err != nil {
		return nil, err
	}
	return &alert, nil
}

// ListThreats fetches the tracked fraud patterns.
func (c *Client) ListThreats(ctx context.Context) ([]Threat, error) {
	var threats []Threat
	if err := c.do(ctx, http.MethodGet, "/acm/threats", nil, nil, &threats); err != nil {
		return nil, err
	}
	return threats, nil
}

// GetStats fetches the dashboard aggregate snapshot.
func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if err := c.do(ctx, http.MethodGet, "/acm/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Analytics fetches one of the chart datasets. The payload is passed
// through untouched: chart shapes belong to the backend.
func (c *Client) Analytics(ctx context.Context, kind AnalyticsKind) (json.RawMessage, error) {
	if !ValidAnalyticsKind(kind) {
		return nil, &models.APIError{
			Message: fmt.Sprintf("unknown analytics kind %q", kind),
			Code:    "bad_request",
			Status:  http.StatusBadRequest,
		}
	}

	var payload json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/v1/analytics/"+string(kind), nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Health pings the gateway health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

package graphql

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/abiolaogu/voxguard-console/internal/models"
)

const alertStreamSubscription = `
subscription AlertStream($limit: Int!) {
  acm_alerts(order_by: {created_at: desc}, limit: $limit) {
    id
    b_number
    a_numbers
    source_ips
    call_count
    window_seconds
    severity
    status
    assigned_to
    notes
    created_at
    updated_at
  }
}`

// AlertStream subscribes to the live acm_alerts collection and decodes
// each snapshot into alert models. Each delivery is a full replacement
// snapshot, not a delta.
func (c *Client) AlertStream(ctx context.Context, limit int) (<-chan []models.Alert, <-chan error) {
	if limit <= 0 {
		limit = 100
	}

	raw, rawErrs := c.Subscribe(ctx, alertStreamSubscription, map[string]any{"limit": limit})

	alerts := make(chan []models.Alert, 16)
	errs := make(chan error, 16)

	go func() {
		defer close(alerts)
		defer close(errs)

		for {
			select {
			case <-ctx.Done():
				return

			case payload, ok := <-raw:
				if !ok {
					return
				}
				var data struct {
					Alerts []models.Alert `json:"acm_alerts"`
				}
				if err := json.Unmarshal(payload, &data); err != nil {
					c.logger.Warn("dropping undecodable alert snapshot", slog.Any("error", err))
					continue
				}
				select {
				case alerts <- data.Alerts:
				case <-ctx.Done():
					return
				}

			case err, ok := <-rawErrs:
				if !ok {
					return
				}
				select {
				case errs <- err:
				default:
				}
			}
		}
	}()

	return alerts, errs
}

package logger

import (
	"context"
	"log/slog"
	"time"
)

// AuditEvent represents a console audit event
type AuditEvent struct {
	EventType     string
	UserID        string
	TargetID      string
	Success       bool
	FailureReason string
	Metadata      map[string]string
}

// AuditLogger records the console's append-only audit trail: session
// events, alert actions, and case-note appends.
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger}
}

// LogSessionEvent logs login/logout and forced-logout events
func (al *AuditLogger) LogSessionEvent(event AuditEvent) {
	al.log("session", event)
}

// LogAlertAction logs analyst actions on alerts (status changes,
// assignments, notes)
func (al *AuditLogger) LogAlertAction(eventType, userID, alertID string, metadata map[string]string) {
	al.log("alert", AuditEvent{
		EventType: eventType,
		UserID:    userID,
		TargetID:  alertID,
		Success:   true,
		Metadata:  metadata,
	})
}

// LogCaseAction logs case lifecycle events and note appends
func (al *AuditLogger) LogCaseAction(eventType, userID, caseID string, metadata map[string]string) {
	al.log("case", AuditEvent{
		EventType: eventType,
		UserID:    userID,
		TargetID:  caseID,
		Success:   true,
		Metadata:  metadata,
	})
}

func (al *AuditLogger) log(auditType string, event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", auditType),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.UserID != "" {
		attrs = append(attrs, slog.String("user_id", event.UserID))
	}
	if event.TargetID != "" {
		attrs = append(attrs, slog.String("target_id", event.TargetID))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}
	for key, val := range event.Metadata {
		attrs = append(attrs, slog.String(key, val))
	}

	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(context.Background(), level, "audit", attrs...)
}

package models

import (
	"strings"
	"time"
)

// CaseStatus is the lifecycle state of a fraud case.
type CaseStatus string

const (
	CaseOpen          CaseStatus = "open"
	CaseInvestigating CaseStatus = "investigating"
	CaseEscalated     CaseStatus = "escalated"
	CaseResolved      CaseStatus = "resolved"
	CaseClosed        CaseStatus = "closed"
)

// ParseCaseStatus maps a raw string to a CaseStatus, falling back to open.
func ParseCaseStatus(s string) CaseStatus {
	switch CaseStatus(strings.ToLower(strings.TrimSpace(s))) {
	case CaseOpen:
		return CaseOpen
	case CaseInvestigating:
		return CaseInvestigating
	case CaseEscalated:
		return CaseEscalated
	case CaseResolved:
		return CaseResolved
	case CaseClosed:
		return CaseClosed
	default:
		return CaseOpen
	}
}

// CaseNote is one entry in a case's audit trail.
type CaseNote struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// FraudCase aggregates one or more linked alerts under a single
// investigation. Notes are an append-only audit trail: they are never
// edited or deleted, only added.
type FraudCase struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Status     CaseStatus `json:"status"`
	Severity   Severity   `json:"severity"`
	AssignedTo string     `json:"assigned_to,omitempty"`
	AlertIDs   []string   `json:"alert_ids"`
	Notes      []CaseNote `json:"notes"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// AddNote appends a note to the case. Appending is the only supported
// mutation of the note list.
func (c *FraudCase) AddNote(note CaseNote) {
	c.Notes = append(c.Notes, note)
	c.UpdatedAt = note.CreatedAt
}

// LinkAlert attaches an alert id to the case if not already linked.
func (c *FraudCase) LinkAlert(alertID string) {
	for _, id := range c.AlertIDs {
		if id == alertID {
			return
		}
	}
	c.AlertIDs = append(c.AlertIDs, alertID)
}

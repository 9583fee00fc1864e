package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Severity is the four-level ordinal classification attached to an alert.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Status is the analyst-facing lifecycle state of an alert.
type Status string

const (
	StatusNew           Status = "NEW"
	StatusInvestigating Status = "INVESTIGATING"
	StatusConfirmed     Status = "CONFIRMED"
	StatusResolved      Status = "RESOLVED"
	StatusFalsePositive Status = "FALSE_POSITIVE"
)

// ParseSeverity maps a raw string to a Severity. Unknown or empty values
// fall back to SeverityLow so a malformed backend record still renders.
func ParseSeverity(s string) Severity {
	switch Severity(strings.ToUpper(strings.TrimSpace(s))) {
	case SeverityCritical:
		return SeverityCritical
	case SeverityHigh:
		return SeverityHigh
	case SeverityMedium:
		return SeverityMedium
	case SeverityLow:
		return SeverityLow
	default:
		return SeverityLow
	}
}

// ParseStatus maps a raw string to a Status, falling back to StatusNew.
func ParseStatus(s string) Status {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusNew:
		return StatusNew
	case StatusInvestigating:
		return StatusInvestigating
	case StatusConfirmed:
		return StatusConfirmed
	case StatusResolved:
		return StatusResolved
	case StatusFalsePositive:
		return StatusFalsePositive
	default:
		return StatusNew
	}
}

// Rank returns the ordinal position of a severity (LOW < MEDIUM < HIGH < CRITICAL).
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	default:
		return 0
	}
}

// Badge holds the display metadata the console attaches to an enum value.
type Badge struct {
	Label       string `json:"label"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

var severityBadges = map[Severity]Badge{
	SeverityCritical: {Label: "Critical", Color: "red", Description: "Confirmed call-masking pattern, immediate action required"},
	SeverityHigh:     {Label: "High", Color: "orange", Description: "Strong fraud indicators across multiple sources"},
	SeverityMedium:   {Label: "Medium", Color: "yellow", Description: "Suspicious activity worth investigating"},
	SeverityLow:      {Label: "Low", Color: "gray", Description: "Weak signal, informational only"},
}

var statusBadges = map[Status]Badge{
	StatusNew:           {Label: "New", Color: "blue", Description: "Not yet triaged"},
	StatusInvestigating: {Label: "Investigating", Color: "purple", Description: "Assigned to an analyst"},
	StatusConfirmed:     {Label: "Confirmed", Color: "red", Description: "Verified fraud event"},
	StatusResolved:      {Label: "Resolved", Color: "green", Description: "Handled and closed"},
	StatusFalsePositive: {Label: "False Positive", Color: "gray", Description: "Dismissed after review"},
}

// SeverityBadge returns display metadata for a severity. Unknown severities
// get the LOW badge rather than an error.
func SeverityBadge(s Severity) Badge {
	if b, ok := severityBadges[s]; ok {
		return b
	}
	return severityBadges[SeverityLow]
}

// StatusBadge returns display metadata for a status, defaulting to NEW.
func StatusBadge(s Status) Badge {
	if b, ok := statusBadges[s]; ok {
		return b
	}
	return statusBadges[StatusNew]
}

// Alert is a detected call-masking/fraud event. Alerts are created by the
// detection backend and only ever mutated (status, assignment, notes) by
// analyst actions; the console never deletes them.
type Alert struct {
	ID            string    `json:"id"`
	BNumber       string    `json:"b_number"`
	ANumbers      []string  `json:"a_numbers"`
	SourceIPs     []string  `json:"source_ips"`
	CallCount     int       `json:"call_count"`
	WindowSeconds int       `json:"window_seconds"`
	Severity      Severity  `json:"severity"`
	Status        Status    `json:"status"`
	AssignedTo    string    `json:"assigned_to,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UnmarshalJSON decodes an alert while coercing unknown severity/status
// values to their display defaults instead of rejecting the record.
func (a *Alert) UnmarshalJSON(data []byte) error {
	type rawAlert struct {
		ID            string    `json:"id"`
		BNumber       string    `json:"b_number"`
		ANumbers      []string  `json:"a_numbers"`
		SourceIPs     []string  `json:"source_ips"`
		CallCount     int       `json:"call_count"`
		WindowSeconds int       `json:"window_seconds"`
		Severity      string    `json:"severity"`
		Status        string    `json:"status"`
		AssignedTo    string    `json:"assigned_to"`
		Notes         string    `json:"notes"`
		CreatedAt     time.Time `json:"created_at"`
		UpdatedAt     time.Time `json:"updated_at"`
	}

	var raw rawAlert
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	a.ID = raw.ID
	a.BNumber = raw.BNumber
	a.ANumbers = raw.ANumbers
	a.SourceIPs = raw.SourceIPs
	a.CallCount = raw.CallCount
	a.WindowSeconds = raw.WindowSeconds
	a.Severity = ParseSeverity(raw.Severity)
	a.Status = ParseStatus(raw.Status)
	a.AssignedTo = raw.AssignedTo
	a.Notes = raw.Notes
	a.CreatedAt = raw.CreatedAt
	a.UpdatedAt = raw.UpdatedAt
	return nil
}

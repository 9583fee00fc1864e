package graphql

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/abiolaogu/voxguard-console/internal/models"
)

// Hasura operations against the acm_alerts and acm_cases collections.

const updateAlertStatusMutation = `
mutation UpdateAlertStatus($id: String!, $status: String!) {
  update_acm_alerts_by_pk(pk_columns: {id: $id}, _set: {status: $status}) {
    id
    status
    updated_at
  }
}`

const assignAlertMutation = `
mutation AssignAlert($id: String!, $assignedTo: String!) {
  update_acm_alerts_by_pk(pk_columns: {id: $id}, _set: {assigned_to: $assignedTo}) {
    id
    assigned_to
    updated_at
  }
}`

const setAlertNotesMutation = `
mutation SetAlertNotes($id: String!, $notes: String!) {
  update_acm_alerts_by_pk(pk_columns: {id: $id}, _set: {notes: $notes}) {
    id
    notes
    updated_at
  }
}`

type updatedAlert struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	AssignedTo string    `json:"assigned_to"`
	Notes      string    `json:"notes"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type alertUpdateData struct {
	Alert *updatedAlert `json:"update_acm_alerts_by_pk"`
}

// UpdateAlertStatus transitions an alert's status.
func (c *Client) UpdateAlertStatus(ctx context.Context, id string, status models.Status) error {
	var data alertUpdateData
	err := c.Mutate(ctx, updateAlertStatusMutation, map[string]any{
		"id":     id,
		"status": string(status),
	}, &data)
	if err != nil {
		return err
	}
	if data.Alert == nil {
		return &models.APIError{Message: "alert not found", Code: "not_found", Status: 404}
	}
	return nil
}

// AssignAlert sets the analyst an alert is assigned to.
func (c *Client) AssignAlert(ctx context.Context, id, assignedTo string) error {
	var data alertUpdateData
	err := c.Mutate(ctx, assignAlertMutation, map[string]any{
		"id":         id,
		"assignedTo": assignedTo,
	}, &data)
	if err != nil {
		return err
	}
	if data.Alert == nil {
		return &models.APIError{Message: "alert not found", Code: "not_found", Status: 404}
	}
	return nil
}

// SetAlertNotes replaces an alert's free-text notes.
func (c *Client) SetAlertNotes(ctx context.Context, id, notes string) error {
	var data alertUpdateData
	err := c.Mutate(ctx, setAlertNotesMutation, map[string]any{
		"id":    id,
		"notes": notes,
	}, &data)
	if err != nil {
		return err
	}
	if data.Alert == nil {
		return &models.APIError{Message: "alert not found", Code: "not_found", Status: 404}
	}
	return nil
}

const listCasesQuery = `
query ListCases($limit: Int!) {
  acm_cases(order_by: {created_at: desc}, limit: $limit) {
    id
    title
    status
    severity
    assigned_to
    alert_ids
    created_at
    updated_at
    notes(order_by: {created_at: asc}) {
      id
      author
      content
      created_at
    }
  }
}`

const getCaseQuery = `
query GetCase($id: String!) {
  acm_cases_by_pk(id: $id) {
    id
    title
    status
    severity
    assigned_to
    alert_ids
    created_at
    updated_at
    notes(order_by: {created_at: asc}) {
      id
      author
      content
      created_at
    }
  }
}`

const insertCaseMutation = `
mutation InsertCase($id: String!, $title: String!, $severity: String!, $assignedTo: String, $alertIds: jsonb!) {
  insert_acm_cases_one(object: {id: $id, title: $title, status: "open", severity: $severity, assigned_to: $assignedTo, alert_ids: $alertIds}) {
    id
  }
}`

const insertCaseNoteMutation = `
mutation InsertCaseNote($id: String!, $caseId: String!, $author: String!, $content: String!) {
  insert_acm_case_notes_one(object: {id: $id, case_id: $caseId, author: $author, content: $content}) {
    id
    created_at
  }
}`

const updateCaseStatusMutation = `
mutation UpdateCaseStatus($id: String!, $status: String!) {
  update_acm_cases_by_pk(pk_columns: {id: $id}, _set: {status: $status}) {
    id
    status
  }
}`

type rawCase struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	Status     string        `json:"status"`
	Severity   string        `json:"severity"`
	AssignedTo string        `json:"assigned_to"`
	AlertIDs   []string      `json:"alert_ids"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
	Notes      []rawCaseNote `json:"notes"`
}

type rawCaseNote struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (r rawCase) toModel() models.FraudCase {
	notes := make([]models.CaseNote, 0, len(r.Notes))
	for _, n := range r.Notes {
		notes = append(notes, models.CaseNote{
			ID:        n.ID,
			Author:    n.Author,
			Content:   n.Content,
			CreatedAt: n.CreatedAt,
		})
	}
	return models.FraudCase{
		ID:         r.ID,
		Title:      r.Title,
		Status:     models.ParseCaseStatus(r.Status),
		Severity:   models.ParseSeverity(r.Severity),
		AssignedTo: r.AssignedTo,
		AlertIDs:   r.AlertIDs,
		Notes:      notes,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// ListCases fetches the most recent fraud cases.
func (c *Client) ListCases(ctx context.Context, limit int) ([]models.FraudCase, error) {
	if limit <= 0 {
		limit = 50
	}

	var data struct {
		Cases []rawCase `json:"acm_cases"`
	}
	if err := c.Query(ctx, listCasesQuery, map[string]any{"limit": limit}, &data); err != nil {
		return nil, err
	}

	cases := make([]models.FraudCase, 0, len(data.Cases))
	for _, raw := range data.Cases {
		cases = append(cases, raw.toModel())
	}
	return cases, nil
}

// GetCase fetches one case with its full note trail.
func (c *Client) GetCase(ctx context.Context, id string) (*models.FraudCase, error) {
	var data struct {
		Case *rawCase `json:"acm_cases_by_pk"`
	}
	if err := c.Query(ctx, getCaseQuery, map[string]any{"id": id}, &data); err != nil {
		return nil, err
	}
	if data.Case == nil {
		return nil, &models.APIError{Message: "case not found", Code: "not_found", Status: 404}
	}
	result := data.Case.toModel()
	return &result, nil
}

// CreateCase opens a new case linking the given alerts and returns its id.
func (c *Client) CreateCase(ctx context.Context, title string, severity models.Severity, assignedTo string, alertIDs []string) (string, error) {
	id := uuid.New().String()

	vars := map[string]any{
		"id":       id,
		"title":    title,
		"severity": string(severity),
		"alertIds": alertIDs,
	}
	if assignedTo != "" {
		vars["assignedTo"] = assignedTo
	} else {
		vars["assignedTo"] = nil
	}

	var data struct {
		Case *struct {
			ID string `json:"id"`
		} `json:"insert_acm_cases_one"`
	}
	if err := c.Mutate(ctx, insertCaseMutation, vars, &data); err != nil {
		return "", err
	}
	return id, nil
}

// AppendCaseNote appends to a case's audit trail. There is no edit or
// delete counterpart on purpose.
func (c *Client) AppendCaseNote(ctx context.Context, caseID, author, content string) (*models.CaseNote, error) {
	id := uuid.New().String()

	var data struct {
		Note *struct {
			ID        string    `json:"id"`
			CreatedAt time.Time `json:"created_at"`
		} `json:"insert_acm_case_notes_one"`
	}
	err := c.Mutate(ctx, insertCaseNoteMutation, map[string]any{
		"id":      id,
		"caseId":  caseID,
		"author":  author,
		"content": content,
	}, &data)
	if err != nil {
		return nil, err
	}

	note := &models.CaseNote{ID: id, Author: author, Content: content}
	if data.Note != nil {
		note.CreatedAt = data.Note.CreatedAt
	}
	return note, nil
}

// UpdateCaseStatus transitions a case's lifecycle state.
func (c *Client) UpdateCaseStatus(ctx context.Context, id string, status models.CaseStatus) error {
	var data struct {
		Case *struct {
			ID string `json:"id"`
		} `json:"update_acm_cases_by_pk"`
	}
	err := c.Mutate(ctx, updateCaseStatusMutation, map[string]any{
		"id":     id,
		"status": string(status),
	}, &data)
	if err != nil {
		return err
	}
	if data.Case == nil {
		return &models.APIError{Message: "case not found", Code: "not_found", Status: 404}
	}
	return nil
}

const statusCountsQuery = `
query StatusCounts {
  new_count: acm_alerts_aggregate(where: {status: {_eq: "NEW"}}) {
    aggregate { count }
  }
  investigating_count: acm_alerts_aggregate(where: {status: {_eq: "INVESTIGATING"}}) {
    aggregate { count }
  }
  confirmed_count: acm_alerts_aggregate(where: {status: {_eq: "CONFIRMED"}}) {
    aggregate { count }
  }
  critical_count: acm_alerts_aggregate(where: {severity: {_eq: "CRITICAL"}}) {
    aggregate { count }
  }
}`

// StatusCounts are the status-bucketed aggregate counts shown in the
// console's sidebar badges.
type StatusCounts struct {
	New           int `json:"new_count"`
	Investigating int `json:"investigating_count"`
	Confirmed     int `json:"confirmed_count"`
	Critical      int `json:"critical_count"`
}

type aggregateCount struct {
	Aggregate struct {
		Count int `json:"count"`
	} `json:"aggregate"`
}

// QueryStatusCounts fetches the aggregate alert counts by status bucket.
func (c *Client) QueryStatusCounts(ctx context.Context) (*StatusCounts, error) {
	var data struct {
		New           aggregateCount `json:"new_count"`
		Investigating aggregateCount `json:"investigating_count"`
		Confirmed     aggregateCount `json:"confirmed_count"`
		Critical      aggregateCount `json:"critical_count"`
	}
	if err := c.Query(ctx, statusCountsQuery, nil, &data); err != nil {
		return nil, err
	}

	return &StatusCounts{
		New:           data.New.Aggregate.Count,
		Investigating: data.Investigating.Aggregate.Count,
		Confirmed:     data.Confirmed.Aggregate.Count,
		Critical:      data.Critical.Aggregate.Count,
	}, nil
}

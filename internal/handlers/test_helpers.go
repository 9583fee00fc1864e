package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/abiolaogu/voxguard-console/internal/acm"
	"github.com/abiolaogu/voxguard-console/internal/models"
	"github.com/abiolaogu/voxguard-console/internal/session"
	pkglogger "github.com/abiolaogu/voxguard-console/pkg/logger"
)

// Mock implementations for testing

type mockSessionStore struct {
	LoginFunc     func(ctx context.Context, email, password string) session.LoginResult
	LogoutFunc    func(ctx context.Context)
	CheckAuthFunc func() bool
}

func (m *mockSessionStore) Login(ctx context.Context, email, password string) session.LoginResult {
	return m.LoginFunc(ctx, email, password)
}

func (m *mockSessionStore) Logout(ctx context.Context) {
	if m.LogoutFunc != nil {
		m.LogoutFunc(ctx)
	}
}

func (m *mockSessionStore) CheckAuth() bool {
	if m.CheckAuthFunc != nil {
		return m.CheckAuthFunc()
	}
	return false
}

type mockAlertReader struct {
	ListAlertsFunc func(ctx context.Context, q acm.AlertQuery) ([]models.Alert, error)
	GetAlertFunc   func(ctx context.Context, id string) (*models.Alert, error)
}

func (m *mockAlertReader) ListAlerts(ctx context.Context, q acm.AlertQuery) ([]models.Alert, error) {
	return m.ListAlertsFunc(ctx, q)
}

func (m *mockAlertReader) GetAlert(ctx context.Context, id string) (*models.Alert, error) {
	return m.GetAlertFunc(ctx, id)
}

type mockAlertMutator struct {
	UpdateAlertStatusFunc func(ctx context.Context, id string, status models.Status) error
	AssignAlertFunc       func(ctx context.Context, id, assignedTo string) error
	SetAlertNotesFunc     func(ctx context.Context, id, notes string) error
}

func (m *mockAlertMutator) UpdateAlertStatus(ctx context.Context, id string, status models.Status) error {
	return m.UpdateAlertStatusFunc(ctx, id, status)
}

func (m *mockAlertMutator) AssignAlert(ctx context.Context, id, assignedTo string) error {
	return m.AssignAlertFunc(ctx, id, assignedTo)
}

func (m *mockAlertMutator) SetAlertNotes(ctx context.Context, id, notes string) error {
	return m.SetAlertNotesFunc(ctx, id, notes)
}

type mockCaseService struct {
	ListCasesFunc        func(ctx context.Context, limit int) ([]models.FraudCase, error)
	GetCaseFunc          func(ctx context.Context, id string) (*models.FraudCase, error)
	CreateCaseFunc       func(ctx context.Context, title string, severity models.Severity, assignedTo string, alertIDs []string) (string, error)
	AppendCaseNoteFunc   func(ctx context.Context, caseID, author, content string) (*models.CaseNote, error)
	UpdateCaseStatusFunc func(ctx context.Context, id string, status models.CaseStatus) error
}

func (m *mockCaseService) ListCases(ctx context.Context, limit int) ([]models.FraudCase, error) {
	return m.ListCasesFunc(ctx, limit)
}

func (m *mockCaseService) GetCase(ctx context.Context, id string) (*models.FraudCase, error) {
	return m.GetCaseFunc(ctx, id)
}

func (m *mockCaseService) CreateCase(ctx context.Context, title string, severity models.Severity, assignedTo string, alertIDs []string) (string, error) {
	return m.CreateCaseFunc(ctx, title, severity, assignedTo, alertIDs)
}

func (m *mockCaseService) AppendCaseNote(ctx context.Context, caseID, author, content string) (*models.CaseNote, error) {
	return m.AppendCaseNoteFunc(ctx, caseID, author, content)
}

func (m *mockCaseService) UpdateCaseStatus(ctx context.Context, id string, status models.CaseStatus) error {
	return m.UpdateCaseStatusFunc(ctx, id, status)
}

type mockBackendPinger struct {
	HealthFunc func(ctx context.Context) error
}

func (m *mockBackendPinger) Health(ctx context.Context) error {
	return m.HealthFunc(ctx)
}

func testAudit() *pkglogger.AuditLogger {
	return pkglogger.NewAuditLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func decodeBody[T any](data []byte) (T, error) {
	var v T
	err := json.Unmarshal(data, &v)
	return v, err
}

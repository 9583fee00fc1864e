package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abiolaogu/voxguard-console/internal/models"
	"github.com/abiolaogu/voxguard-console/internal/session"
	"github.com/abiolaogu/voxguard-console/internal/storage"
	pkglogger "github.com/abiolaogu/voxguard-console/pkg/logger"
)

const testSecret = "test-session-secret-0123456789abcdef"

func newSessionStore(t *testing.T) *session.Store {
	t.Helper()

	st, err := storage.New(t.TempDir())
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := session.NewStore(st, session.NewTokenManager(testSecret, time.Hour), logger, pkglogger.NewAuditLogger(logger))
	require.NoError(t, err)

	require.NoError(t, store.SeedUsers(
		session.Seed{Email: "admin@voxguard.io", Name: "Admin", Role: models.RoleAdmin, Password: "correct-horse-battery"},
		session.Seed{Email: "viewer@voxguard.io", Name: "Viewer", Role: models.RoleViewer, Password: "correct-horse-battery"},
	))
	return store
}

func loginToken(t *testing.T, store *session.Store, email string) string {
	t.Helper()
	result := store.Login(t.Context(), email, "correct-horse-battery")
	require.True(t, result.Success)
	return result.Token
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	store := newSessionStore(t)
	handler := Authenticate(store)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	store := newSessionStore(t)
	handler := Authenticate(store)(okHandler())

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_GarbageToken(t *testing.T) {
	store := newSessionStore(t)
	handler := Authenticate(store)(okHandler())

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_ValidTokenInjectsClaims(t *testing.T) {
	store := newSessionStore(t)
	token := loginToken(t, store, "admin@voxguard.io")

	var got *session.Claims
	handler := Authenticate(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetUserFromContext(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "admin@voxguard.io", got.Email)
	assert.Equal(t, models.RoleAdmin, got.Role)
}

func TestRequireRole_AdminAlwaysPasses(t *testing.T) {
	store := newSessionStore(t)
	token := loginToken(t, store, "admin@voxguard.io")

	handler := Authenticate(store)(RequireRole(models.RoleAnalyst)(okHandler()))

	req := httptest.NewRequest("POST", "/cases", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole_ViewerIsForbidden(t *testing.T) {
	store := newSessionStore(t)
	token := loginToken(t, store, "viewer@voxguard.io")

	handler := Authenticate(store)(RequireRole(models.RoleAnalyst)(okHandler()))

	req := httptest.NewRequest("POST", "/cases", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequirePermission(t *testing.T) {
	store := newSessionStore(t)

	adminToken := loginToken(t, store, "admin@voxguard.io")
	viewerToken := loginToken(t, store, "viewer@voxguard.io")

	handler := Authenticate(store)(RequirePermission("cases:write")(okHandler()))

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"admin has the all sentinel", adminToken, http.StatusOK},
		{"viewer lacks cases:write", viewerToken, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/cases", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequireRole_NoClaimsInContext(t *testing.T) {
	handler := RequireRole(models.RoleAnalyst)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

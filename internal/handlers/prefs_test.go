package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abiolaogu/voxguard-console/internal/prefs"
	"github.com/abiolaogu/voxguard-console/internal/storage"
)

func newPrefsHandler(t *testing.T) *PrefsHandler {
	t.Helper()
	st, err := storage.New(t.TempDir())
	require.NoError(t, err)
	return NewPrefsHandler(prefs.NewStore(st, slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestPrefsHandler_Get_ReturnsDefaults(t *testing.T) {
	handler := newPrefsHandler(t)

	rec := httptest.NewRecorder()
	handler.Get(rec, httptest.NewRequest("GET", "/preferences", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	got, err := decodeBody[prefs.Preferences](rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "en", got.Language)
	assert.Equal(t, "NGN", got.Currency)
	assert.Equal(t, "Africa/Lagos", got.Timezone)
	assert.Equal(t, prefs.DateFormatMedium, got.DateFormat)
}

func TestPrefsHandler_Update_Partial(t *testing.T) {
	handler := newPrefsHandler(t)

	body := bytes.NewBufferString(`{"currency":"USD","date_format":"long"}`)
	req := httptest.NewRequest("PUT", "/preferences", body)
	rec := httptest.NewRecorder()
	handler.Update(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	got, err := decodeBody[prefs.Preferences](rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "USD", got.Currency)
	assert.Equal(t, prefs.DateFormatLong, got.DateFormat)
	// Untouched fields keep their defaults
	assert.Equal(t, "en", got.Language)
	assert.Equal(t, "Africa/Lagos", got.Timezone)
}

func TestPrefsHandler_Update_RejectsBadValues(t *testing.T) {
	handler := newPrefsHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"bad currency length", `{"currency":"NAIRA"}`},
		{"numeric currency", `{"currency":"123"}`},
		{"unknown date format", `{"date_format":"iso"}`},
		{"unknown timezone", `{"timezone":"Mars/Olympus"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("PUT", "/preferences", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			handler.Update(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestPrefsHandler_Theme(t *testing.T) {
	handler := newPrefsHandler(t)

	body := bytes.NewBufferString(`{"theme":"light"}`)
	req := httptest.NewRequest("PUT", "/preferences/theme", body)
	rec := httptest.NewRecorder()
	handler.SetTheme(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.GetTheme(rec, httptest.NewRequest("GET", "/preferences/theme", nil))
	got, err := decodeBody[map[string]prefs.Theme](rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, prefs.ThemeLight, got["theme"])
}

func TestPrefsHandler_Format_NeverFails(t *testing.T) {
	handler := newPrefsHandler(t)

	req := httptest.NewRequest("GET", "/preferences/format?amount=100&currency=WAT", nil)
	rec := httptest.NewRecorder()
	handler.Format(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	got, err := decodeBody[map[string]string](rec.Body.Bytes())
	require.NoError(t, err)
	// Unknown currency degrades instead of erroring
	assert.Equal(t, "WAT 100.00", got["currency"])
	assert.NotEmpty(t, got["number"])
	assert.NotEmpty(t, got["date"])
}

func TestPrefsHandler_Theme_RejectsUnknown(t *testing.T) {
	handler := newPrefsHandler(t)

	body := bytes.NewBufferString(`{"theme":"solarized"}`)
	req := httptest.NewRequest("PUT", "/preferences/theme", body)
	rec := httptest.NewRecorder()
	handler.SetTheme(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthHandler_BackendDown(t *testing.T) {
	handler := NewHealthHandler(&mockBackendPinger{
		HealthFunc: func(ctx context.Context) error { return errors.New("connection refused") },
	})

	rec := httptest.NewRecorder()
	handler.Health(rec, httptest.NewRequest("GET", "/health", nil))

	// The console itself is healthy even when the backend is not
	require.Equal(t, http.StatusOK, rec.Code)
	got, err := decodeBody[map[string]string](rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "ok", got["status"])
	assert.Equal(t, "down", got["backend"])
}

func TestHealthHandler_BackendUp(t *testing.T) {
	handler := NewHealthHandler(&mockBackendPinger{
		HealthFunc: func(ctx context.Context) error { return nil },
	})

	rec := httptest.NewRecorder()
	handler.Health(rec, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	got, err := decodeBody[map[string]string](rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "up", got["backend"])
}

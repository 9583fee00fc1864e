package acm

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abiolaogu/voxguard-console/internal/models"
)

type staticTokens string

func (s staticTokens) Token() string { return string(s) }

func newTestClient(t *testing.T, serverURL string, opts ...func(*Config)) *Client {
	t.Helper()
	cfg := Config{
		BaseURL:     serverURL,
		MaxAttempts: 3,
		BaseDelay:   10 * time.Millisecond,
		Tokens:      staticTokens("test-token"),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewClient(cfg, slog.Default())
}

func TestClient_RetriesServerErrorsThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	var timestamps []time.Time

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		timestamps = append(timestamps, time.Now())
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load(), "two retries after the initial attempt")

	// Backoff doubles: first wait ~baseDelay, second ~2*baseDelay
	require.Len(t, timestamps, 3)
	firstWait := timestamps[1].Sub(timestamps[0])
	secondWait := timestamps[2].Sub(timestamps[1])
	assert.GreaterOrEqual(t, firstWait, 10*time.Millisecond)
	assert.GreaterOrEqual(t, secondWait, 20*time.Millisecond)
}

func TestClient_ClientErrorFailsImmediately(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not_found","message":"no such alert"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.GetAlert(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "4xx must not retry")

	var apiErr *models.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "not_found", apiErr.Code)
	assert.False(t, apiErr.IsNetworkError)
	assert.False(t, apiErr.IsTimeout)
}

func TestClient_RateLimitRetries(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.ListAlerts(context.Background(), AlertQuery{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load(), "429 retries")
}

func TestClient_SkipRetryDoesSingleAttempt(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	status := models.StatusConfirmed
	_, err := client.UpdateAlert(context.Background(), "alert-1", AlertUpdate{Status: &status})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "PATCH opts out of retry")
}

func TestClient_NetworkErrorIsTyped(t *testing.T) {
	// A closed server guarantees connection refused
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := newTestClient(t, url, func(cfg *Config) { cfg.MaxAttempts = 2 })

	err := client.Health(context.Background())
	require.Error(t, err)

	var apiErr *models.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsNetworkError)
}

func TestClient_TimeoutIsTyped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, func(cfg *Config) {
		cfg.Timeout = 20 * time.Millisecond
		cfg.MaxAttempts = 1
	})

	err := client.Health(context.Background())
	require.Error(t, err)

	var apiErr *models.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsTimeout)
}

func TestClient_InjectsBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	require.NoError(t, client.Health(context.Background()))
	assert.Equal(t, "Bearer test-token", gotAuth)
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, func(cfg *Config) { cfg.Tokens = staticTokens("") })
	require.NoError(t, client.Health(context.Background()))
	assert.Empty(t, gotAuth)
}

func TestClient_UnauthorizedTriggersForceLogoutOnce(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	var logouts atomic.Int32
	client := newTestClient(t, server.URL, func(cfg *Config) {
		cfg.OnUnauthorized = func(reason string) { logouts.Add(1) }
	})

	err := client.Health(context.Background())
	require.Error(t, err)

	var apiErr *models.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, int32(1), logouts.Load(), "401 must not retry, so the hook fires once")
}

func TestClient_ListAlertsBuildsQuery(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[{"id":"a1","severity":"CRITICAL","status":"NEW"}]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	alerts, err := client.ListAlerts(context.Background(), AlertQuery{
		Severities: []models.Severity{models.SeverityCritical, models.SeverityHigh},
		Statuses:   []models.Status{models.StatusNew},
		Limit:      50,
	})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.SeverityCritical, alerts[0].Severity)

	assert.Contains(t, gotQuery, "severity=CRITICAL")
	assert.Contains(t, gotQuery, "severity=HIGH")
	assert.Contains(t, gotQuery, "status=NEW")
	assert.Contains(t, gotQuery, "limit=50")
}

func TestClient_AnalyticsRejectsUnknownKind(t *testing.T) {
	client := newTestClient(t, "http://localhost:0")

	_, err := client.Analytics(context.Background(), AnalyticsKind("everything"))
	require.Error(t, err)

	var apiErr *models.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestClient_ContextCancelStopsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, func(cfg *Config) {
		cfg.BaseDelay = 5 * time.Second
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := client.Health(ctx)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second, "cancelled context must cut the backoff wait short")
}

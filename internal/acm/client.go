// Package acm is the retrying REST client for the ACM gateway. All
// failures surface as *models.APIError so callers branch on
// IsNetworkError/IsTimeout/Status instead of raw transport errors.
package acm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/abiolaogu/voxguard-console/internal/models"
)

// TokenSource supplies the bearer token injected into every request.
// An empty token means no Authorization header.
type TokenSource interface {
	Token() string
}

// Client talks to the ACM REST gateway with exponential-backoff retry.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	maxAttempts    int
	baseDelay      time.Duration
	tokens         TokenSource
	onUnauthorized func(reason string)
	logger         *slog.Logger
}

// Config tunes the client. MaxAttempts is the total number of tries
// (default 3); BaseDelay is the first backoff wait (default 1s), doubling
// per attempt.
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	MaxAttempts    int
	BaseDelay      time.Duration
	Tokens         TokenSource
	OnUnauthorized func(reason string)
}

// NewClient creates an ACM gateway client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 1 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	onUnauthorized := cfg.OnUnauthorized
	if onUnauthorized == nil {
		onUnauthorized = func(string) {}
	}

	return &Client{
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		maxAttempts:    cfg.MaxAttempts,
		baseDelay:      cfg.BaseDelay,
		tokens:         cfg.Tokens,
		onUnauthorized: onUnauthorized,
		logger:         logger,
	}
}

type requestOptions struct {
	skipRetry bool
}

// Option adjusts a single request.
type Option func(*requestOptions)

// WithSkipRetry disables retry for this request. Used for non-idempotent
// operations where a replay could double-apply.
func WithSkipRetry() Option {
	return func(o *requestOptions) {
		o.skipRetry = true
	}
}

// do issues a request with the retry policy and decodes a 2xx body into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, opts ...Option) error {
	options := requestOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	var encoded []byte
	if body != nil {
		var err error
		encoded, err = json.Marshal(body)
		if err != nil {
			return &models.APIError{Message: fmt.Sprintf("failed to encode request body: %v", err)}
		}
	}

	attempt := 0
	operation := func() error {
		attempt++
		err := c.attempt(ctx, method, path, query, encoded, out)
		if err == nil {
			return nil
		}

		var apiErr *models.APIError
		if errors.As(err, &apiErr) && !apiErr.Retryable() {
			return backoff.Permanent(err)
		}

		c.logger.Warn("acm request failed, will retry",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("attempt", attempt),
			slog.Any("error", err))
		return err
	}

	return backoff.Retry(operation, c.backOff(ctx, options))
}

// backOff builds the retry schedule: delay = baseDelay * 2^attemptIndex,
// capped at maxAttempts total tries; no jitter so the schedule is exact.
func (c *Client) backOff(ctx context.Context, options requestOptions) backoff.BackOffContext {
	if options.skipRetry {
		return backoff.WithContext(&backoff.StopBackOff{}, ctx)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.baseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = c.baseDelay * 64
	b.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.maxAttempts-1)), ctx)
}

func (c *Client) attempt(ctx context.Context, method, path string, query url.Values, body []byte, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return &models.APIError{Message: fmt.Sprintf("failed to build request: %v", err)}
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// The persisted session is stale; clear it so the UI lands on login
		c.onUnauthorized("unauthorized backend response")
		return models.NewHTTPError(resp.StatusCode, "unauthorized", "backend rejected session token")
	}

	if resp.StatusCode >= 400 {
		return decodeHTTPError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &models.APIError{
				Message: fmt.Sprintf("failed to decode response: %v", err),
				Status:  resp.StatusCode,
				Code:    "invalid_response",
			}
		}
	}
	return nil
}

func classifyTransportError(err error) *models.APIError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return models.NewTimeoutError(err)
	}
	return models.NewNetworkError(err)
}

func decodeHTTPError(resp *http.Response) *models.APIError {
	payload := struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}{}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(body, &payload)

	message := payload.Message
	if message == "" {
		message = strings.TrimSpace(string(body))
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	code := payload.Error
	if code == "" {
		code = "http_error"
	}

	return models.NewHTTPError(resp.StatusCode, code, message)
}

// Package graphql is the console's Hasura client: HTTP queries and
// mutations plus websocket subscriptions. All failures are normalized to
// *models.APIError so GraphQL and REST errors read the same at the UI
// boundary.
package graphql

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
	"time"

	"github.com/abiolaogu/voxguard-console/internal/models"
)

// TokenSource supplies the session bearer token, empty when logged out.
type TokenSource interface {
	Token() string
}

// Client talks to a Hasura-style GraphQL endpoint.
type Client struct {
	httpURL     string
	wsURL       string
	adminSecret string
	tokens      TokenSource
	httpClient  *http.Client
	logger      *slog.Logger
}

// Config configures the GraphQL client. AdminSecret is the Hasura
// admin-secret fallback used when no session token exists.
type Config struct {
	HTTPURL     string
	WSURL       string
	AdminSecret string
	Timeout     time.Duration
	Tokens      TokenSource
}

// NewClient creates a GraphQL client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		httpURL:     cfg.HTTPURL,
		wsURL:       cfg.WSURL,
		adminSecret: cfg.AdminSecret,
		tokens:      cfg.Tokens,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		logger:      logger,
	}
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

// Query executes a GraphQL query and decodes the data payload into out.
func (c *Client) Query(ctx context.Context, query string, vars map[string]any, out any) error {
	return c.execute(ctx, query, vars, out)
}

// Mutate executes a GraphQL mutation. Mutations never retry: a replay
// could double-apply an analyst action.
func (c *Client) Mutate(ctx context.Context, mutation string, vars map[string]any, out any) error {
	return c.execute(ctx, mutation, vars, out)
}

func (c *Client) execute(ctx context.Context, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(gqlRequest{Query: query, Variables: vars})
	if err != nil {
		return &models.APIError{Message: fmt.Sprintf("failed to encode graphql request: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.httpURL, bytes.NewReader(body))
	if err != nil {
		return &models.APIError{Message: fmt.Sprintf("failed to build graphql request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuthHeaders(req.Header.Set)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return models.NewHTTPError(resp.StatusCode, "graphql_http_error", string(bytes.TrimSpace(body)))
	}

	var parsed gqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return &models.APIError{
			Message: fmt.Sprintf("failed to decode graphql response: %v", err),
			Code:    "invalid_response",
		}
	}

	if len(parsed.Errors) > 0 {
		return normalizeGraphQLErrors(parsed.Errors)
	}

	if out != nil && parsed.Data != nil {
		if err := json.Unmarshal(parsed.Data, out); err != nil {
			return &models.APIError{
				Message: fmt.Sprintf("failed to decode graphql data: %v", err),
				Code:    "invalid_response",
			}
		}
	}
	return nil
}

// setAuthHeaders applies the bearer token, or the admin-secret fallback
// when no operator session exists.
func (c *Client) setAuthHeaders(set func(key, value string)) {
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			set("Authorization", "Bearer "+token)
			return
		}
	}
	if c.adminSecret != "" {
		set("x-hasura-admin-secret", c.adminSecret)
	}
}

// normalizeGraphQLErrors folds the errors array into the shared APIError
// taxonomy; the first error wins, the rest are logged by callers if needed.
func normalizeGraphQLErrors(errs []gqlError) *models.APIError {
	first := errs[0]
	code := first.Extensions.Code
	if code == "" {
		code = "graphql_error"
	}
	return &models.APIError{Message: first.Message, Code: code}
}

func classifyTransportError(err error) *models.APIError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return models.NewTimeoutError(err)
	}
	return models.NewNetworkError(err)
}

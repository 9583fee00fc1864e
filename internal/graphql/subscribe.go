package graphql

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	"github.com/abiolaogu/voxguard-console/internal/models"
)

// graphql-transport-ws message types.
const (
	msgConnectionInit = "connection_init"
	msgConnectionAck  = "connection_ack"
	msgSubscribe      = "subscribe"
	msgNext           = "next"
	msgError          = "error"
	msgComplete       = "complete"
	msgPing           = "ping"
	msgPong           = "pong"
)

type wsMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const (
	wsHandshakeTimeout = 10 * time.Second
	wsWriteTimeout     = 10 * time.Second
)

// Subscribe opens a graphql-transport-ws subscription and delivers each
// data payload on the returned channel. The transport reconnects and
// resubscribes on failure; per-connection errors are reported on the error
// channel without closing the snapshot channel. Both channels close when
// ctx is cancelled.
func (c *Client) Subscribe(ctx context.Context, query string, vars map[string]any) (<-chan json.RawMessage, <-chan error) {
	snapshots := make(chan json.RawMessage, 16)
	errs := make(chan error, 16)

	go func() {
		defer close(snapshots)
		defer close(errs)

		reconnect := backoff.NewExponentialBackOff()
		reconnect.InitialInterval = time.Second
		reconnect.MaxInterval = 30 * time.Second
		reconnect.MaxElapsedTime = 0

		for {
			err := c.runSubscription(ctx, query, vars, snapshots)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				select {
				case errs <- normalizeSubscriptionError(err):
				default:
				}
				c.logger.Warn("subscription dropped, reconnecting", slog.Any("error", err))
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(reconnect.NextBackOff()):
			}
		}
	}()

	return snapshots, errs
}

// runSubscription drives one websocket connection until it fails or ctx
// is cancelled.
func (c *Client) runSubscription(ctx context.Context, query string, vars map[string]any, snapshots chan<- json.RawMessage) error {
	dialer := websocket.Dialer{
		Subprotocols:     []string{"graphql-transport-ws"},
		HandshakeTimeout: wsHandshakeTimeout,
	}

	conn, resp, err := dialer.DialContext(ctx, c.wsURL, nil)
	if err != nil {
		if resp != nil {
			return models.NewHTTPError(resp.StatusCode, "ws_handshake_failed", err.Error())
		}
		return models.NewNetworkError(err)
	}
	defer conn.Close()

	// Tear the connection down when ctx is cancelled so the read loop
	// unblocks; subscriptions must not outlive their caller's scope.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = c.writeMessage(conn, wsMessage{ID: "1", Type: msgComplete})
			conn.Close()
		case <-done:
		}
	}()

	if err := c.writeMessage(conn, wsMessage{Type: msgConnectionInit, Payload: c.initPayload()}); err != nil {
		return err
	}

	var ack wsMessage
	if err := conn.ReadJSON(&ack); err != nil {
		return models.NewNetworkError(err)
	}
	if ack.Type != msgConnectionAck {
		return &models.APIError{Message: fmt.Sprintf("expected connection_ack, got %q", ack.Type), Code: "ws_protocol_error"}
	}

	subscribePayload, err := json.Marshal(gqlRequest{Query: query, Variables: vars})
	if err != nil {
		return &models.APIError{Message: fmt.Sprintf("failed to encode subscription: %v", err)}
	}
	if err := c.writeMessage(conn, wsMessage{ID: "1", Type: msgSubscribe, Payload: subscribePayload}); err != nil {
		return err
	}

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return models.NewNetworkError(err)
		}

		switch msg.Type {
		case msgNext:
			var payload gqlResponse
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				c.logger.Warn("dropping malformed subscription payload", slog.Any("error", err))
				continue
			}
			if len(payload.Errors) > 0 {
				return normalizeGraphQLErrors(payload.Errors)
			}
			select {
			case snapshots <- payload.Data:
			case <-ctx.Done():
				return ctx.Err()
			}

		case msgError:
			var payloadErrs []gqlError
			if err := json.Unmarshal(msg.Payload, &payloadErrs); err == nil && len(payloadErrs) > 0 {
				return normalizeGraphQLErrors(payloadErrs)
			}
			return &models.APIError{Message: "subscription error", Code: "graphql_error"}

		case msgComplete:
			return &models.APIError{Message: "subscription completed by server", Code: "ws_complete"}

		case msgPing:
			if err := c.writeMessage(conn, wsMessage{Type: msgPong}); err != nil {
				return err
			}

		case msgPong, msgConnectionAck:
			// Keepalive noise, ignore
		}
	}
}

// initPayload builds the connection_init payload Hasura expects: bearer
// token when a session exists, admin-secret fallback otherwise.
func (c *Client) initPayload() json.RawMessage {
	headers := map[string]string{}
	c.setAuthHeaders(func(key, value string) {
		headers[key] = value
	})
	if len(headers) == 0 {
		return nil
	}

	payload, err := json.Marshal(map[string]any{"headers": headers})
	if err != nil {
		return nil
	}
	return payload
}

func (c *Client) writeMessage(conn *websocket.Conn, msg wsMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		return models.NewNetworkError(err)
	}
	return nil
}

func normalizeSubscriptionError(err error) error {
	if _, ok := err.(*models.APIError); ok {
		return err
	}
	return models.NewNetworkError(err)
}

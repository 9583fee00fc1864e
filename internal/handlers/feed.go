package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/abiolaogu/voxguard-console/internal/feed"
	"github.com/abiolaogu/voxguard-console/internal/notify"
	pkghttp "github.com/abiolaogu/voxguard-console/pkg/http"
)

const wsWriteTimeout = 10 * time.Second

// wsEnvelope wraps each websocket push so clients can demux feed state
// from notification events on one socket.
type wsEnvelope struct {
	Type    string `json:"type"` // "state" or "notification"
	Payload any    `json:"payload"`
}

// FeedHandler exposes the live alert feed: a websocket push channel plus
// plain HTTP reads of the current state and notification set.
type FeedHandler struct {
	feed     *feed.Feed
	center   *notify.Center
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewFeedHandler creates a new FeedHandler. allowedOrigins gates the
// websocket handshake the same way CORS gates the REST surface.
func NewFeedHandler(f *feed.Feed, center *notify.Center, logger *slog.Logger, allowedOrigins []string) *FeedHandler {
	return &FeedHandler{
		feed:   f,
		center: center,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true // non-browser client
				}
				for _, allowed := range allowedOrigins {
					if origin == allowed {
						return true
					}
				}
				return false
			},
		},
	}
}

// Stream upgrades to a websocket and pushes feed state and notification
// events until the client disconnects.
func (h *FeedHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response
		h.logger.Warn("feed websocket upgrade failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	states, cancelStates := h.feed.Subscribe()
	defer cancelStates()

	events, cancelEvents := h.center.Subscribe()
	defer cancelEvents()

	// Discard client frames but surface disconnects to the write loop.
	disconnected := make(chan struct{})
	go func() {
		defer close(disconnected)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Initial snapshot so a fresh client renders without waiting for the
	// next change.
	if err := h.write(conn, wsEnvelope{Type: "state", Payload: h.feed.State()}); err != nil {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-disconnected:
			return

		case state, ok := <-states:
			if !ok {
				return
			}
			if err := h.write(conn, wsEnvelope{Type: "state", Payload: state}); err != nil {
				return
			}

		case event, ok := <-events:
			if !ok {
				return
			}
			if err := h.write(conn, wsEnvelope{Type: "notification", Payload: event}); err != nil {
				return
			}
		}
	}
}

func (h *FeedHandler) write(conn *websocket.Conn, env wsEnvelope) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(env)
}

// State returns the current feed state over plain HTTP.
func (h *FeedHandler) State(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteJSON(w, http.StatusOK, h.feed.State())
}

// Counts returns just the aggregate counts.
func (h *FeedHandler) Counts(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteJSON(w, http.StatusOK, h.feed.State().Counts)
}

// Notifications returns the active notification set.
func (h *FeedHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteJSON(w, http.StatusOK, h.center.Active())
}

// DismissNotification removes a notification. Unknown ids succeed: the
// client may have raced an auto-dismiss timer.
func (h *FeedHandler) DismissNotification(w http.ResponseWriter, r *http.Request) {
	h.center.Dismiss(chi.URLParam(r, "id"))
	pkghttp.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// SoundRequest represents the request body for the alarm-sound toggle
type SoundRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// SetSound toggles the critical-alert alarm cue.
func (h *FeedHandler) SetSound(w http.ResponseWriter, r *http.Request) {
	var req SoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	h.center.SetSoundEnabled(*req.Enabled)
	pkghttp.WriteJSON(w, http.StatusOK, map[string]bool{"sound_enabled": h.center.SoundEnabled()})
}

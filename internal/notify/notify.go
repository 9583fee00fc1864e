// Package notify is the console's in-process notification center.
// Critical alerts produce persistent notifications that stay until an
// operator dismisses them; everything else auto-dismisses after a short
// interval.
package notify

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a notification for the console UI.
type Kind string

const (
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
	KindAlarm   Kind = "alarm"
)

// AutoDismissAfter is how long a non-persistent notification lives.
const AutoDismissAfter = 5 * time.Second

// Notification is a single console notification. Duration zero means
// persistent: it stays active until dismissed.
type Notification struct {
	ID        string        `json:"id"`
	Kind      Kind          `json:"kind"`
	Title     string        `json:"title"`
	Body      string        `json:"body"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}

// Persistent reports whether the notification stays until dismissed.
func (n Notification) Persistent() bool { return n.Duration == 0 }

// Event is delivered to subscribers whenever the active set changes.
type Event struct {
	Type         string       `json:"type"` // "posted" or "dismissed"
	Notification Notification `json:"notification"`
}

// SoundPlayer plays the alarm cue for critical alerts. Implementations
// may fail (missing audio device, blocked autoplay); the center swallows
// those failures after logging them so a broken speaker never breaks the
// feed.
type SoundPlayer interface {
	Play() error
}

// LogSoundPlayer is the default SoundPlayer: it records that the alarm
// cue fired and never fails. Real playback happens client-side; the
// server only tracks that a cue was requested.
type LogSoundPlayer struct {
	Logger *slog.Logger
}

func (p *LogSoundPlayer) Play() error {
	if p.Logger != nil {
		p.Logger.Info("alarm sound cue requested")
	}
	return nil
}

// Center holds the active notification set and fans out change events.
type Center struct {
	logger *slog.Logger
	sound  SoundPlayer

	mu          sync.Mutex
	active      map[string]Notification
	timers      map[string]*time.Timer
	subscribers map[chan Event]struct{}

	// soundEnabled gates the alarm cue; operators can mute it.
	soundEnabled bool
}

// NewCenter creates a notification center. The sound player may be nil,
// in which case critical alerts post silently.
func NewCenter(logger *slog.Logger, sound SoundPlayer) *Center {
	return &Center{
		logger:       logger,
		sound:        sound,
		active:       make(map[string]Notification),
		timers:       make(map[string]*time.Timer),
		subscribers:  make(map[chan Event]struct{}),
		soundEnabled: true,
	}
}

// SetSoundEnabled toggles the alarm cue for critical alerts.
func (c *Center) SetSoundEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.soundEnabled = enabled
}

// SoundEnabled reports whether the alarm cue is active.
func (c *Center) SoundEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.soundEnabled
}

// Post adds a notification. Duration zero makes it persistent; any other
// value is ignored and replaced with the standard auto-dismiss interval.
// Returns the assigned id.
func (c *Center) Post(kind Kind, title, body string, persistent bool) string {
	n := Notification{
		ID:        uuid.New().String(),
		Kind:      kind,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if !persistent {
		n.Duration = AutoDismissAfter
	}

	c.mu.Lock()
	c.active[n.ID] = n
	if !persistent {
		id := n.ID
		c.timers[id] = time.AfterFunc(AutoDismissAfter, func() {
			c.Dismiss(id)
		})
	}
	c.broadcastLocked(Event{Type: "posted", Notification: n})
	c.mu.Unlock()

	return n.ID
}

// PostCritical posts a persistent alarm notification and, when sound is
// enabled, requests the alarm cue. Playback failures are logged and
// swallowed.
func (c *Center) PostCritical(title, body string) string {
	id := c.Post(KindAlarm, title, body, true)

	c.mu.Lock()
	enabled := c.soundEnabled
	player := c.sound
	c.mu.Unlock()

	if enabled && player != nil {
		if err := player.Play(); err != nil {
			c.logger.Warn("alarm sound failed", slog.Any("error", err))
		}
	}
	return id
}

// Dismiss removes a notification. Dismissing an unknown id is a no-op.
func (c *Center) Dismiss(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.active[id]
	if !ok {
		return
	}
	delete(c.active, id)
	if timer, ok := c.timers[id]; ok {
		timer.Stop()
		delete(c.timers, id)
	}
	c.broadcastLocked(Event{Type: "dismissed", Notification: n})
}

// Active returns the current notification set, newest first.
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Notification, 0, len(c.active))
	for _, n := range c.active {
		out = append(out, n)
	}
	sortNewestFirst(out)
	return out
}

// Subscribe returns a channel of change events and a cancel func. The
// channel is buffered; events for slow consumers are dropped rather than
// blocking the feed.
func (c *Center) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 32)

	c.mu.Lock()
	c.subscribers[ch] = struct{}{}
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if _, ok := c.subscribers[ch]; ok {
			delete(c.subscribers, ch)
			close(ch)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

// Close stops all pending dismiss timers and closes every subscriber.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, timer := range c.timers {
		timer.Stop()
		delete(c.timers, id)
	}
	for ch := range c.subscribers {
		delete(c.subscribers, ch)
		close(ch)
	}
}

func (c *Center) broadcastLocked(ev Event) {
	for ch := range c.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}

func sortNewestFirst(ns []Notification) {
	sort.Slice(ns, func(i, j int) bool {
		return ns[i].CreatedAt.After(ns[j].CreatedAt)
	})
}

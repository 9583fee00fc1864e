// Package feed maintains the console's live alert state. It consumes
// full-replacement snapshots from the subscription transport, detects
// newly arrived alerts by id, and routes them to the notification
// center. The first snapshot after (re)connect seeds the seen set
// silently so a page load does not blast operators with stale alarms.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/abiolaogu/voxguard-console/internal/models"
	"github.com/abiolaogu/voxguard-console/internal/notify"
	"github.com/abiolaogu/voxguard-console/pkg/logger"
)

// AlertSource delivers alert snapshots, typically backed by a GraphQL
// subscription. Each delivery replaces the previous snapshot wholesale.
type AlertSource interface {
	AlertStream(ctx context.Context, limit int) (<-chan []models.Alert, <-chan error)
}

// Counts summarizes the current snapshot for the console's sidebar.
type Counts struct {
	Total      int                     `json:"total"`
	BySeverity map[models.Severity]int `json:"by_severity"`
	ByStatus   map[models.Status]int   `json:"by_status"`
}

// State is the feed's published view: the current snapshot plus derived
// aggregates.
type State struct {
	Alerts    []models.Alert `json:"alerts"`
	Critical  []models.Alert `json:"critical"`
	Counts    Counts         `json:"counts"`
	Connected bool           `json:"connected"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Options tune the feed. Zero values mean no filtering and the default
// snapshot size.
type Options struct {
	Limit      int
	Severities []models.Severity
	Statuses   []models.Status
}

// Feed is the live alert pipeline. Safe for concurrent use.
type Feed struct {
	source AlertSource
	center *notify.Center
	logger *slog.Logger
	opts   Options

	mu       sync.RWMutex
	state    State
	seen     map[string]struct{}
	primed   bool
	watchers map[chan State]struct{}
}

// New creates a feed. The notification center may be nil, in which case
// new alerts update state without posting notifications.
func New(source AlertSource, center *notify.Center, log *slog.Logger, opts Options) *Feed {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}
	return &Feed{
		source:   source,
		center:   center,
		logger:   log,
		opts:     opts,
		seen:     make(map[string]struct{}),
		watchers: make(map[chan State]struct{}),
	}
}

// Run consumes snapshots until ctx is cancelled. Blocking; callers run
// it in its own goroutine.
func (f *Feed) Run(ctx context.Context) {
	snapshots, errs := f.source.AlertStream(ctx, f.opts.Limit)

	for {
		select {
		case <-ctx.Done():
			f.setConnected(false)
			return

		case snapshot, ok := <-snapshots:
			if !ok {
				f.setConnected(false)
				return
			}
			f.apply(snapshot)

		case err, ok := <-errs:
			if !ok {
				continue
			}
			f.logger.Warn("alert stream error", slog.Any("error", err))
			f.setConnected(false)
			// The next successful snapshot reseeds the seen set so the
			// backlog accumulated while disconnected does not alarm.
			f.mu.Lock()
			f.primed = false
			f.mu.Unlock()
		}
	}
}

// apply ingests one snapshot: last write wins, new ids notify.
func (f *Feed) apply(snapshot []models.Alert) {
	filtered := f.filter(snapshot)

	f.mu.Lock()

	var fresh []models.Alert
	if f.primed {
		for _, alert := range filtered {
			if _, ok := f.seen[alert.ID]; !ok {
				fresh = append(fresh, alert)
			}
		}
	}

	// Reset rather than accumulate: ids that fell out of the snapshot
	// window would otherwise pin the set forever.
	f.seen = make(map[string]struct{}, len(filtered))
	for _, alert := range filtered {
		f.seen[alert.ID] = struct{}{}
	}
	f.primed = true

	f.state = buildState(filtered)
	state := f.state
	f.notifyWatchersLocked(state)
	f.mu.Unlock()

	for _, alert := range fresh {
		f.dispatch(alert)
	}
}

// dispatch routes one newly seen alert to the notification center.
// Critical alerts persist and trigger the alarm cue; the rest
// auto-dismiss quietly.
func (f *Feed) dispatch(alert models.Alert) {
	if f.center == nil {
		return
	}

	title := fmt.Sprintf("%s alert: %s", alert.Severity, logger.MaskedNumber(alert.BNumber))
	body := fmt.Sprintf("%d calls in %ds window", alert.CallCount, alert.WindowSeconds)

	if alert.Severity == models.SeverityCritical {
		f.center.PostCritical(title, body)
		return
	}
	f.center.Post(notify.KindWarning, title, body, false)
}

func (f *Feed) filter(alerts []models.Alert) []models.Alert {
	if len(f.opts.Severities) == 0 && len(f.opts.Statuses) == 0 {
		return alerts
	}

	out := make([]models.Alert, 0, len(alerts))
	for _, alert := range alerts {
		if len(f.opts.Severities) > 0 && !containsSeverity(f.opts.Severities, alert.Severity) {
			continue
		}
		if len(f.opts.Statuses) > 0 && !containsStatus(f.opts.Statuses, alert.Status) {
			continue
		}
		out = append(out, alert)
	}
	return out
}

func buildState(alerts []models.Alert) State {
	counts := Counts{
		Total:      len(alerts),
		BySeverity: make(map[models.Severity]int),
		ByStatus:   make(map[models.Status]int),
	}

	var critical []models.Alert
	for _, alert := range alerts {
		counts.BySeverity[alert.Severity]++
		counts.ByStatus[alert.Status]++
		if alert.Severity == models.SeverityCritical {
			critical = append(critical, alert)
		}
	}

	return State{
		Alerts:    alerts,
		Critical:  critical,
		Counts:    counts,
		Connected: true,
		UpdatedAt: time.Now().UTC(),
	}
}

// State returns the last published view.
func (f *Feed) State() State {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

// Subscribe returns a channel that receives each published state and a
// cancel func. Slow consumers miss intermediate states rather than
// blocking ingestion.
func (f *Feed) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 8)

	f.mu.Lock()
	f.watchers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.watchers[ch]; ok {
			delete(f.watchers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

func (f *Feed) setConnected(connected bool) {
	f.mu.Lock()
	if f.state.Connected != connected {
		f.state.Connected = connected
		f.notifyWatchersLocked(f.state)
	}
	f.mu.Unlock()
}

func (f *Feed) notifyWatchersLocked(state State) {
	for ch := range f.watchers {
		select {
		case ch <- state:
		default:
		}
	}
}

func containsSeverity(list []models.Severity, s models.Severity) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func containsStatus(list []models.Status, s models.Status) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

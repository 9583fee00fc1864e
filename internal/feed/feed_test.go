package feed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abiolaogu/voxguard-console/internal/models"
	"github.com/abiolaogu/voxguard-console/internal/notify"
)

type mockSource struct {
	snapshots chan []models.Alert
	errs      chan error
}

func newMockSource() *mockSource {
	return &mockSource{
		snapshots: make(chan []models.Alert, 8),
		errs:      make(chan error, 8),
	}
}

func (m *mockSource) AlertStream(ctx context.Context, limit int) (<-chan []models.Alert, <-chan error) {
	return m.snapshots, m.errs
}

type mockSoundPlayer struct {
	calls int
}

func (m *mockSoundPlayer) Play() error {
	m.calls++
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makeAlert(id string, severity models.Severity, status models.Status) models.Alert {
	return models.Alert{
		ID:            id,
		BNumber:       "+2348031234567",
		CallCount:     42,
		WindowSeconds: 60,
		Severity:      severity,
		Status:        status,
		CreatedAt:     time.Now().UTC(),
	}
}

// runFeed starts a feed over a mock source and returns it with a stop
// func. waitState blocks until the feed publishes.
func runFeed(t *testing.T, source *mockSource, center *notify.Center, opts Options) (*Feed, <-chan State, func()) {
	t.Helper()

	f := New(source, center, testLogger(), opts)
	states, cancelSub := f.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.Run(ctx)
		close(done)
	}()

	stop := func() {
		cancel()
		<-done
		cancelSub()
	}
	return f, states, stop
}

func waitState(t *testing.T, states <-chan State) State {
	t.Helper()
	select {
	case state := <-states:
		return state
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for feed state")
		return State{}
	}
}

func TestFeed_FirstSnapshotDoesNotNotify(t *testing.T) {
	center := notify.NewCenter(testLogger(), nil)
	defer center.Close()

	source := newMockSource()
	_, states, stop := runFeed(t, source, center, Options{})
	defer stop()

	source.snapshots <- []models.Alert{
		makeAlert("a1", models.SeverityCritical, models.StatusNew),
		makeAlert("a2", models.SeverityHigh, models.StatusNew),
	}

	state := waitState(t, states)
	assert.Equal(t, 2, state.Counts.Total)
	assert.Empty(t, center.Active(), "initial snapshot must load silently")
}

func TestFeed_NewAlertNotifiesExactlyOnce(t *testing.T) {
	center := notify.NewCenter(testLogger(), nil)
	defer center.Close()

	source := newMockSource()
	_, states, stop := runFeed(t, source, center, Options{})
	defer stop()

	source.snapshots <- []models.Alert{makeAlert("a1", models.SeverityHigh, models.StatusNew)}
	waitState(t, states)

	source.snapshots <- []models.Alert{
		makeAlert("a1", models.SeverityHigh, models.StatusNew),
		makeAlert("a2", models.SeverityHigh, models.StatusNew),
	}
	waitState(t, states)
	assert.Len(t, center.Active(), 1, "only the unseen alert notifies")

	// Same snapshot again: nothing new, nothing posted.
	source.snapshots <- []models.Alert{
		makeAlert("a1", models.SeverityHigh, models.StatusNew),
		makeAlert("a2", models.SeverityHigh, models.StatusNew),
	}
	waitState(t, states)
	assert.Len(t, center.Active(), 1)
}

func TestFeed_CriticalAlertIsPersistentWithSound(t *testing.T) {
	player := &mockSoundPlayer{}
	center := notify.NewCenter(testLogger(), player)
	defer center.Close()

	source := newMockSource()
	_, states, stop := runFeed(t, source, center, Options{})
	defer stop()

	source.snapshots <- []models.Alert{}
	waitState(t, states)

	source.snapshots <- []models.Alert{makeAlert("c1", models.SeverityCritical, models.StatusNew)}
	waitState(t, states)

	active := center.Active()
	require.Len(t, active, 1)
	assert.True(t, active[0].Persistent())
	assert.Equal(t, notify.KindAlarm, active[0].Kind)
	assert.Equal(t, 1, player.calls)
}

func TestFeed_NonCriticalAlertAutoDismissesWithoutSound(t *testing.T) {
	player := &mockSoundPlayer{}
	center := notify.NewCenter(testLogger(), player)
	defer center.Close()

	source := newMockSource()
	_, states, stop := runFeed(t, source, center, Options{})
	defer stop()

	source.snapshots <- []models.Alert{}
	waitState(t, states)

	source.snapshots <- []models.Alert{makeAlert("m1", models.SeverityMedium, models.StatusNew)}
	waitState(t, states)

	active := center.Active()
	require.Len(t, active, 1)
	assert.False(t, active[0].Persistent())
	assert.Equal(t, notify.AutoDismissAfter, active[0].Duration)
	assert.Equal(t, 0, player.calls)
}

func TestFeed_MutedSoundStillNotifies(t *testing.T) {
	player := &mockSoundPlayer{}
	center := notify.NewCenter(testLogger(), player)
	defer center.Close()
	center.SetSoundEnabled(false)

	source := newMockSource()
	_, states, stop := runFeed(t, source, center, Options{})
	defer stop()

	source.snapshots <- []models.Alert{}
	waitState(t, states)

	source.snapshots <- []models.Alert{makeAlert("c1", models.SeverityCritical, models.StatusNew)}
	waitState(t, states)

	assert.Len(t, center.Active(), 1)
	assert.Equal(t, 0, player.calls)
}

func TestFeed_CountsTrackSnapshot(t *testing.T) {
	source := newMockSource()
	f, states, stop := runFeed(t, source, nil, Options{})
	defer stop()

	source.snapshots <- []models.Alert{
		makeAlert("a1", models.SeverityCritical, models.StatusNew),
		makeAlert("a2", models.SeverityCritical, models.StatusInvestigating),
		makeAlert("a3", models.SeverityLow, models.StatusNew),
	}
	waitState(t, states)

	state := f.State()
	assert.Equal(t, 3, state.Counts.Total)
	assert.Equal(t, 2, state.Counts.BySeverity[models.SeverityCritical])
	assert.Equal(t, 1, state.Counts.BySeverity[models.SeverityLow])
	assert.Equal(t, 2, state.Counts.ByStatus[models.StatusNew])
	assert.Len(t, state.Critical, 2)

	// Snapshots replace wholesale: a shrink shrinks the counts.
	source.snapshots <- []models.Alert{makeAlert("a3", models.SeverityLow, models.StatusNew)}
	waitState(t, states)

	state = f.State()
	assert.Equal(t, 1, state.Counts.Total)
	assert.Empty(t, state.Critical)
	assert.Equal(t, 0, state.Counts.BySeverity[models.SeverityCritical])
}

func TestFeed_SeverityFilter(t *testing.T) {
	center := notify.NewCenter(testLogger(), nil)
	defer center.Close()

	source := newMockSource()
	f, states, stop := runFeed(t, source, center, Options{
		Severities: []models.Severity{models.SeverityCritical, models.SeverityHigh},
	})
	defer stop()

	source.snapshots <- []models.Alert{}
	waitState(t, states)

	source.snapshots <- []models.Alert{
		makeAlert("a1", models.SeverityCritical, models.StatusNew),
		makeAlert("a2", models.SeverityLow, models.StatusNew),
	}
	waitState(t, states)

	assert.Equal(t, 1, f.State().Counts.Total)
	assert.Len(t, center.Active(), 1, "filtered-out alerts never notify")
}

func TestFeed_StreamErrorReseedsSeenSet(t *testing.T) {
	center := notify.NewCenter(testLogger(), nil)
	defer center.Close()

	source := newMockSource()
	f, states, stop := runFeed(t, source, center, Options{})
	defer stop()

	source.snapshots <- []models.Alert{makeAlert("a1", models.SeverityHigh, models.StatusNew)}
	waitState(t, states)

	source.errs <- errors.New("connection reset")
	waitState(t, states) // disconnected state
	assert.False(t, f.State().Connected)

	// After reconnect, the first snapshot reseeds silently even though
	// it carries ids the feed has never seen.
	source.snapshots <- []models.Alert{
		makeAlert("a1", models.SeverityHigh, models.StatusNew),
		makeAlert("a2", models.SeverityCritical, models.StatusNew),
	}
	waitState(t, states)

	assert.True(t, f.State().Connected)
	assert.Empty(t, center.Active(), "post-reconnect snapshot must not alarm")
}

func TestFeed_RunStopsOnContextCancel(t *testing.T) {
	source := newMockSource()
	f := New(source, nil, testLogger(), Options{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
	assert.False(t, f.State().Connected)
}

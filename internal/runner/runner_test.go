package runner_test

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hperssn/quickshower/internal/domain"
	"github.com/hperssn/quickshower/internal/engine"
	"github.com/hperssn/quickshower/internal/runner"
)

type recordedEvents struct {
	mu     sync.Mutex
	events []engine.Event
}

func (r *recordedEvents) Record(_ *domain.Session, ev engine.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordedEvents) kinds() []engine.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]engine.EventKind, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Kind)
	}
	return out
}

func waitFrame(t *testing.T, frames <-chan runner.Frame, match func(runner.Frame) bool) runner.Frame {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case f, ok := <-frames:
			require.True(t, ok, "frame stream closed")
			if match(f) {
				return f
			}
		case <-timeout:
			t.Fatal("timed out waiting for frame")
		}
	}
}

func TestRunner_SubscribeReceivesCurrentFrame(t *testing.T) {
	m := runner.NewSessionManager(runner.Config{Clock: clockwork.NewFakeClock()})
	defer m.Close()

	s := newSession(t, "frames-initial", domain.DefaultSteps())
	require.NoError(t, m.Mount(s))

	frames, unsubscribe, err := m.Subscribe(s.ID)
	require.NoError(t, err)
	defer unsubscribe()

	f := <-frames
	assert.Equal(t, s.ID, f.SessionID)
	assert.Equal(t, "idle", f.StateName)
	assert.Equal(t, 360.0, f.Progress)
	assert.Equal(t, "5s", f.DurationLabel)
	assert.Equal(t, "Ligar Chuveiro", f.StepLabel)
}

func TestRunner_FrameClockPublishesProgress(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := runner.NewSessionManager(runner.Config{Clock: clock, FrameInterval: 10 * time.Millisecond})
	defer m.Close()

	s := newSession(t, "frames-tick", domain.SingleStep(15*time.Second, "sabonete"))
	require.NoError(t, m.Mount(s))

	frames, unsubscribe, err := m.Subscribe(s.ID)
	require.NoError(t, err)
	defer unsubscribe()
	<-frames

	_, err = m.Press(s.ID, runner.ActionStart)
	require.NoError(t, err)
	waitFrame(t, frames, func(f runner.Frame) bool { return f.Running })

	clock.Advance(2 * time.Second)

	f := waitFrame(t, frames, func(f runner.Frame) bool { return f.ElapsedSec > 0 })
	assert.Equal(t, "13s", f.DurationLabel)
	assert.InDelta(t, 312, f.Progress, 1e-9)
}

func TestRunner_UnmountClosesStreams(t *testing.T) {
	m := runner.NewSessionManager(runner.Config{Clock: clockwork.NewFakeClock()})
	defer m.Close()

	s := newSession(t, "frames-close", domain.DefaultSteps())
	require.NoError(t, m.Mount(s))

	frames, unsubscribe, err := m.Subscribe(s.ID)
	require.NoError(t, err)
	defer unsubscribe()

	require.NoError(t, m.Unmount(s.ID))

	for range frames {
	}
}

func TestRunner_SubscribeMissingSession(t *testing.T) {
	m := runner.NewSessionManager(runner.Config{Clock: clockwork.NewFakeClock()})
	defer m.Close()

	_, _, err := m.Subscribe("missing")
	assert.ErrorIs(t, err, runner.ErrSessionNotFound)
}

func TestRunner_ForwardsEventsToRecorder(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rec := &recordedEvents{}
	m := runner.NewSessionManager(runner.Config{Clock: clock, Recorder: rec})
	defer m.Close()

	s := newSession(t, "recorder", domain.DefaultSteps())
	require.NoError(t, m.Mount(s))

	_, err := m.Press(s.ID, runner.ActionStart)
	require.NoError(t, err)
	clock.Advance(5 * time.Second)
	_, err = m.Snapshot(s.ID)
	require.NoError(t, err)

	_, err = m.Press(s.ID, runner.ActionCancel)
	require.NoError(t, err)

	assert.Equal(t, []engine.EventKind{engine.StepStarted, engine.StepCompleted}, rec.kinds())
}

func TestSessionManager_CleansUpIdleSessions(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := runner.NewSessionManager(runner.Config{
		Clock:           clock,
		IdleTTL:         time.Minute,
		CleanupInterval: 30 * time.Second,
	})
	defer m.Close()

	idle := newSession(t, "idle", domain.DefaultSteps())
	busy := newSession(t, "busy", domain.SingleStep(time.Hour, "long"))
	require.NoError(t, m.Mount(idle))
	require.NoError(t, m.Mount(busy))

	_, err := m.Press(busy.ID, runner.ActionStart)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)

	require.Eventually(t, func() bool {
		_, ok := m.GetSession(idle.ID)
		return !ok
	}, 2*time.Second, 10*time.Millisecond)

	_, ok := m.GetSession(busy.ID)
	assert.True(t, ok, "running session must survive cleanup")
}

func TestSessionManager_CloseUnmountsAll(t *testing.T) {
	m := runner.NewSessionManager(runner.Config{Clock: clockwork.NewFakeClock()})

	require.NoError(t, m.Mount(newSession(t, "a", domain.DefaultSteps())))
	require.NoError(t, m.Mount(newSession(t, "b", domain.DefaultSteps())))

	m.Close()
	m.Close()

	assert.Equal(t, 0, m.Len())
}

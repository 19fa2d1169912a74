package runner_test

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/hperssn/quickshower/internal/domain"
	"github.com/hperssn/quickshower/internal/runner"
)

func newSession(t *testing.T, id string, steps []domain.Step) *domain.Session {
	t.Helper()
	s, err := domain.NewSession(id, "user-1", steps, domain.CountDown, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func TestSessionManager_MountAndGet(t *testing.T) {
	m := runner.NewSessionManager(runner.Config{Clock: clockwork.NewFakeClock()})
	defer m.Close()

	s := newSession(t, "session-1", domain.DefaultSteps())

	if err := m.Mount(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok := m.GetSession(s.ID)
	if !ok {
		t.Fatalf("expected session to exist")
	}
	if got.ID != s.ID {
		t.Fatalf("expected session ID %s, got %s", s.ID, got.ID)
	}
	if m.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", m.Len())
	}
}

func TestSessionManager_DuplicateMount(t *testing.T) {
	m := runner.NewSessionManager(runner.Config{Clock: clockwork.NewFakeClock()})
	defer m.Close()

	s := newSession(t, "session-dup", domain.DefaultSteps())
	if err := m.Mount(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Mount(s); !errors.Is(err, runner.ErrSessionExists) {
		t.Fatalf("expected ErrSessionExists on duplicate mount, got %v", err)
	}
}

func TestSessionManager_Unmount(t *testing.T) {
	m := runner.NewSessionManager(runner.Config{Clock: clockwork.NewFakeClock()})
	defer m.Close()

	s := newSession(t, "session-stop", domain.DefaultSteps())
	if err := m.Mount(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Unmount(s.ID); err != nil {
		t.Fatalf("unexpected error unmounting session: %v", err)
	}

	if _, ok := m.GetSession(s.ID); ok {
		t.Fatalf("unmounted session should be gone")
	}
	if _, err := m.Press(s.ID, runner.ActionStart); !errors.Is(err, runner.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionManager_UnmountMissing(t *testing.T) {
	m := runner.NewSessionManager(runner.Config{Clock: clockwork.NewFakeClock()})
	defer m.Close()

	if err := m.Unmount("missing"); !errors.Is(err, runner.ErrSessionNotFound) {
		t.Fatalf("expected error when unmounting missing session")
	}
}

func TestSessionManager_PressDrivesEngine(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := runner.NewSessionManager(runner.Config{Clock: clock})
	defer m.Close()

	s := newSession(t, "session-press", domain.DefaultSteps())
	if err := m.Mount(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap, err := m.Press(s.ID, runner.ActionPrimary)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !snap.Running {
		t.Fatalf("primary press from idle should start the step")
	}

	clock.Advance(5*time.Second + 200*time.Millisecond)

	snap, err = m.Snapshot(s.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.StepIndex != 1 {
		t.Fatalf("expected step 1 after completion, got %d", snap.StepIndex)
	}
	if snap.Running {
		t.Fatalf("next step must wait for a manual start")
	}
}

func TestSessionManager_UnknownAction(t *testing.T) {
	m := runner.NewSessionManager(runner.Config{Clock: clockwork.NewFakeClock()})
	defer m.Close()

	s := newSession(t, "session-action", domain.DefaultSteps())
	if err := m.Mount(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := m.Press(s.ID, runner.Action("jump")); !errors.Is(err, runner.ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}

func TestParseAction(t *testing.T) {
	for _, name := range []string{"start", "pause", "cancel", "primary", "secondary"} {
		a, err := runner.ParseAction(name)
		if err != nil {
			t.Fatalf("ParseAction(%q) unexpected error: %v", name, err)
		}
		if string(a) != name {
			t.Fatalf("ParseAction(%q) = %q", name, a)
		}
	}
	if _, err := runner.ParseAction("stop"); !errors.Is(err, runner.ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}

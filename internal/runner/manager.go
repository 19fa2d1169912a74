package runner

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/hperssn/quickshower/internal/domain"
	"github.com/hperssn/quickshower/internal/engine"
	"github.com/hperssn/quickshower/internal/metrics"
)

var (
	ErrSessionExists   = errors.New("session already exists")
	ErrSessionNotFound = errors.New("session not found")
	ErrUnknownAction   = errors.New("unknown action")
)

// Action is a discrete input from the user surface.
type Action string

const (
	ActionStart     Action = "start"
	ActionPause     Action = "pause"
	ActionCancel    Action = "cancel"
	ActionPrimary   Action = "primary"
	ActionSecondary Action = "secondary"
)

func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionStart, ActionPause, ActionCancel, ActionPrimary, ActionSecondary:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}

const (
	DefaultIdleTTL         = time.Hour
	DefaultCleanupInterval = 5 * time.Minute
)

type Config struct {
	Clock           clockwork.Clock
	FrameInterval   time.Duration
	ResetDuration   time.Duration
	IdleTTL         time.Duration
	CleanupInterval time.Duration
	Recorder        Recorder
}

// SessionManager holds one runner per mounted timer screen.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*sessionRunner

	cfg  Config
	done chan struct{}
	once sync.Once
}

func NewSessionManager(cfg Config) *SessionManager {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultIdleTTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultCleanupInterval
	}

	m := &SessionManager{
		sessions: make(map[string]*sessionRunner),
		cfg:      cfg,
		done:     make(chan struct{}),
	}

	ticker := cfg.Clock.NewTicker(cfg.CleanupInterval)
	go m.cleanupLoop(ticker)

	return m
}

func (m *SessionManager) cleanupLoop(ticker clockwork.Ticker) {
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			m.cleanupIdleSessions()
		case <-m.done:
			return
		}
	}
}

func (m *SessionManager) cleanupIdleSessions() {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.cfg.Clock.Now().Add(-m.cfg.IdleTTL)

	for id, r := range m.sessions {
		if r.idle(cutoff) {
			r.Stop()
			delete(m.sessions, id)
			metrics.SessionsActive.Dec()
			metrics.SessionsUnmountedTotal.WithLabelValues("idle").Inc()
			slog.Info("Unmounted idle session", "session_id", id)
		}
	}
}

// Mount creates the timer session for a newly shown screen.
func (m *SessionManager) Mount(s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[s.ID]; exists {
		return ErrSessionExists
	}

	r, err := newSessionRunner(s, runnerConfig{
		clock:         m.cfg.Clock,
		frameInterval: m.cfg.FrameInterval,
		resetDuration: m.cfg.ResetDuration,
		recorder:      m.cfg.Recorder,
	})
	if err != nil {
		return err
	}
	m.sessions[s.ID] = r
	metrics.SessionsActive.Inc()

	return nil
}

// Unmount destroys the session and closes its render streams.
func (m *SessionManager) Unmount(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, exists := m.sessions[id]
	if !exists {
		return ErrSessionNotFound
	}

	r.Stop()
	delete(m.sessions, id)
	metrics.SessionsActive.Dec()
	metrics.SessionsUnmountedTotal.WithLabelValues("client").Inc()
	return nil
}

func (m *SessionManager) GetSession(id string) (*domain.Session, bool) {
	r, ok := m.runner(id)
	if !ok {
		return nil, false
	}
	return r.Session(), true
}

func (m *SessionManager) Snapshot(id string) (engine.Snapshot, error) {
	r, ok := m.runner(id)
	if !ok {
		return engine.Snapshot{}, ErrSessionNotFound
	}
	return r.Snapshot(), nil
}

func (m *SessionManager) Press(id string, a Action) (engine.Snapshot, error) {
	r, ok := m.runner(id)
	if !ok {
		metrics.ActionsTotal.WithLabelValues(string(a), "not_found").Inc()
		return engine.Snapshot{}, ErrSessionNotFound
	}

	snap, err := r.Press(a)
	if err != nil {
		metrics.ActionsTotal.WithLabelValues("unknown", "error").Inc()
		return engine.Snapshot{}, err
	}
	metrics.ActionsTotal.WithLabelValues(string(a), "ok").Inc()
	return snap, nil
}

func (m *SessionManager) Subscribe(id string) (<-chan Frame, func(), error) {
	r, ok := m.runner(id)
	if !ok {
		return nil, nil, ErrSessionNotFound
	}
	ch, cancel := r.Subscribe()
	return ch, cancel, nil
}

func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close stops the cleanup loop and unmounts every session.
func (m *SessionManager) Close() {
	m.once.Do(func() {
		close(m.done)

		m.mu.Lock()
		defer m.mu.Unlock()
		for id, r := range m.sessions {
			r.Stop()
			delete(m.sessions, id)
			metrics.SessionsActive.Dec()
			metrics.SessionsUnmountedTotal.WithLabelValues("shutdown").Inc()
		}
	})
}

func (m *SessionManager) runner(id string) (*sessionRunner, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.sessions[id]
	return r, ok
}

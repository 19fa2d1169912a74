package runner

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/hperssn/quickshower/internal/domain"
	"github.com/hperssn/quickshower/internal/engine"
	"github.com/hperssn/quickshower/internal/metrics"
)

const (
	DefaultFrameInterval = 16 * time.Millisecond

	frameBuffer = 8
)

// Frame is one rendered state of a session, pushed to subscribers.
type Frame struct {
	SessionID string `json:"sessionId"`
	engine.Snapshot
}

// Recorder receives engine events for run history. It is called with the
// runner's lock held and must not block.
type Recorder interface {
	Record(s *domain.Session, ev engine.Event)
}

type runnerConfig struct {
	clock         clockwork.Clock
	frameInterval time.Duration
	resetDuration time.Duration
	recorder      Recorder
}

// sessionRunner confines one engine to a single logical UI context: every
// input and every frame tick goes through mu.
type sessionRunner struct {
	mu sync.Mutex

	session *domain.Session
	engine  *engine.Engine
	clock   clockwork.Clock

	ctx    context.Context
	cancel context.CancelFunc
	ticker clockwork.Ticker

	recorder   Recorder
	subs       map[int]chan Frame
	nextSub    int
	last       engine.Snapshot
	lastActive time.Time
}

func newSessionRunner(s *domain.Session, cfg runnerConfig) (*sessionRunner, error) {
	if cfg.clock == nil {
		cfg.clock = clockwork.NewRealClock()
	}
	if cfg.frameInterval <= 0 {
		cfg.frameInterval = DefaultFrameInterval
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &sessionRunner{
		session:    s,
		clock:      cfg.clock,
		ctx:        ctx,
		cancel:     cancel,
		recorder:   cfg.recorder,
		subs:       make(map[int]chan Frame),
		lastActive: cfg.clock.Now(),
	}

	eng, err := engine.New(s.Steps, engine.Options{
		Clock:         cfg.clock,
		Direction:     s.Direction,
		AutoAdvance:   s.AutoAdvance,
		ResetDuration: cfg.resetDuration,
		Observer:      r.onEvent,
	})
	if err != nil {
		cancel()
		return nil, err
	}
	r.engine = eng
	r.last = eng.Snapshot()

	// created before the loop starts so a fake clock sees it immediately
	r.ticker = cfg.clock.NewTicker(cfg.frameInterval)
	go r.loop()

	return r, nil
}

func (r *sessionRunner) loop() {
	defer r.ticker.Stop()

	for {
		select {
		case <-r.ticker.Chan():
			r.tick()

		case <-r.ctx.Done():
			return
		}
	}
}

func (r *sessionRunner) tick() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ctx.Err() != nil {
		return
	}
	r.publish(r.engine.Tick())
}

func (r *sessionRunner) Press(a Action) (engine.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ctx.Err() != nil {
		return engine.Snapshot{}, ErrSessionNotFound
	}

	var snap engine.Snapshot
	switch a {
	case ActionStart:
		snap = r.engine.Start()
	case ActionPause:
		snap = r.engine.Pause()
	case ActionCancel:
		snap = r.engine.Cancel()
	case ActionPrimary:
		snap = r.engine.Primary()
	case ActionSecondary:
		snap = r.engine.Secondary()
	default:
		return engine.Snapshot{}, ErrUnknownAction
	}

	r.lastActive = r.clock.Now()
	r.publish(snap)
	return snap, nil
}

func (r *sessionRunner) Snapshot() engine.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := r.engine.Tick()
	r.publish(snap)
	return snap
}

// Subscribe registers a render surface. The returned channel receives the
// current frame immediately and every changed frame after it; it is closed
// by the cancel func or when the runner stops.
func (r *sessionRunner) Subscribe() (<-chan Frame, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan Frame, frameBuffer)
	if r.ctx.Err() != nil {
		close(ch)
		return ch, func() {}
	}

	id := r.nextSub
	r.nextSub++
	r.subs[id] = ch
	ch <- Frame{SessionID: r.session.ID, Snapshot: r.engine.Snapshot()}

	return ch, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if c, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(c)
		}
	}
}

func (r *sessionRunner) publish(snap engine.Snapshot) {
	if snap == r.last {
		return
	}
	r.last = snap

	frame := Frame{SessionID: r.session.ID, Snapshot: snap}
	for _, ch := range r.subs {
		select {
		case ch <- frame:
			metrics.FramesPublishedTotal.Inc()
		default:
			metrics.FramesDroppedTotal.Inc()
		}
	}
}

func (r *sessionRunner) onEvent(ev engine.Event) {
	metrics.EngineEventsTotal.WithLabelValues(string(ev.Kind)).Inc()
	if r.recorder != nil {
		r.recorder.Record(r.session, ev)
	}
}

// idle reports whether nothing is running and no input arrived since cutoff.
func (r *sessionRunner) idle(cutoff time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.engine.State() != engine.Running && r.lastActive.Before(cutoff)
}

func (r *sessionRunner) Stop() {
	r.cancel()

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, ch := range r.subs {
		delete(r.subs, id)
		close(ch)
	}
}

func (r *sessionRunner) Session() *domain.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	copy := *r.session
	return &copy
}

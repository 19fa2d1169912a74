// Package engine implements the ring countdown state machine.
//
// The engine owns a clock and derives elapsed time from it on every Tick.
// Progress, labels and step transitions are all computed from that elapsed
// time; nothing is observed back from the renderer. An Engine is not safe for
// concurrent use: callers confine it to a single goroutine or lock around it.
package engine

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/hperssn/quickshower/internal/domain"
)

// DefaultResetDuration is the length of the sweep that returns the ring to its
// initial value after a cancel or a completed step.
const DefaultResetDuration = 200 * time.Millisecond

type State int

const (
	Idle State = iota
	Running
	Paused
	Completed
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Completed:
		return "completed"
	default:
		return "idle"
	}
}

type Options struct {
	Clock     clockwork.Clock
	Direction domain.Direction
	// AutoAdvance starts the next step as soon as the previous one has reset.
	AutoAdvance   bool
	ResetDuration time.Duration
	Observer      Observer
}

// sweep is an eased transition of the ring back to its initial value.
type sweep struct {
	from   float64
	to     float64
	start  time.Time
	length time.Duration
	done   func(at time.Time)
}

func (s *sweep) end() time.Time {
	return s.start.Add(s.length)
}

func (s *sweep) at(now time.Time) float64 {
	t := 1.0
	if s.length > 0 {
		t = float64(now.Sub(s.start)) / float64(s.length)
	}
	return s.from + (s.to-s.from)*quadInOut(t)
}

type Engine struct {
	clock       clockwork.Clock
	steps       []domain.Step
	dir         domain.Direction
	autoAdvance bool
	reset       time.Duration
	observer    Observer

	state State
	index int
	// banked is elapsed time accumulated before startedAt.
	banked    time.Duration
	startedAt time.Time
	sweep     *sweep
	finished  bool
}

func New(steps []domain.Step, opts Options) (*Engine, error) {
	if err := domain.ValidateSteps(steps); err != nil {
		return nil, err
	}

	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.ResetDuration <= 0 {
		opts.ResetDuration = DefaultResetDuration
	}

	owned := make([]domain.Step, len(steps))
	copy(owned, steps)

	return &Engine{
		clock:       opts.Clock,
		steps:       owned,
		dir:         opts.Direction,
		autoAdvance: opts.AutoAdvance,
		reset:       opts.ResetDuration,
		observer:    opts.Observer,
	}, nil
}

func (e *Engine) State() State {
	return e.state
}

func (e *Engine) StepIndex() int {
	return e.index
}

func (e *Engine) Direction() domain.Direction {
	return e.dir
}

// Start runs the active step from its current elapsed time. It is a no-op
// while the step is already running.
func (e *Engine) Start() Snapshot {
	now := e.clock.Now()
	e.catchUp(now)

	if e.state == Running {
		return e.snapshotAt(now)
	}
	e.settle(now)
	// settling a completion sweep may already have started the next step
	if e.state != Running {
		e.run(now)
	}
	return e.snapshotAt(now)
}

// Pause freezes the running step at its current elapsed time.
func (e *Engine) Pause() Snapshot {
	now := e.clock.Now()
	e.catchUp(now)

	if e.state != Running {
		return e.snapshotAt(now)
	}

	e.banked = e.elapsedAt(now)
	e.state = Paused
	e.emit(StepPaused, now)
	return e.snapshotAt(now)
}

// Cancel returns to the first step with nothing elapsed. Any in-flight
// completion sweep is superseded and will not advance.
func (e *Engine) Cancel() Snapshot {
	now := e.clock.Now()
	e.catchUp(now)

	from := e.progressAt(now)
	wasActive := e.state == Running || e.state == Paused
	if wasActive {
		e.banked = e.elapsedAt(now)
		e.emit(Cancelled, now)
	}

	e.state = Idle
	e.banked = 0
	e.index = 0
	e.finished = false
	e.sweep = nil

	if initial := e.dir.InitialProgress(); from != initial {
		e.sweep = &sweep{from: from, to: initial, start: now, length: e.reset}
	}
	return e.snapshotAt(now)
}

// Primary toggles between running and paused.
func (e *Engine) Primary() Snapshot {
	now := e.clock.Now()
	e.catchUp(now)

	if e.state == Running {
		return e.Pause()
	}
	return e.Start()
}

func (e *Engine) Secondary() Snapshot {
	return e.Cancel()
}

// Tick applies every transition due at the clock's current time and returns
// the resulting snapshot.
func (e *Engine) Tick() Snapshot {
	now := e.clock.Now()
	e.catchUp(now)
	return e.snapshotAt(now)
}

func (e *Engine) Snapshot() Snapshot {
	return e.snapshotAt(e.clock.Now())
}

func (e *Engine) catchUp(now time.Time) {
	for e.step(now) {
	}
}

// step performs the earliest transition due at or before now and reports
// whether one happened.
func (e *Engine) step(now time.Time) bool {
	if e.state == Running {
		end := e.startedAt.Add(e.active().Duration - e.banked)
		if !now.Before(end) {
			e.complete(end)
			return true
		}
	}
	if e.sweep != nil && !now.Before(e.sweep.end()) {
		s := e.sweep
		e.sweep = nil
		if s.done != nil {
			s.done(s.end())
		}
		return true
	}
	return false
}

// settle finishes an in-flight sweep at now instead of waiting for it.
func (e *Engine) settle(now time.Time) {
	if e.sweep == nil {
		return
	}
	s := e.sweep
	e.sweep = nil
	if s.done != nil {
		s.done(now)
	}
}

func (e *Engine) run(at time.Time) {
	if e.index >= len(e.steps) {
		return
	}
	if e.banked >= e.active().Duration {
		e.banked = e.active().Duration
	}
	e.finished = false
	e.state = Running
	e.startedAt = at
	e.emit(StepStarted, at)
}

func (e *Engine) complete(at time.Time) {
	e.banked = e.active().Duration
	e.state = Completed
	e.emit(StepCompleted, at)

	e.sweep = &sweep{
		from:   e.dir.TerminalProgress(),
		to:     e.dir.InitialProgress(),
		start:  at,
		length: e.reset,
		done:   e.advance,
	}
}

func (e *Engine) advance(at time.Time) {
	e.state = Idle
	e.banked = 0

	next := e.index + 1
	if next >= len(e.steps) {
		e.emit(SequenceFinished, at)
		e.index = 0
		e.finished = true
		return
	}

	e.index = next
	if e.autoAdvance {
		e.run(at)
	}
}

func (e *Engine) active() domain.Step {
	return e.steps[e.index]
}

func (e *Engine) elapsedAt(now time.Time) time.Duration {
	d := e.active().Duration
	elapsed := e.banked
	if e.state == Running {
		elapsed += now.Sub(e.startedAt)
	}
	if elapsed > d {
		return d
	}
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

func (e *Engine) progressAt(now time.Time) float64 {
	if e.sweep != nil {
		return e.sweep.at(now)
	}
	return e.dir.Progress(e.elapsedAt(now), e.active().Duration)
}

func (e *Engine) emit(kind EventKind, at time.Time) {
	if e.observer == nil {
		return
	}
	e.observer(Event{
		Kind:      kind,
		StepIndex: e.index,
		Step:      e.active(),
		Elapsed:   e.banked,
		At:        at,
	})
}

package engine

import (
	"time"

	"github.com/hperssn/quickshower/internal/domain"
)

type EventKind string

const (
	StepStarted      EventKind = "step_started"
	StepPaused       EventKind = "step_paused"
	StepCompleted    EventKind = "step_completed"
	SequenceFinished EventKind = "sequence_finished"
	Cancelled        EventKind = "cancelled"
)

// Event reports a transition of the engine. Elapsed is the time spent in the
// step when the transition happened.
type Event struct {
	Kind      EventKind
	StepIndex int
	Step      domain.Step
	Elapsed   time.Duration
	At        time.Time
}

// Observer is called synchronously from the goroutine driving the engine.
type Observer func(Event)

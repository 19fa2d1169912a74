package engine

import (
	"time"

	"github.com/hperssn/quickshower/internal/domain"
)

// Snapshot is everything a render surface needs to paint one frame.
type Snapshot struct {
	State         State         `json:"-"`
	StateName     string        `json:"state"`
	StepIndex     int           `json:"stepIndex"`
	StepCount     int           `json:"stepCount"`
	StepLabel     string        `json:"stepLabel"`
	Duration      time.Duration `json:"-"`
	Elapsed       time.Duration `json:"-"`
	Remaining     time.Duration `json:"-"`
	DurationSec   float64       `json:"durationSec"`
	ElapsedSec    float64       `json:"elapsedSec"`
	Progress      float64       `json:"progress"`
	DurationLabel string        `json:"durationLabel"`
	Running       bool          `json:"running"`
	// Finished is set once the last step has completed and the ring has
	// looped back to the first step.
	Finished bool `json:"finished"`
}

func (e *Engine) snapshotAt(now time.Time) Snapshot {
	step := e.active()
	elapsed := e.elapsedAt(now)

	return Snapshot{
		State:         e.state,
		StateName:     e.state.String(),
		StepIndex:     e.index,
		StepCount:     len(e.steps),
		StepLabel:     step.Label,
		Duration:      step.Duration,
		Elapsed:       elapsed,
		Remaining:     step.Duration - elapsed,
		DurationSec:   step.Duration.Seconds(),
		ElapsedSec:    elapsed.Seconds(),
		Progress:      e.progressAt(now),
		DurationLabel: domain.RemainingLabel(elapsed, step.Duration),
		Running:       e.state == Running,
		Finished:      e.finished,
	}
}

package storage

import (
	"time"

	"github.com/google/uuid"

	"github.com/hperssn/quickshower/internal/domain"
	"github.com/hperssn/quickshower/internal/engine"
)

type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeCancelled Outcome = "cancelled"
)

// RunRecord is one finished or abandoned run of a step.
type RunRecord struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"sessionId"`
	UserID      string    `json:"userId"`
	StepIndex   int       `json:"stepIndex"`
	StepLabel   string    `json:"stepLabel"`
	DurationSec float64   `json:"durationSec"`
	ElapsedSec  float64   `json:"elapsedSec"`
	Outcome     Outcome   `json:"outcome"`
	RecordedAt  time.Time `json:"recordedAt"`
}

// FromEngineEvent converts a terminal engine event to a RunRecord. Events that
// do not end a run return false.
func FromEngineEvent(s *domain.Session, ev engine.Event) (*RunRecord, bool) {
	var outcome Outcome
	switch ev.Kind {
	case engine.StepCompleted:
		outcome = OutcomeCompleted
	case engine.Cancelled:
		outcome = OutcomeCancelled
	default:
		return nil, false
	}

	return &RunRecord{
		ID:          uuid.New().String(),
		SessionID:   s.ID,
		UserID:      s.UserID,
		StepIndex:   ev.StepIndex,
		StepLabel:   ev.Step.Label,
		DurationSec: ev.Step.Duration.Seconds(),
		ElapsedSec:  ev.Elapsed.Seconds(),
		Outcome:     outcome,
		RecordedAt:  ev.At.UTC(),
	}, true
}

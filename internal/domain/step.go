package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoSteps         = errors.New("at least one step is required")
	ErrInvalidDuration = errors.New("step duration must be positive")
)

// Step is one timed entry of a program. Steps run in slice order.
type Step struct {
	Label    string        `json:"label"`
	Duration time.Duration `json:"duration"`
}

func DefaultSteps() []Step {
	return []Step{
		{Label: "Ligar Chuveiro", Duration: 5 * time.Second},
		{Label: "Passar Sabonete", Duration: 15 * time.Second},
		{Label: "Enxaguar", Duration: 10 * time.Second},
	}
}

// SingleStep builds a one-entry program. Completing it resets the ring
// without advancing.
func SingleStep(d time.Duration, label string) []Step {
	return []Step{{Label: label, Duration: d}}
}

func ValidateSteps(steps []Step) error {
	if len(steps) == 0 {
		return ErrNoSteps
	}
	for i, s := range steps {
		if s.Duration <= 0 {
			return fmt.Errorf("step %d: %w", i, ErrInvalidDuration)
		}
	}
	return nil
}

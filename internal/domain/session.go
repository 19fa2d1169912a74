package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is one mounted timer screen and the program it runs.
type Session struct {
	ID          string
	UserID      string
	Steps       []Step
	Direction   Direction
	AutoAdvance bool
	CreatedAt   time.Time
}

func NewSession(id string, userID string, steps []Step, dir Direction, now time.Time) (*Session, error) {
	if err := ValidateSteps(steps); err != nil {
		return nil, err
	}

	if id == "" {
		id = uuid.New().String()
	}

	owned := make([]Step, len(steps))
	copy(owned, steps)

	return &Session{
		ID:        id,
		UserID:    userID,
		Steps:     owned,
		Direction: dir,
		CreatedAt: now,
	}, nil
}

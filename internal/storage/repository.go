package storage

import "time"

type Repository interface {
	SaveRun(record *RunRecord) error

	GetRunsByUser(userID string) ([]RunRecord, error)

	GetRecentRuns(userID string, since time.Time) ([]RunRecord, error)

	GetRunStats(userID string) (*RunStats, error)

	Close() error
}

type RunStats struct {
	TotalRuns      int     `json:"totalRuns"`
	CompletedCount int     `json:"completedCount"`
	CancelledCount int     `json:"cancelledCount"`
	TotalTimeSec   float64 `json:"totalTimeSec"`
	CompletionRate float64 `json:"completionRate"`
}

func (s *RunStats) finish() {
	s.CancelledCount = s.TotalRuns - s.CompletedCount
	if s.TotalRuns > 0 {
		s.CompletionRate = float64(s.CompletedCount) / float64(s.TotalRuns) * 100
	}
}

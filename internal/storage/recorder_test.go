package storage

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hperssn/quickshower/internal/domain"
	"github.com/hperssn/quickshower/internal/engine"
)

type memoryRepository struct {
	mu   sync.Mutex
	runs []RunRecord
	err  error
}

func (m *memoryRepository) SaveRun(record *RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.runs = append(m.runs, *record)
	return nil
}

func (m *memoryRepository) GetRunsByUser(string) ([]RunRecord, error) { return m.runs, nil }

func (m *memoryRepository) GetRecentRuns(string, time.Time) ([]RunRecord, error) {
	return m.runs, nil
}

func (m *memoryRepository) GetRunStats(string) (*RunStats, error) { return &RunStats{}, nil }

func (m *memoryRepository) Close() error { return nil }

func testSession(t *testing.T) *domain.Session {
	t.Helper()
	s, err := domain.NewSession("session-1", "alice", domain.DefaultSteps(), domain.CountDown, time.Now())
	require.NoError(t, err)
	return s
}

func TestFromEngineEvent(t *testing.T) {
	s := testSession(t)
	at := time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)

	rec, ok := FromEngineEvent(s, engine.Event{
		Kind:      engine.Cancelled,
		StepIndex: 1,
		Step:      s.Steps[1],
		Elapsed:   4 * time.Second,
		At:        at,
	})
	require.True(t, ok)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "alice", rec.UserID)
	assert.Equal(t, "Passar Sabonete", rec.StepLabel)
	assert.Equal(t, 15.0, rec.DurationSec)
	assert.Equal(t, 4.0, rec.ElapsedSec)
	assert.Equal(t, OutcomeCancelled, rec.Outcome)
	assert.True(t, rec.RecordedAt.Equal(at))

	for _, kind := range []engine.EventKind{engine.StepStarted, engine.StepPaused, engine.SequenceFinished} {
		_, ok := FromEngineEvent(s, engine.Event{Kind: kind, Step: s.Steps[0]})
		assert.False(t, ok, kind)
	}
}

func TestRecorder_WritesTerminalEvents(t *testing.T) {
	repo := &memoryRepository{}
	r := NewRecorder(repo)
	s := testSession(t)

	r.Record(s, engine.Event{Kind: engine.StepStarted, Step: s.Steps[0]})
	r.Record(s, engine.Event{Kind: engine.StepCompleted, Step: s.Steps[0], Elapsed: 5 * time.Second})
	r.Record(s, engine.Event{Kind: engine.Cancelled, StepIndex: 1, Step: s.Steps[1], Elapsed: time.Second})
	r.Close()

	require.Len(t, repo.runs, 2)
	assert.Equal(t, OutcomeCompleted, repo.runs[0].Outcome)
	assert.Equal(t, OutcomeCancelled, repo.runs[1].Outcome)
}

func TestRecorder_SurvivesWriteErrors(t *testing.T) {
	repo := &memoryRepository{err: errors.New("disk full")}
	r := NewRecorder(repo)
	s := testSession(t)

	r.Record(s, engine.Event{Kind: engine.StepCompleted, Step: s.Steps[0]})
	r.Close()
	r.Close()

	assert.Empty(t, repo.runs)
}

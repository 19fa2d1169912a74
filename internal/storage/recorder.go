package storage

import (
	"log/slog"
	"sync"

	"github.com/hperssn/quickshower/internal/domain"
	"github.com/hperssn/quickshower/internal/engine"
	"github.com/hperssn/quickshower/internal/metrics"
)

const recorderBuffer = 64

// Recorder writes run history off the timer's goroutine. Record never
// blocks; when the queue is full the record is dropped and counted.
type Recorder struct {
	repo  Repository
	queue chan *RunRecord
	wg    sync.WaitGroup
	once  sync.Once
}

func NewRecorder(repo Repository) *Recorder {
	r := &Recorder{
		repo:  repo,
		queue: make(chan *RunRecord, recorderBuffer),
	}

	r.wg.Add(1)
	go r.loop()

	return r
}

func (r *Recorder) Record(s *domain.Session, ev engine.Event) {
	record, ok := FromEngineEvent(s, ev)
	if !ok {
		return
	}

	select {
	case r.queue <- record:
	default:
		metrics.HistoryWritesTotal.WithLabelValues("dropped").Inc()
		slog.Warn("History queue full, dropping run", "session_id", s.ID, "step_index", ev.StepIndex)
	}
}

func (r *Recorder) loop() {
	defer r.wg.Done()

	for record := range r.queue {
		if err := r.repo.SaveRun(record); err != nil {
			metrics.HistoryWritesTotal.WithLabelValues("error").Inc()
			slog.Error("Failed to save run", "session_id", record.SessionID, "error", err)
			continue
		}
		metrics.HistoryWritesTotal.WithLabelValues("ok").Inc()
	}
}

// Close drains queued records. Record must not be called after Close.
func (r *Recorder) Close() {
	r.once.Do(func() {
		close(r.queue)
		r.wg.Wait()
	})
}

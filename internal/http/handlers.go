package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hperssn/quickshower/internal/domain"
	"github.com/hperssn/quickshower/internal/engine"
	"github.com/hperssn/quickshower/internal/runner"
	"github.com/hperssn/quickshower/internal/storage"
)

const maxStepSeconds = 24 * 60 * 60

type stepPayload struct {
	Label       string  `json:"label"`
	DurationSec float64 `json:"durationSec"`
}

type mountRequest struct {
	Steps       []stepPayload `json:"steps"`
	Direction   *string       `json:"direction"`
	AutoAdvance *bool         `json:"autoAdvance"`
}

type sessionResponse struct {
	ID          string          `json:"id"`
	Steps       []stepPayload   `json:"steps"`
	Direction   string          `json:"direction"`
	AutoAdvance bool            `json:"autoAdvance"`
	CreatedAt   time.Time       `json:"createdAt"`
	Frame       engine.Snapshot `json:"frame"`
}

func newSessionResponse(sess *domain.Session, snap engine.Snapshot) sessionResponse {
	steps := make([]stepPayload, len(sess.Steps))
	for i, st := range sess.Steps {
		steps[i] = stepPayload{Label: st.Label, DurationSec: st.Duration.Seconds()}
	}
	return sessionResponse{
		ID:          sess.ID,
		Steps:       steps,
		Direction:   sess.Direction.String(),
		AutoAdvance: sess.AutoAdvance,
		CreatedAt:   sess.CreatedAt,
		Frame:       snap,
	}
}

func (req *mountRequest) toSteps() ([]domain.Step, error) {
	if len(req.Steps) == 0 {
		return domain.DefaultSteps(), nil
	}

	steps := make([]domain.Step, len(req.Steps))
	for i, p := range req.Steps {
		if math.IsNaN(p.DurationSec) || p.DurationSec <= 0 || p.DurationSec > maxStepSeconds {
			return nil, fmt.Errorf("step %d: %w", i, domain.ErrInvalidDuration)
		}
		steps[i] = domain.Step{
			Label:    p.Label,
			Duration: time.Duration(p.DurationSec * float64(time.Second)),
		}
	}
	return steps, nil
}

func (s *Server) mountSession(w http.ResponseWriter, r *http.Request) {
	var req mountRequest

	// an empty body mounts the default program
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	steps, err := req.toSteps()
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	dir := s.defaults.Direction
	if req.Direction != nil {
		if dir, err = domain.ParseDirection(*req.Direction); err != nil {
			respondError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	sess, err := domain.NewSession("", GetUserID(r), steps, dir, s.clock.Now())
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess.AutoAdvance = s.defaults.AutoAdvance
	if req.AutoAdvance != nil {
		sess.AutoAdvance = *req.AutoAdvance
	}

	if err := s.manager.Mount(sess); err != nil {
		respondError(w, err.Error(), http.StatusConflict)
		return
	}

	snap, err := s.manager.Snapshot(sess.ID)
	if err != nil {
		respondError(w, err.Error(), http.StatusNotFound)
		return
	}

	slog.Info("Session mounted", "session_id", sess.ID, "user_id", sess.UserID, "steps", len(sess.Steps))
	respondJSON(w, newSessionResponse(sess, snap), http.StatusCreated)
}

// ownedSession resolves the {id} param to a session belonging to the caller.
// Sessions of other users are reported as missing.
func (s *Server) ownedSession(w http.ResponseWriter, r *http.Request) (*domain.Session, bool) {
	id := chi.URLParam(r, "id")

	sess, ok := s.manager.GetSession(id)
	if !ok || sess.UserID != GetUserID(r) {
		respondError(w, runner.ErrSessionNotFound.Error(), http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.ownedSession(w, r)
	if !ok {
		return
	}

	snap, err := s.manager.Snapshot(sess.ID)
	if err != nil {
		respondError(w, err.Error(), http.StatusNotFound)
		return
	}

	respondJSON(w, newSessionResponse(sess, snap), http.StatusOK)
}

func (s *Server) unmountSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.ownedSession(w, r)
	if !ok {
		return
	}

	if err := s.manager.Unmount(sess.ID); err != nil {
		respondError(w, err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) pressAction(w http.ResponseWriter, r *http.Request) {
	action, err := runner.ParseAction(chi.URLParam(r, "action"))
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess, ok := s.ownedSession(w, r)
	if !ok {
		return
	}

	snap, err := s.manager.Press(sess.ID, action)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, runner.ErrSessionNotFound) {
			status = http.StatusNotFound
		}
		respondError(w, err.Error(), status)
		return
	}

	respondJSON(w, snap, http.StatusOK)
}

func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r)

	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, "since must be an RFC3339 timestamp", http.StatusBadRequest)
			return
		}
		since = t
	}

	var (
		runs []storage.RunRecord
		err  error
	)
	if since.IsZero() {
		runs, err = s.history.GetRunsByUser(userID)
	} else {
		runs, err = s.history.GetRecentRuns(userID, since)
	}
	if err != nil {
		slog.Error("Failed to load history", "user_id", userID, "error", err)
		respondError(w, "failed to load history", http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []storage.RunRecord{}
	}

	respondJSON(w, runs, http.StatusOK)
}

func (s *Server) historyStats(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r)

	stats, err := s.history.GetRunStats(userID)
	if err != nil {
		slog.Error("Failed to load history stats", "user_id", userID, "error", err)
		respondError(w, "failed to load history stats", http.StatusInternalServerError)
		return
	}

	respondJSON(w, stats, http.StatusOK)
}

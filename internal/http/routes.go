// Package httpapi exposes timer sessions over HTTP.
//
// Render surfaces: SSE (/sessions/{id}/events) and WebSocket (/sessions/{id}/ws).
// Input surface: POST /sessions/{id}/{action} and WebSocket action messages.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hperssn/quickshower/internal/domain"
	"github.com/hperssn/quickshower/internal/runner"
	"github.com/hperssn/quickshower/internal/storage"
)

// SessionDefaults apply when a mount request leaves a setting out.
type SessionDefaults struct {
	Direction   domain.Direction
	AutoAdvance bool
}

type Server struct {
	manager  *runner.SessionManager
	history  storage.Repository
	clock    clockwork.Clock
	defaults SessionDefaults
}

func NewServer(manager *runner.SessionManager, history storage.Repository, clock clockwork.Clock, defaults SessionDefaults) *Server {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Server{
		manager:  manager,
		history:  history,
		clock:    clock,
		defaults: defaults,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.healthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(ExtractUserMiddleware)

		r.Post("/sessions", s.mountSession)
		r.Get("/sessions/{id}", s.getSession)
		r.Delete("/sessions/{id}", s.unmountSession)
		r.Post("/sessions/{id}/{action}", s.pressAction)
		r.Get("/sessions/{id}/events", s.streamEvents)
		r.Get("/sessions/{id}/ws", s.streamWebSocket)

		r.Get("/history", s.listHistory)
		r.Get("/history/stats", s.historyStats)
	})

	return r
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]any{"status": "ok", "sessions": s.manager.Len()}, http.StatusOK)
}

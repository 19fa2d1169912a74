package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hperssn/quickshower/internal/metrics"
)

// streamEvents pushes every frame of a session as a server-sent event until
// the client goes away or the session is unmounted.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.ownedSession(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	frames, unsubscribe, err := s.manager.Subscribe(sess.ID)
	if err != nil {
		respondError(w, err.Error(), http.StatusNotFound)
		return
	}
	defer unsubscribe()

	metrics.SubscribersActive.WithLabelValues("sse").Inc()
	defer metrics.SubscribersActive.WithLabelValues("sse").Dec()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case frame, ok := <-frames:
			if !ok {
				w.Write([]byte("event: unmounted\ndata: {}\n\n"))
				flusher.Flush()
				return
			}

			data, err := json.Marshal(frame)
			if err != nil {
				slog.Error("Failed to encode frame", "session_id", sess.ID, "error", err)
				return
			}
			w.Write([]byte("data: "))
			w.Write(data)
			w.Write([]byte("\n\n"))

			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

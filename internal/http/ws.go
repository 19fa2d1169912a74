package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hperssn/quickshower/internal/metrics"
	"github.com/hperssn/quickshower/internal/runner"
)

const (
	pingInterval  = 30 * time.Second
	readDeadline  = 60 * time.Second
	writeDeadline = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type wsActionMessage struct {
	Action string `json:"action"`
}

type wsErrorMessage struct {
	Error string `json:"error"`
}

// streamWebSocket serves both surfaces on one connection: frames go out, button
// presses come in.
func (s *Server) streamWebSocket(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.ownedSession(w, r)
	if !ok {
		return
	}

	frames, unsubscribe, err := s.manager.Subscribe(sess.ID)
	if err != nil {
		respondError(w, err.Error(), http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		unsubscribe()
		slog.Warn("WebSocket upgrade failed", "session_id", sess.ID, "error", err)
		return
	}

	metrics.SubscribersActive.WithLabelValues("websocket").Inc()

	replies := make(chan any, 4)
	done := make(chan struct{})

	go func() {
		defer close(done)
		s.readActions(conn, sess.ID, replies)
	}()

	s.writeFrames(conn, frames, replies, done)

	unsubscribe()
	conn.Close()
	<-done
	metrics.SubscribersActive.WithLabelValues("websocket").Dec()
}

func (s *Server) readActions(conn *websocket.Conn, sessionID string, replies chan<- any) {
	conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("WebSocket read error", "session_id", sessionID, "error", err)
			}
			return
		}

		var msg wsActionMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.reply(replies, wsErrorMessage{Error: "invalid message"})
			continue
		}

		action, err := runner.ParseAction(msg.Action)
		if err != nil {
			s.reply(replies, wsErrorMessage{Error: err.Error()})
			continue
		}

		// the resulting frame reaches the client through the subscription
		if _, err := s.manager.Press(sessionID, action); err != nil {
			s.reply(replies, wsErrorMessage{Error: err.Error()})
		}
	}
}

func (s *Server) reply(replies chan<- any, msg any) {
	select {
	case replies <- msg:
	default:
	}
}

func (s *Server) writeFrames(conn *websocket.Conn, frames <-chan runner.Frame, replies <-chan any, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case frame, ok := <-frames:
			conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session unmounted"))
				return
			}
			if err := conn.WriteJSON(frame); err != nil {
				return
			}

		case msg := <-replies:
			conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-done:
			return
		}
	}
}

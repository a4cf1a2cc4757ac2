package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/barscene/pkg/observability"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

func (s *Server) upgrader() *websocket.Upgrader {
	u := &websocket.Upgrader{}
	if s.cfg.AllowAll {
		u.CheckOrigin = func(r *http.Request) bool { return true }
	}
	return u
}

// handleStream sends the scene's current frame and then every frame
// produced by a later request, as JSON text messages. Client messages are
// read only to detect the close.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ls, err := s.live(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "scene", id, "error", err)
		return
	}
	defer conn.Close()

	hooks := observability.HTTP()
	hooks.OnStreamOpen(r.Context(), id)

	ls.mu.Lock()
	frames := ls.subscribe()
	ls.mu.Unlock()
	defer ls.unsubscribe(frames)

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	var streamErr error
	for streamErr == nil {
		select {
		case f, ok := <-frames:
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "scene closed"))
				hooks.OnStreamClose(r.Context(), id, nil)
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			streamErr = conn.WriteJSON(f)
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			streamErr = conn.WriteMessage(websocket.PingMessage, nil)
		case <-closed:
			hooks.OnStreamClose(r.Context(), id, nil)
			return
		case <-r.Context().Done():
			hooks.OnStreamClose(r.Context(), id, r.Context().Err())
			return
		}
	}
	s.logger.Debug("stream ended", "scene", id, "error", streamErr)
	hooks.OnStreamClose(r.Context(), id, streamErr)
}

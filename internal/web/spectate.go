package web

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomz197/invaders/internal/game"
	"github.com/tomz197/invaders/internal/loop/config"
	"github.com/tomz197/invaders/internal/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil || u.Host != r.Host {
			metrics.RecordConnectionRejected("origin")
			return false
		}
		return true
	},
}

// handleSpectate streams a session's snapshots as binary msgpack messages,
// one per published version, at most SpectatorFPS times a second. The
// stream ends with a close frame once the session leaves the lobby.
func (h *routerHandlers) handleSpectate(w http.ResponseWriter, r *http.Request) {
	handle, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if !h.spectators.Acquire() {
		metrics.RecordConnectionRejected("spectators")
		writeError(w, "too many spectators", http.StatusServiceUnavailable)
		return
	}
	defer h.spectators.Release()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.logger.Debug("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	metrics.SpectatorJoined()
	defer metrics.SpectatorLeft()
	h.logger.Info("spectator joined", "session", handle.ID, "remote", ClientIP(r))

	done := make(chan struct{})
	go readPump(conn, done)

	frames := time.NewTicker(config.SpectatorFrameTime)
	defer frames.Stop()
	pings := time.NewTicker(pingPeriod)
	defer pings.Stop()

	var sent uint64
	for {
		select {
		case <-done:
			h.logger.Info("spectator left", "session", handle.ID)
			return
		case <-r.Context().Done():
			return
		case <-pings.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-frames.C:
			if _, live := h.lobby.Get(handle.ID); !live {
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"))
				return
			}
			snap, version, ok := handle.Latest()
			if !ok || version == sent {
				continue
			}
			data, err := game.EncodeSnapshot(snap)
			if err != nil {
				h.logger.Error("encode snapshot", "session", handle.ID, "err", err)
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				return
			}
			sent = version
			metrics.RecordSpectatorFrame()
		}
	}
}

// readPump discards client messages and closes done when the connection
// drops. Spectators are read-only.
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

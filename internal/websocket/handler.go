package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"
)

// Handle returns an HTTP handler that upgrades connections to WebSocket and
// runs them as hub clients. sessionID extracts the browser session for the
// request; connections without one are rejected.
func Handle(hub *Hub, logger *slog.Logger, sessionID func(*http.Request) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := sessionID(r)
		if sid == "" {
			http.Error(w, "no session", http.StatusBadRequest)
			return
		}

		conn, err := ws.Accept(w, r, nil)
		if err != nil {
			logger.Warn("websocket accept", "error", err)
			return
		}

		client := NewClient(hub, conn, sid)
		client.Run(r.Context())
	}
}

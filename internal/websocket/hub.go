// Package websocket keeps multiple open tabs of one browser session in
// agreement about auth state: a login or logout in one tab is pushed to the
// others so they can refresh their chrome or leave protected pages.
package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Event is a session lifecycle notification.
type Event struct {
	Type  string `json:"type"` // "session_login", "session_logout", "session_restored"
	Email string `json:"email,omitempty"`
}

// Hub maintains the set of active connections grouped by browser session.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Notify delivers an event to every tab of the given browser session.
func (h *Hub) Notify(sessionID string, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("marshal event", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if c.sessionID != sessionID {
			continue
		}
		select {
		case c.send <- data:
		default:
			// Client buffer full — drop rather than block
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

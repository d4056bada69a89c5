package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"pawfeed/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	maxConnsPerIdentity = 8
	maxTotalConns       = 10000
)

// Hub fans change events out to every connected client. Events carry entity
// ids; clients merge them into local state by id.
type Hub struct {
	mu         sync.RWMutex
	conns      map[string]map[*Client]struct{}
	totalConns int
}

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{conns: make(map[string]map[*Client]struct{})}
}

// Register adds a connection for identity. Anonymous subscribers pass an
// empty identity.
func (h *Hub) Register(identity string, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.totalConns >= maxTotalConns {
		return nil, errors.New("server connection limit reached")
	}
	m, ok := h.conns[identity]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[identity] = m
	}
	if len(m) >= maxConnsPerIdentity {
		return nil, errors.New("connection limit reached for identity")
	}

	client := newClient(h, conn, identity)
	m[client] = struct{}{}
	h.totalConns++
	observability.WebSocketConnections.Inc()
	return client, nil
}

// Unregister removes the client and closes its send channel.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.conns[client.Identity]
	if !ok {
		return
	}
	if _, exists := m[client]; !exists {
		return
	}
	delete(m, client)
	if len(m) == 0 {
		delete(h.conns, client.Identity)
	}
	h.totalConns--
	close(client.done)
	observability.WebSocketConnections.Dec()
}

// Broadcast delivers one event to every connection. Clients whose buffers
// are full miss the event; they resynchronize on their next page fetch.
func (h *Hub) Broadcast(event ChangeEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, m := range h.conns {
		for client := range m {
			client.enqueue(payload)
		}
	}
}

// ConnectionCount returns the number of live connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalConns
}

// Run pumps events from the notifier subscription into Broadcast until ctx
// is cancelled.
func (h *Hub) Run(ctx context.Context, notifier *Notifier) {
	for event := range notifier.Subscribe(ctx) {
		h.Broadcast(event)
	}
}

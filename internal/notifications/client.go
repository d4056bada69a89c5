package notifications

import (
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 32
)

// Client is one WebSocket subscriber to the change feed. Slow consumers are
// disconnected rather than allowed to stall the hub.
type Client struct {
	Identity string
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	done     chan struct{}
}

func newClient(hub *Hub, conn *websocket.Conn, identity string) *Client {
	return &Client{
		Identity: identity,
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
	}
}

// enqueue offers a payload without blocking; reports false when the client's
// buffer is full.
func (c *Client) enqueue(payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// WritePump drains the send buffer to the connection. It returns when the
// hub closes the client or a write fails.
func (c *Client) WritePump() {
	defer c.conn.Close()
	for {
		select {
		case payload, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

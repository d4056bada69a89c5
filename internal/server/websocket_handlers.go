package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"pawfeed/internal/middleware"
)

// registerWebSocket wires the change-feed endpoint. Clients receive every
// post/comment change event and merge them locally by entity id.
func (s *Server) registerWebSocket(app *fiber.App) {
	app.Use("/ws", middleware.AuthOptional, func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		if id, ok := middleware.IdentityFrom(c); ok {
			c.Locals("ws_identity", id.ID)
		}
		return c.Next()
	})

	app.Get("/ws/feed", websocket.New(func(conn *websocket.Conn) {
		if s.hub == nil {
			conn.Close()
			return
		}
		identityID, _ := conn.Locals("ws_identity").(string)
		client, err := s.hub.Register(identityID, conn)
		if err != nil {
			conn.Close()
			return
		}
		defer s.hub.Unregister(client)

		go client.WritePump()

		// Reads only pump the connection for close frames; the feed is
		// one-directional.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

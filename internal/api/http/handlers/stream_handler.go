package handlers

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/yafi/support-backend/internal/realtime"
)

// StreamHandler upgrades connections into the live ticket feed.
type StreamHandler struct {
	hub    *realtime.Hub
	logger *zap.Logger
}

// NewStreamHandler constructs handler.
func NewStreamHandler(hub *realtime.Hub, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{hub: hub, logger: logger}
}

// Upgrade gates the route to websocket requests.
func (h *StreamHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Tickets GET /ws/tickets. Streams ticket lifecycle frames until the peer
// disconnects.
func (h *StreamHandler) Tickets() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		client := h.hub.Subscribe(realtime.GroupTickets)

		h.logger.Debug("live subscriber connected", zap.String("client_id", client.ID()))

		done := make(chan struct{})
		go func() {
			defer close(done)
			for payload := range client.Receive() {
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					client.MarkStale()
					return
				}
			}
		}()

		// Inbound frames are ignored; the read loop only detects disconnect.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		client.MarkStale()
		// Unsubscribing closes the send channel, which releases the writer.
		h.hub.Unsubscribe(realtime.GroupTickets, client)
		_ = conn.Close()
		<-done
		h.logger.Debug("live subscriber disconnected", zap.String("client_id", client.ID()))
	})
}

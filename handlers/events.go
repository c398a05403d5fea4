package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

func requireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// streamEvents pushes hub events to one websocket client until either side
// goes away. Client messages are read and discarded.
func (h *Handler) streamEvents(conn *websocket.Conn) {
	events, cancel := h.hub.Subscribe()
	defer cancel()

	h.log.Debug("Event stream opened", zap.String("remote", conn.RemoteAddr().String()))
	defer h.log.Debug("Event stream closed", zap.String("remote", conn.RemoteAddr().String()))

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case evt, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		case <-gone:
			return
		}
	}
}

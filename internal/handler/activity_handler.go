package handler

import (
	"ai-docs-assistant-be/internal/pkg/logger"
	internalWS "ai-docs-assistant-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ActivityHandler exposes the live resolution feed. The feed is public:
// frames carry request ids, stages and truncated queries, never answers.
type ActivityHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewActivityHandler(hub *internalWS.Hub, log logger.ILogger) *ActivityHandler {
	return &ActivityHandler{
		hub:    hub,
		logger: log,
	}
}

// ServeWs upgrades the request and streams activity frames until the peer
// disconnects.
func (h *ActivityHandler) ServeWs(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("ActivityHandler", "Activity stream opened", map[string]interface{}{"remote": conn.RemoteAddr().String()})
			internalWS.ServeWs(h.hub, conn)
			h.logger.Info("ActivityHandler", "Activity stream closed", map[string]interface{}{"remote": conn.RemoteAddr().String()})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// RegisterRoutes registers the activity feed routes.
func (h *ActivityHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/activity/ws", h.ServeWs)
}

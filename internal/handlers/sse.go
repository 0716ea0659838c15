package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ECE496-Team-DASH/DashRAG/internal/logger"
	"github.com/ECE496-Team-DASH/DashRAG/internal/sse"
)

type SSEHandler struct {
	log *logger.Logger
	hub *sse.Hub
}

func NewSSEHandler(baseLog *logger.Logger, hub *sse.Hub) *SSEHandler {
	return &SSEHandler{
		log: baseLog.With("handler", "SSEHandler"),
		hub: hub,
	}
}

// Stream subscribes the caller to a session's document channel and keeps the
// connection open, pushing progress and lifecycle events as they happen.
func (h *SSEHandler) Stream(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionID")
	if !ok {
		return
	}
	client := h.hub.NewClient()
	h.hub.AddChannel(client, sse.DocumentChannel(sessionID))
	defer h.hub.CloseClient(client)

	h.hub.ServeHTTP(c.Writer, c.Request, client)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ECE496-Team-DASH/DashRAG/internal/logger"
	"github.com/ECE496-Team-DASH/DashRAG/internal/services"
)

type SessionHandler struct {
	log      *logger.Logger
	sessions services.SessionService
}

func NewSessionHandler(baseLog *logger.Logger, sessions services.SessionService) *SessionHandler {
	return &SessionHandler{
		log:      baseLog.With("handler", "SessionHandler"),
		sessions: sessions,
	}
}

type createSessionRequest struct {
	Title    string         `json:"title" binding:"required"`
	Settings map[string]any `json:"settings"`
}

func (h *SessionHandler) Create(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	session, err := h.sessions.Create(c.Request.Context(), req.Title, req.Settings)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *SessionHandler) List(c *gin.Context) {
	sessions, err := h.sessions.List(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	RespondOK(c, gin.H{"sessions": sessions})
}

func (h *SessionHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "sessionID")
	if !ok {
		return
	}
	session, err := h.sessions.Get(c.Request.Context(), id)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "get_failed", err)
		return
	}
	if session == nil {
		RespondError(c, http.StatusNotFound, "not_found", services.ErrSessionNotFound)
		return
	}
	stats, err := h.sessions.GetStats(c.Request.Context(), id)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "get_failed", err)
		return
	}
	RespondOK(c, gin.H{"session": session, "stats": stats})
}

func (h *SessionHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "sessionID")
	if !ok {
		return
	}
	if err := h.sessions.Delete(c.Request.Context(), id); err != nil {
		RespondError(c, http.StatusInternalServerError, "delete_failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

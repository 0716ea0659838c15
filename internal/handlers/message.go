package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ECE496-Team-DASH/DashRAG/internal/graphrag"
	"github.com/ECE496-Team-DASH/DashRAG/internal/jobs"
	"github.com/ECE496-Team-DASH/DashRAG/internal/logger"
	"github.com/ECE496-Team-DASH/DashRAG/internal/services"
)

type MessageHandler struct {
	log      *logger.Logger
	messages services.MessageService
	pool     *jobs.Pool
}

func NewMessageHandler(baseLog *logger.Logger, messages services.MessageService, pool *jobs.Pool) *MessageHandler {
	return &MessageHandler{
		log:      baseLog.With("handler", "MessageHandler"),
		messages: messages,
		pool:     pool,
	}
}

func (h *MessageHandler) List(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionID")
	if !ok {
		return
	}
	msgs, err := h.messages.List(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			RespondError(c, http.StatusNotFound, "not_found", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	RespondOK(c, gin.H{"messages": msgs})
}

type createMessageRequest struct {
	Content string               `json:"content" binding:"required"`
	Params  graphrag.QueryParams `json:"params"`
}

// Create is the deferred query path: the user message is persisted and
// acknowledged with 202, and the answer lands in the session history when the
// background job finishes.
func (h *MessageHandler) Create(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionID")
	if !ok {
		return
	}
	var req createMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	msg, err := h.messages.CreateUserMessage(c.Request.Context(), sessionID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			RespondError(c, http.StatusNotFound, "not_found", err)
		case errors.Is(err, services.ErrNoReadyDocuments):
			RespondError(c, http.StatusConflict, "no_ready_documents", err)
		default:
			RespondError(c, http.StatusBadRequest, "create_failed", err)
		}
		return
	}

	h.pool.Submit(jobs.Job{
		Kind:      jobs.KindAnswerQuery,
		TargetID:  msg.ID,
		SessionID: sessionID,
		Payload: jobs.Payload{
			Prompt: req.Content,
			Query:  req.Params,
		},
	})
	c.JSON(http.StatusAccepted, msg)
}

type streamEvent struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Message string `json:"message,omitempty"`
}

// Stream runs the query on the request goroutine and frames the result as
// SSE. The engine answers all at once, so a successful stream is exactly one
// token event followed by done.
func (h *MessageHandler) Stream(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionID")
	if !ok {
		return
	}
	var req createMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	answer, err := h.messages.StreamQuery(c.Request.Context(), sessionID, req.Content, req.Params)
	if err != nil {
		h.writeEvent(c, streamEvent{Type: "error", Message: err.Error()})
		return
	}
	h.writeEvent(c, streamEvent{Type: "token", Text: answer})
	h.writeEvent(c, streamEvent{Type: "done"})
}

func (h *MessageHandler) writeEvent(c *gin.Context, ev streamEvent) {
	raw, err := json.Marshal(ev)
	if err != nil {
		h.log.Warn("Failed to marshal stream event", "error", err)
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", raw)
	c.Writer.Flush()
}

package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ECE496-Team-DASH/DashRAG/internal/jobs"
	"github.com/ECE496-Team-DASH/DashRAG/internal/logger"
	"github.com/ECE496-Team-DASH/DashRAG/internal/services"
)

type DocumentHandler struct {
	log    *logger.Logger
	docs   services.DocumentService
	papers services.PaperService
	pool   *jobs.Pool
}

func NewDocumentHandler(baseLog *logger.Logger, docs services.DocumentService, papers services.PaperService, pool *jobs.Pool) *DocumentHandler {
	return &DocumentHandler{
		log:    baseLog.With("handler", "DocumentHandler"),
		docs:   docs,
		papers: papers,
		pool:   pool,
	}
}

func (h *DocumentHandler) List(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionID")
	if !ok {
		return
	}
	docs, err := h.docs.List(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			RespondError(c, http.StatusNotFound, "not_found", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	RespondOK(c, gin.H{"documents": docs})
}

func (h *DocumentHandler) Get(c *gin.Context) {
	docID, ok := parseUUIDParam(c, "documentID")
	if !ok {
		return
	}
	doc, err := h.docs.Get(c.Request.Context(), docID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "get_failed", err)
		return
	}
	if doc == nil {
		RespondError(c, http.StatusNotFound, "not_found", errors.New("document not found"))
		return
	}
	RespondOK(c, doc)
}

// Upload accepts a multipart PDF, creates the document record, and queues the
// ingestion. The response is the freshly created record in its initial state;
// progress arrives over SSE or by polling.
func (h *DocumentHandler) Upload(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionID")
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("multipart field 'file' is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	doc, err := h.docs.CreateUpload(c.Request.Context(), sessionID, fileHeader.Filename, data)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			RespondError(c, http.StatusNotFound, "not_found", err)
			return
		}
		RespondError(c, http.StatusBadRequest, "upload_failed", err)
		return
	}

	h.pool.Submit(jobs.Job{
		Kind:      jobs.KindIngestUpload,
		TargetID:  doc.ID,
		SessionID: sessionID,
	})
	c.JSON(http.StatusAccepted, doc)
}

// SearchPapers previews arXiv hits without touching the session.
func (h *DocumentHandler) SearchPapers(c *gin.Context) {
	query := c.Query("query")
	maxResults := 10
	if raw := c.Query("max_results"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			maxResults = n
		}
	}
	results, err := h.papers.Search(c.Request.Context(), query, maxResults)
	if err != nil {
		RespondError(c, http.StatusBadGateway, "search_failed", err)
		return
	}
	RespondOK(c, gin.H{"results": results})
}

type addPaperRequest struct {
	RemoteID    string   `json:"remote_id" binding:"required"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	PublishedAt string   `json:"published_at"`
	PDFURL      string   `json:"pdf_url"`
}

// AddPaper creates a remote document record and queues the download+ingest
// job.
func (h *DocumentHandler) AddPaper(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "sessionID")
	if !ok {
		return
	}
	var req addPaperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	meta := &services.PaperMeta{
		RemoteID:    req.RemoteID,
		Title:       req.Title,
		Authors:     req.Authors,
		PublishedAt: req.PublishedAt,
		PDFURL:      req.PDFURL,
	}
	doc, err := h.docs.CreateRemote(c.Request.Context(), sessionID, req.RemoteID, meta)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			RespondError(c, http.StatusNotFound, "not_found", err)
			return
		}
		RespondError(c, http.StatusBadRequest, "add_failed", err)
		return
	}

	h.pool.Submit(jobs.Job{
		Kind:      jobs.KindIngestRemote,
		TargetID:  doc.ID,
		SessionID: sessionID,
		Payload:   jobs.Payload{RemoteID: req.RemoteID},
	})
	c.JSON(http.StatusAccepted, doc)
}

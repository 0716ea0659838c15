package services

import (
	"github.com/google/uuid"

	"github.com/ECE496-Team-DASH/DashRAG/internal/logger"
	"github.com/ECE496-Team-DASH/DashRAG/internal/progress"
	"github.com/ECE496-Team-DASH/DashRAG/internal/sse"
	"github.com/ECE496-Team-DASH/DashRAG/internal/types"
)

// DocumentNotifier pushes document lifecycle and progress events onto the
// session's SSE channel so clients don't have to poll the listing endpoint.
// It satisfies the job runner's Notifier contract.
type DocumentNotifier struct {
	log *logger.Logger
	hub *sse.Hub
}

func NewDocumentNotifier(baseLog *logger.Logger, hub *sse.Hub) *DocumentNotifier {
	return &DocumentNotifier{
		log: baseLog.With("service", "DocumentNotifier"),
		hub: hub,
	}
}

func (n *DocumentNotifier) DocumentUpdated(doc *types.Document) {
	if doc == nil {
		return
	}
	n.hub.Broadcast(sse.Message{
		Channel: sse.DocumentChannel(doc.SessionID),
		Event:   sse.EventDocumentUpdated,
		Data: map[string]any{
			"id":               doc.ID,
			"status":           doc.Status,
			"processing_phase": doc.ProcessingPhase,
			"progress_percent": doc.ProgressPercent,
		},
	})
}

func (n *DocumentNotifier) DocumentProgress(sessionID, docID uuid.UUID, status types.DocStatus, phase progress.Phase, percent int) {
	data := map[string]any{
		"id":               docID,
		"status":           status,
		"progress_percent": percent,
	}
	if phase != "" {
		data["processing_phase"] = string(phase)
	}
	n.hub.Broadcast(sse.Message{
		Channel: sse.DocumentChannel(sessionID),
		Event:   sse.EventDocumentProgress,
		Data:    data,
	})
}

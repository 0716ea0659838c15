package jobs

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/ECE496-Team-DASH/DashRAG/internal/graphrag"
	"github.com/ECE496-Team-DASH/DashRAG/internal/logger"
	"github.com/ECE496-Team-DASH/DashRAG/internal/progress"
	"github.com/ECE496-Team-DASH/DashRAG/internal/repos"
	"github.com/ECE496-Team-DASH/DashRAG/internal/types"
)

// Runner executes one job to a terminal outcome. Every fault it encounters is
// converted into persisted document/message state; nothing escapes the job
// boundary.
type Runner struct {
	log       *logger.Logger
	dataRoot  string
	docRepo   repos.DocumentRepo
	msgRepo   repos.MessageRepo
	engines   graphrag.Factory
	extractor TextExtractor
	fetcher   PaperFetcher
	notify    Notifier
}

func NewRunner(
	baseLog *logger.Logger,
	dataRoot string,
	docRepo repos.DocumentRepo,
	msgRepo repos.MessageRepo,
	engines graphrag.Factory,
	extractor TextExtractor,
	fetcher PaperFetcher,
	notify Notifier,
) *Runner {
	if notify == nil {
		notify = NopNotifier{}
	}
	return &Runner{
		log:       baseLog.With("component", "JobRunner"),
		dataRoot:  dataRoot,
		docRepo:   docRepo,
		msgRepo:   msgRepo,
		engines:   engines,
		extractor: extractor,
		fetcher:   fetcher,
		notify:    notify,
	}
}

func (r *Runner) Run(ctx context.Context, job Job) {
	switch job.Kind {
	case KindIngestUpload:
		r.runIngestUpload(ctx, job)
	case KindIngestRemote:
		r.runIngestRemote(ctx, job)
	case KindAnswerQuery:
		r.runAnswerQuery(ctx, job)
	default:
		r.log.Error("Unknown job kind", "kind", job.Kind, "target_id", job.TargetID)
	}
}

// RecordFailure converts a fault caught at the job boundary (e.g. a panic)
// into terminal state for the job's target.
func (r *Runner) RecordFailure(ctx context.Context, job Job, err error) {
	switch job.Kind {
	case KindIngestUpload, KindIngestRemote:
		doc, getErr := r.docRepo.GetByID(ctx, nil, job.TargetID)
		if getErr != nil || doc == nil {
			r.log.Error("Cannot record failure, document not found", "doc_id", job.TargetID, "error", getErr)
			return
		}
		r.failDocument(ctx, doc, "Unexpected error: "+err.Error())
	case KindAnswerQuery:
		r.appendAssistantMessage(ctx, job.SessionID, "Error: "+err.Error(), true)
	}
}

// updateDocument persists fields and mirrors them onto the in-memory record
// so later steps of the same job see current state.
func (r *Runner) updateDocument(ctx context.Context, doc *types.Document, fields map[string]any) bool {
	if err := r.docRepo.UpdateFields(ctx, nil, doc.ID, fields); err != nil {
		r.log.Error("Failed to update document", "doc_id", doc.ID, "error", err)
		return false
	}
	if v, ok := fields["status"]; ok {
		doc.Status = v.(types.DocStatus)
	}
	if v, ok := fields["processing_phase"]; ok {
		if v == nil {
			doc.ProcessingPhase = nil
		} else {
			s := string(v.(progress.Phase))
			doc.ProcessingPhase = &s
		}
	}
	if v, ok := fields["progress_percent"]; ok {
		doc.ProgressPercent = v.(int)
	}
	if v, ok := fields["insert_log"]; ok {
		doc.InsertLog = v.(string)
	}
	if v, ok := fields["pages"]; ok {
		doc.Pages = v.(int)
	}
	if v, ok := fields["local_pdf_path"]; ok {
		doc.LocalPDFPath = v.(string)
	}
	return true
}

// failDocument records a fatal, terminal failure with its diagnostic detail.
func (r *Runner) failDocument(ctx context.Context, doc *types.Document, detail string) {
	r.log.Error("Document processing failed", "doc_id", doc.ID, "detail", detail)
	r.updateDocument(ctx, doc, map[string]any{
		"status":           types.DocStatusError,
		"processing_phase": nil,
		"progress_percent": 0,
		"insert_log":       detail,
	})
	r.notify.DocumentUpdated(doc)
}

func (r *Runner) appendAssistantMessage(ctx context.Context, sessionID uuid.UUID, text string, isError bool) {
	content := map[string]any{"text": text}
	if isError {
		content["error"] = true
	}
	raw, err := json.Marshal(content)
	if err != nil {
		r.log.Error("Failed to marshal assistant message content", "session_id", sessionID, "error", err)
		return
	}
	msg := &types.Message{
		ID:        uuid.New(),
		SessionID: sessionID,
		Role:      types.RoleAssistant,
		Content:   datatypes.JSON(raw),
	}
	if _, err := r.msgRepo.Create(ctx, nil, []*types.Message{msg}); err != nil {
		r.log.Error("Failed to create assistant message", "session_id", sessionID, "error", err)
	}
}

// documentSink persists observer progress updates and pushes them to SSE
// subscribers. Each write is independent; a failed one is reported as an
// error for the observer to swallow.
type documentSink struct {
	runner    *Runner
	sessionID uuid.UUID
}

func (s *documentSink) SetDocumentProgress(ctx context.Context, docID uuid.UUID, phase progress.Phase, percent int) error {
	err := s.runner.docRepo.UpdateFields(ctx, nil, docID, map[string]any{
		"processing_phase": string(phase),
		"progress_percent": percent,
	})
	if err != nil {
		return err
	}
	s.runner.notify.DocumentProgress(s.sessionID, docID, types.DocStatusInserting, phase, percent)
	return nil
}

package jobs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ECE496-Team-DASH/DashRAG/internal/graphrag"
	"github.com/ECE496-Team-DASH/DashRAG/internal/locks"
	"github.com/ECE496-Team-DASH/DashRAG/internal/progress"
	"github.com/ECE496-Team-DASH/DashRAG/internal/types"
)

func (r *Runner) runIngestUpload(ctx context.Context, job Job) {
	doc, err := r.docRepo.GetByID(ctx, nil, job.TargetID)
	if err != nil || doc == nil {
		r.log.Error("Document not found for processing", "doc_id", job.TargetID, "error", err)
		return
	}
	if doc.Status.Terminal() {
		r.log.Warn("Document already in a terminal state, skipping", "doc_id", doc.ID, "status", doc.Status)
		return
	}
	r.log.Info("Processing uploaded document", "doc_id", doc.ID, "session_id", doc.SessionID)

	// Uploaded files have their bytes on disk already; the record moves to
	// inserting as soon as the job starts.
	if !r.updateDocument(ctx, doc, map[string]any{
		"status":           types.DocStatusInserting,
		"processing_phase": progress.PhaseTextExtraction,
		"progress_percent": 10,
	}) {
		return
	}
	r.notify.DocumentProgress(doc.SessionID, doc.ID, doc.Status, progress.PhaseTextExtraction, 10)

	text, ok := r.extractText(ctx, doc)
	if !ok {
		return
	}
	r.insertIntoStore(ctx, doc, text)
}

func (r *Runner) runIngestRemote(ctx context.Context, job Job) {
	doc, err := r.docRepo.GetByID(ctx, nil, job.TargetID)
	if err != nil || doc == nil {
		r.log.Error("Document not found for processing", "doc_id", job.TargetID, "error", err)
		return
	}
	if doc.Status.Terminal() {
		r.log.Warn("Document already in a terminal state, skipping", "doc_id", doc.ID, "status", doc.Status)
		return
	}
	remoteID := job.Payload.RemoteID
	if remoteID == "" {
		remoteID = doc.RemoteID
	}
	r.log.Info("Processing remote paper", "doc_id", doc.ID, "remote_id", remoteID, "session_id", doc.SessionID)

	if !r.updateDocument(ctx, doc, map[string]any{"status": types.DocStatusDownloading}) {
		return
	}
	r.notify.DocumentProgress(doc.SessionID, doc.ID, doc.Status, "", 0)

	uploadsDir := locks.UploadsDir(r.dataRoot, doc.SessionID)
	if err := os.MkdirAll(uploadsDir, 0o755); err != nil {
		r.failDocument(ctx, doc, fmt.Sprintf("Failed to prepare uploads directory: %v", err))
		return
	}
	pdfPath, err := r.fetcher.DownloadPDF(ctx, remoteID, uploadsDir)
	if err != nil {
		// Remote fetch failures are terminal; there is no automatic retry.
		r.failDocument(ctx, doc, fmt.Sprintf("Failed to download paper %s: %v", remoteID, err))
		return
	}
	r.log.Info("Downloaded remote PDF", "doc_id", doc.ID, "path", pdfPath)

	if !r.updateDocument(ctx, doc, map[string]any{
		"local_pdf_path":   pdfPath,
		"status":           types.DocStatusInserting,
		"processing_phase": progress.PhaseTextExtraction,
		"progress_percent": 10,
	}) {
		return
	}
	r.notify.DocumentProgress(doc.SessionID, doc.ID, doc.Status, progress.PhaseTextExtraction, 10)

	text, ok := r.extractText(ctx, doc)
	if !ok {
		return
	}
	r.insertIntoStore(ctx, doc, text)
}

// extractText runs PDF extraction and records the page-count milestone. A
// false return means the document already hit terminal error.
func (r *Runner) extractText(ctx context.Context, doc *types.Document) (string, bool) {
	text, pages, err := r.extractor.ExtractFile(doc.LocalPDFPath)
	if err != nil {
		r.failDocument(ctx, doc, fmt.Sprintf("Failed to extract text from PDF: %v", err))
		return "", false
	}
	if !r.updateDocument(ctx, doc, map[string]any{
		"pages":            pages,
		"progress_percent": 15,
	}) {
		return "", false
	}
	r.notify.DocumentProgress(doc.SessionID, doc.ID, doc.Status, progress.PhaseTextExtraction, 15)
	r.log.Info("Extracted text from PDF", "doc_id", doc.ID, "pages", pages)
	return text, true
}

// insertIntoStore hands the extracted text to the engine under the session's
// exclusivity lock, with the progress observer attached for the duration, and
// commits the classified terminal state.
func (r *Runner) insertIntoStore(ctx context.Context, doc *types.Document, text string) {
	storeDir := locks.StoreDir(r.dataRoot, doc.SessionID)
	if err := os.MkdirAll(storeDir, 0o755); err != nil {
		r.failDocument(ctx, doc, fmt.Sprintf("Failed to prepare knowledge store directory: %v", err))
		return
	}
	eng := r.engines.ForStore(storeDir)

	observer := progress.Attach(ctx, r.log, doc.ID, &documentSink{runner: r, sessionID: doc.SessionID}, eng.Logs(), progress.PhaseTextExtraction, 15)
	defer observer.Detach()

	lock, err := locks.Acquire(r.dataRoot, doc.SessionID)
	if err != nil {
		r.failDocument(ctx, doc, fmt.Sprintf("Failed to acquire session lock: %v", err))
		return
	}
	defer func() { _ = lock.Release() }()

	insertErr := eng.Insert(ctx, text)
	// Drain the observer before committing terminal state; a buffered log
	// line must not overwrite ready/error afterwards.
	observer.Detach()

	fields := map[string]any{"processing_phase": nil}
	switch {
	case insertErr == nil:
		fields["status"] = types.DocStatusReady
		fields["progress_percent"] = 100
		if strings.Contains(strings.ToLower(doc.InsertLog), "incomplete knowledge graph") {
			fields["insert_log"] = doc.InsertLog + incompleteGraphWarning
		}
		r.log.Info("Document inserted into knowledge store", "doc_id", doc.ID)
	case RecoverableInsertFailure(insertErr):
		// Late-stage formatting failure: the base content is queryable, so
		// keep the work and surface a warning instead of discarding it.
		fields["status"] = types.DocStatusReady
		fields["progress_percent"] = 100
		fields["insert_log"] = partialSuccessWarning + insertErr.Error()
		r.log.Warn("Document inserted with incomplete community reports", "doc_id", doc.ID, "error", insertErr)
	default:
		fields["status"] = types.DocStatusError
		fields["progress_percent"] = 0
		fields["insert_log"] = insertDiagnostic(insertErr)
		r.log.Error("Knowledge store insertion failed", "doc_id", doc.ID, "error", insertErr)
	}
	r.updateDocument(ctx, doc, fields)
	r.notify.DocumentUpdated(doc)
}

func insertDiagnostic(err error) string {
	detail := "GraphRAG insertion failed: " + err.Error()
	var engineErr *graphrag.EngineError
	if errors.As(err, &engineErr) && engineErr.Trace != "" {
		detail += "\n\nTraceback:\n" + engineErr.Trace
	}
	return detail
}

package jobs

import (
	"context"

	"github.com/google/uuid"

	"github.com/ECE496-Team-DASH/DashRAG/internal/graphrag"
	"github.com/ECE496-Team-DASH/DashRAG/internal/progress"
	"github.com/ECE496-Team-DASH/DashRAG/internal/types"
)

type Kind string

const (
	KindIngestUpload Kind = "ingest_upload"
	KindIngestRemote Kind = "ingest_remote"
	KindAnswerQuery  Kind = "answer_query"
)

// Job is an ephemeral work descriptor. It is handed off by a request handler,
// consumed exactly once by the runner, and discarded; there is no retry queue
// and nothing about it is persisted beyond the document/message it targets.
type Job struct {
	Kind      Kind
	TargetID  uuid.UUID // document ID for ingestion kinds, user message ID for queries
	SessionID uuid.UUID
	Payload   Payload
}

type Payload struct {
	RemoteID string
	Prompt   string
	Query    graphrag.QueryParams
}

// TextExtractor pulls raw text (and a page count) out of a stored document
// file before it is handed to the engine.
type TextExtractor interface {
	ExtractFile(path string) (text string, pages int, err error)
}

// PaperFetcher downloads a remote paper's PDF into destDir and returns the
// local path.
type PaperFetcher interface {
	DownloadPDF(ctx context.Context, remoteID string, destDir string) (string, error)
}

// Notifier receives document lifecycle updates so interested clients (SSE
// subscribers) hear about them without polling. Implementations must not
// block.
type Notifier interface {
	DocumentUpdated(doc *types.Document)
	DocumentProgress(sessionID, docID uuid.UUID, status types.DocStatus, phase progress.Phase, percent int)
}

// NopNotifier is used where no push channel is wired.
type NopNotifier struct{}

func (NopNotifier) DocumentUpdated(*types.Document) {}
func (NopNotifier) DocumentProgress(uuid.UUID, uuid.UUID, types.DocStatus, progress.Phase, int) {}

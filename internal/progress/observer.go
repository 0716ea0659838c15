package progress

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ECE496-Team-DASH/DashRAG/internal/graphrag"
	"github.com/ECE496-Team-DASH/DashRAG/internal/logger"
)

// Sink persists one progress step for a document. Each call is an
// independent, idempotent write.
type Sink interface {
	SetDocumentProgress(ctx context.Context, docID uuid.UUID, phase Phase, percent int) error
}

// Observer follows an engine's log stream for the duration of one ingestion
// job and turns recognized lines into persisted phase/percent updates. A
// fault while handling a line is logged and swallowed: progress reporting
// must never abort the ingestion it reports on.
type Observer struct {
	log        *logger.Logger
	docID      uuid.UUID
	sink       Sink
	cancel     func()
	done       chan struct{}
	detachOnce sync.Once

	curPhase   Phase
	curPercent int
}

// Attach subscribes to the stream and starts consuming lines. startPhase and
// startPercent seed the monotonic floor so the observer never regresses below
// milestones the job runner already recorded. Detach must be called exactly
// once when the job finishes, regardless of how it finished.
func Attach(ctx context.Context, baseLog *logger.Logger, docID uuid.UUID, sink Sink, stream *graphrag.LogStream, startPhase Phase, startPercent int) *Observer {
	lines, cancel := stream.Subscribe(64)
	o := &Observer{
		log:        baseLog.With("component", "ProgressObserver", "doc_id", docID),
		docID:      docID,
		sink:       sink,
		cancel:     cancel,
		done:       make(chan struct{}),
		curPhase:   startPhase,
		curPercent: startPercent,
	}
	go o.run(ctx, lines)
	return o
}

func (o *Observer) run(ctx context.Context, lines <-chan string) {
	defer close(o.done)
	for line := range lines {
		update, ok := MatchLine(line)
		if !ok {
			continue
		}
		if !update.Advances(o.curPhase, o.curPercent) {
			continue
		}
		phase := update.Phase
		if phase == "" {
			// Percent-only markers keep the last labeled phase.
			phase = o.curPhase
		}
		if err := o.sink.SetDocumentProgress(ctx, o.docID, phase, update.Percent); err != nil {
			o.log.Warn("Failed to persist progress update", "phase", phase, "percent", update.Percent, "error", err)
			continue
		}
		o.curPhase = phase
		o.curPercent = update.Percent
		o.log.Debug("Progress advanced", "phase", phase, "percent", update.Percent)
	}
}

// Detach unsubscribes from the stream and waits for in-flight line handling
// to finish. Safe to call more than once.
func (o *Observer) Detach() {
	o.detachOnce.Do(func() {
		o.cancel()
		<-o.done
	})
}

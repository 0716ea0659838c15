package jobs

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/ECE496-Team-DASH/DashRAG/internal/locks"
)

// runAnswerQuery resolves a deferred query: the user's message already
// exists; this produces the assistant's answer as a new message. Queries are
// read-only against the store and deliberately skip the session lock, so
// they may run concurrently with an in-progress ingestion.
func (r *Runner) runAnswerQuery(ctx context.Context, job Job) {
	prompt := job.Payload.Prompt
	if prompt == "" {
		if msg, err := r.msgRepo.GetByID(ctx, nil, job.TargetID); err == nil && msg != nil {
			prompt = promptFromContent(msg.Content)
		}
	}
	if prompt == "" {
		r.log.Error("Query job has no prompt", "message_id", job.TargetID, "session_id", job.SessionID)
		return
	}
	r.log.Info("Processing query", "message_id", job.TargetID, "session_id", job.SessionID)

	eng := r.engines.ForStore(locks.StoreDir(r.dataRoot, job.SessionID))
	answer, err := eng.Query(ctx, prompt, job.Payload.Query)
	if err != nil {
		r.log.Error("Knowledge store query failed", "message_id", job.TargetID, "error", err)
		r.appendAssistantMessage(ctx, job.SessionID, "Error: "+err.Error(), true)
		return
	}
	r.appendAssistantMessage(ctx, job.SessionID, answer, false)
	r.log.Info("Query completed", "message_id", job.TargetID, "session_id", job.SessionID)
}

func promptFromContent(raw datatypes.JSON) string {
	var content struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &content); err != nil {
		return ""
	}
	return content.Text
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/ECE496-Team-DASH/DashRAG/internal/graphrag"
	"github.com/ECE496-Team-DASH/DashRAG/internal/locks"
	"github.com/ECE496-Team-DASH/DashRAG/internal/logger"
	"github.com/ECE496-Team-DASH/DashRAG/internal/repos"
	"github.com/ECE496-Team-DASH/DashRAG/internal/types"
)

var ErrNoReadyDocuments = fmt.Errorf("add at least one ready document before querying")

// MessageService is the query orchestrator. The deferred path records the
// user's message and leaves answering to a background job; the streamed path
// runs the query on the caller's goroutine and returns the completed answer
// for the handler to frame. Queries never take the session lock: they are
// read-only and may legitimately race an in-progress ingestion.
type MessageService interface {
	List(ctx context.Context, sessionID uuid.UUID) ([]*types.Message, error)
	CreateUserMessage(ctx context.Context, sessionID uuid.UUID, prompt string) (*types.Message, error)
	StreamQuery(ctx context.Context, sessionID uuid.UUID, prompt string, params graphrag.QueryParams) (string, error)
}

type messageService struct {
	log      *logger.Logger
	dataRoot string
	sessions repos.SessionRepo
	docs     repos.DocumentRepo
	messages repos.MessageRepo
	engines  graphrag.Factory
}

func NewMessageService(baseLog *logger.Logger, dataRoot string, sessions repos.SessionRepo, docs repos.DocumentRepo, messages repos.MessageRepo, engines graphrag.Factory) MessageService {
	return &messageService{
		log:      baseLog.With("service", "MessageService"),
		dataRoot: dataRoot,
		sessions: sessions,
		docs:     docs,
		messages: messages,
		engines:  engines,
	}
}

func (s *messageService) List(ctx context.Context, sessionID uuid.UUID) ([]*types.Message, error) {
	if err := s.requireSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.messages.GetBySessionID(ctx, nil, sessionID)
}

// CreateUserMessage validates the session is queryable and records the user
// turn. The ready-document check happens here, before any engine call.
func (s *messageService) CreateUserMessage(ctx context.Context, sessionID uuid.UUID, prompt string) (*types.Message, error) {
	if prompt == "" {
		return nil, fmt.Errorf("content is required")
	}
	if err := s.requireSession(ctx, sessionID); err != nil {
		return nil, err
	}
	ready, err := s.docs.CountReadyBySessionID(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}
	if ready == 0 {
		return nil, ErrNoReadyDocuments
	}
	return s.createMessage(ctx, sessionID, types.RoleUser, prompt, false)
}

func (s *messageService) StreamQuery(ctx context.Context, sessionID uuid.UUID, prompt string, params graphrag.QueryParams) (string, error) {
	userMsg, err := s.CreateUserMessage(ctx, sessionID, prompt)
	if err != nil {
		return "", err
	}

	eng := s.engines.ForStore(locks.StoreDir(s.dataRoot, sessionID))
	answer, err := eng.Query(ctx, prompt, params)
	if err != nil {
		s.log.Error("Streamed query failed", "session_id", sessionID, "message_id", userMsg.ID, "error", err)
		return "", fmt.Errorf("query failed: %w", err)
	}

	// The assistant turn is persisted before the handler starts framing the
	// answer, so history stays complete even if the client disconnects.
	if _, err := s.createMessage(ctx, sessionID, types.RoleAssistant, answer, false); err != nil {
		s.log.Error("Failed to persist assistant message", "session_id", sessionID, "error", err)
	}
	return answer, nil
}

func (s *messageService) createMessage(ctx context.Context, sessionID uuid.UUID, role types.Role, text string, isError bool) (*types.Message, error) {
	content := map[string]any{"text": text}
	if isError {
		content["error"] = true
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("marshal message content: %w", err)
	}
	msg := &types.Message{
		ID:        uuid.New(),
		SessionID: sessionID,
		Role:      role,
		Content:   datatypes.JSON(raw),
		CreatedAt: time.Now(),
	}
	if _, err := s.messages.Create(ctx, nil, []*types.Message{msg}); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return msg, nil
}

func (s *messageService) requireSession(ctx context.Context, sessionID uuid.UUID) error {
	session, err := s.sessions.GetByID(ctx, nil, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}
	return nil
}

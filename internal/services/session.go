package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ECE496-Team-DASH/DashRAG/internal/locks"
	"github.com/ECE496-Team-DASH/DashRAG/internal/logger"
	"github.com/ECE496-Team-DASH/DashRAG/internal/repos"
	"github.com/ECE496-Team-DASH/DashRAG/internal/types"
)

// SessionStats is the aggregate view returned alongside a session.
type SessionStats struct {
	Documents      int64 `json:"documents"`
	ReadyDocuments int64 `json:"ready_documents"`
	Messages       int64 `json:"messages"`
}

type SessionService interface {
	Create(ctx context.Context, title string, settings map[string]any) (*types.Session, error)
	List(ctx context.Context) ([]*types.Session, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Session, error)
	GetStats(ctx context.Context, id uuid.UUID) (*SessionStats, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type sessionService struct {
	db       *gorm.DB
	log      *logger.Logger
	dataRoot string
	sessions repos.SessionRepo
	docs     repos.DocumentRepo
	messages repos.MessageRepo
}

func NewSessionService(db *gorm.DB, baseLog *logger.Logger, dataRoot string, sessions repos.SessionRepo, docs repos.DocumentRepo, messages repos.MessageRepo) SessionService {
	return &sessionService{
		db:       db,
		log:      baseLog.With("service", "SessionService"),
		dataRoot: dataRoot,
		sessions: sessions,
		docs:     docs,
		messages: messages,
	}
}

func (s *sessionService) Create(ctx context.Context, title string, settings map[string]any) (*types.Session, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if settings == nil {
		settings = map[string]any{}
	}
	raw, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}
	now := time.Now()
	session := &types.Session{
		ID:        uuid.New(),
		Title:     title,
		Settings:  datatypes.JSON(raw),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.sessions.Create(ctx, nil, []*types.Session{session}); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	for _, dir := range []string{
		locks.UploadsDir(s.dataRoot, session.ID),
		locks.StoreDir(s.dataRoot, session.ID),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			s.log.Warn("Failed to create session directory", "session_id", session.ID, "dir", dir, "error", err)
		}
	}
	s.log.Info("Session created", "session_id", session.ID, "title", title)
	return session, nil
}

func (s *sessionService) List(ctx context.Context) ([]*types.Session, error) {
	return s.sessions.GetAll(ctx, nil)
}

func (s *sessionService) Get(ctx context.Context, id uuid.UUID) (*types.Session, error) {
	return s.sessions.GetByID(ctx, nil, id)
}

func (s *sessionService) GetStats(ctx context.Context, id uuid.UUID) (*SessionStats, error) {
	docs, err := s.docs.GetBySessionID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	ready, err := s.docs.CountReadyBySessionID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	messages, err := s.messages.GetBySessionID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	return &SessionStats{
		Documents:      int64(len(docs)),
		ReadyDocuments: ready,
		Messages:       int64(len(messages)),
	}, nil
}

func (s *sessionService) Delete(ctx context.Context, id uuid.UUID) error {
	session, err := s.sessions.GetByID(ctx, nil, id)
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.messages.DeleteBySessionID(ctx, tx, id); err != nil {
			return err
		}
		if err := s.docs.DeleteBySessionID(ctx, tx, id); err != nil {
			return err
		}
		return s.sessions.DeleteByID(ctx, tx, id)
	})
	if err != nil {
		return fmt.Errorf("delete session records: %w", err)
	}
	// Uploads, knowledge store and lock file all live under the session root.
	if err := os.RemoveAll(locks.SessionRoot(s.dataRoot, id)); err != nil {
		s.log.Warn("Failed to remove session directory", "session_id", id, "error", err)
	}
	s.log.Info("Session deleted", "session_id", id)
	return nil
}

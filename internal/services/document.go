package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ECE496-Team-DASH/DashRAG/internal/locks"
	"github.com/ECE496-Team-DASH/DashRAG/internal/logger"
	"github.com/ECE496-Team-DASH/DashRAG/internal/repos"
	"github.com/ECE496-Team-DASH/DashRAG/internal/types"
)

var ErrSessionNotFound = fmt.Errorf("session not found")

type DocumentService interface {
	List(ctx context.Context, sessionID uuid.UUID) ([]*types.Document, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Document, error)
	// CreateUpload saves the uploaded bytes under the session's uploads dir
	// and creates the document record in its initial state. The ingestion
	// job itself is submitted by the routing layer.
	CreateUpload(ctx context.Context, sessionID uuid.UUID, filename string, data []byte) (*types.Document, error)
	// CreateRemote creates the record for a paper that still has to be
	// fetched.
	CreateRemote(ctx context.Context, sessionID uuid.UUID, remoteID string, meta *PaperMeta) (*types.Document, error)
}

type documentService struct {
	log         *logger.Logger
	dataRoot    string
	maxUploadMB int
	sessions    repos.SessionRepo
	docs        repos.DocumentRepo
}

func NewDocumentService(baseLog *logger.Logger, dataRoot string, maxUploadMB int, sessions repos.SessionRepo, docs repos.DocumentRepo) DocumentService {
	if maxUploadMB < 1 {
		maxUploadMB = 100
	}
	return &documentService{
		log:         baseLog.With("service", "DocumentService"),
		dataRoot:    dataRoot,
		maxUploadMB: maxUploadMB,
		sessions:    sessions,
		docs:        docs,
	}
}

func (s *documentService) List(ctx context.Context, sessionID uuid.UUID) ([]*types.Document, error) {
	if err := s.requireSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.docs.GetBySessionID(ctx, nil, sessionID)
}

func (s *documentService) Get(ctx context.Context, id uuid.UUID) (*types.Document, error) {
	return s.docs.GetByID(ctx, nil, id)
}

func (s *documentService) CreateUpload(ctx context.Context, sessionID uuid.UUID, filename string, data []byte) (*types.Document, error) {
	if err := s.requireSession(ctx, sessionID); err != nil {
		return nil, err
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return nil, fmt.Errorf("only PDF files are supported")
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("uploaded file is empty")
	}
	if len(data) > s.maxUploadMB*1024*1024 {
		return nil, fmt.Errorf("uploaded file exceeds %d MB limit", s.maxUploadMB)
	}

	uploadsDir := locks.UploadsDir(s.dataRoot, sessionID)
	if err := os.MkdirAll(uploadsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}

	now := time.Now()
	doc := &types.Document{
		ID:         uuid.New(),
		SessionID:  sessionID,
		SourceType: types.DocSourceUpload,
		Title:      filename,
		Status:     types.DocStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	pdfPath := filepath.Join(uploadsDir, doc.ID.String()+".pdf")
	if err := os.WriteFile(pdfPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("save uploaded pdf: %w", err)
	}
	doc.LocalPDFPath = pdfPath

	if _, err := s.docs.Create(ctx, nil, []*types.Document{doc}); err != nil {
		os.Remove(pdfPath)
		return nil, fmt.Errorf("create document record: %w", err)
	}
	s.log.Info("Uploaded document saved", "doc_id", doc.ID, "session_id", sessionID, "filename", filename, "bytes", len(data))
	return doc, nil
}

func (s *documentService) CreateRemote(ctx context.Context, sessionID uuid.UUID, remoteID string, meta *PaperMeta) (*types.Document, error) {
	if err := s.requireSession(ctx, sessionID); err != nil {
		return nil, err
	}
	remoteID = strings.TrimSpace(remoteID)
	if remoteID == "" {
		return nil, fmt.Errorf("remote id is required")
	}

	now := time.Now()
	doc := &types.Document{
		ID:         uuid.New(),
		SessionID:  sessionID,
		SourceType: types.DocSourceRemote,
		RemoteID:   remoteID,
		Status:     types.DocStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if meta != nil {
		doc.Title = meta.Title
		doc.Authors = strings.Join(meta.Authors, ", ")
		doc.PublishedAt = meta.PublishedAt
		doc.PDFURL = meta.PDFURL
	}
	if _, err := s.docs.Create(ctx, nil, []*types.Document{doc}); err != nil {
		return nil, fmt.Errorf("create document record: %w", err)
	}
	s.log.Info("Remote document record created", "doc_id", doc.ID, "session_id", sessionID, "remote_id", remoteID)
	return doc, nil
}

func (s *documentService) requireSession(ctx context.Context, sessionID uuid.UUID) error {
	session, err := s.sessions.GetByID(ctx, nil, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}
	return nil
}

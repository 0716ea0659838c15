package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ECE496-Team-DASH/DashRAG/internal/graphrag"
	"github.com/ECE496-Team-DASH/DashRAG/internal/logger"
	"github.com/ECE496-Team-DASH/DashRAG/internal/types"
)

type stubSessionRepo struct {
	sessions map[uuid.UUID]*types.Session
}

func (r *stubSessionRepo) Create(ctx context.Context, tx *gorm.DB, sessions []*types.Session) ([]*types.Session, error) {
	for _, s := range sessions {
		r.sessions[s.ID] = s
	}
	return sessions, nil
}

func (r *stubSessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Session, error) {
	return r.sessions[id], nil
}

func (r *stubSessionRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Session, error) {
	var out []*types.Session
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out, nil
}

func (r *stubSessionRepo) DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	delete(r.sessions, id)
	return nil
}

type stubDocRepo struct {
	readyCount int64
}

func (r *stubDocRepo) Create(ctx context.Context, tx *gorm.DB, docs []*types.Document) ([]*types.Document, error) {
	return docs, nil
}

func (r *stubDocRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Document, error) {
	return nil, nil
}

func (r *stubDocRepo) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.Document, error) {
	return nil, nil
}

func (r *stubDocRepo) CountReadyBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (int64, error) {
	return r.readyCount, nil
}

func (r *stubDocRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error {
	return nil
}

func (r *stubDocRepo) DeleteBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) error {
	return nil
}

type stubMsgRepo struct {
	mu       sync.Mutex
	messages []*types.Message
}

func (r *stubMsgRepo) Create(ctx context.Context, tx *gorm.DB, messages []*types.Message) ([]*types.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, messages...)
	return messages, nil
}

func (r *stubMsgRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Message, error) {
	return nil, nil
}

func (r *stubMsgRepo) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.messages, nil
}

func (r *stubMsgRepo) DeleteBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) error {
	return nil
}

type stubEngine struct {
	answer     string
	err        error
	queryCalls int
	logs       *graphrag.LogStream
}

func (e *stubEngine) Insert(ctx context.Context, text string) error { return nil }

func (e *stubEngine) Query(ctx context.Context, prompt string, params graphrag.QueryParams) (string, error) {
	e.queryCalls++
	return e.answer, e.err
}

func (e *stubEngine) Logs() *graphrag.LogStream { return e.logs }

type stubFactory struct {
	engine *stubEngine
}

func (f *stubFactory) ForStore(storeDir string) graphrag.Engine { return f.engine }

type messageFixture struct {
	svc       MessageService
	sessionID uuid.UUID
	docs      *stubDocRepo
	msgs      *stubMsgRepo
	engine    *stubEngine
}

func newMessageFixture(t *testing.T, readyDocs int64) *messageFixture {
	t.Helper()
	sessionID := uuid.New()
	sessions := &stubSessionRepo{sessions: map[uuid.UUID]*types.Session{
		sessionID: {ID: sessionID, Title: "test"},
	}}
	docs := &stubDocRepo{readyCount: readyDocs}
	msgs := &stubMsgRepo{}
	engine := &stubEngine{answer: "the answer", logs: graphrag.NewLogStream()}
	svc := NewMessageService(logger.NewNop(), t.TempDir(), sessions, docs, msgs, &stubFactory{engine: engine})
	return &messageFixture{svc: svc, sessionID: sessionID, docs: docs, msgs: msgs, engine: engine}
}

func TestCreateUserMessageRejectsWithoutReadyDocuments(t *testing.T) {
	f := newMessageFixture(t, 0)

	_, err := f.svc.CreateUserMessage(context.Background(), f.sessionID, "hello")
	if err != ErrNoReadyDocuments {
		t.Fatalf("err = %v, want ErrNoReadyDocuments", err)
	}
	if len(f.msgs.messages) != 0 {
		t.Error("message persisted despite rejection")
	}
}

func TestCreateUserMessageRejectsEmptyContent(t *testing.T) {
	f := newMessageFixture(t, 1)
	if _, err := f.svc.CreateUserMessage(context.Background(), f.sessionID, ""); err == nil {
		t.Error("expected error for empty content")
	}
}

func TestCreateUserMessageUnknownSession(t *testing.T) {
	f := newMessageFixture(t, 1)
	if _, err := f.svc.CreateUserMessage(context.Background(), uuid.New(), "hello"); err != ErrSessionNotFound {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestCreateUserMessagePersistsUserTurn(t *testing.T) {
	f := newMessageFixture(t, 2)

	msg, err := f.svc.CreateUserMessage(context.Background(), f.sessionID, "what is attention?")
	if err != nil {
		t.Fatalf("CreateUserMessage: %v", err)
	}
	if msg.Role != types.RoleUser {
		t.Errorf("role = %s, want %s", msg.Role, types.RoleUser)
	}
	var content struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(msg.Content, &content); err != nil {
		t.Fatal(err)
	}
	if content.Text != "what is attention?" {
		t.Errorf("content text = %q", content.Text)
	}
}

func TestStreamQueryRejectedBeforeEngineCall(t *testing.T) {
	f := newMessageFixture(t, 0)

	_, err := f.svc.StreamQuery(context.Background(), f.sessionID, "hello", graphrag.QueryParams{})
	if err != ErrNoReadyDocuments {
		t.Fatalf("err = %v, want ErrNoReadyDocuments", err)
	}
	if f.engine.queryCalls != 0 {
		t.Error("engine queried despite rejected message")
	}
}

func TestStreamQueryPersistsBothTurns(t *testing.T) {
	f := newMessageFixture(t, 1)

	answer, err := f.svc.StreamQuery(context.Background(), f.sessionID, "hello", graphrag.QueryParams{Mode: "local"})
	if err != nil {
		t.Fatalf("StreamQuery: %v", err)
	}
	if answer != "the answer" {
		t.Errorf("answer = %q", answer)
	}
	if len(f.msgs.messages) != 2 {
		t.Fatalf("got %d persisted messages, want user + assistant", len(f.msgs.messages))
	}
	if f.msgs.messages[0].Role != types.RoleUser || f.msgs.messages[1].Role != types.RoleAssistant {
		t.Errorf("roles = %s, %s", f.msgs.messages[0].Role, f.msgs.messages[1].Role)
	}
}

func TestStreamQueryEngineFailure(t *testing.T) {
	f := newMessageFixture(t, 1)
	f.engine.err = &graphrag.EngineError{Message: "boom"}

	if _, err := f.svc.StreamQuery(context.Background(), f.sessionID, "hello", graphrag.QueryParams{}); err == nil {
		t.Fatal("expected error from failed query")
	}
	// The user turn stays recorded even when the engine fails.
	if len(f.msgs.messages) != 1 || f.msgs.messages[0].Role != types.RoleUser {
		t.Errorf("persisted messages = %d", len(f.msgs.messages))
	}
}

package graphrag

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ECE496-Team-DASH/DashRAG/internal/logger"
)

// Provider selects which LLM backend the engine sidecar should use. It is an
// explicit config value handed to the client constructor; the engine must not
// read process-wide state to decide.
type Provider string

const (
	ProviderOpenAI      Provider = "openai"
	ProviderGemini      Provider = "gemini"
	ProviderAzureOpenAI Provider = "azure_openai"
)

type Config struct {
	BaseURL  string
	Provider Provider
	Timeout  time.Duration
}

type QueryParams struct {
	Mode            string `json:"mode,omitempty"`
	TopK            int    `json:"top_k,omitempty"`
	Level           int    `json:"level,omitempty"`
	ResponseType    string `json:"response_type,omitempty"`
	OnlyNeedContext bool   `json:"only_need_context,omitempty"`
}

// Engine is the knowledge-extraction collaborator for one session's store.
// Insert and Query are long-running, blocking calls. Logs carries the
// engine's free-text log lines for the duration of a call.
type Engine interface {
	Insert(ctx context.Context, text string) error
	Query(ctx context.Context, prompt string, params QueryParams) (string, error)
	Logs() *LogStream
}

// Factory builds an Engine bound to a knowledge store directory.
type Factory interface {
	ForStore(storeDir string) Engine
}

// EngineError carries the engine's failure message plus whatever trace detail
// the sidecar reported. The message text is what failure classification keys
// off.
type EngineError struct {
	Message string
	Trace   string
}

func (e *EngineError) Error() string { return e.Message }

type httpFactory struct {
	cfg Config
	log *logger.Logger
}

// NewHTTPFactory returns a Factory talking to the GraphRAG engine sidecar
// over HTTP. The sidecar streams newline-delimited JSON: {"log": "..."} lines
// interleaved with a final {"done": true}, {"answer": "..."} or
// {"error": "...", "trace": "..."} object.
func NewHTTPFactory(cfg Config, baseLog *logger.Logger) Factory {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Minute
	}
	if cfg.Provider == "" {
		cfg.Provider = ProviderOpenAI
	}
	return &httpFactory{cfg: cfg, log: baseLog.With("service", "GraphRAGEngine")}
}

func (f *httpFactory) ForStore(storeDir string) Engine {
	return &httpEngine{
		cfg:      f.cfg,
		storeDir: storeDir,
		log:      f.log.With("store_dir", storeDir),
		client:   &http.Client{Timeout: f.cfg.Timeout},
		logs:     NewLogStream(),
	}
}

type httpEngine struct {
	cfg      Config
	storeDir string
	log      *logger.Logger
	client   *http.Client
	logs     *LogStream
}

func (e *httpEngine) Logs() *LogStream { return e.logs }

type engineLine struct {
	Log    string `json:"log,omitempty"`
	Done   bool   `json:"done,omitempty"`
	Answer string `json:"answer,omitempty"`
	Error  string `json:"error,omitempty"`
	Trace  string `json:"trace,omitempty"`
}

func (e *httpEngine) Insert(ctx context.Context, text string) error {
	body := map[string]any{
		"store_dir": e.storeDir,
		"provider":  string(e.cfg.Provider),
		"text":      text,
	}
	final, err := e.stream(ctx, "/insert", body)
	if err != nil {
		return err
	}
	if final.Error != "" {
		return &EngineError{Message: final.Error, Trace: final.Trace}
	}
	if !final.Done {
		return &EngineError{Message: "engine closed the insert stream without completing"}
	}
	return nil
}

func (e *httpEngine) Query(ctx context.Context, prompt string, params QueryParams) (string, error) {
	body := map[string]any{
		"store_dir": e.storeDir,
		"provider":  string(e.cfg.Provider),
		"prompt":    prompt,
		"params":    params,
	}
	final, err := e.stream(ctx, "/query", body)
	if err != nil {
		return "", err
	}
	if final.Error != "" {
		return "", &EngineError{Message: final.Error, Trace: final.Trace}
	}
	if final.Answer == "" {
		return "", &EngineError{Message: "engine closed the query stream without an answer"}
	}
	return final.Answer, nil
}

// stream posts the request and consumes the NDJSON response, publishing log
// lines as they arrive and returning the terminal object.
func (e *httpEngine) stream(ctx context.Context, path string, body map[string]any) (*engineLine, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal engine request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build engine request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("engine request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &EngineError{
			Message: fmt.Sprintf("engine returned HTTP %d", resp.StatusCode),
			Trace:   string(detail),
		}
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var last *engineLine
	for scanner.Scan() {
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var line engineLine
		if err := json.Unmarshal(raw, &line); err != nil {
			// Not all engine output is JSON; treat stray lines as raw logs.
			e.logs.Publish(string(raw))
			continue
		}
		if line.Log != "" {
			e.logs.Publish(line.Log)
			continue
		}
		last = &line
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read engine stream: %w", err)
	}
	if last == nil {
		return nil, &EngineError{Message: "engine stream ended without a terminal event"}
	}
	return last, nil
}

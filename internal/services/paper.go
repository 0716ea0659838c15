package services

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ECE496-Team-DASH/DashRAG/internal/logger"
)

// PaperMeta is one remote paper search result, preview-only (no side
// effects until the client adds the paper to a session).
type PaperMeta struct {
	RemoteID    string   `json:"remote_id"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Abstract    string   `json:"abstract"`
	PublishedAt string   `json:"published_at"`
	PDFURL      string   `json:"pdf_url"`
}

type PaperService interface {
	Search(ctx context.Context, query string, maxResults int) ([]PaperMeta, error)
	DownloadPDF(ctx context.Context, remoteID string, destDir string) (string, error)
}

type paperService struct {
	log        *logger.Logger
	apiBaseURL string
	pdfBaseURL string
	httpClient *http.Client
	maxResults int
}

// NewPaperService builds the arXiv client. maxResults caps how many search
// hits a single request may ask for.
func NewPaperService(baseLog *logger.Logger, maxResults int) PaperService {
	if maxResults < 1 {
		maxResults = 10
	}
	return &paperService{
		log:        baseLog.With("service", "PaperService"),
		apiBaseURL: "http://export.arxiv.org/api/query",
		pdfBaseURL: "https://arxiv.org/pdf",
		httpClient: &http.Client{Timeout: 60 * time.Second},
		maxResults: maxResults,
	}
}

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string       `xml:"id"`
	Title     string       `xml:"title"`
	Summary   string       `xml:"summary"`
	Published string       `xml:"published"`
	Authors   []atomAuthor `xml:"author"`
	Links     []atomLink   `xml:"link"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomLink struct {
	Href  string `xml:"href,attr"`
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
}

func (s *paperService) Search(ctx context.Context, query string, maxResults int) ([]PaperMeta, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is required")
	}
	if maxResults < 1 || maxResults > s.maxResults {
		maxResults = s.maxResults
	}
	params := url.Values{}
	params.Set("search_query", "all:"+query)
	params.Set("start", "0")
	params.Set("max_results", fmt.Sprintf("%d", maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiBaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned HTTP %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 8*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}
	return parseAtomFeed(body)
}

func parseAtomFeed(body []byte) ([]PaperMeta, error) {
	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("parse atom feed: %w", err)
	}
	results := make([]PaperMeta, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		meta := PaperMeta{
			RemoteID:    remoteIDFromEntryID(entry.ID),
			Title:       collapseWhitespace(entry.Title),
			Abstract:    collapseWhitespace(entry.Summary),
			PublishedAt: entry.Published,
		}
		for _, a := range entry.Authors {
			meta.Authors = append(meta.Authors, a.Name)
		}
		for _, l := range entry.Links {
			if l.Title == "pdf" || l.Type == "application/pdf" {
				meta.PDFURL = l.Href
				break
			}
		}
		results = append(results, meta)
	}
	return results, nil
}

// remoteIDFromEntryID strips the arXiv abs URL prefix and any version
// suffix: "http://arxiv.org/abs/1706.03762v5" -> "1706.03762".
func remoteIDFromEntryID(id string) string {
	if idx := strings.LastIndex(id, "/abs/"); idx >= 0 {
		id = id[idx+len("/abs/"):]
	}
	if idx := strings.LastIndex(id, "v"); idx > 0 {
		version := id[idx+1:]
		if version != "" && strings.IndexFunc(version, func(r rune) bool { return r < '0' || r > '9' }) < 0 {
			id = id[:idx]
		}
	}
	return id
}

func (s *paperService) DownloadPDF(ctx context.Context, remoteID string, destDir string) (string, error) {
	remoteID = strings.TrimSpace(remoteID)
	if remoteID == "" {
		return "", fmt.Errorf("remote id is required")
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create dest dir: %w", err)
	}

	pdfURL := fmt.Sprintf("%s/%s.pdf", s.pdfBaseURL, remoteID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download returned HTTP %d for %s", resp.StatusCode, pdfURL)
	}

	// arXiv IDs may contain slashes (old-style "cs/0703001").
	filename := strings.ReplaceAll(remoteID, "/", "_") + ".pdf"
	destPath := filepath.Join(destDir, filename)
	out, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create pdf file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("write pdf file: %w", err)
	}
	s.log.Info("Downloaded remote paper", "remote_id", remoteID, "path", destPath)
	return destPath, nil
}

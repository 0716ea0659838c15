package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/ECE496-Team-DASH/DashRAG/internal/logger"
)

const atomFixture = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/1706.03762v7</id>
    <title>Attention Is All
  You Need</title>
    <summary>  The dominant sequence transduction models...  </summary>
    <published>2017-06-12T17:57:34Z</published>
    <author><name>Ashish Vaswani</name></author>
    <author><name>Noam Shazeer</name></author>
    <link href="http://arxiv.org/abs/1706.03762v7" rel="alternate" type="text/html"/>
    <link title="pdf" href="http://arxiv.org/pdf/1706.03762v7" rel="related" type="application/pdf"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/cs/0703001v1</id>
    <title>An Older Style Paper</title>
    <summary>Abstract here.</summary>
    <published>2007-03-01T00:00:00Z</published>
    <author><name>Some Author</name></author>
  </entry>
</feed>`

func TestParseAtomFeed(t *testing.T) {
	results, err := parseAtomFeed([]byte(atomFixture))
	if err != nil {
		t.Fatalf("parseAtomFeed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	first := results[0]
	if first.RemoteID != "1706.03762" {
		t.Errorf("RemoteID = %q, want %q", first.RemoteID, "1706.03762")
	}
	if first.Title != "Attention Is All\n You Need" && first.Title != "Attention Is All You Need" {
		t.Errorf("Title = %q", first.Title)
	}
	if len(first.Authors) != 2 || first.Authors[0] != "Ashish Vaswani" {
		t.Errorf("Authors = %v", first.Authors)
	}
	if first.PDFURL != "http://arxiv.org/pdf/1706.03762v7" {
		t.Errorf("PDFURL = %q", first.PDFURL)
	}
	if first.PublishedAt != "2017-06-12T17:57:34Z" {
		t.Errorf("PublishedAt = %q", first.PublishedAt)
	}

	second := results[1]
	if second.RemoteID != "cs/0703001" {
		t.Errorf("RemoteID = %q, want %q", second.RemoteID, "cs/0703001")
	}
	if second.PDFURL != "" {
		t.Errorf("PDFURL = %q, want empty when no pdf link", second.PDFURL)
	}
}

func TestRemoteIDFromEntryID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://arxiv.org/abs/1706.03762v7", "1706.03762"},
		{"http://arxiv.org/abs/1706.03762", "1706.03762"},
		{"http://arxiv.org/abs/cs/0703001v1", "cs/0703001"},
		{"1706.03762v2", "1706.03762"},
		{"1706.03762", "1706.03762"},
	}
	for _, tt := range tests {
		if got := remoteIDFromEntryID(tt.in); got != tt.want {
			t.Errorf("remoteIDFromEntryID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("search_query"); got != "all:transformers" {
			t.Errorf("search_query = %q", got)
		}
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(atomFixture))
	}))
	defer srv.Close()

	svc := &paperService{
		log:        logger.NewNop(),
		apiBaseURL: srv.URL,
		pdfBaseURL: srv.URL,
		httpClient: srv.Client(),
		maxResults: 10,
	}
	results, err := svc.Search(context.Background(), "transformers", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("got %d results, want 2", len(results))
	}
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	svc := NewPaperService(logger.NewNop(), 10)
	if _, err := svc.Search(context.Background(), "   ", 5); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestDownloadPDF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cs/0703001.pdf" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("%PDF-1.4 fake body"))
	}))
	defer srv.Close()

	svc := &paperService{
		log:        logger.NewNop(),
		apiBaseURL: srv.URL,
		pdfBaseURL: srv.URL,
		httpClient: srv.Client(),
		maxResults: 10,
	}
	destDir := t.TempDir()
	path, err := svc.DownloadPDF(context.Background(), "cs/0703001", destDir)
	if err != nil {
		t.Fatalf("DownloadPDF: %v", err)
	}
	// Old-style IDs contain a slash that must not become a subdirectory.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(data) != "%PDF-1.4 fake body" {
		t.Errorf("downloaded body = %q", data)
	}
}

func TestDownloadPDFNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	svc := &paperService{
		log:        logger.NewNop(),
		apiBaseURL: srv.URL,
		pdfBaseURL: srv.URL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		maxResults: 10,
	}
	if _, err := svc.DownloadPDF(context.Background(), "0000.00000", t.TempDir()); err == nil {
		t.Error("expected error for 404 download")
	}
}

package services

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	pdf "github.com/ledongthuc/pdf"

	"github.com/ECE496-Team-DASH/DashRAG/internal/logger"
)

// TextExtractService pulls raw text out of stored document files before they
// are handed to the knowledge engine. PDF is the primary format; plaintext
// and markdown pass through with whitespace collapsed.
type TextExtractService struct {
	log *logger.Logger
}

func NewTextExtractService(baseLog *logger.Logger) *TextExtractService {
	return &TextExtractService{log: baseLog.With("service", "TextExtractService")}
}

// ExtractFile returns the file's text and its page count (0 for non-paged
// formats).
func (s *TextExtractService) ExtractFile(path string) (string, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", 0, fmt.Errorf("read file: %w", err)
	}
	if len(data) == 0 {
		return "", 0, fmt.Errorf("empty file: %s", path)
	}

	// Sniff by magic bytes first; extensions lie.
	if isPDF(data) {
		return extractPDF(path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if isProbablyText(data) || ext == ".txt" || ext == ".md" || ext == ".markdown" {
		return collapseWhitespace(string(data)), 0, nil
	}

	if ext == ".pdf" {
		return "", 0, fmt.Errorf("file claims pdf but missing %%PDF header: %s", path)
	}
	return "", 0, fmt.Errorf("unsupported file type: %s", path)
}

func extractPDF(path string) (string, int, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	pages := reader.NumPage()
	var sb strings.Builder
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the document.
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	out := collapseWhitespace(sb.String())
	if out == "" {
		return "", pages, fmt.Errorf("no extractable text in pdf (%d pages): %s", pages, path)
	}
	return out, pages, nil
}

func isPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF"))
}

func isProbablyText(data []byte) bool {
	sample := data
	if len(sample) > 4096 {
		sample = sample[:4096]
	}
	for _, b := range sample {
		if b == 0 {
			return false
		}
	}
	return true
}

var multiSpace = regexp.MustCompile(`[ \t]{2,}`)
var multiNewline = regexp.MustCompile(`\n{3,}`)

func collapseWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = multiSpace.ReplaceAllString(s, " ")
	s = multiNewline.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ECE496-Team-DASH/DashRAG/internal/logger"
)

func writeTestFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractFilePlaintext(t *testing.T) {
	svc := NewTextExtractService(logger.NewNop())
	path := writeTestFile(t, "notes.txt", []byte("hello   world\r\n\n\n\nnext paragraph"))

	text, pages, err := svc.ExtractFile(path)
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}
	if pages != 0 {
		t.Errorf("pages = %d, want 0 for plaintext", pages)
	}
	if text != "hello world\n\nnext paragraph" {
		t.Errorf("text = %q", text)
	}
}

func TestExtractFileMarkdown(t *testing.T) {
	svc := NewTextExtractService(logger.NewNop())
	path := writeTestFile(t, "readme.md", []byte("# Title\n\nBody text."))

	text, _, err := svc.ExtractFile(path)
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}
	if !strings.Contains(text, "Body text.") {
		t.Errorf("text = %q", text)
	}
}

func TestExtractFileEmpty(t *testing.T) {
	svc := NewTextExtractService(logger.NewNop())
	path := writeTestFile(t, "empty.pdf", nil)

	if _, _, err := svc.ExtractFile(path); err == nil {
		t.Error("expected error for empty file")
	}
}

func TestExtractFileMissing(t *testing.T) {
	svc := NewTextExtractService(logger.NewNop())
	if _, _, err := svc.ExtractFile(filepath.Join(t.TempDir(), "nope.pdf")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestExtractFilePDFExtensionWithoutHeader(t *testing.T) {
	svc := NewTextExtractService(logger.NewNop())
	path := writeTestFile(t, "fake.pdf", []byte{0x00, 0x01, 0x02, 0x03})

	_, _, err := svc.ExtractFile(path)
	if err == nil {
		t.Fatal("expected error for pdf without %PDF header")
	}
}

func TestExtractFileUnsupportedBinary(t *testing.T) {
	svc := NewTextExtractService(logger.NewNop())
	path := writeTestFile(t, "image.png", []byte{0x89, 'P', 'N', 'G', 0x00, 0x1a})

	if _, _, err := svc.ExtractFile(path); err == nil {
		t.Error("expected error for unsupported binary file")
	}
}

func TestCollapseWhitespace(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"crlf normalized", "a\r\nb", "a\nb"},
		{"runs of spaces collapsed", "a    b\tc", "a b\tc"},
		{"tab runs collapsed", "a\t\t\tb", "a b"},
		{"blank line runs capped", "a\n\n\n\n\nb", "a\n\nb"},
		{"trimmed", "  a  \n", "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := collapseWhitespace(tt.in); got != tt.want {
				t.Errorf("collapseWhitespace(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

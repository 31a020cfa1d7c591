package processor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"scholarag/internal/rag/chunker"
	"scholarag/internal/rag/extract"
	"scholarag/internal/rag/schema"
	"scholarag/pkg/logger"
)

func newTestProcessor() *Processor {
	logger.Init(logrus.ErrorLevel)
	log := logger.New("test")
	return New(extract.New(extract.Capabilities{RTF: true}, log), chunker.New(100, 20), 2, log)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProcessDocumentChunkInvariants(t *testing.T) {
	p := newTestProcessor()
	content := strings.Repeat("placement paper question text goes here ", 20)
	path := writeFile(t, t.TempDir(), "Cocubes/cocubes_quant_2023.txt", content)

	passages, err := p.ProcessDocument(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(passages) < 2 {
		t.Fatalf("expected multiple passages, got %d", len(passages))
	}

	seen := map[string]bool{}
	for i, passage := range passages {
		if passage.ID == "" || seen[passage.ID] {
			t.Errorf("passage %d: id %q not unique", i, passage.ID)
		}
		seen[passage.ID] = true

		md := passage.Metadata
		if md.ChunkID != i {
			t.Errorf("passage %d: chunk_id = %d, chunk IDs must be contiguous from 0", i, md.ChunkID)
		}
		if md.TotalChunks != len(passages) {
			t.Errorf("passage %d: total_chunks = %d, want %d", i, md.TotalChunks, len(passages))
		}
		if md.Company != "Cocubes" {
			t.Errorf("passage %d: company = %q, metadata must be shared across chunks", i, md.Company)
		}
		if md.DocumentType != schema.PlacementPaper {
			t.Errorf("passage %d: document type = %q", i, md.DocumentType)
		}
	}
}

func TestProcessDocumentUnsupported(t *testing.T) {
	p := newTestProcessor()
	path := writeFile(t, t.TempDir(), "archive.zip", "binary junk")

	_, err := p.ProcessDocument(path)
	if !errors.Is(err, extract.ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestProcessDocumentEmptyFile(t *testing.T) {
	p := newTestProcessor()
	path := writeFile(t, t.TempDir(), "empty.txt", "   \n  ")

	passages, err := p.ProcessDocument(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(passages) != 0 {
		t.Errorf("whitespace-only file produced %d passages, want 0", len(passages))
	}
}

func TestProcessDirectory(t *testing.T) {
	p := newTestProcessor()
	dir := t.TempDir()

	writeFile(t, dir, "Google/google_sql_2022.txt", "select statements and joins")
	writeFile(t, dir, "notes/mock_test_python.md", "python mock test content")
	writeFile(t, dir, "notes/ignore.bin", "not a document")

	passages, err := p.ProcessDirectory(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}

	files := map[string]bool{}
	for _, passage := range passages {
		files[passage.Metadata.FileName] = true
	}
	if !files["google_sql_2022.txt"] || !files["mock_test_python.md"] {
		t.Errorf("expected both supported files, got %v", files)
	}
	if files["ignore.bin"] {
		t.Error("unsupported file was processed")
	}
}

func TestProcessDirectorySkipsFailingFiles(t *testing.T) {
	p := newTestProcessor()
	dir := t.TempDir()

	writeFile(t, dir, "good.txt", "usable document body")
	// A .pdf with text content fails extraction but must not abort the walk.
	writeFile(t, dir, "broken.pdf", "this is not a pdf")

	passages, err := p.ProcessDirectory(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(passages) == 0 {
		t.Fatal("the healthy file should still have been processed")
	}
	for _, passage := range passages {
		if passage.Metadata.FileName == "broken.pdf" {
			t.Error("broken file produced passages")
		}
	}
}

func TestProcessDirectoryMissing(t *testing.T) {
	p := newTestProcessor()
	_, err := p.ProcessDirectory(context.Background(), filepath.Join(t.TempDir(), "absent"))
	if err == nil {
		t.Error("expected an error for a missing directory")
	}
}

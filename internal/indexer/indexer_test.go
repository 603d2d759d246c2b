package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/brand-guardian/backend/internal/search"
)

type fakeEmbedder struct {
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeUploader struct {
	docs []search.IndexDocument
}

func (f *fakeUploader) UploadDocuments(ctx context.Context, docs []search.IndexDocument) error {
	f.docs = append(f.docs, docs...)
	return nil
}

func TestIndexerRun(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "claims.txt"), []byte("No unsubstantiated health claims."), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "pricing.md"), []byte("Prices must include all fees."), 0644); err != nil {
		t.Fatal(err)
	}
	// Ignored: wrong extension
	if err := os.WriteFile(filepath.Join(dir, "notes.pdf"), []byte("binary"), 0644); err != nil {
		t.Fatal(err)
	}

	embedder := &fakeEmbedder{}
	uploader := &fakeUploader{}
	ix, err := New(embedder, uploader, DefaultChunkConfig())
	if err != nil {
		t.Fatal(err)
	}

	if err := ix.Run(context.Background(), dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(uploader.docs) != 2 {
		t.Fatalf("expected 2 uploaded chunks, got %d", len(uploader.docs))
	}
	if embedder.calls != 2 {
		t.Errorf("expected 2 embed calls, got %d", embedder.calls)
	}

	sources := map[string]bool{}
	for _, d := range uploader.docs {
		if d.ID == "" {
			t.Error("uploaded document missing id")
		}
		if len(d.ContentVector) == 0 {
			t.Error("uploaded document missing vector")
		}
		sources[d.Metadata] = true
	}
	if !sources["claims.txt"] || !sources["pricing.md"] {
		t.Errorf("source tags wrong: %v", sources)
	}
}

func TestIndexerRunEmptyDir(t *testing.T) {
	ix, err := New(&fakeEmbedder{}, &fakeUploader{}, DefaultChunkConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := ix.Run(context.Background(), t.TempDir()); err == nil {
		t.Error("expected error for directory without rule documents")
	}
}

func TestIndexerRejectsBadConfig(t *testing.T) {
	if _, err := New(&fakeEmbedder{}, &fakeUploader{}, ChunkConfig{Size: 10, Overlap: 20}); err == nil {
		t.Error("expected config validation error")
	}
}

// Package indexer builds the compliance rule corpus: it chunks rule
// documents, embeds each chunk, and uploads chunk+vector pairs to the
// search index. This is an offline, administrative concern; the
// runtime audit pipeline only ever reads the index.
package indexer

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/brand-guardian/backend/internal/search"
)

// Embedder turns chunk text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Uploader receives finished chunk+vector batches.
type Uploader interface {
	UploadDocuments(ctx context.Context, docs []search.IndexDocument) error
}

// uploadBatchSize keeps individual index requests well under the
// service's payload limits.
const uploadBatchSize = 100

// Indexer reads a directory of rule documents and populates the index.
type Indexer struct {
	embedder Embedder
	uploader Uploader
	config   ChunkConfig
}

func New(embedder Embedder, uploader Uploader, cfg ChunkConfig) (*Indexer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Indexer{embedder: embedder, uploader: uploader, config: cfg}, nil
}

// Run indexes every .txt and .md document under dir. A document that
// fails to read or embed is logged and skipped; the run only fails if
// nothing could be indexed or an upload is rejected.
func (ix *Indexer) Run(ctx context.Context, dir string) error {
	files, err := ruleFiles(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no rule documents found in %s", dir)
	}

	log.Printf("[indexer] found %d documents in %s", len(files), dir)

	var batch []search.IndexDocument
	total := 0
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("[indexer] failed to read %s: %v", path, err)
			continue
		}

		source := filepath.Base(path)
		chunks := SplitDocument(ix.config, source, string(data))
		log.Printf("[indexer] %s -> %d chunks", source, len(chunks))

		for _, chunk := range chunks {
			vector, err := ix.embedder.Embed(ctx, chunk.Content)
			if err != nil {
				return fmt.Errorf("embed chunk %d of %s: %w", chunk.Index, source, err)
			}

			batch = append(batch, search.IndexDocument{
				ID:            uuid.New().String(),
				Content:       chunk.Content,
				ContentVector: vector,
				Metadata:      source,
			})
			total++

			if len(batch) >= uploadBatchSize {
				if err := ix.uploader.UploadDocuments(ctx, batch); err != nil {
					return fmt.Errorf("upload batch: %w", err)
				}
				batch = batch[:0]
			}
		}
	}

	if len(batch) > 0 {
		if err := ix.uploader.UploadDocuments(ctx, batch); err != nil {
			return fmt.Errorf("upload batch: %w", err)
		}
	}

	if total == 0 {
		return fmt.Errorf("no chunks produced from %s", dir)
	}

	log.Printf("[indexer] indexing complete: %d chunks uploaded", total)
	return nil
}

func ruleFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read rules directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".txt", ".md":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

package indexer

import "fmt"

// Chunking defaults: 1000-character chunks with 200 characters of
// overlap so context isn't lost between cuts.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// ChunkConfig holds chunking configuration.
type ChunkConfig struct {
	Size    int
	Overlap int
}

// DefaultChunkConfig returns the standard 1000/200 configuration.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{Size: DefaultChunkSize, Overlap: DefaultChunkOverlap}
}

// Validate checks if the configuration is usable.
func (c ChunkConfig) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.Size)
	}
	if c.Overlap < 0 {
		return fmt.Errorf("chunk overlap must not be negative, got %d", c.Overlap)
	}
	if c.Overlap >= c.Size {
		return fmt.Errorf("chunk overlap (%d) must be less than chunk size (%d)", c.Overlap, c.Size)
	}
	return nil
}

// Chunk is one piece of a rule document, tagged with where it came
// from for later citation.
type Chunk struct {
	Source  string
	Index   int
	Content string
}

// SplitDocument splits a document into overlapping fixed-size chunks.
// Boundaries are rune-based so multibyte text never gets cut mid-rune.
func SplitDocument(cfg ChunkConfig, source, content string) []Chunk {
	runes := []rune(content)
	if len(runes) == 0 {
		return nil
	}

	step := cfg.Size - cfg.Overlap
	var chunks []Chunk
	for start := 0; start < len(runes); start += step {
		end := start + cfg.Size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, Chunk{
			Source:  source,
			Index:   len(chunks),
			Content: string(runes[start:end]),
		})
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// Command indexer populates the compliance rule index from a directory
// of rule documents. It is run offline whenever the rule corpus
// changes; the audit server only reads the index.
package main

import (
	"context"
	"log"
	"strings"

	"github.com/brand-guardian/backend/internal/config"
	"github.com/brand-guardian/backend/internal/indexer"
	"github.com/brand-guardian/backend/internal/openai"
	"github.com/brand-guardian/backend/internal/search"
)

func main() {
	// Indexing without credentials does nothing useful, so missing
	// configuration is a hard stop here, unlike the server.
	if missing := config.RequiredForIndexing(); len(missing) > 0 {
		log.Fatalf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	cfg := config.Load()

	openaiClient := openai.NewClient(cfg.OpenAIEndpoint, cfg.OpenAIAPIKey, cfg.OpenAIAPIVersion,
		nil, cfg.EmbeddingDeployment)
	searchClient := search.NewClient(cfg.SearchEndpoint, cfg.SearchAPIKey, cfg.SearchIndexName)

	ix, err := indexer.New(openaiClient, searchClient, indexer.DefaultChunkConfig())
	if err != nil {
		log.Fatalf("invalid chunk config: %v", err)
	}

	log.Printf("indexing rule documents from %s into index %s", cfg.RulesPath, cfg.SearchIndexName)
	if err := ix.Run(context.Background(), cfg.RulesPath); err != nil {
		log.Fatalf("indexing failed: %v", err)
	}
	log.Printf("indexing complete, knowledge base is ready")
}

package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/brand-guardian/backend/internal/api"
	"github.com/brand-guardian/backend/internal/audit"
	"github.com/brand-guardian/backend/internal/auth"
	"github.com/brand-guardian/backend/internal/config"
	"github.com/brand-guardian/backend/internal/db"
	"github.com/brand-guardian/backend/internal/job"
	"github.com/brand-guardian/backend/internal/openai"
	"github.com/brand-guardian/backend/internal/search"
	"github.com/brand-guardian/backend/internal/videoindexer"
)

func main() {
	cfg := config.Load()

	// Ensure data directory exists
	os.MkdirAll(cfg.DataPath, 0755)

	// Initialize database
	database, err := db.NewSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Ensure admin user exists
	if err := database.EnsureAdmin(cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}
	log.Printf("Admin user ensured: %s", cfg.AdminUsername)

	// External service clients. The chat deployment is resolved from
	// settings on every call so admins can switch models without a
	// restart.
	chatResolver := func() string {
		return database.GetSetting("chat_deployment", cfg.ChatDeployment)
	}
	openaiClient := openai.NewClient(cfg.OpenAIEndpoint, cfg.OpenAIAPIKey, cfg.OpenAIAPIVersion,
		chatResolver, cfg.EmbeddingDeployment)
	// A key stored in settings overrides the environment; picked up on
	// restart.
	searchKey := database.GetSetting("search_api_key", cfg.SearchAPIKey)
	searchClient := search.NewClient(cfg.SearchEndpoint, searchKey, cfg.SearchIndexName)
	retriever := search.NewRetriever(openaiClient, searchClient)
	indexerClient := videoindexer.NewClient(cfg.IndexerEndpoint, cfg.IndexerAccountID,
		cfg.IndexerAccessToken, cfg.IndexerTimeout)

	// Audit pipeline and job queue
	pipeline := audit.NewPipeline(indexerClient, retriever, openaiClient)
	auditService := audit.NewService(pipeline, database)

	jobQueue := job.NewQueue(database.DB())
	defer jobQueue.Stop()
	jobQueue.RegisterHandler(job.JobAudit, auditService.HandleJob)

	// Initialize JWT service
	jwtService := auth.NewJWTService(cfg.JWTSecret)

	// Create router
	router := api.NewRouter(database, jwtService, cfg, jobQueue)

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("Starting server on %s", addr)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")
		jobQueue.Stop()
		database.Close()
		os.Exit(0)
	}()

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

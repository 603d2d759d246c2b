package config

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port          int
	DataPath      string
	DBPath        string
	RulesPath     string
	JWTSecret     string
	AdminUsername string
	AdminPassword string
	CORSOrigins   []string

	// Azure OpenAI
	OpenAIEndpoint      string
	OpenAIAPIKey        string
	OpenAIAPIVersion    string
	ChatDeployment      string
	EmbeddingDeployment string

	// Azure AI Search (rule knowledge base)
	SearchEndpoint  string
	SearchAPIKey    string
	SearchIndexName string

	// Media-indexing service
	IndexerEndpoint    string
	IndexerAccountID   string
	IndexerAccessToken string
	IndexerTimeout     time.Duration
}

func Load() *Config {
	port, _ := strconv.Atoi(getEnv("PORT", "8080"))
	dataPath := getEnv("DATA_PATH", "/data")

	// JWT secret: require explicit setting or generate random
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			log.Fatalf("Failed to generate random JWT secret: %v", err)
		}
		jwtSecret = hex.EncodeToString(b)
		log.Println("WARNING: JWT_SECRET not set, using random secret. Sessions will not survive restarts. Set JWT_SECRET env var for persistent sessions.")
	}

	// CORS origins: comma-separated list or "*" (default)
	corsOrigins := []string{"*"}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		corsOrigins = make([]string, 0, len(origins))
		for _, o := range origins {
			o = strings.TrimSpace(o)
			if o != "" {
				corsOrigins = append(corsOrigins, o)
			}
		}
	}

	// Bound on waiting for the media-indexing service; an unbounded
	// wait would hang the single audit worker forever on a stuck asset.
	indexerTimeout := 15 * time.Minute
	if v := os.Getenv("VIDEO_INDEXER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			indexerTimeout = d
		} else {
			log.Printf("WARNING: invalid VIDEO_INDEXER_TIMEOUT %q, using %s", v, indexerTimeout)
		}
	}

	return &Config{
		Port:          port,
		DataPath:      dataPath,
		DBPath:        getEnv("DB_PATH", dataPath+"/brandguardian.db"),
		RulesPath:     getEnv("RULES_PATH", dataPath+"/rules"),
		JWTSecret:     jwtSecret,
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin"),
		CORSOrigins:   corsOrigins,

		OpenAIEndpoint:      os.Getenv("AZURE_OPENAI_ENDPOINT"),
		OpenAIAPIKey:        os.Getenv("AZURE_OPENAI_API_KEY"),
		OpenAIAPIVersion:    getEnv("AZURE_OPENAI_API_VERSION", "2024-02-01"),
		ChatDeployment:      getEnv("AZURE_OPENAI_CHAT_DEPLOYMENT", "gpt-4o"),
		EmbeddingDeployment: getEnv("AZURE_OPENAI_EMBEDDING_DEPLOYMENT", "text-embedding-3-small"),

		SearchEndpoint:  os.Getenv("AZURE_SEARCH_ENDPOINT"),
		SearchAPIKey:    os.Getenv("AZURE_SEARCH_API_KEY"),
		SearchIndexName: os.Getenv("AZURE_SEARCH_INDEX_NAME"),

		IndexerEndpoint:    getEnv("VIDEO_INDEXER_ENDPOINT", "https://api.videoindexer.ai"),
		IndexerAccountID:   os.Getenv("VIDEO_INDEXER_ACCOUNT_ID"),
		IndexerAccessToken: os.Getenv("VIDEO_INDEXER_ACCESS_TOKEN"),
		IndexerTimeout:     indexerTimeout,
	}
}

// RequiredForIndexing returns the names of environment variables the
// offline indexer cannot run without and which are currently unset.
func RequiredForIndexing() []string {
	required := []string{
		"AZURE_OPENAI_ENDPOINT",
		"AZURE_OPENAI_API_KEY",
		"AZURE_SEARCH_ENDPOINT",
		"AZURE_SEARCH_API_KEY",
		"AZURE_SEARCH_INDEX_NAME",
	}
	var missing []string
	for _, name := range required {
		if os.Getenv(name) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Package config provides environment-based configuration for hate-2-action.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the service. Components receive the
// values they need at construction; nothing reads the environment after Load.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Database (PostgreSQL with pgvector)
	DatabaseURL string

	// OpenAI
	OpenAIAPIKey   string
	ChatModel      string
	EmbeddingModel string

	// EmbeddingBackend selects "openai" or "simple".
	EmbeddingBackend string

	// Matching
	SolutionK int // KNN neighbors per problem when matching solutions
	ProjectK  int // KNN neighbors per solution when matching projects

	// Extraction
	RepairAttempts int // JSON repair retries before giving up

	// Reply generation
	AnswerStyle string

	// NATS event bus (optional)
	NatsURL string

	// EncryptionKey holds the Fernet key(s) for project contact data,
	// comma-separated with the primary first (optional)
	EncryptionKey string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	c := &Config{
		Port:             envInt("H2A_PORT", 8080),
		LogLevel:         envStr("H2A_LOG_LEVEL", "info"),
		DatabaseURL:      envStr("DATABASE_URL", ""),
		OpenAIAPIKey:     envStr("OPENAI_API_KEY", ""),
		ChatModel:        envStr("OPENAI_CHAT_MODEL", "gpt-4.1-mini"),
		EmbeddingModel:   envStr("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingBackend: envStr("EMBEDDING_BACKEND", "openai"),
		SolutionK:        envInt("MATCH_SOLUTION_K", 5),
		ProjectK:         envInt("MATCH_PROJECT_K", 3),
		RepairAttempts:   envInt("EXTRACT_REPAIR_ATTEMPTS", 2),
		AnswerStyle:      envStr("ANSWER_STYLE", "empathetic"),
		NatsURL:          envStr("NATS_URL", ""),
		EncryptionKey:    envStr("ENCRYPTION_KEY", ""),
	}

	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return c, nil
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

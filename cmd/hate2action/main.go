// Package main is the entry point for the hate-2-action service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/gumanista/hate-2-action/internal/config"
	"github.com/gumanista/hate-2-action/internal/embeddings"
	"github.com/gumanista/hate-2-action/internal/encryption"
	"github.com/gumanista/hate-2-action/internal/events"
	"github.com/gumanista/hate-2-action/internal/extract"
	"github.com/gumanista/hate-2-action/internal/llm"
	"github.com/gumanista/hate-2-action/internal/matching"
	"github.com/gumanista/hate-2-action/internal/pipeline"
	"github.com/gumanista/hate-2-action/internal/reply"
	"github.com/gumanista/hate-2-action/internal/server"
	"github.com/gumanista/hate-2-action/internal/store"
)

func main() {
	_ = godotenv.Load()

	logLevel := slog.LevelInfo
	if os.Getenv("H2A_LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := store.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to migrate schema", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Embedding provider
	var embedder embeddings.Provider
	switch cfg.EmbeddingBackend {
	case "simple":
		embedder = embeddings.NewSimpleProvider()
	default:
		embedder, err = embeddings.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.EmbeddingModel)
		if err != nil {
			logger.Error("failed to initialize embedding provider", "error", err)
			os.Exit(1)
		}
	}
	logger.Info("embedding provider initialized", "backend", embedder.Name())

	// Chat client for extraction and replies
	chat, err := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.ChatModel, 0.1)
	if err != nil {
		logger.Error("failed to initialize chat client", "error", err)
		os.Exit(1)
	}

	// Encryption for project contact data
	var encryptor *encryption.Encryptor
	if cfg.EncryptionKey != "" {
		encryptor, err = encryption.NewEncryptor(cfg.EncryptionKey)
		if err != nil {
			logger.Warn("failed to initialize encryptor, contact data stored in plaintext", "error", err)
		}
	}

	// Event bus is optional, the service works without it
	var publisher *events.Publisher
	if cfg.NatsURL != "" {
		eventsClient, err := events.NewClient(cfg.NatsURL, logger)
		if err != nil {
			logger.Warn("failed to connect to NATS, running without event bus", "error", err)
		} else {
			defer eventsClient.Close()
			publisher = events.NewPublisher(eventsClient, logger)
			logger.Info("connected to NATS", "url", cfg.NatsURL)
		}
	}

	// Stores
	messageStore := store.NewMessageStore(db)
	problemStore := store.NewProblemStore(db)
	projectStore := store.NewProjectStore(db, encryptor)
	matchStore := store.NewMatchStore(db)

	// Matching core
	matchCfg := matching.Config{SolutionK: cfg.SolutionK, ProjectK: cfg.ProjectK}
	matchEmbedder := matching.NewEmbedder(matchStore, matchStore, embedder, logger)
	matcher := matching.NewMatcher(matchStore, matchStore, logger)
	ranker := matching.NewRanker(matchStore)
	orchestrator := matching.NewOrchestrator(matchStore, matchStore, matchStore, matchEmbedder, matcher, ranker, matchCfg, logger)

	detector := extract.NewDetector(chat, extract.Config{RepairAttempts: cfg.RepairAttempts}, logger)
	generator := reply.NewGenerator(chat, reply.Style(cfg.AnswerStyle))

	var pub pipeline.Publisher
	if publisher != nil {
		pub = publisher
	}
	pipe := pipeline.New(messageStore, problemStore, projectStore, detector, orchestrator, generator, pub, logger)

	srv := server.New(db, pipe, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      srv.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down gracefully...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	logger.Info("hate-2-action starting", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("hate-2-action stopped")
}

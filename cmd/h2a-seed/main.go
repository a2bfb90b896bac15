// Package main implements the reference-data seeder. It loads solutions and
// projects from a JSON file and upserts them through the store, so running it
// repeatedly against the same file is safe.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/gumanista/hate-2-action/internal/config"
	"github.com/gumanista/hate-2-action/internal/encryption"
	"github.com/gumanista/hate-2-action/internal/store"
)

type seedFile struct {
	Solutions []struct {
		Name    string `json:"name"`
		Context string `json:"context"`
	} `json:"solutions"`
	Projects []struct {
		Name         string `json:"name"`
		Description  string `json:"description"`
		Website      string `json:"website"`
		ContactEmail string `json:"contact_email"`
	} `json:"projects"`
}

func main() {
	file := flag.String("file", "seed.json", "path to the seed data file")
	flag.Parse()

	_ = godotenv.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(context.Background(), *file, logger); err != nil {
		logger.Error("seeding failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, path string, logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading seed file: %w", err)
	}
	var data seedFile
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("parsing seed file: %w", err)
	}

	db, err := store.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}

	var encryptor *encryption.Encryptor
	if cfg.EncryptionKey != "" {
		encryptor, err = encryption.NewEncryptor(cfg.EncryptionKey)
		if err != nil {
			return fmt.Errorf("initializing encryptor: %w", err)
		}
	}

	solutions := store.NewSolutionStore(db)
	for _, s := range data.Solutions {
		if s.Name == "" {
			continue
		}
		if _, err := solutions.Upsert(ctx, s.Name, s.Context); err != nil {
			return err
		}
	}

	projects := store.NewProjectStore(db, encryptor)
	for _, p := range data.Projects {
		if p.Name == "" {
			continue
		}
		if _, err := projects.Upsert(ctx, &store.Project{
			Name:         p.Name,
			Description:  p.Description,
			Website:      p.Website,
			ContactEmail: p.ContactEmail,
		}); err != nil {
			return err
		}
	}

	logger.Info("seed complete",
		"solutions", len(data.Solutions),
		"projects", len(data.Projects),
	)
	return nil
}

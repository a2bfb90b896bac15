package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// migrations is the ordered, versioned schema. The schema is explicit and
// owned here; nothing in the system infers column types from data. Each entry
// runs in its own transaction and is recorded in schema_migrations, so
// Migrate is safe to call on every startup.
var migrations = []string{
	// 1: pgvector extension
	`CREATE EXTENSION IF NOT EXISTS vector`,

	// 2: entity tables
	`CREATE TABLE IF NOT EXISTS problems (
		problem_id   BIGSERIAL PRIMARY KEY,
		name         TEXT NOT NULL,
		context      TEXT NOT NULL DEFAULT '',
		is_processed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (name, context)
	);
	CREATE TABLE IF NOT EXISTS solutions (
		solution_id BIGSERIAL PRIMARY KEY,
		name        TEXT NOT NULL,
		context     TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (name, context)
	);
	CREATE TABLE IF NOT EXISTS projects (
		project_id    BIGSERIAL PRIMARY KEY,
		name          TEXT NOT NULL UNIQUE,
		description   TEXT NOT NULL DEFAULT '',
		website       TEXT NOT NULL DEFAULT '',
		contact_email TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	// 3: messages and responses
	`CREATE TABLE IF NOT EXISTS messages (
		message_id    BIGSERIAL PRIMARY KEY,
		user_id       BIGINT NOT NULL DEFAULT 0,
		user_username TEXT NOT NULL DEFAULT '',
		chat_title    TEXT NOT NULL DEFAULT '',
		text          TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE TABLE IF NOT EXISTS responses (
		response_id BIGSERIAL PRIMARY KEY,
		message_id  BIGINT NOT NULL REFERENCES messages(message_id) ON DELETE CASCADE,
		text        TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	// 4: one embedding per (kind, entity_id)
	`CREATE TABLE IF NOT EXISTS embeddings (
		kind       TEXT NOT NULL CHECK (kind IN ('problem', 'solution', 'project')),
		entity_id  BIGINT NOT NULL,
		embedding  vector(1536) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (kind, entity_id)
	)`,

	// 5: match edge tables, first-write-wins per pair
	`CREATE TABLE IF NOT EXISTS projects_solutions (
		project_id       BIGINT NOT NULL REFERENCES projects(project_id) ON DELETE CASCADE,
		solution_id      BIGINT NOT NULL REFERENCES solutions(solution_id) ON DELETE CASCADE,
		similarity_score DOUBLE PRECISION NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (project_id, solution_id)
	);
	CREATE TABLE IF NOT EXISTS problems_solutions (
		problem_id       BIGINT NOT NULL REFERENCES problems(problem_id) ON DELETE CASCADE,
		solution_id      BIGINT NOT NULL REFERENCES solutions(solution_id) ON DELETE CASCADE,
		similarity_score DOUBLE PRECISION NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (problem_id, solution_id)
	)`,
}

// Migrate applies any schema migrations not yet recorded.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`); err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}

	var current int
	if err := db.Pool.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for i := current; i < len(migrations); i++ {
		version := i + 1
		err := db.WithTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, migrations[i]); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version)
			return err
		})
		if err != nil {
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
	}
	return nil
}

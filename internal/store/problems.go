package store

import (
	"context"
	"fmt"
	"time"
)

// Problem is a social or psychological problem extracted from a message.
type Problem struct {
	ID        int64     `json:"problem_id"`
	Name      string    `json:"name"`
	Context   string    `json:"context"`
	Processed bool      `json:"is_processed"`
	CreatedAt time.Time `json:"created_at"`
}

// ProblemStore persists problems.
type ProblemStore struct {
	db *DB
}

// NewProblemStore creates a ProblemStore.
func NewProblemStore(db *DB) *ProblemStore {
	return &ProblemStore{db: db}
}

// Upsert returns the id of the problem with the given (name, context)
// identity, inserting it unprocessed if it does not exist yet. Calling it
// twice with the same pair returns the same id and does not grow the table.
func (s *ProblemStore) Upsert(ctx context.Context, name, context string) (int64, error) {
	var id int64
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO problems (name, context)
		VALUES ($1, $2)
		ON CONFLICT (name, context) DO UPDATE SET name = EXCLUDED.name
		RETURNING problem_id
	`, name, context).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert problem %q: %w", name, err)
	}
	return id, nil
}

// Get fetches a problem by id.
func (s *ProblemStore) Get(ctx context.Context, id int64) (*Problem, error) {
	p := &Problem{}
	err := s.db.Pool.QueryRow(ctx, `
		SELECT problem_id, name, context, is_processed, created_at
		FROM problems WHERE problem_id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Context, &p.Processed, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get problem %d: %w", id, err)
	}
	return p, nil
}

// GetByIDs fetches problems for the given ids, preserving input order where
// possible. Unknown ids are ignored.
func (s *ProblemStore) GetByIDs(ctx context.Context, ids []int64) ([]Problem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.Pool.Query(ctx, `
		SELECT problem_id, name, context, is_processed, created_at
		FROM problems WHERE problem_id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("get problems: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]Problem, len(ids))
	for rows.Next() {
		var p Problem
		if err := rows.Scan(&p.ID, &p.Name, &p.Context, &p.Processed, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan problem: %w", err)
		}
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]Problem, 0, len(byID))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}

package store

import (
	"context"
	"fmt"
	"time"
)

// Solution is a long-lived reference record describing a way to address a
// class of problems.
type Solution struct {
	ID        int64     `json:"solution_id"`
	Name      string    `json:"name"`
	Context   string    `json:"context"`
	CreatedAt time.Time `json:"created_at"`
}

// SolutionStore persists solutions.
type SolutionStore struct {
	db *DB
}

// NewSolutionStore creates a SolutionStore.
func NewSolutionStore(db *DB) *SolutionStore {
	return &SolutionStore{db: db}
}

// Upsert returns the id of the solution with the given (name, context)
// identity, inserting it if it does not exist yet.
func (s *SolutionStore) Upsert(ctx context.Context, name, context string) (int64, error) {
	var id int64
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO solutions (name, context)
		VALUES ($1, $2)
		ON CONFLICT (name, context) DO UPDATE SET name = EXCLUDED.name
		RETURNING solution_id
	`, name, context).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert solution %q: %w", name, err)
	}
	return id, nil
}

// GetByIDs fetches solutions for the given ids, preserving input order.
func (s *SolutionStore) GetByIDs(ctx context.Context, ids []int64) ([]Solution, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.Pool.Query(ctx, `
		SELECT solution_id, name, context, created_at
		FROM solutions WHERE solution_id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("get solutions: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]Solution, len(ids))
	for rows.Next() {
		var sol Solution
		if err := rows.Scan(&sol.ID, &sol.Name, &sol.Context, &sol.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan solution: %w", err)
		}
		byID[sol.ID] = sol
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]Solution, 0, len(byID))
	for _, id := range ids {
		if sol, ok := byID[id]; ok {
			result = append(result, sol)
		}
	}
	return result, nil
}

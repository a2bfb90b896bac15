package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/gumanista/hate-2-action/internal/matching"
)

// MatchStore is the pgvector-backed persistence layer consumed by the
// matching package. It implements matching.EntitySource, matching.VectorStore
// and matching.EdgeStore.
type MatchStore struct {
	db *DB
}

// NewMatchStore creates a MatchStore.
func NewMatchStore(db *DB) *MatchStore {
	return &MatchStore{db: db}
}

// entityTable maps a kind to its table and id column.
func entityTable(kind matching.Kind) (table, idCol string, err error) {
	switch kind {
	case matching.KindProblem:
		return "problems", "problem_id", nil
	case matching.KindSolution:
		return "solutions", "solution_id", nil
	case matching.KindProject:
		return "projects", "project_id", nil
	default:
		return "", "", fmt.Errorf("unknown entity kind %q", kind)
	}
}

// textColumn is the per-kind text-extraction rule: problems and solutions
// embed their context, projects their description.
func textColumn(kind matching.Kind) (string, error) {
	switch kind {
	case matching.KindProblem, matching.KindSolution:
		return "context", nil
	case matching.KindProject:
		return "description", nil
	default:
		return "", fmt.Errorf("unknown entity kind %q", kind)
	}
}

// edgeTable maps a relation to its edge table and columns. Identifiers come
// from this fixed table only and never from input.
func edgeTable(rel matching.Relation) (table, sourceCol, targetCol string, err error) {
	switch rel {
	case matching.RelSolutionProject:
		return "projects_solutions", "solution_id", "project_id", nil
	case matching.RelProblemSolution:
		return "problems_solutions", "problem_id", "solution_id", nil
	default:
		return "", "", "", fmt.Errorf("unknown relation %s->%s", rel.Source, rel.Target)
	}
}

// IDs returns all entity ids of the given kind.
func (s *MatchStore) IDs(ctx context.Context, kind matching.Kind) ([]int64, error) {
	table, idCol, err := entityTable(kind)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Pool.Query(ctx, fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s`, idCol, table, idCol))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", table, err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

// Text returns the embeddable text for one entity.
func (s *MatchStore) Text(ctx context.Context, kind matching.Kind, id int64) (string, bool, error) {
	table, idCol, err := entityTable(kind)
	if err != nil {
		return "", false, err
	}
	textCol, err := textColumn(kind)
	if err != nil {
		return "", false, err
	}

	var text string
	err = s.db.Pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, textCol, table, idCol), id).Scan(&text)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("fetching %s %d text: %w", kind, id, err)
	}
	return text, true, nil
}

// MarkProblemProcessed flips a problem's processed flag to true.
func (s *MatchStore) MarkProblemProcessed(ctx context.Context, id int64) error {
	_, err := s.db.Pool.Exec(ctx, `UPDATE problems SET is_processed = TRUE WHERE problem_id = $1`, id)
	if err != nil {
		return fmt.Errorf("marking problem %d processed: %w", id, err)
	}
	return nil
}

// Upsert inserts or replaces the vector for (kind, id).
func (s *MatchStore) Upsert(ctx context.Context, kind matching.Kind, id int64, vec []float32) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO embeddings (kind, entity_id, embedding)
		VALUES ($1, $2, $3)
		ON CONFLICT (kind, entity_id) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			updated_at = now()
	`, string(kind), id, pgvector.NewVector(vec))
	if err != nil {
		return fmt.Errorf("upsert %s %d embedding: %w", kind, id, err)
	}
	return nil
}

// Vector fetches the stored vector for (kind, id).
func (s *MatchStore) Vector(ctx context.Context, kind matching.Kind, id int64) ([]float32, bool, error) {
	var v pgvector.Vector
	err := s.db.Pool.QueryRow(ctx, `
		SELECT embedding FROM embeddings WHERE kind = $1 AND entity_id = $2
	`, string(kind), id).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s %d embedding: %w", kind, id, err)
	}
	return v.Slice(), true, nil
}

// EmbeddedIDs returns the ids of the given kind that have a vector.
func (s *MatchStore) EmbeddedIDs(ctx context.Context, kind matching.Kind) ([]int64, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT entity_id FROM embeddings WHERE kind = $1 ORDER BY entity_id
	`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("listing embedded %s ids: %w", kind, err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

// Nearest returns up to k entities of the given kind ordered by ascending
// cosine distance (`<=>`) from the query vector. Similarity downstream is
// 1 - distance; scores from other metrics are not comparable.
func (s *MatchStore) Nearest(ctx context.Context, kind matching.Kind, vec []float32, k int) ([]matching.Neighbor, error) {
	query := pgvector.NewVector(vec)
	rows, err := s.db.Pool.Query(ctx, `
		SELECT entity_id, embedding <=> $1 AS distance
		FROM embeddings
		WHERE kind = $2
		ORDER BY embedding <=> $1
		LIMIT $3
	`, query, string(kind), k)
	if err != nil {
		return nil, fmt.Errorf("knn %s: %w", kind, err)
	}
	defer rows.Close()

	var result []matching.Neighbor
	for rows.Next() {
		var n matching.Neighbor
		if err := rows.Scan(&n.ID, &n.Distance); err != nil {
			return nil, fmt.Errorf("scan neighbor: %w", err)
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

// Insert writes one scored edge. A pre-existing (source, target) pair is a
// no-op, never an overwrite, even when the new score differs.
func (s *MatchStore) Insert(ctx context.Context, rel matching.Relation, sourceID, targetID int64, similarity float64) error {
	table, sourceCol, targetCol, err := edgeTable(rel)
	if err != nil {
		return err
	}
	_, err = s.db.Pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (%s, %s, similarity_score)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`, table, sourceCol, targetCol), sourceID, targetID, similarity)
	if err != nil {
		return fmt.Errorf("insert %s edge %d->%d: %w", table, sourceID, targetID, err)
	}
	return nil
}

// Count returns the total number of edges for the relation.
func (s *MatchStore) Count(ctx context.Context, rel matching.Relation) (int, error) {
	table, _, _, err := edgeTable(rel)
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.db.Pool.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}
	return n, nil
}

// BySources returns all edges whose source id is in the given set.
func (s *MatchStore) BySources(ctx context.Context, rel matching.Relation, sourceIDs []int64) ([]matching.Edge, error) {
	if len(sourceIDs) == 0 {
		return nil, nil
	}
	table, sourceCol, targetCol, err := edgeTable(rel)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Pool.Query(ctx, fmt.Sprintf(`
		SELECT %s, %s, similarity_score FROM %s WHERE %s = ANY($1)
	`, sourceCol, targetCol, table, sourceCol), sourceIDs)
	if err != nil {
		return nil, fmt.Errorf("collecting %s edges: %w", table, err)
	}
	defer rows.Close()

	var result []matching.Edge
	for rows.Next() {
		var e matching.Edge
		if err := rows.Scan(&e.SourceID, &e.TargetID, &e.Similarity); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func scanIDs(rows pgx.Rows) ([]int64, error) {
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

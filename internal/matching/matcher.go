package matching

import (
	"context"
	"fmt"
	"log/slog"
)

// Matcher runs KNN queries for already-embedded source entities and persists
// the results as scored edges.
type Matcher struct {
	vectors VectorStore
	edges   EdgeStore
	logger  *slog.Logger
}

// NewMatcher creates a Matcher.
func NewMatcher(vectors VectorStore, edges EdgeStore, logger *slog.Logger) *Matcher {
	return &Matcher{
		vectors: vectors,
		edges:   edges,
		logger:  logger,
	}
}

// Match queries the k nearest target entities for each source id and inserts
// one edge per neighbor with similarity = 1 - cosine distance. Sources
// without a stored vector are skipped with a warning, which is the expected
// state for entities whose text was empty. Edge insertion is idempotent, so
// re-matching a source never duplicates or rewrites existing edges.
func (m *Matcher) Match(ctx context.Context, rel Relation, sourceIDs []int64, k int) error {
	for _, sid := range sourceIDs {
		vec, ok, err := m.vectors.Vector(ctx, rel.Source, sid)
		if err != nil {
			return fmt.Errorf("fetching %s %d vector: %w", rel.Source, sid, err)
		}
		if !ok {
			m.logger.Warn("no embedding for source, skipping", "kind", rel.Source, "id", sid)
			continue
		}

		neighbors, err := m.vectors.Nearest(ctx, rel.Target, vec, k)
		if err != nil {
			return fmt.Errorf("knn %s for %s %d: %w", rel.Target, rel.Source, sid, err)
		}

		for _, nb := range neighbors {
			similarity := 1.0 - nb.Distance
			if err := m.edges.Insert(ctx, rel, sid, nb.ID, similarity); err != nil {
				m.logger.Warn("edge insert failed", "relation", rel, "source", sid, "target", nb.ID, "error", err)
			}
		}
	}
	return nil
}

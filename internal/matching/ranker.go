package matching

import (
	"context"
	"fmt"
	"sort"
)

// Ranker aggregates scored edges into a deduplicated, ranked target list.
type Ranker struct {
	edges EdgeStore
}

// NewRanker creates a Ranker.
func NewRanker(edges EdgeStore) *Ranker {
	return &Ranker{edges: edges}
}

// TopN collects all edges whose source is in sourceIDs, keeps the best
// similarity per target, and returns the top n target ids sorted by that
// score descending. A target reachable through several sources ranks by its
// single best path; fan-in count neither boosts nor penalizes it. Ties break
// by target id ascending so results are reproducible. An empty source set
// short-circuits to nil without querying.
func (r *Ranker) TopN(ctx context.Context, rel Relation, sourceIDs []int64, n int) ([]int64, error) {
	if len(sourceIDs) == 0 {
		return nil, nil
	}

	edges, err := r.edges.BySources(ctx, rel, sourceIDs)
	if err != nil {
		return nil, fmt.Errorf("collecting %s->%s edges: %w", rel.Source, rel.Target, err)
	}

	best := make(map[int64]float64)
	for _, e := range edges {
		if s, ok := best[e.TargetID]; !ok || e.Similarity > s {
			best[e.TargetID] = e.Similarity
		}
	}

	targets := make([]int64, 0, len(best))
	for id := range best {
		targets = append(targets, id)
	}
	sort.Slice(targets, func(i, j int) bool {
		si, sj := best[targets[i]], best[targets[j]]
		if si != sj {
			return si > sj
		}
		return targets[i] < targets[j]
	})

	if n >= 0 && len(targets) > n {
		targets = targets[:n]
	}
	return targets, nil
}

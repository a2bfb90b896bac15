package matching

import (
	"context"
	"fmt"
	"log/slog"
)

// Orchestrator sequences the embedding and matching hops for a batch of
// problems. It is the only writer of embeddings, match edges and processed
// flags; callers needing concurrent invocations must serialize externally.
type Orchestrator struct {
	entities EntitySource
	vectors  VectorStore
	edges    EdgeStore
	embedder *Embedder
	matcher  *Matcher
	ranker   *Ranker
	cfg      Config
	logger   *slog.Logger
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(entities EntitySource, vectors VectorStore, edges EdgeStore, embedder *Embedder, matcher *Matcher, ranker *Ranker, cfg Config, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		entities: entities,
		vectors:  vectors,
		edges:    edges,
		embedder: embedder,
		matcher:  matcher,
		ranker:   ranker,
		cfg:      cfg,
		logger:   logger,
	}
}

// Result holds the ranked recommendation ids for one run.
type Result struct {
	SolutionIDs []int64
	ProjectIDs  []int64
}

// Run brings the solution-to-project cross-matching up to date, then embeds
// and matches each given problem against solutions, marks it processed, and
// aggregates the two ranked result lists.
//
// Cold start: when the solution-project edge table is empty, every embedded
// solution is matched against projects, not just newly embedded ones. In
// steady state only the solutions embedded by this run are matched.
//
// A problem whose context is empty is left unprocessed and yields no edges;
// re-running on an already-processed problem is a no-op apart from the
// aggregation at the end.
func (o *Orchestrator) Run(ctx context.Context, problemIDs []int64) (*Result, error) {
	newSolutions, err := o.embedder.EmbedMissing(ctx, KindSolution)
	if err != nil {
		return nil, fmt.Errorf("embedding solutions: %w", err)
	}
	if _, err := o.embedder.EmbedMissing(ctx, KindProject); err != nil {
		return nil, fmt.Errorf("embedding projects: %w", err)
	}

	matchSolutions := newSolutions
	edgeCount, err := o.edges.Count(ctx, RelSolutionProject)
	if err != nil {
		return nil, fmt.Errorf("counting solution-project edges: %w", err)
	}
	if edgeCount == 0 {
		matchSolutions, err = o.vectors.EmbeddedIDs(ctx, KindSolution)
		if err != nil {
			return nil, fmt.Errorf("listing embedded solutions: %w", err)
		}
		o.logger.Info("cold start: matching all solutions to projects", "count", len(matchSolutions))
	}
	if err := o.matcher.Match(ctx, RelSolutionProject, matchSolutions, o.cfg.ProjectK); err != nil {
		return nil, fmt.Errorf("matching solutions to projects: %w", err)
	}

	for _, pid := range problemIDs {
		embedded, err := o.embedder.EmbedEntity(ctx, KindProblem, pid)
		if err != nil {
			if fatalEmbedErr(err) {
				return nil, fmt.Errorf("embedding problem %d: %w", pid, err)
			}
			o.logger.Warn("problem embedding failed, skipping", "id", pid, "error", err)
			continue
		}
		if !embedded {
			o.logger.Warn("problem has no context, leaving unprocessed", "id", pid)
			continue
		}

		if err := o.matcher.Match(ctx, RelProblemSolution, []int64{pid}, o.cfg.SolutionK); err != nil {
			o.logger.Warn("problem matching failed, skipping", "id", pid, "error", err)
			continue
		}

		// Zero matches is a valid terminal outcome; the flag flips regardless.
		if err := o.entities.MarkProblemProcessed(ctx, pid); err != nil {
			o.logger.Warn("marking problem processed failed", "id", pid, "error", err)
		}
	}

	solutionIDs, err := o.ranker.TopN(ctx, RelProblemSolution, problemIDs, o.cfg.SolutionK)
	if err != nil {
		return nil, fmt.Errorf("ranking solutions: %w", err)
	}
	projectIDs, err := o.ranker.TopN(ctx, RelSolutionProject, solutionIDs, o.cfg.SolutionK)
	if err != nil {
		return nil, fmt.Errorf("ranking projects: %w", err)
	}

	return &Result{SolutionIDs: solutionIDs, ProjectIDs: projectIDs}, nil
}

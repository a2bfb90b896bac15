package matching_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/gumanista/hate-2-action/internal/matching"
)

func newOrchestrator(s *memStore, provider *stubProvider, cfg matching.Config) *matching.Orchestrator {
	logger := testLogger()
	e := matching.NewEmbedder(s, s, provider, logger)
	m := matching.NewMatcher(s, s, logger)
	r := matching.NewRanker(s)
	return matching.NewOrchestrator(s, s, s, e, m, r, cfg, logger)
}

func TestRun_ColdStartThenIncremental(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	s.addEntity(matching.KindSolution, 1, "solution one")
	s.addEntity(matching.KindSolution, 2, "solution two")
	s.addEntity(matching.KindProject, 10, "project ten")
	s.addEntity(matching.KindProject, 11, "project eleven")

	provider := &stubProvider{vecs: map[string][]float32{
		"solution one":   {1, 0, 0},
		"solution two":   {0, 1, 0},
		"solution three": {0, 0.8, 0.6},
		"project ten":    {1, 0, 0},
		"project eleven": {0, 1, 0},
	}}
	o := newOrchestrator(s, provider, matching.Config{SolutionK: 5, ProjectK: 1})

	// Cold start: the empty edge table forces exhaustive matching of every
	// embedded solution, not only newly embedded ones.
	if _, err := o.Run(ctx, nil); err != nil {
		t.Fatalf("cold-start run: %v", err)
	}
	cold, _ := s.Count(ctx, matching.RelSolutionProject)
	if cold != 2 {
		t.Fatalf("cold start: expected 2 edges, got %d", cold)
	}
	before, _ := s.BySources(ctx, matching.RelSolutionProject, []int64{1, 2})

	// Steady state: one new solution adds only its own edges.
	s.addEntity(matching.KindSolution, 3, "solution three")
	if _, err := o.Run(ctx, nil); err != nil {
		t.Fatalf("incremental run: %v", err)
	}
	total, _ := s.Count(ctx, matching.RelSolutionProject)
	if total != cold+1 {
		t.Fatalf("incremental: expected %d edges, got %d", cold+1, total)
	}
	after, _ := s.BySources(ctx, matching.RelSolutionProject, []int64{1, 2})
	if !reflect.DeepEqual(edgeSet(before), edgeSet(after)) {
		t.Error("incremental run modified pre-existing edges")
	}
}

func edgeSet(edges []matching.Edge) map[matching.Edge]struct{} {
	set := make(map[matching.Edge]struct{}, len(edges))
	for _, e := range edges {
		set[e] = struct{}{}
	}
	return set
}

func TestRun_ProcessedFlagMonotonic(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	s.addEntity(matching.KindProblem, 7, "ctx")
	s.addEntity(matching.KindSolution, 1, "near")

	provider := &stubProvider{vecs: map[string][]float32{
		"ctx":  {1, 0, 0},
		"near": {1, 0, 0},
	}}
	o := newOrchestrator(s, provider, matching.DefaultConfig())

	if s.processed[7] {
		t.Fatal("problem must start unprocessed")
	}
	if _, err := o.Run(ctx, []int64{7}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !s.processed[7] {
		t.Fatal("problem must be processed after matching")
	}

	// Re-running on a processed problem is a safe no-op.
	edges, _ := s.Count(ctx, matching.RelProblemSolution)
	if _, err := o.Run(ctx, []int64{7}); err != nil {
		t.Fatalf("re-run: %v", err)
	}
	if again, _ := s.Count(ctx, matching.RelProblemSolution); again != edges {
		t.Errorf("re-run changed edge count from %d to %d", edges, again)
	}
	if !s.processed[7] {
		t.Error("processed flag must stay true")
	}
}

func TestRun_EmptyContextProblemStaysUnprocessed(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	s.addEntity(matching.KindProblem, 8, "")
	s.addEntity(matching.KindSolution, 1, "near")

	provider := &stubProvider{vecs: map[string][]float32{"near": {1, 0, 0}}}
	o := newOrchestrator(s, provider, matching.DefaultConfig())

	res, err := o.Run(ctx, []int64{8})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.processed[8] {
		t.Error("empty-context problem must stay unprocessed")
	}
	if len(res.SolutionIDs) != 0 || len(res.ProjectIDs) != 0 {
		t.Errorf("expected empty results, got %+v", res)
	}
}

func TestRun_ZeroMatchesStillProcessed(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	s.addEntity(matching.KindProblem, 9, "ctx")
	// No solutions exist at all.

	provider := &stubProvider{vecs: map[string][]float32{"ctx": {1, 0, 0}}}
	o := newOrchestrator(s, provider, matching.DefaultConfig())

	res, err := o.Run(ctx, []int64{9})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !s.processed[9] {
		t.Error("no match is a valid terminal outcome; the flag must still flip")
	}
	if len(res.SolutionIDs) != 0 {
		t.Errorf("expected no solutions, got %v", res.SolutionIDs)
	}
}

func TestRun_RankedScenario(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	s.addEntity(matching.KindProblem, 7, "message problem")
	s.addEntity(matching.KindSolution, 1, "weaker solution")
	s.addEntity(matching.KindSolution, 3, "strong solution")
	s.addEntity(matching.KindProject, 20, "project for strong")
	s.addEntity(matching.KindProject, 21, "project for weaker")

	provider := &stubProvider{vecs: map[string][]float32{
		"message problem":    {1, 0, 0},
		"strong solution":    {1, 0, 0},       // similarity 1.0 to the problem
		"weaker solution":    {0.8, 0.6, 0},   // similarity 0.8
		"project for strong": {1, 0, 0},
		"project for weaker": {0.8, 0.6, 0},
	}}
	o := newOrchestrator(s, provider, matching.Config{SolutionK: 5, ProjectK: 3})

	res, err := o.Run(ctx, []int64{7})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Solutions by descending similarity to the problem.
	if want := []int64{3, 1}; !reflect.DeepEqual(res.SolutionIDs, want) {
		t.Errorf("SolutionIDs = %v, want %v", res.SolutionIDs, want)
	}
	// Both projects have a perfect-match path through one of the solutions;
	// the tie breaks by id ascending.
	if want := []int64{20, 21}; !reflect.DeepEqual(res.ProjectIDs, want) {
		t.Errorf("ProjectIDs = %v, want %v", res.ProjectIDs, want)
	}
}

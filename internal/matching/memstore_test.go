package matching_test

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/gumanista/hate-2-action/internal/matching"
)

// memStore is an in-memory implementation of the matching store interfaces
// backing the tests: entities with text, one vector per (kind, id), and
// first-write-wins edges with cosine-distance KNN.
type memStore struct {
	texts     map[matching.Kind]map[int64]string
	processed map[int64]bool
	vectors   map[matching.Kind]map[int64][]float32
	edges     map[matching.Relation]map[[2]int64]float64
	queried   bool
}

func newMemStore() *memStore {
	return &memStore{
		texts:     make(map[matching.Kind]map[int64]string),
		processed: make(map[int64]bool),
		vectors:   make(map[matching.Kind]map[int64][]float32),
		edges:     make(map[matching.Relation]map[[2]int64]float64),
	}
}

func (s *memStore) addEntity(kind matching.Kind, id int64, text string) {
	if s.texts[kind] == nil {
		s.texts[kind] = make(map[int64]string)
	}
	s.texts[kind][id] = text
}

func (s *memStore) IDs(_ context.Context, kind matching.Kind) ([]int64, error) {
	return sortedKeys(s.texts[kind]), nil
}

func (s *memStore) Text(_ context.Context, kind matching.Kind, id int64) (string, bool, error) {
	text, ok := s.texts[kind][id]
	return text, ok, nil
}

func (s *memStore) MarkProblemProcessed(_ context.Context, id int64) error {
	s.processed[id] = true
	return nil
}

func (s *memStore) Upsert(_ context.Context, kind matching.Kind, id int64, vec []float32) error {
	if s.vectors[kind] == nil {
		s.vectors[kind] = make(map[int64][]float32)
	}
	s.vectors[kind][id] = vec
	return nil
}

func (s *memStore) Vector(_ context.Context, kind matching.Kind, id int64) ([]float32, bool, error) {
	vec, ok := s.vectors[kind][id]
	return vec, ok, nil
}

func (s *memStore) EmbeddedIDs(_ context.Context, kind matching.Kind) ([]int64, error) {
	return sortedKeys(s.vectors[kind]), nil
}

func (s *memStore) Nearest(_ context.Context, kind matching.Kind, vec []float32, k int) ([]matching.Neighbor, error) {
	var result []matching.Neighbor
	for id, v := range s.vectors[kind] {
		result = append(result, matching.Neighbor{ID: id, Distance: cosineDistance(vec, v)})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Distance != result[j].Distance {
			return result[i].Distance < result[j].Distance
		}
		return result[i].ID < result[j].ID
	})
	if len(result) > k {
		result = result[:k]
	}
	return result, nil
}

func (s *memStore) Insert(_ context.Context, rel matching.Relation, sourceID, targetID int64, similarity float64) error {
	if s.edges[rel] == nil {
		s.edges[rel] = make(map[[2]int64]float64)
	}
	key := [2]int64{sourceID, targetID}
	if _, ok := s.edges[rel][key]; ok {
		return nil // first write wins
	}
	s.edges[rel][key] = similarity
	return nil
}

func (s *memStore) Count(_ context.Context, rel matching.Relation) (int, error) {
	return len(s.edges[rel]), nil
}

func (s *memStore) BySources(_ context.Context, rel matching.Relation, sourceIDs []int64) ([]matching.Edge, error) {
	s.queried = true
	want := make(map[int64]struct{}, len(sourceIDs))
	for _, id := range sourceIDs {
		want[id] = struct{}{}
	}
	var result []matching.Edge
	for key, sim := range s.edges[rel] {
		if _, ok := want[key[0]]; ok {
			result = append(result, matching.Edge{SourceID: key[0], TargetID: key[1], Similarity: sim})
		}
	}
	return result, nil
}

func sortedKeys[V any](m map[int64]V) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func cosineDistance(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// stubProvider maps texts to fixed vectors. Unknown texts produce an error so
// tests notice missing setup.
type stubProvider struct {
	vecs  map[string][]float32
	fail  map[string]error
	err   error
	calls int
}

func (p *stubProvider) Embed(_ context.Context, text string) ([]float32, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	if err, ok := p.fail[text]; ok {
		return nil, err
	}
	vec, ok := p.vecs[text]
	if !ok {
		return nil, fmt.Errorf("no stub vector for %q", text)
	}
	return vec, nil
}

func (p *stubProvider) Name() string { return "stub" }

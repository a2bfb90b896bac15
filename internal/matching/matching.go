// Package matching implements the incremental embedding-and-matching
// pipeline: it keeps solutions, projects and problems embedded, builds scored
// nearest-neighbor edges between them, and aggregates those edges into ranked
// recommendations.
//
// The package only sees the persistence layer through the EntitySource,
// VectorStore and EdgeStore interfaces, so it works the same against the
// pgvector-backed store and the in-memory fakes used in tests.
package matching

import "context"

// Kind identifies one of the three embeddable record categories.
type Kind string

const (
	KindProblem  Kind = "problem"
	KindSolution Kind = "solution"
	KindProject  Kind = "project"
)

// Relation names a directed matching hop between two kinds. The store maps
// each relation to its edge table.
type Relation struct {
	Source Kind
	Target Kind
}

var (
	// RelSolutionProject links solutions to the projects they resemble.
	RelSolutionProject = Relation{Source: KindSolution, Target: KindProject}
	// RelProblemSolution links problems to candidate solutions.
	RelProblemSolution = Relation{Source: KindProblem, Target: KindSolution}
)

// Neighbor is a single KNN query result.
type Neighbor struct {
	ID       int64
	Distance float64
}

// Edge is a scored link between a source and a target entity.
type Edge struct {
	SourceID   int64
	TargetID   int64
	Similarity float64
}

// EntitySource reads entity ids and embeddable text from the entity tables.
type EntitySource interface {
	// IDs returns all entity ids of the given kind.
	IDs(ctx context.Context, kind Kind) ([]int64, error)

	// Text returns the embeddable text for one entity: context for problems
	// and solutions, description for projects. Returns ok=false when the
	// entity does not exist.
	Text(ctx context.Context, kind Kind, id int64) (text string, ok bool, err error)

	// MarkProblemProcessed flips a problem's processed flag to true.
	// Safe to call on an already-processed problem.
	MarkProblemProcessed(ctx context.Context, id int64) error
}

// VectorStore persists one vector per (kind, id) and answers KNN queries.
type VectorStore interface {
	Upsert(ctx context.Context, kind Kind, id int64, vec []float32) error

	// Vector fetches a stored vector; ok=false when none exists.
	Vector(ctx context.Context, kind Kind, id int64) (vec []float32, ok bool, err error)

	// EmbeddedIDs returns the ids of the given kind that have a vector.
	EmbeddedIDs(ctx context.Context, kind Kind) ([]int64, error)

	// Nearest returns up to k entities of the given kind ordered by
	// ascending distance from the query vector.
	Nearest(ctx context.Context, kind Kind, vec []float32, k int) ([]Neighbor, error)
}

// EdgeStore persists scored match edges. Insert is idempotent: a pre-existing
// (source, target) pair is left untouched even if the new score differs.
type EdgeStore interface {
	Insert(ctx context.Context, rel Relation, sourceID, targetID int64, similarity float64) error

	// Count returns the total number of edges for the relation.
	Count(ctx context.Context, rel Relation) (int, error)

	// BySources returns all edges whose source id is in the given set.
	BySources(ctx context.Context, rel Relation, sourceIDs []int64) ([]Edge, error)
}

// Config bounds the KNN queries. Passed into the orchestrator at
// construction so tests can use different limits.
type Config struct {
	// SolutionK is the number of solution neighbors fetched per problem.
	// Also caps both aggregated result lists.
	SolutionK int

	// ProjectK is the number of project neighbors fetched per solution.
	ProjectK int
}

// DefaultConfig returns the limits used by the reference deployment.
func DefaultConfig() Config {
	return Config{SolutionK: 5, ProjectK: 3}
}

package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gumanista/hate-2-action/internal/embeddings"
)

// Embedder finds entities lacking a stored vector and embeds them.
type Embedder struct {
	entities EntitySource
	vectors  VectorStore
	provider embeddings.Provider
	logger   *slog.Logger
}

// NewEmbedder creates an Embedder.
func NewEmbedder(entities EntitySource, vectors VectorStore, provider embeddings.Provider, logger *slog.Logger) *Embedder {
	return &Embedder{
		entities: entities,
		vectors:  vectors,
		provider: provider,
		logger:   logger,
	}
}

// EmbedMissing embeds every entity of the given kind that has no stored
// vector yet and returns the ids actually embedded. Entities with empty text
// are silently skipped and stay un-embedded until text is supplied. A failure
// on one entity is logged and does not abort the batch; a provider outage or
// configuration error aborts and is returned.
func (e *Embedder) EmbedMissing(ctx context.Context, kind Kind) ([]int64, error) {
	all, err := e.entities.IDs(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("listing %s ids: %w", kind, err)
	}
	embedded, err := e.vectors.EmbeddedIDs(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("listing embedded %s ids: %w", kind, err)
	}

	have := make(map[int64]struct{}, len(embedded))
	for _, id := range embedded {
		have[id] = struct{}{}
	}

	var done []int64
	for _, id := range all {
		if _, ok := have[id]; ok {
			continue
		}
		ok, err := e.embedOne(ctx, kind, id)
		if err != nil {
			if fatalEmbedErr(err) {
				return done, err
			}
			e.logger.Warn("embed skip entity", "kind", kind, "id", id, "error", err)
			continue
		}
		if ok {
			done = append(done, id)
		}
	}

	if len(done) > 0 {
		e.logger.Info("embedded entities", "kind", kind, "count", len(done))
	}
	return done, nil
}

// EmbedEntity embeds a single entity unless it already has a vector.
// Returns false when the entity is missing or its text is empty; in the
// latter case no embedding is ever created for it.
func (e *Embedder) EmbedEntity(ctx context.Context, kind Kind, id int64) (bool, error) {
	if _, ok, err := e.vectors.Vector(ctx, kind, id); err != nil {
		return false, fmt.Errorf("checking %s %d embedding: %w", kind, id, err)
	} else if ok {
		return true, nil
	}
	return e.embedOne(ctx, kind, id)
}

func (e *Embedder) embedOne(ctx context.Context, kind Kind, id int64) (bool, error) {
	text, ok, err := e.entities.Text(ctx, kind, id)
	if err != nil {
		return false, fmt.Errorf("fetching %s %d text: %w", kind, id, err)
	}
	if !ok {
		e.logger.Warn("embed skip missing entity", "kind", kind, "id", id)
		return false, nil
	}
	if text == "" {
		return false, nil
	}

	vec, err := e.provider.Embed(ctx, text)
	if err != nil {
		return false, fmt.Errorf("embedding %s %d: %w", kind, id, err)
	}
	if err := e.vectors.Upsert(ctx, kind, id, vec); err != nil {
		return false, fmt.Errorf("storing %s %d embedding: %w", kind, id, err)
	}
	return true, nil
}

// fatalEmbedErr reports whether an embedding failure should abort the whole
// batch rather than skip the one entity.
func fatalEmbedErr(err error) bool {
	return errors.Is(err, embeddings.ErrUnavailable) || errors.Is(err, embeddings.ErrMissingAPIKey)
}

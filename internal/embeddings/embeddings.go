// Package embeddings provides a swappable interface for text embedding generation.
package embeddings

import (
	"context"
	"errors"
)

// Dimensions is the embedding vector size. OpenAI text-embedding-3-small
// produces 1536-dimension vectors by default; the vector columns in the
// database are declared with the same size.
const Dimensions = 1536

// ErrMissingAPIKey indicates the provider was constructed without credentials.
// This is a configuration error and is never retried.
var ErrMissingAPIKey = errors.New("embeddings: missing API key")

// ErrUnavailable indicates the embedding service could not be reached.
// Callers treat this as fatal for the whole batch, unlike a per-item failure.
var ErrUnavailable = errors.New("embeddings: provider unavailable")

// Provider generates text embeddings.
type Provider interface {
	// Embed generates an embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Name returns the provider name for logging.
	Name() string
}

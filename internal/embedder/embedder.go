// Package embedder provides interfaces and implementations for text embedding.
package embedder

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when the embedding backend cannot be loaded or
// reached after the retry policy is exhausted.
var ErrUnavailable = errors.New("embedding backend unavailable")

// Embedder defines the interface for text embedding backends.
type Embedder interface {
	// Embed generates an embedding vector for a single text input.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embedding vectors for multiple text inputs.
	// Returns a slice of embeddings in the same order as the input texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the dimensionality of the embedding vectors.
	Dimension() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string
}

// KnownDimensions maps embedding model names to their vector dimensions.
// All embeddings compared against one another must come from the same model;
// mixing dimensions is rejected at rank time.
var KnownDimensions = map[string]int{
	"all-minilm":             384,
	"nomic-embed-text":       768,
	"mxbai-embed-large":      1024,
	"snowflake-arctic-embed": 1024,
}

// DimensionFor returns the dimension for a model, or fallback if unknown.
func DimensionFor(modelName string, fallback int) int {
	if d, ok := KnownDimensions[modelName]; ok {
		return d
	}
	return fallback
}

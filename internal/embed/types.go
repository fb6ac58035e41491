// Package embed provides the query embedding clients for the vector search
// branch: a document-tuned provider and a code-tuned provider.
package embed

import (
	"context"
	"time"
)

// Default embedding constants.
const (
	// DefaultDimensions is the embedding dimension both providers are
	// configured for.
	DefaultDimensions = 1024

	// DefaultTimeout is the default timeout for embedding requests.
	DefaultTimeout = 30 * time.Second

	// DefaultCacheSize is the default number of query embeddings to cache.
	DefaultCacheSize = 1000
)

// Embedder generates a vector embedding for text.
type Embedder interface {
	// Embed generates the embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding dimension.
	Dimensions() int

	// ModelName returns the model identifier.
	ModelName() string

	// Available checks if the provider is reachable.
	Available(ctx context.Context) bool

	// Close releases resources.
	Close() error
}

// Package embed generates vector embeddings for document chunks and queries.
//
// The primary implementation talks to Ollama's /api/embed endpoint. Decorators
// add LRU caching of repeated inputs and lazy construction so read-only
// commands never touch the embedding service.
package embed

import (
	"context"
	"math"
	"time"
)

const (
	// DefaultBatchSize is the number of texts sent per embedding request.
	DefaultBatchSize = 32

	// MaxBatchSize caps request size to prevent memory exhaustion.
	MaxBatchSize = 256

	// DefaultWarmTimeout is the per-request timeout once the model is loaded.
	DefaultWarmTimeout = 60 * time.Second

	// DefaultColdTimeout is the first-request timeout, when Ollama may still
	// need to load the model into memory.
	DefaultColdTimeout = 180 * time.Second

	// ModelUnloadThreshold is how long Ollama keeps a model warm. After this
	// much inactivity the next request gets the cold timeout again.
	ModelUnloadThreshold = 5 * time.Minute

	// DefaultMaxRetries is the number of attempts per embedding request.
	DefaultMaxRetries = 3
)

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates the embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one call.
	// The result has one vector per input, in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding dimension.
	Dimensions() int

	// ModelName returns the model identifier.
	ModelName() string

	// Available checks if the embedder is ready.
	Available(ctx context.Context) bool

	// Close releases resources.
	Close() error
}

// normalizeVector normalizes a vector to unit length.
func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}

	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return v
	}

	normalized := make([]float32, len(v))
	for i, val := range v {
		normalized[i] = float32(float64(val) / magnitude)
	}
	return normalized
}

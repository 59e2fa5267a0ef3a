package embed

import (
	"context"
	"fmt"
	"sync"
)

// Factory constructs an embedder on demand.
type Factory func(ctx context.Context) (Embedder, error)

// LazyEmbedder defers construction of the real embedder until the first
// embedding call. Commands that never embed (list, stats, remove) pay nothing
// for an unreachable Ollama, and construction errors surface at first use
// instead of at startup.
//
// Dimensions and ModelName force construction: the answer is unknown until
// the service reports it.
type LazyEmbedder struct {
	mu      sync.Mutex
	factory Factory
	inner   Embedder
	initErr error
}

// Verify interface implementation at compile time
var _ Embedder = (*LazyEmbedder)(nil)

// NewLazyEmbedder creates an embedder backed by factory.
func NewLazyEmbedder(factory Factory) *LazyEmbedder {
	return &LazyEmbedder{factory: factory}
}

// get constructs the inner embedder once. A failed construction is sticky:
// further calls return the same error without retrying.
func (l *LazyEmbedder) get(ctx context.Context) (Embedder, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.inner != nil {
		return l.inner, nil
	}
	if l.initErr != nil {
		return nil, l.initErr
	}

	inner, err := l.factory(ctx)
	if err != nil {
		l.initErr = err
		return nil, err
	}
	l.inner = inner
	return inner, nil
}

// Embed constructs the inner embedder if needed and delegates.
func (l *LazyEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	inner, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return inner.Embed(ctx, text)
}

// EmbedBatch constructs the inner embedder if needed and delegates.
func (l *LazyEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	inner, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return inner.EmbedBatch(ctx, texts)
}

// Dimensions forces construction and returns the embedding dimension, or 0
// when construction fails.
func (l *LazyEmbedder) Dimensions() int {
	inner, err := l.get(context.Background())
	if err != nil {
		return 0
	}
	return inner.Dimensions()
}

// ModelName forces construction and returns the model identifier, or empty
// when construction fails.
func (l *LazyEmbedder) ModelName() string {
	inner, err := l.get(context.Background())
	if err != nil {
		return ""
	}
	return inner.ModelName()
}

// Available reports readiness without forcing construction when the inner
// embedder does not exist yet.
func (l *LazyEmbedder) Available(ctx context.Context) bool {
	l.mu.Lock()
	inner := l.inner
	l.mu.Unlock()

	if inner == nil {
		constructed, err := l.get(ctx)
		if err != nil {
			return false
		}
		inner = constructed
	}
	return inner.Available(ctx)
}

// Close closes the inner embedder if it was ever constructed.
func (l *LazyEmbedder) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.inner == nil {
		return nil
	}
	err := l.inner.Close()
	l.inner = nil
	if err != nil {
		return fmt.Errorf("failed to close embedder: %w", err)
	}
	return nil
}

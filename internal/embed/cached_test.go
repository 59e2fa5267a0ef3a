package embed

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEmbedder is a deterministic in-memory embedder for decorator tests.
type countingEmbedder struct {
	dims       int
	model      string
	embedCalls atomic.Int32
	batchCalls atomic.Int32
	failWith   error
	closed     bool
}

func newCountingEmbedder(dims int) *countingEmbedder {
	return &countingEmbedder{dims: dims, model: "test-model"}
}

func (f *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.embedCalls.Add(1)
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.vectorFor(text), nil
}

func (f *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.batchCalls.Add(1)
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = f.vectorFor(t)
	}
	return out, nil
}

func (f *countingEmbedder) vectorFor(text string) []float32 {
	v := make([]float32, f.dims)
	for i, r := range text {
		v[i%f.dims] += float32(r)
	}
	return normalizeVector(v)
}

func (f *countingEmbedder) Dimensions() int                    { return f.dims }
func (f *countingEmbedder) ModelName() string                  { return f.model }
func (f *countingEmbedder) Available(ctx context.Context) bool { return !f.closed }
func (f *countingEmbedder) Close() error                       { f.closed = true; return nil }

func TestCachedEmbedHitsCache(t *testing.T) {
	inner := newCountingEmbedder(4)
	c := NewCachedEmbedder(inner, 10)

	first, err := c.Embed(context.Background(), "query")
	require.NoError(t, err)

	second, err := c.Embed(context.Background(), "query")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), inner.embedCalls.Load())
}

func TestCachedEmbedBatchPartialHits(t *testing.T) {
	inner := newCountingEmbedder(4)
	c := NewCachedEmbedder(inner, 10)

	_, err := c.Embed(context.Background(), "alpha")
	require.NoError(t, err)

	vecs, err := c.EmbedBatch(context.Background(), []string{"alpha", "beta", "gamma"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)

	// alpha was cached, so the batch only embeds beta and gamma.
	assert.Equal(t, int32(1), inner.batchCalls.Load())

	// Second identical batch is fully cached.
	_, err = c.EmbedBatch(context.Background(), []string{"alpha", "beta", "gamma"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), inner.batchCalls.Load())
}

func TestCachedEmbedErrorNotCached(t *testing.T) {
	inner := newCountingEmbedder(4)
	inner.failWith = errors.New("boom")
	c := NewCachedEmbedder(inner, 10)

	_, err := c.Embed(context.Background(), "query")
	require.Error(t, err)

	inner.failWith = nil
	vec, err := c.Embed(context.Background(), "query")
	require.NoError(t, err)
	assert.Len(t, vec, 4)
}

func TestCachedPassthrough(t *testing.T) {
	inner := newCountingEmbedder(4)
	c := NewCachedEmbedder(inner, 10)

	assert.Equal(t, 4, c.Dimensions())
	assert.Equal(t, "test-model", c.ModelName())
	assert.True(t, c.Available(context.Background()))
	assert.Same(t, inner, c.Inner())

	require.NoError(t, c.Close())
	assert.True(t, inner.closed)
}

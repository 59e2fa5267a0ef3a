package embed

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLazyEmbedderDefersConstruction(t *testing.T) {
	var constructed atomic.Int32
	l := NewLazyEmbedder(func(ctx context.Context) (Embedder, error) {
		constructed.Add(1)
		return newCountingEmbedder(4), nil
	})

	assert.Equal(t, int32(0), constructed.Load())

	vec, err := l.Embed(context.Background(), "first use")
	require.NoError(t, err)
	assert.Len(t, vec, 4)
	assert.Equal(t, int32(1), constructed.Load())

	_, err = l.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), constructed.Load())
}

func TestLazyEmbedderStickyFailure(t *testing.T) {
	var attempts atomic.Int32
	l := NewLazyEmbedder(func(ctx context.Context) (Embedder, error) {
		attempts.Add(1)
		return nil, errors.New("service down")
	})

	_, err := l.Embed(context.Background(), "text")
	require.Error(t, err)

	_, err = l.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestLazyEmbedderDimensionsForcesConstruction(t *testing.T) {
	l := NewLazyEmbedder(func(ctx context.Context) (Embedder, error) {
		return newCountingEmbedder(8), nil
	})

	assert.Equal(t, 8, l.Dimensions())
	assert.Equal(t, "test-model", l.ModelName())
}

func TestLazyEmbedderCloseWithoutConstruction(t *testing.T) {
	l := NewLazyEmbedder(func(ctx context.Context) (Embedder, error) {
		t.Fatal("factory must not run for Close")
		return nil, nil
	})

	assert.NoError(t, l.Close())
}

func TestLazyEmbedderCloseAfterUse(t *testing.T) {
	inner := newCountingEmbedder(4)
	l := NewLazyEmbedder(func(ctx context.Context) (Embedder, error) {
		return inner, nil
	})

	_, err := l.Embed(context.Background(), "text")
	require.NoError(t, err)

	require.NoError(t, l.Close())
	assert.True(t, inner.closed)
}

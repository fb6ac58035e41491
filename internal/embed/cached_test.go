package embed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEmbedder records how often Embed is invoked.
type countingEmbedder struct {
	vec   []float32
	err   error
	model string
	calls int
}

func (c *countingEmbedder) Embed(context.Context, string) ([]float32, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.vec, nil
}

func (c *countingEmbedder) Dimensions() int                { return len(c.vec) }
func (c *countingEmbedder) ModelName() string              { return c.model }
func (c *countingEmbedder) Available(context.Context) bool { return true }
func (c *countingEmbedder) Close() error                   { return nil }

func TestCachedEmbedder_CacheHit(t *testing.T) {
	// Given
	inner := &countingEmbedder{vec: []float32{0.1, 0.2}, model: "m"}
	cached := NewCachedEmbedder(inner, 10)

	// When: the same text twice
	first, err := cached.Embed(context.Background(), "handler queue")
	require.NoError(t, err)
	second, err := cached.Embed(context.Background(), "handler queue")
	require.NoError(t, err)

	// Then: one upstream call, identical vectors
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, first, second)
}

func TestCachedEmbedder_DistinctTextsMiss(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{0.1}, model: "m"}
	cached := NewCachedEmbedder(inner, 10)

	_, _ = cached.Embed(context.Background(), "one")
	_, _ = cached.Embed(context.Background(), "two")

	assert.Equal(t, 2, inner.calls)
}

func TestCachedEmbedder_ErrorsNotCached(t *testing.T) {
	// Given: an inner embedder that fails on the first call
	inner := &countingEmbedder{err: errors.New("down"), model: "m"}
	cached := NewCachedEmbedder(inner, 10)

	_, err := cached.Embed(context.Background(), "text")
	require.Error(t, err)

	// When: the embedder recovers
	inner.err = nil
	inner.vec = []float32{0.5}
	vec, err := cached.Embed(context.Background(), "text")

	// Then: the failure was not cached
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5}, vec)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedEmbedder_Delegation(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{0.1, 0.2, 0.3}, model: "jina-embeddings-v4"}
	cached := NewCachedEmbedder(inner, 0) // non-positive size falls back to default

	assert.Equal(t, 3, cached.Dimensions())
	assert.Equal(t, "jina-embeddings-v4", cached.ModelName())
	assert.True(t, cached.Available(context.Background()))
	assert.NoError(t, cached.Close())
}

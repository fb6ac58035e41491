package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nberrors "github.com/tislab/nabsearch/internal/errors"
)

// fakeSearcher is a canned retrieval branch.
type fakeSearcher struct {
	results []SearchResult
	err     error
	delay   time.Duration

	calls    int
	lastTopK int
}

var _ Searcher = (*fakeSearcher)(nil)

func (f *fakeSearcher) Search(ctx context.Context, _ string, _ SearchFilters, topK int) ([]SearchResult, error) {
	f.calls++
	f.lastTopK = topK
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func TestHybridSearch_FusesBothBranches(t *testing.T) {
	// Given: overlapping branch results
	keyword := &fakeSearcher{results: makeResults("D1", "D2")}
	vector := &fakeSearcher{results: makeResults("D2", "D3")}
	h := NewHybridSearcher(keyword, vector, DefaultHybridConfig(), nil)

	// When
	results, err := h.Search(context.Background(), "handler queue", NoFilters, 10, ModeHybrid)

	// Then: RRF order with D2 first
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "D2", results[0].ID)
	// Branches queried at the candidate width, not the caller's topK
	assert.Equal(t, DefaultCandidateK, keyword.lastTopK)
	assert.Equal(t, DefaultCandidateK, vector.lastTopK)
}

func TestHybridSearch_KeywordFailureDegradesToVector(t *testing.T) {
	// Given: keyword branch errors, vector branch succeeds
	keyword := &fakeSearcher{err: errors.New("db down")}
	vector := &fakeSearcher{results: []SearchResult{
		{ID: "V1", Score: 0.95},
		{ID: "V2", Score: 0.85},
	}}
	h := NewHybridSearcher(keyword, vector, DefaultHybridConfig(), nil)

	// When
	results, err := h.Search(context.Background(), "handler", NoFilters, 10, ModeHybrid)

	// Then: vector list passes through with native scores, no fusion math
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "V1", results[0].ID)
	assert.InDelta(t, 0.95, results[0].Score, 1e-9)
	assert.InDelta(t, 0.85, results[1].Score, 1e-9)
}

func TestHybridSearch_VectorFailureDegradesToKeyword(t *testing.T) {
	keyword := &fakeSearcher{results: []SearchResult{{ID: "K1", Score: 0.6}}}
	vector := &fakeSearcher{err: errors.New("embedding api down")}
	h := NewHybridSearcher(keyword, vector, DefaultHybridConfig(), nil)

	results, err := h.Search(context.Background(), "handler", NoFilters, 10, ModeHybrid)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "K1", results[0].ID)
	assert.InDelta(t, 0.6, results[0].Score, 1e-9)
}

func TestHybridSearch_BothBranchesEmpty(t *testing.T) {
	h := NewHybridSearcher(&fakeSearcher{}, &fakeSearcher{}, DefaultHybridConfig(), nil)

	results, err := h.Search(context.Background(), "handler", NoFilters, 10, ModeHybrid)

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestHybridSearch_SingleBranchTruncatedToTopK(t *testing.T) {
	// Given: only the keyword branch produces results
	keyword := &fakeSearcher{results: makeResults("A", "B", "C")}
	h := NewHybridSearcher(keyword, &fakeSearcher{}, DefaultHybridConfig(), nil)

	// When: topK below the branch's result count
	results, err := h.Search(context.Background(), "handler", NoFilters, 2, ModeHybrid)

	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestHybridSearch_VectorTimeoutDegrades(t *testing.T) {
	// Given: a vector branch slower than its timeout
	keyword := &fakeSearcher{results: []SearchResult{{ID: "K1", Score: 0.5}}}
	vector := &fakeSearcher{
		results: makeResults("V1"),
		delay:   200 * time.Millisecond,
	}
	cfg := DefaultHybridConfig()
	cfg.VectorTimeout = 20 * time.Millisecond
	h := NewHybridSearcher(keyword, vector, cfg, nil)

	// When
	results, err := h.Search(context.Background(), "handler", NoFilters, 10, ModeHybrid)

	// Then: only the keyword branch contributes
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "K1", results[0].ID)
}

func TestHybridSearch_ModeDelegation(t *testing.T) {
	keyword := &fakeSearcher{results: makeResults("K")}
	vector := &fakeSearcher{results: makeResults("V")}
	h := NewHybridSearcher(keyword, vector, DefaultHybridConfig(), nil)

	// KEYWORD mode only touches the keyword branch, with the caller's topK
	results, err := h.Search(context.Background(), "q", NoFilters, 7, ModeKeyword)
	require.NoError(t, err)
	assert.Equal(t, "K", results[0].ID)
	assert.Equal(t, 7, keyword.lastTopK)
	assert.Zero(t, vector.calls)

	// VECTOR mode only touches the vector branch
	results, err = h.Search(context.Background(), "q", NoFilters, 3, ModeVector)
	require.NoError(t, err)
	assert.Equal(t, "V", results[0].ID)
	assert.Equal(t, 3, vector.lastTopK)
	assert.Equal(t, 1, keyword.calls)
}

func TestHybridSearch_InvalidInput(t *testing.T) {
	h := NewHybridSearcher(&fakeSearcher{}, &fakeSearcher{}, DefaultHybridConfig(), nil)

	_, err := h.Search(context.Background(), "  ", NoFilters, 10, ModeHybrid)
	assert.True(t, nberrors.IsValidation(err))

	_, err = h.Search(context.Background(), "q", NoFilters, -1, ModeHybrid)
	assert.True(t, nberrors.IsValidation(err))
}

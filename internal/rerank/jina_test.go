package rerank

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tislab/nabsearch/internal/config"
	"github.com/tislab/nabsearch/internal/search"
)

func testConfig(baseURL string) config.RerankConfig {
	return config.RerankConfig{
		APIKey:  "test-key",
		Model:   "jina-reranker-v2-base-multilingual",
		BaseURL: baseURL,
		Timeout: 2 * time.Second,
		TopN:    10,
	}
}

func candidatesABC() []search.SearchResult {
	return []search.SearchResult{
		{ID: "A", Content: "alpha", Score: 0.9},
		{ID: "B", Content: "beta", Score: 0.8},
		{ID: "C", Content: "gamma", Score: 0.7},
	}
}

func rerankServer(t *testing.T, results []map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rerankRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"results": results})
	}))
}

func TestRerank_ReordersByRelevance(t *testing.T) {
	// Given: the API scores C highest and A second, B unscored
	srv := rerankServer(t, []map[string]any{
		{"index": 2, "relevance_score": 0.9},
		{"index": 0, "relevance_score": 0.5},
	})
	defer srv.Close()
	r := NewJinaReranker(testConfig(srv.URL), nil)

	// When: topN larger than the response
	results := r.Rerank(context.Background(), "q", candidatesABC(), 5)

	// Then: exactly [C, A] with relevance scores; B is dropped, no backfill
	require.Len(t, results, 2)
	assert.Equal(t, "C", results[0].ID)
	assert.InDelta(t, 0.9, results[0].Score, 1e-9)
	assert.Equal(t, "A", results[1].ID)
	assert.InDelta(t, 0.5, results[1].Score, 1e-9)
}

func TestRerank_APIErrorFallsBackToOriginalOrder(t *testing.T) {
	// Given: the endpoint always fails
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()
	r := NewJinaReranker(testConfig(srv.URL), nil)

	// When: topN=2
	results := r.Rerank(context.Background(), "q", candidatesABC(), 2)

	// Then: first two candidates, original order, original scores
	require.Len(t, results, 2)
	assert.Equal(t, "A", results[0].ID)
	assert.InDelta(t, 0.9, results[0].Score, 1e-9)
	assert.Equal(t, "B", results[1].ID)
	assert.InDelta(t, 0.8, results[1].Score, 1e-9)
}

func TestRerank_EmptyResultsArrayFallsBack(t *testing.T) {
	// Given: a 200 response whose results array is empty
	srv := rerankServer(t, []map[string]any{})
	defer srv.Close()
	r := NewJinaReranker(testConfig(srv.URL), nil)

	// When: topN=2
	results := r.Rerank(context.Background(), "q", candidatesABC(), 2)

	// Then: first two candidates, original order, original scores
	require.Len(t, results, 2)
	assert.Equal(t, "A", results[0].ID)
	assert.InDelta(t, 0.9, results[0].Score, 1e-9)
	assert.Equal(t, "B", results[1].ID)
	assert.InDelta(t, 0.8, results[1].Score, 1e-9)
}

func TestRerank_UnreachableEndpointFallsBack(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.Timeout = 200 * time.Millisecond
	r := NewJinaReranker(cfg, nil)

	results := r.Rerank(context.Background(), "q", candidatesABC(), 3)

	require.Len(t, results, 3)
	assert.Equal(t, "A", results[0].ID)
}

func TestRerank_EmptyCandidatesSkipsCall(t *testing.T) {
	// Given: a server that fails the test if called
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("rerank API must not be called with no candidates")
	}))
	defer srv.Close()
	r := NewJinaReranker(testConfig(srv.URL), nil)

	results := r.Rerank(context.Background(), "q", nil, 5)

	assert.Empty(t, results)
}

func TestRerank_NonPositiveTopNUsesConfigDefault(t *testing.T) {
	// Given: a config default of 2
	srv := rerankServer(t, []map[string]any{
		{"index": 0, "relevance_score": 0.9},
		{"index": 1, "relevance_score": 0.8},
		{"index": 2, "relevance_score": 0.7},
	})
	defer srv.Close()
	cfg := testConfig(srv.URL)
	cfg.TopN = 2
	r := NewJinaReranker(cfg, nil)

	// When
	results := r.Rerank(context.Background(), "q", candidatesABC(), 0)

	// Then: truncated to the configured default
	assert.Len(t, results, 2)
}

func TestRerank_OutOfRangeIndexesDropped(t *testing.T) {
	// Given: indexes outside the candidate list
	srv := rerankServer(t, []map[string]any{
		{"index": 7, "relevance_score": 0.95},
		{"index": -1, "relevance_score": 0.9},
		{"index": 1, "relevance_score": 0.6},
	})
	defer srv.Close()
	r := NewJinaReranker(testConfig(srv.URL), nil)

	// When
	results := r.Rerank(context.Background(), "q", candidatesABC(), 5)

	// Then: only the valid index survives
	require.Len(t, results, 1)
	assert.Equal(t, "B", results[0].ID)
}

func TestNoOpReranker(t *testing.T) {
	r := &NoOpReranker{DefaultTopN: 2}

	// Explicit topN truncates
	results := r.Rerank(context.Background(), "q", candidatesABC(), 1)
	require.Len(t, results, 1)
	assert.Equal(t, "A", results[0].ID)

	// Non-positive topN uses the default
	results = r.Rerank(context.Background(), "q", candidatesABC(), 0)
	assert.Len(t, results, 2)

	assert.True(t, r.Available(context.Background()))
}

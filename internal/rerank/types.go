// Package rerank refines a candidate list with a cross-encoder relevance
// model. Reranking is an optional quality stage: every implementation
// degrades to returning the candidates unchanged instead of failing, so a
// rerank outage never breaks search.
package rerank

import (
	"context"

	"github.com/tislab/nabsearch/internal/search"
)

// Reranker reorders candidates by cross-encoder relevance to the query.
type Reranker interface {
	// Rerank returns up to topN candidates ordered by descending relevance.
	// It never fails: on any error the first topN candidates are returned
	// in their original order with their original scores. topN <= 0 selects
	// the implementation's configured default.
	Rerank(ctx context.Context, query string, candidates []search.SearchResult, topN int) []search.SearchResult

	// Available reports whether the backing model is reachable.
	Available(ctx context.Context) bool
}

// NoOpReranker passes candidates through untouched, truncated to topN.
// Used when no rerank endpoint is configured.
type NoOpReranker struct {
	// DefaultTopN is used when callers pass topN <= 0. Zero means no limit.
	DefaultTopN int
}

var _ Reranker = (*NoOpReranker)(nil)

// Rerank returns the first topN candidates unchanged.
func (n *NoOpReranker) Rerank(_ context.Context, _ string, candidates []search.SearchResult, topN int) []search.SearchResult {
	if topN <= 0 {
		topN = n.DefaultTopN
	}
	return headOf(candidates, topN)
}

// Available always reports true; there is nothing to reach.
func (n *NoOpReranker) Available(context.Context) bool {
	return true
}

// headOf returns the first n results, or all of them when n <= 0 or
// exceeds the list.
func headOf(results []search.SearchResult, n int) []search.SearchResult {
	if len(results) == 0 {
		return nil
	}
	if n <= 0 || n >= len(results) {
		return results
	}
	return results[:n]
}

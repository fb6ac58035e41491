package search

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tislab/nabsearch/internal/embed"
	nberrors "github.com/tislab/nabsearch/internal/errors"
	"github.com/tislab/nabsearch/internal/store"
)

// VectorSearcher is the semantic retrieval branch. The query is embedded
// twice — once with the document-tuned model and once with the code-tuned
// model — and each collection is searched with its matching embedding by
// cosine nearest-neighbor. Score is 1 - cosine_distance.
type VectorSearcher struct {
	store        store.ChunkStore
	docEmbedder  embed.Embedder
	codeEmbedder embed.Embedder
	log          *slog.Logger
}

var _ Searcher = (*VectorSearcher)(nil)

// NewVectorSearcher creates the semantic branch.
func NewVectorSearcher(cs store.ChunkStore, doc, code embed.Embedder, log *slog.Logger) *VectorSearcher {
	if log == nil {
		log = slog.Default()
	}
	return &VectorSearcher{
		store:        cs,
		docEmbedder:  doc,
		codeEmbedder: code,
		log:          log,
	}
}

// Search embeds the query per collection, queries both collections, merges
// and returns the topK highest-scoring results. Embedding failures
// propagate as errors; in hybrid mode the orchestrator degrades them to an
// empty branch contribution.
func (s *VectorSearcher) Search(ctx context.Context, query string, filters SearchFilters, topK int) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nberrors.BlankQuery()
	}
	if topK < 1 {
		return nil, nberrors.InvalidTopK(topK)
	}

	docVec, err := s.docEmbedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	codeVec, err := s.codeEmbedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	storeFilters := toStoreFilters(filters)
	embeddings := map[store.Collection][]float32{
		store.Documents: docVec,
		store.Code:      codeVec,
	}

	var merged []SearchResult
	for _, col := range store.Collections {
		rows, err := s.store.VectorSearch(ctx, col, embeddings[col], storeFilters, topK)
		if err != nil {
			return nil, err
		}
		merged = append(merged, rowsToResults(rows)...)
	}

	sortByScoreDesc(merged)
	return truncate(merged, topK), nil
}

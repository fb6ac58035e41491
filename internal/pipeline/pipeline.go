// Package pipeline wires the stages of one search request end to end:
// query analysis, hybrid retrieval, metadata post-filtering with facet
// aggregation, and cross-encoder reranking.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tislab/nabsearch/internal/config"
	nberrors "github.com/tislab/nabsearch/internal/errors"
	"github.com/tislab/nabsearch/internal/query"
	"github.com/tislab/nabsearch/internal/rerank"
	"github.com/tislab/nabsearch/internal/search"
)

// Request is one search invocation.
type Request struct {
	// Query is the user's query text. Must not be blank.
	Query string
	// Mode selects the retrieval algorithm; empty means HYBRID.
	Mode search.SearchMode
	// TopK is the requested result count. Zero selects the configured
	// default; values above the configured maximum are rejected.
	TopK int
	// Filters are applied after retrieval.
	Filters search.ExtendedSearchFilters
	// ApplySuggestedFilters fills blank base filter fields from the
	// analyzer's suggestions before filtering.
	ApplySuggestedFilters bool
	// SkipExpansion retrieves with the original query instead of the
	// synonym-expanded one.
	SkipExpansion bool
	// SkipRerank returns retrieval order without the rerank stage.
	SkipRerank bool
	// IncludeFacets computes facet counts over the filtered result set.
	IncludeFacets bool
}

// Response is the outcome of one search invocation.
type Response struct {
	// RequestID correlates the response with the request's log entries.
	RequestID string
	// Results are the final ranked results.
	Results []search.SearchResult
	// Analysis is the analyzer's view of the query.
	Analysis query.AnalyzedQuery
	// Facets maps facet key to value counts. Nil unless requested.
	Facets map[string]map[string]int
	// Took is the end-to-end processing duration.
	Took time.Duration
}

// Pipeline executes search requests. Safe for concurrent use.
type Pipeline struct {
	analyzer *query.Analyzer
	searcher *search.HybridSearcher
	filter   *search.MetadataFilter
	reranker rerank.Reranker
	cfg      config.SearchConfig
	log      *slog.Logger
}

// New assembles a pipeline from its stages.
func New(analyzer *query.Analyzer, searcher *search.HybridSearcher, reranker rerank.Reranker, cfg config.SearchConfig, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	if reranker == nil {
		reranker = &rerank.NoOpReranker{}
	}
	return &Pipeline{
		analyzer: analyzer,
		searcher: searcher,
		filter:   search.NewMetadataFilter(),
		reranker: reranker,
		cfg:      cfg,
		log:      log,
	}
}

// Search runs one request through every stage.
func (p *Pipeline) Search(ctx context.Context, req Request) (Response, error) {
	start := time.Now()
	requestID := uuid.NewString()
	log := p.log.With(slog.String("request_id", requestID))

	topK, err := p.resolveTopK(req.TopK)
	if err != nil {
		return Response{}, err
	}

	analysis, err := p.analyzer.Analyze(req.Query)
	if err != nil {
		return Response{}, err
	}
	log.Debug("query analyzed",
		slog.String("language", string(analysis.Language)),
		slog.Int("entities", len(analysis.Entities)),
		slog.Bool("expanded", analysis.ExpandedQuery != analysis.OriginalQuery))

	retrievalQuery := analysis.ExpandedQuery
	if req.SkipExpansion {
		retrievalQuery = analysis.OriginalQuery
	}

	filters := req.Filters
	if req.ApplySuggestedFilters {
		filters.Base = mergeSuggested(filters.Base, analysis.SuggestedFilters)
	}

	// Retrieve wider than topK when a rerank stage follows, so the
	// cross-encoder has candidates beyond the final page to promote.
	retrievalK := topK
	if !req.SkipRerank {
		retrievalK = p.cfg.CandidateK
		if retrievalK < topK {
			retrievalK = topK
		}
	}

	results, err := p.searcher.Search(ctx, retrievalQuery, filters.Base, retrievalK, req.Mode)
	if err != nil {
		return Response{}, err
	}
	log.Debug("retrieval complete", slog.Int("candidates", len(results)))

	results = p.filter.Filter(results, filters)

	var facets map[string]map[string]int
	if req.IncludeFacets {
		facets = p.filter.ComputeFacets(results)
	}

	if !req.SkipRerank {
		results = p.reranker.Rerank(ctx, analysis.OriginalQuery, results, topK)
	} else if len(results) > topK {
		results = results[:topK]
	}

	took := time.Since(start)
	log.Info("search complete",
		slog.Int("results", len(results)),
		slog.String("mode", string(req.Mode)),
		slog.Duration("took", took))

	return Response{
		RequestID: requestID,
		Results:   results,
		Analysis:  analysis,
		Facets:    facets,
		Took:      took,
	}, nil
}

// resolveTopK applies the default and maximum from configuration.
func (p *Pipeline) resolveTopK(topK int) (int, error) {
	if topK == 0 {
		return p.cfg.DefaultTopK, nil
	}
	if topK < 1 || (p.cfg.MaxTopK > 0 && topK > p.cfg.MaxTopK) {
		return 0, nberrors.InvalidTopK(topK)
	}
	return topK, nil
}

// mergeSuggested fills blank fields of the explicit filters from the
// analyzer's suggestions. Explicit values always win.
func mergeSuggested(explicit, suggested search.SearchFilters) search.SearchFilters {
	if explicit.AppType == "" {
		explicit.AppType = suggested.AppType
	}
	if explicit.Module == "" {
		explicit.Module = suggested.Module
	}
	if explicit.Source == "" {
		explicit.Source = suggested.Source
	}
	if explicit.SourceType == "" {
		explicit.SourceType = suggested.SourceType
	}
	if explicit.Language == "" {
		explicit.Language = suggested.Language
	}
	return explicit
}

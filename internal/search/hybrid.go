package search

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	nberrors "github.com/tislab/nabsearch/internal/errors"
)

// Hybrid orchestration defaults.
const (
	// DefaultCandidateK is the per-branch candidate width in hybrid mode,
	// independent of the caller's topK. RRF narrows the fused set afterwards.
	DefaultCandidateK = 50

	// DefaultVectorTimeout bounds the vector branch, which includes two
	// embedding API calls and is therefore slower than the keyword branch.
	DefaultVectorTimeout = 10 * time.Second
)

// HybridConfig configures the hybrid orchestrator. Zero values fall back
// to the package defaults.
type HybridConfig struct {
	// CandidateK is the per-branch candidate width in hybrid mode.
	CandidateK int
	// RRFConstant is the RRF smoothing parameter k.
	RRFConstant int
	// VectorTimeout bounds the vector branch in hybrid mode.
	VectorTimeout time.Duration
}

// DefaultHybridConfig returns the standard orchestration parameters.
func DefaultHybridConfig() HybridConfig {
	return HybridConfig{
		CandidateK:    DefaultCandidateK,
		RRFConstant:   DefaultRRFConstant,
		VectorTimeout: DefaultVectorTimeout,
	}
}

func (c HybridConfig) withDefaults() HybridConfig {
	if c.CandidateK <= 0 {
		c.CandidateK = DefaultCandidateK
	}
	if c.RRFConstant <= 0 {
		c.RRFConstant = DefaultRRFConstant
	}
	if c.VectorTimeout <= 0 {
		c.VectorTimeout = DefaultVectorTimeout
	}
	return c
}

// HybridSearcher runs the keyword and vector branches concurrently and
// fuses their results with Reciprocal Rank Fusion.
//
// Branch failures degrade rather than propagate: a branch that errors or
// times out contributes an empty list and the search continues with the
// other branch. Only invalid input (blank query, topK < 1) is returned as
// an error.
type HybridSearcher struct {
	keyword Searcher
	vector  Searcher
	config  HybridConfig
	log     *slog.Logger
}

// NewHybridSearcher creates the orchestrator over the two branches.
func NewHybridSearcher(keyword, vector Searcher, cfg HybridConfig, log *slog.Logger) *HybridSearcher {
	if log == nil {
		log = slog.Default()
	}
	return &HybridSearcher{
		keyword: keyword,
		vector:  vector,
		config:  cfg.withDefaults(),
		log:     log,
	}
}

// Search executes a search in the given mode. KEYWORD and VECTOR delegate
// to the corresponding branch with topK passed straight through; HYBRID
// (and the empty mode) run both branches concurrently and fuse.
func (h *HybridSearcher) Search(ctx context.Context, query string, filters SearchFilters, topK int, mode SearchMode) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nberrors.BlankQuery()
	}
	if topK < 1 {
		return nil, nberrors.InvalidTopK(topK)
	}

	switch mode {
	case ModeKeyword:
		return h.keyword.Search(ctx, query, filters, topK)
	case ModeVector:
		return h.vector.Search(ctx, query, filters, topK)
	default:
		return h.searchHybrid(ctx, query, filters, topK)
	}
}

// searchHybrid dispatches both branches concurrently at the fixed candidate
// width, degrades branch failures to empty contributions, and merges.
func (h *HybridSearcher) searchHybrid(ctx context.Context, query string, filters SearchFilters, topK int) ([]SearchResult, error) {
	var keywordResults, vectorResults []SearchResult

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		results, err := h.keyword.Search(gctx, query, filters, h.config.CandidateK)
		if err != nil {
			h.log.Warn("keyword branch failed, continuing with vector results only",
				slog.String("error", err.Error()))
			return nil
		}
		keywordResults = results
		return nil
	})

	g.Go(func() error {
		// The timeout is a logical cancellation: when it fires the branch
		// is treated as failed and any late completion is discarded with
		// the cancelled context.
		vctx, cancel := context.WithTimeout(gctx, h.config.VectorTimeout)
		defer cancel()

		results, err := h.vector.Search(vctx, query, filters, h.config.CandidateK)
		if err != nil {
			h.log.Warn("vector branch failed, continuing with keyword results only",
				slog.String("error", err.Error()))
			return nil
		}
		vectorResults = results
		return nil
	})

	// Branch goroutines never return errors; Wait only joins them.
	_ = g.Wait()

	if len(keywordResults) == 0 && len(vectorResults) == 0 {
		h.log.Debug("both branches returned no results", slog.String("query", query))
		return nil, nil
	}

	// A single-source result set is returned verbatim with its native
	// scores; fusion is skipped.
	if len(keywordResults) == 0 {
		return truncate(vectorResults, topK), nil
	}
	if len(vectorResults) == 0 {
		return truncate(keywordResults, topK), nil
	}

	return rrfMerge(keywordResults, vectorResults, topK, h.config.RRFConstant), nil
}

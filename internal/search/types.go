// Package search implements the hybrid retrieval core: the keyword and
// vector branches, Reciprocal Rank Fusion of their results, and metadata
// post-filtering with facet aggregation.
package search

import (
	"context"
	"time"
)

// SearchResult is a single retrieval result. ID and Content are always
// present. Results are value types; treat Metadata as read-only once the
// result is constructed. Score meaning depends on the producing stage:
// trigram similarity, cosine similarity, RRF score, or reranker relevance.
type SearchResult struct {
	ID      string
	Content string
	Score   float64
	// Metadata holds string-keyed chunk metadata (app_type, module, ...).
	// Defensively copied by NewSearchResult; read-only after construction.
	Metadata map[string]string
	// SourceURL is the originating document URL or file path, empty if absent.
	SourceURL string
}

// NewSearchResult constructs a result with a defensive copy of metadata.
func NewSearchResult(id, content string, score float64, metadata map[string]string, sourceURL string) SearchResult {
	var meta map[string]string
	if len(metadata) > 0 {
		meta = make(map[string]string, len(metadata))
		for k, v := range metadata {
			meta[k] = v
		}
	}
	return SearchResult{
		ID:        id,
		Content:   content,
		Score:     score,
		Metadata:  meta,
		SourceURL: sourceURL,
	}
}

// WithScore returns a copy of the result with only the score replaced.
// The metadata map is shared; both copies treat it as read-only.
func (r SearchResult) WithScore(score float64) SearchResult {
	r.Score = score
	return r
}

// SearchFilters holds the optional exact-match filters. An empty string
// means "no constraint on that field" — it is not a match for empty values.
type SearchFilters struct {
	AppType    string
	Module     string
	Source     string
	SourceType string
	Language   string
}

// NoFilters is the no-constraint sentinel.
var NoFilters = SearchFilters{}

// HasAny reports whether at least one filter field is set.
func (f SearchFilters) HasAny() bool {
	return f != SearchFilters{}
}

// ExtendedSearchFilters wraps SearchFilters with conditions that cannot be
// pushed down as equality predicates: version and FQCN prefix matches and
// an inclusive date range over the updated_at metadata timestamp. Applied
// purely as a post-filter.
type ExtendedSearchFilters struct {
	Base       SearchFilters
	Version    string
	FQCNPrefix string
	DateFrom   *time.Time
	DateTo     *time.Time
}

// NoExtendedFilters is the no-constraint sentinel.
var NoExtendedFilters = ExtendedSearchFilters{}

// HasAny reports whether any base or extended condition is set.
func (f ExtendedSearchFilters) HasAny() bool {
	return f.Base.HasAny() || f.Version != "" || f.FQCNPrefix != "" ||
		f.DateFrom != nil || f.DateTo != nil
}

// SearchMode selects the retrieval algorithm combination.
type SearchMode string

const (
	// ModeHybrid fuses both branches with Reciprocal Rank Fusion (default).
	ModeHybrid SearchMode = "HYBRID"
	// ModeKeyword uses only the lexical branch.
	ModeKeyword SearchMode = "KEYWORD"
	// ModeVector uses only the semantic branch.
	ModeVector SearchMode = "VECTOR"
)

// Searcher is implemented by both retrieval branches.
type Searcher interface {
	// Search returns up to topK results ordered by descending score.
	// It fails with an invalid-input error on a blank query or topK < 1.
	Search(ctx context.Context, query string, filters SearchFilters, topK int) ([]SearchResult, error)
}

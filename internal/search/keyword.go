package search

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	nberrors "github.com/tislab/nabsearch/internal/errors"
	"github.com/tislab/nabsearch/internal/store"
)

// tagPattern strips HTML-tag-like substrings (including generic type
// parameters such as <T>) from query tokens before they reach the store.
var tagPattern = regexp.MustCompile(`<[^>]*>`)

// specialChars are removed from tokens after tag stripping. The angle
// brackets are already handled by tagPattern.
const specialChars = "&|!():'\"\\"

// KeywordSearcher is the lexical retrieval branch. Rows are filtered by a
// conjunctive case-insensitive substring predicate over the sanitized
// tokens and scored by trigram similarity between the whole original query
// and the chunk content, so holistic closeness still drives the ranking.
type KeywordSearcher struct {
	store store.ChunkStore
	log   *slog.Logger
}

var _ Searcher = (*KeywordSearcher)(nil)

// NewKeywordSearcher creates the lexical branch over the given store.
func NewKeywordSearcher(cs store.ChunkStore, log *slog.Logger) *KeywordSearcher {
	if log == nil {
		log = slog.Default()
	}
	return &KeywordSearcher{store: cs, log: log}
}

// Search queries both chunk collections, merges their rows and returns the
// topK highest-scoring results.
func (s *KeywordSearcher) Search(ctx context.Context, query string, filters SearchFilters, topK int) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nberrors.BlankQuery()
	}
	if topK < 1 {
		return nil, nberrors.InvalidTopK(topK)
	}

	tokens := sanitizeTokens(query)
	if len(tokens) == 0 {
		s.log.Debug("keyword search skipped, no tokens survived sanitization",
			slog.String("query", query))
		return nil, nil
	}

	storeFilters := toStoreFilters(filters)
	var merged []SearchResult
	for _, col := range store.Collections {
		rows, err := s.store.KeywordSearch(ctx, col, tokens, query, storeFilters, topK)
		if err != nil {
			return nil, err
		}
		merged = append(merged, rowsToResults(rows)...)
	}

	sortByScoreDesc(merged)
	return truncate(merged, topK), nil
}

// sanitizeTokens splits the query on whitespace and strips tag-like
// substrings and special characters from each token. Empty tokens are
// discarded.
func sanitizeTokens(query string) []string {
	fields := strings.Fields(query)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tok := tagPattern.ReplaceAllString(f, "")
		tok = strings.Map(func(r rune) rune {
			if strings.ContainsRune(specialChars, r) {
				return -1
			}
			return r
		}, tok)
		tok = strings.TrimSpace(tok)
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// toStoreFilters converts the public filters to the store's filter type.
func toStoreFilters(f SearchFilters) store.Filters {
	return store.Filters{
		AppType:    f.AppType,
		Module:     f.Module,
		Source:     f.Source,
		SourceType: f.SourceType,
		Language:   f.Language,
	}
}

// rowsToResults converts store rows to search results.
func rowsToResults(rows []store.Row) []SearchResult {
	out := make([]SearchResult, 0, len(rows))
	for _, r := range rows {
		out = append(out, NewSearchResult(r.ID, r.Content, r.Score, r.Metadata, r.SourceURL))
	}
	return out
}

// sortByScoreDesc sorts results by descending score, breaking ties by id
// for deterministic output.
func sortByScoreDesc(results []SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
}

// truncate limits results to topK.
func truncate(results []SearchResult, topK int) []SearchResult {
	if len(results) > topK {
		return results[:topK]
	}
	return results
}

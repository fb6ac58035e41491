package search

import (
	"strings"
	"time"
)

// facetKeys are the metadata keys aggregated by ComputeFacets.
var facetKeys = []string{"source", "source_type", "app_type", "module", "language"}

// Metadata keys consulted by the extended post-filter.
const (
	metaVersion   = "nablarch_version"
	metaFQCN      = "fqcn"
	metaUpdatedAt = "updated_at"
)

// MetadataFilter applies post-retrieval filtering and facet aggregation.
// Both operations are pure: no I/O, no mutation of the input.
type MetadataFilter struct{}

// NewMetadataFilter creates the post-filter stage.
func NewMetadataFilter() *MetadataFilter {
	return &MetadataFilter{}
}

// Filter returns the results matching every set condition. A filter with
// no conditions returns the input unchanged (same elements, same order).
func (m *MetadataFilter) Filter(results []SearchResult, filters ExtendedSearchFilters) []SearchResult {
	if len(results) == 0 {
		return nil
	}
	if !filters.HasAny() {
		return results
	}

	filtered := make([]SearchResult, 0, len(results))
	for _, r := range results {
		if matches(r, filters) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// ComputeFacets counts the distribution of values per facet key over the
// result set. Blank values are skipped; keys with no values are omitted.
func (m *MetadataFilter) ComputeFacets(results []SearchResult) map[string]map[string]int {
	facets := make(map[string]map[string]int)
	for _, key := range facetKeys {
		counts := make(map[string]int)
		for _, r := range results {
			v := r.Metadata[key]
			if strings.TrimSpace(v) == "" {
				continue
			}
			counts[v]++
		}
		if len(counts) > 0 {
			facets[key] = counts
		}
	}
	return facets
}

// matches reports whether a result satisfies every set condition.
func matches(r SearchResult, f ExtendedSearchFilters) bool {
	if !matchesExact(r, "app_type", f.Base.AppType) ||
		!matchesExact(r, "module", f.Base.Module) ||
		!matchesExact(r, "source", f.Base.Source) ||
		!matchesExact(r, "source_type", f.Base.SourceType) ||
		!matchesExact(r, "language", f.Base.Language) {
		return false
	}

	if f.Version != "" && !strings.HasPrefix(r.Metadata[metaVersion], f.Version) {
		return false
	}
	if f.FQCNPrefix != "" && !strings.HasPrefix(r.Metadata[metaFQCN], f.FQCNPrefix) {
		return false
	}

	if f.DateFrom != nil || f.DateTo != nil {
		// An absent or unparsable timestamp never matches a date
		// constraint; it is a data-quality issue, not an error.
		updatedAt, ok := parseTimestamp(r.Metadata[metaUpdatedAt])
		if !ok {
			return false
		}
		if f.DateFrom != nil && updatedAt.Before(*f.DateFrom) {
			return false
		}
		if f.DateTo != nil && updatedAt.After(*f.DateTo) {
			return false
		}
	}

	return true
}

// matchesExact reports whether the metadata value equals the expected
// value. An empty expected value imposes no constraint. Note the asymmetry:
// a set filter never matches a result missing the key, because the result's
// missing value is the empty string which a set filter cannot equal.
func matchesExact(r SearchResult, key, expected string) bool {
	if expected == "" {
		return true
	}
	return r.Metadata[key] == expected
}

// parseTimestamp parses an RFC 3339 timestamp metadata value.
func parseTimestamp(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

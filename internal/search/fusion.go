package search

import (
	"sort"
)

// DefaultRRFConstant is the RRF smoothing parameter from the original
// paper (Cormack et al., 2009); also the value used by Azure AI Search and
// OpenSearch.
const DefaultRRFConstant = 60

// rrfMerge fuses two ranked result lists with Reciprocal Rank Fusion.
//
// A document at 1-indexed rank r in a branch contributes 1/(k + r) to its
// fused score; contributions for the same id are summed across branches.
// The emitted result keeps the content, metadata and source URL of
// whichever branch produced the document first (keyword first, then
// vector) with only the score replaced by the fused value.
//
// Ties order by lexicographically smaller id so output is deterministic.
func rrfMerge(keyword, vector []SearchResult, topK, k int) []SearchResult {
	scores := make(map[string]float64, len(keyword)+len(vector))
	first := make(map[string]SearchResult, len(keyword)+len(vector))

	accumulate := func(results []SearchResult) {
		for rank, r := range results {
			scores[r.ID] += 1.0 / float64(k+rank+1)
			if _, seen := first[r.ID]; !seen {
				first[r.ID] = r
			}
		}
	}
	accumulate(keyword)
	accumulate(vector)

	fused := make([]SearchResult, 0, len(scores))
	for id, score := range scores {
		fused = append(fused, first[id].WithScore(score))
	}

	sort.Slice(fused, func(i, j int) bool {
		if fused[i].Score != fused[j].Score {
			return fused[i].Score > fused[j].Score
		}
		return fused[i].ID < fused[j].ID
	})

	return truncate(fused, topK)
}

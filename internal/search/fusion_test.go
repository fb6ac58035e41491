package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeResults(ids ...string) []SearchResult {
	results := make([]SearchResult, len(ids))
	for i, id := range ids {
		results[i] = SearchResult{
			ID:      id,
			Content: "content of " + id,
			Score:   1.0 - float64(i)*0.1,
		}
	}
	return results
}

func TestRRFMerge_DisjointLists(t *testing.T) {
	// Given: branches with no overlap
	keyword := makeResults("A", "B")
	vector := makeResults("C", "D")

	// When: fusing with k=60
	fused := rrfMerge(keyword, vector, 10, 60)

	// Then: every document scores 1/(60+rank) from its single branch
	require.Len(t, fused, 4)
	scores := map[string]float64{}
	for _, r := range fused {
		scores[r.ID] = r.Score
	}
	assert.InDelta(t, 1.0/61, scores["A"], 1e-9)
	assert.InDelta(t, 1.0/62, scores["B"], 1e-9)
	assert.InDelta(t, 1.0/61, scores["C"], 1e-9)
	assert.InDelta(t, 1.0/62, scores["D"], 1e-9)
}

func TestRRFMerge_OverlapSumsContributions(t *testing.T) {
	// Given: A at rank 1 in both branches
	keyword := makeResults("A", "B")
	vector := makeResults("A", "C")

	// When
	fused := rrfMerge(keyword, vector, 10, 60)

	// Then: A's contributions are summed and it ranks first
	require.NotEmpty(t, fused)
	assert.Equal(t, "A", fused[0].ID)
	assert.InDelta(t, 2.0/61, fused[0].Score, 1e-9)
}

func TestRRFMerge_HandlerQueueExample(t *testing.T) {
	// Given: keyword [D1, D2], vector [D2, D3], k=60
	keyword := makeResults("D1", "D2")
	vector := makeResults("D2", "D3")

	// When
	fused := rrfMerge(keyword, vector, 10, 60)

	// Then: D2 leads with summed contributions, then D1, then D3
	require.Len(t, fused, 3)
	assert.Equal(t, []string{"D2", "D1", "D3"},
		[]string{fused[0].ID, fused[1].ID, fused[2].ID})
	assert.InDelta(t, 1.0/62+1.0/61, fused[0].Score, 1e-9)
	assert.InDelta(t, 1.0/61, fused[1].Score, 1e-9)
	assert.InDelta(t, 1.0/62, fused[2].Score, 1e-9)
}

func TestRRFMerge_NoNormalization(t *testing.T) {
	// Given: a single-document branch
	fused := rrfMerge(makeResults("A"), nil, 10, 60)

	// Then: the raw reciprocal rank is kept, not scaled to 1.0
	require.Len(t, fused, 1)
	assert.InDelta(t, 1.0/61, fused[0].Score, 1e-9)
}

func TestRRFMerge_TiesOrderByID(t *testing.T) {
	// Given: B and A at the same rank in opposite branches
	keyword := makeResults("B")
	vector := makeResults("A")

	// When
	fused := rrfMerge(keyword, vector, 10, 60)

	// Then: identical scores order by lexicographically smaller id
	require.Len(t, fused, 2)
	assert.Equal(t, "A", fused[0].ID)
	assert.Equal(t, "B", fused[1].ID)
}

func TestRRFMerge_KeywordContentWinsOnOverlap(t *testing.T) {
	// Given: the same id with different content per branch
	keyword := []SearchResult{{ID: "X", Content: "keyword view", Score: 0.8}}
	vector := []SearchResult{{ID: "X", Content: "vector view", Score: 0.9}}

	// When
	fused := rrfMerge(keyword, vector, 10, 60)

	// Then: the keyword branch's row supplies the content
	require.Len(t, fused, 1)
	assert.Equal(t, "keyword view", fused[0].Content)
}

func TestRRFMerge_TruncatesToTopK(t *testing.T) {
	fused := rrfMerge(makeResults("A", "B", "C"), makeResults("D", "E"), 2, 60)
	assert.Len(t, fused, 2)
}

func TestRRFMerge_CustomConstant(t *testing.T) {
	// Given: k=1 to make the constant's effect visible
	fused := rrfMerge(makeResults("A"), nil, 10, 1)

	require.Len(t, fused, 1)
	assert.InDelta(t, 0.5, fused[0].Score, 1e-9)
}

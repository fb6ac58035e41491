package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tislab/nabsearch/internal/search"
)

func run(ids ...string) []search.SearchResult {
	results := make([]search.SearchResult, len(ids))
	for i, id := range ids {
		results[i] = search.SearchResult{ID: id}
	}
	return results
}

func binary(ids ...string) Judgment {
	j := Judgment{Relevant: make(map[string]float64, len(ids))}
	for _, id := range ids {
		j.Relevant[id] = 1
	}
	return j
}

func TestReciprocalRank(t *testing.T) {
	assert.Equal(t, 1.0, ReciprocalRank(run("A", "B"), binary("A")))
	assert.Equal(t, 0.5, ReciprocalRank(run("A", "B"), binary("B")))
	assert.InDelta(t, 1.0/3, ReciprocalRank(run("A", "B", "C"), binary("C")), 1e-9)
	assert.Equal(t, 0.0, ReciprocalRank(run("A", "B"), binary("Z")))
	assert.Equal(t, 0.0, ReciprocalRank(nil, binary("A")))
}

func TestMRR(t *testing.T) {
	runs := [][]search.SearchResult{
		run("A", "B"), // RR = 1
		run("X", "B"), // RR = 0.5
	}
	judgments := []Judgment{binary("A"), binary("B")}

	assert.InDelta(t, 0.75, MRR(runs, judgments), 1e-9)

	// Mismatched or empty input scores zero
	assert.Equal(t, 0.0, MRR(nil, nil))
	assert.Equal(t, 0.0, MRR(runs, judgments[:1]))
}

func TestRecallAtK(t *testing.T) {
	results := run("A", "B", "C", "D")
	judgment := binary("A", "C", "Z")

	// A and C found in the top 4, Z never retrieved
	assert.InDelta(t, 2.0/3, RecallAtK(results, judgment, 4), 1e-9)
	// Only A within the top 2
	assert.InDelta(t, 1.0/3, RecallAtK(results, judgment, 2), 1e-9)
	// No relevant IDs means recall is undefined, reported as zero
	assert.Equal(t, 0.0, RecallAtK(results, Judgment{}, 4))
	assert.Equal(t, 0.0, RecallAtK(results, judgment, 0))
}

func TestNDCGAtK_PerfectRanking(t *testing.T) {
	judgment := Judgment{Relevant: map[string]float64{"A": 3, "B": 2, "C": 1}}

	// Results in ideal order score exactly 1
	assert.InDelta(t, 1.0, NDCGAtK(run("A", "B", "C"), judgment, 3), 1e-9)
}

func TestNDCGAtK_ImperfectRanking(t *testing.T) {
	judgment := Judgment{Relevant: map[string]float64{"A": 3, "B": 2}}

	ndcg := NDCGAtK(run("B", "A"), judgment, 2)

	assert.Greater(t, ndcg, 0.0)
	assert.Less(t, ndcg, 1.0)
}

func TestNDCGAtK_NoRelevant(t *testing.T) {
	assert.Equal(t, 0.0, NDCGAtK(run("A"), Judgment{}, 3))
	assert.Equal(t, 0.0, NDCGAtK(run("A"), binary("A"), 0))
}

// Package eval computes offline retrieval quality metrics over judged
// result lists: mean reciprocal rank, recall at K and normalized
// discounted cumulative gain at K. Used by evaluation tooling; the search
// path itself never imports this package.
package eval

import (
	"math"

	"github.com/tislab/nabsearch/internal/search"
)

// Judgment is the ground truth for one query: the set of relevant chunk
// IDs, each with a graded relevance (1 for binary judgments).
type Judgment struct {
	Query    string
	Relevant map[string]float64
}

// IsRelevant reports whether the ID has a positive relevance grade.
func (j Judgment) IsRelevant(id string) bool {
	return j.Relevant[id] > 0
}

// ReciprocalRank returns 1/rank of the first relevant result, or 0 when
// no result is relevant. Ranks are 1-based.
func ReciprocalRank(results []search.SearchResult, judgment Judgment) float64 {
	for i, r := range results {
		if judgment.IsRelevant(r.ID) {
			return 1.0 / float64(i+1)
		}
	}
	return 0
}

// MRR returns the mean reciprocal rank over per-query result lists paired
// with their judgments by index. Returns 0 for empty input.
func MRR(runs [][]search.SearchResult, judgments []Judgment) float64 {
	if len(runs) == 0 || len(runs) != len(judgments) {
		return 0
	}
	var sum float64
	for i, results := range runs {
		sum += ReciprocalRank(results, judgments[i])
	}
	return sum / float64(len(runs))
}

// RecallAtK returns the fraction of relevant IDs found in the first k
// results. Returns 0 when the judgment has no relevant IDs.
func RecallAtK(results []search.SearchResult, judgment Judgment, k int) float64 {
	totalRelevant := 0
	for _, grade := range judgment.Relevant {
		if grade > 0 {
			totalRelevant++
		}
	}
	if totalRelevant == 0 || k < 1 {
		return 0
	}

	found := 0
	for i, r := range results {
		if i >= k {
			break
		}
		if judgment.IsRelevant(r.ID) {
			found++
		}
	}
	return float64(found) / float64(totalRelevant)
}

// NDCGAtK returns the normalized discounted cumulative gain over the first
// k results, using graded relevance and the log2(rank+1) discount. Returns
// 0 when the judgment has no relevant IDs.
func NDCGAtK(results []search.SearchResult, judgment Judgment, k int) float64 {
	if k < 1 {
		return 0
	}

	var dcg float64
	for i, r := range results {
		if i >= k {
			break
		}
		if grade := judgment.Relevant[r.ID]; grade > 0 {
			dcg += grade / math.Log2(float64(i)+2)
		}
	}

	ideal := idealDCG(judgment, k)
	if ideal == 0 {
		return 0
	}
	return dcg / ideal
}

// idealDCG computes the DCG of the best possible ordering: all relevant
// grades sorted descending.
func idealDCG(judgment Judgment, k int) float64 {
	grades := make([]float64, 0, len(judgment.Relevant))
	for _, g := range judgment.Relevant {
		if g > 0 {
			grades = append(grades, g)
		}
	}
	// Insertion sort, descending; judgment sets are small.
	for i := 1; i < len(grades); i++ {
		for j := i; j > 0 && grades[j] > grades[j-1]; j-- {
			grades[j], grades[j-1] = grades[j-1], grades[j]
		}
	}

	var ideal float64
	for i, g := range grades {
		if i >= k {
			break
		}
		ideal += g / math.Log2(float64(i)+2)
	}
	return ideal
}

package domain

import (
	"sort"
)

// BestResult returns the entry with the highest relevancy. Ties go to
// the earlier-declared source so the pick stays deterministic. Returns
// nil when results is empty.
func BestResult(results []SourceResult) *SourceResult {
	var best *SourceResult
	for i := range results {
		if best == nil || results[i].Relevancy > best.Relevancy {
			best = &results[i]
		}
	}
	return best
}

// MeanRelevancy returns the arithmetic mean of all relevancy scores,
// or 0 when results is empty.
func MeanRelevancy(results []SourceResult) float64 {
	if len(results) == 0 {
		return 0
	}
	sum := 0
	for _, r := range results {
		sum += r.Relevancy
	}
	return float64(sum) / float64(len(results))
}

// MedianRelevancy returns the median relevancy score, averaging the
// middle pair for an even count. Returns 0 when results is empty.
func MedianRelevancy(results []SourceResult) float64 {
	if len(results) == 0 {
		return 0
	}
	scores := make([]int, len(results))
	for i, r := range results {
		scores[i] = r.Relevancy
	}
	sort.Ints(scores)

	mid := len(scores) / 2
	if len(scores)%2 == 1 {
		return float64(scores[mid])
	}
	return float64(scores[mid-1]+scores[mid]) / 2
}

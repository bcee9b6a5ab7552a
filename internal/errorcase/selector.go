package errorcase

import "melodicsim/internal/dataset"

// DefaultDivergentThreshold separates a hit from a miss when comparing two rankings.
const DefaultDivergentThreshold = 10

// DivergentCase is a query retrieved within the threshold by the baseline
// ranking but not by the comparison ranking.
type DivergentCase struct {
	Query      string            `json:"query"`
	Baseline   dataset.RankEntry `json:"baseline"`
	Comparison dataset.RankEntry `json:"comparison"`
}

// FindAboveRankThreshold returns, in ranking order, the queries whose
// ground-truth rank is strictly greater than n.
func FindAboveRankThreshold(ranking *dataset.Ranking, n int) []string {
	var out []string
	for _, query := range ranking.Keys() {
		entry, _ := ranking.Get(query)
		if entry.Rank > n {
			out = append(out, query)
		}
	}
	return out
}

// SelectDivergentCases returns, in baseline order, the queries with
// baseline rank <= threshold and comparison rank > threshold. Every baseline
// query must exist in comparison.
func SelectDivergentCases(baseline, comparison *dataset.Ranking, threshold int) ([]DivergentCase, error) {
	var out []DivergentCase
	for _, query := range baseline.Keys() {
		a, _ := baseline.Get(query)
		b, ok := comparison.Get(query)
		if !ok {
			return nil, &CaseError{Kind: ErrMissingKey, Query: query}
		}
		if a.Rank <= threshold && b.Rank > threshold {
			out = append(out, DivergentCase{Query: query, Baseline: a, Comparison: b})
		}
	}
	return out, nil
}

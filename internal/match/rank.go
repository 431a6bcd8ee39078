package match

import "sort"

// Rank scores every candidate against the descriptor and returns results
// in strictly descending confidence order. The sort is stable, so exact
// ties keep the catalog's own ordering.
func Rank(candidates []Candidate, local Descriptor) []Result {
	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, Score(c, local))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})

	return results
}

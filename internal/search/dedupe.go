package search

import (
	"sort"

	"github.com/gucchon001/Confluence-firebase-sub010/internal/models"
)

// Dedupe keeps one result per document ID: the entry with the highest
// composite score, ties broken by lower vector distance, then by chunk
// ID. Chunked documents surface once no matter how many chunks matched.
func Dedupe(results []*models.ScoredResult) []*models.ScoredResult {
	best := make(map[string]*models.ScoredResult, len(results))
	for _, r := range results {
		cur, ok := best[r.Candidate.DocumentID]
		if !ok || betterOf(r, cur) {
			best[r.Candidate.DocumentID] = r
		}
	}
	out := make([]*models.ScoredResult, 0, len(best))
	for _, r := range best {
		out = append(out, r)
	}
	SortResults(out)
	return out
}

func betterOf(a, b *models.ScoredResult) bool {
	if a.CompositeScore != b.CompositeScore {
		return a.CompositeScore > b.CompositeScore
	}
	ad, bd := distanceOrInf(a), distanceOrInf(b)
	if ad != bd {
		return ad < bd
	}
	return a.Candidate.ID < b.Candidate.ID
}

// SortResults orders results by composite score descending, then vector
// distance ascending, then document ID. The full chain makes the
// ordering total, so identical inputs always produce identical output.
func SortResults(results []*models.ScoredResult) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.CompositeScore != b.CompositeScore {
			return a.CompositeScore > b.CompositeScore
		}
		ad, bd := distanceOrInf(a), distanceOrInf(b)
		if ad != bd {
			return ad < bd
		}
		return a.Candidate.DocumentID < b.Candidate.DocumentID
	})
}

// distanceOrInf treats a missing vector signal as infinitely far so
// entries with a real distance win ties.
func distanceOrInf(r *models.ScoredResult) float64 {
	if r.Candidate.VectorDistance == nil {
		return maxDistance
	}
	return *r.Candidate.VectorDistance
}

// maxDistance exceeds any cosine distance, which is bounded by 2.
const maxDistance = 1e9

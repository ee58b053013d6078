package ranking

import (
	"strings"

	"github.com/gucchon001/Confluence-firebase-sub010/internal/models"
)

// CompositeScorer blends normalized signals into one score per candidate.
// Every returned ScoredResult carries the per-signal breakdown; the blended
// number alone is not enough to debug a ranking regression.
type CompositeScorer struct {
	weights Weights
}

// NewCompositeScorer creates a scorer. Weights are normalized to sum to 1.
func NewCompositeScorer(weights Weights) *CompositeScorer {
	weights.ApplyDefaults()
	return &CompositeScorer{weights: weights.normalized()}
}

// Score produces immutable ScoredResults for the candidate set.
// Normalization is within the current set: vector distances are inverted
// and min-max scaled, lexical scores divided by the set maximum. Title and
// label signals are rule-based match ratios against the extracted
// keywords. A candidate missing a signal gets a zero contribution from it.
func (s *CompositeScorer) Score(candidates []*models.Candidate, fusedRanks map[string]float64, keywords []string) []*models.ScoredResult {
	if len(candidates) == 0 {
		return nil
	}

	minDist, maxDist, maxLex := signalBounds(candidates)

	out := make([]*models.ScoredResult, 0, len(candidates))
	for _, c := range candidates {
		breakdown := models.ScoreBreakdown{
			VectorContribution:  s.weights.Vector * normalizeDistance(c.VectorDistance, minDist, maxDist),
			LexicalContribution: s.weights.Lexical * normalizeLexical(c.LexicalScore, maxLex),
			TitleContribution:   s.weights.Title * TitleSignal(c.Title, keywords),
			LabelContribution:   s.weights.Label * LabelSignal(c, keywords),
		}
		out = append(out, &models.ScoredResult{
			Candidate: c,
			FusedRank: fusedRanks[c.ID],
			CompositeScore: breakdown.VectorContribution +
				breakdown.LexicalContribution +
				breakdown.TitleContribution +
				breakdown.LabelContribution,
			Breakdown: breakdown,
		})
	}
	return out
}

func signalBounds(candidates []*models.Candidate) (minDist, maxDist, maxLex float64) {
	first := true
	for _, c := range candidates {
		if c.VectorDistance != nil {
			d := *c.VectorDistance
			if first {
				minDist, maxDist = d, d
				first = false
			} else {
				if d < minDist {
					minDist = d
				}
				if d > maxDist {
					maxDist = d
				}
			}
		}
		if c.LexicalScore != nil && *c.LexicalScore > maxLex {
			maxLex = *c.LexicalScore
		}
	}
	return minDist, maxDist, maxLex
}

// normalizeDistance inverts and min-max scales a vector distance into
// [0,1]. The closest candidate in the set gets 1; a candidate without a
// vector signal gets 0.
func normalizeDistance(dist *float64, minDist, maxDist float64) float64 {
	if dist == nil {
		return 0
	}
	if maxDist == minDist {
		return 1
	}
	return (maxDist - *dist) / (maxDist - minDist)
}

// normalizeLexical scales a BM25 score by the set maximum.
func normalizeLexical(score *float64, maxLex float64) float64 {
	if score == nil || maxLex <= 0 {
		return 0
	}
	return *score / maxLex
}

// TitleSignal returns the title match strength in [0,1]: 1 for an exact
// title match, at least 0.8 when the title contains the most specific
// keyword, otherwise the fraction of keywords the title contains.
func TitleSignal(title string, keywords []string) float64 {
	if len(keywords) == 0 || title == "" {
		return 0
	}
	lower := strings.ToLower(title)

	matched := 0
	for _, kw := range keywords {
		k := strings.ToLower(kw)
		if lower == k {
			return 1
		}
		if strings.Contains(lower, k) {
			matched++
		}
	}
	ratio := float64(matched) / float64(len(keywords))
	// The first keyword is the most specific compound; containing it is a
	// strong signal even when the remaining keywords miss.
	if strings.Contains(lower, strings.ToLower(keywords[0])) && ratio < 0.8 {
		return 0.8
	}
	return ratio
}

// LabelSignal returns the fraction of keywords matching any label or
// structured metadata field.
func LabelSignal(c *models.Candidate, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	targets := make([]string, 0, len(c.Labels)+3)
	for _, l := range c.Labels {
		targets = append(targets, strings.ToLower(l))
	}
	if c.Metadata != nil {
		for _, v := range []string{c.Metadata.Category, c.Metadata.Domain, c.Metadata.Feature} {
			if v != "" {
				targets = append(targets, strings.ToLower(v))
			}
		}
	}
	if len(targets) == 0 {
		return 0
	}

	matched := 0
	for _, kw := range keywords {
		k := strings.ToLower(kw)
		for _, t := range targets {
			if t == k || strings.Contains(t, k) || strings.Contains(k, t) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(keywords))
}

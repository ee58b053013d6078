// Package lexical provides BM25 scoring and the bleve-backed lexical index
// used by the lexical retrieval strategy.
package lexical

import (
	"sort"
	"strings"

	"github.com/gucchon001/Confluence-firebase-sub010/internal/models"
)

// Params holds the BM25 tuning parameters. Field weights let title matches
// count more than body matches; the ratio is operational tuning, not fixed.
type Params struct {
	K1            float64 `yaml:"k1"`
	B             float64 `yaml:"b"`
	TitleWeight   float64 `yaml:"title_weight"`
	ContentWeight float64 `yaml:"content_weight"`
}

// DefaultParams returns the classic BM25 defaults with a 2:1 title weight.
func DefaultParams() Params {
	return Params{K1: 1.2, B: 0.75, TitleWeight: 2.0, ContentWeight: 1.0}
}

// Scored is one candidate's lexical score.
type Scored struct {
	ID    string
	Score float64
}

// Scorer computes BM25 scores for candidates against extracted keywords.
type Scorer struct {
	params Params
}

// NewScorer creates a scorer with the given parameters; zero values fall
// back to defaults.
func NewScorer(params Params) *Scorer {
	def := DefaultParams()
	if params.K1 <= 0 {
		params.K1 = def.K1
	}
	if params.B <= 0 {
		params.B = def.B
	}
	if params.TitleWeight <= 0 {
		params.TitleWeight = def.TitleWeight
	}
	if params.ContentWeight <= 0 {
		params.ContentWeight = def.ContentWeight
	}
	return &Scorer{params: params}
}

// Score returns BM25 scores for the candidates, ranked by score descending
// with ties broken by candidate ID ascending so identical inputs always
// produce identical output. Candidates with zero score are omitted.
func (s *Scorer) Score(keywords []string, stats *CorpusStats, candidates []*models.Candidate) []Scored {
	if len(keywords) == 0 || len(candidates) == 0 {
		return nil
	}
	if stats == nil || stats.TotalDocs == 0 {
		stats = EstimateStats(keywords, candidates)
	}

	titleLens := make([]float64, len(candidates))
	contentLens := make([]float64, len(candidates))
	var titleSum, contentSum float64
	for i, c := range candidates {
		titleLens[i] = float64(len([]rune(c.Title)))
		contentLens[i] = float64(len([]rune(c.Content)))
		titleSum += titleLens[i]
		contentSum += contentLens[i]
	}
	avgTitle := titleSum / float64(len(candidates))
	avgContent := contentSum / float64(len(candidates))

	out := make([]Scored, 0, len(candidates))
	for i, c := range candidates {
		title := strings.ToLower(c.Title)
		content := strings.ToLower(c.Content)
		var score float64
		for _, kw := range keywords {
			idf := stats.IDF(kw)
			score += s.params.TitleWeight * idf *
				fieldTerm(termFrequency(title, kw), titleLens[i], avgTitle, s.params)
			score += s.params.ContentWeight * idf *
				fieldTerm(termFrequency(content, kw), contentLens[i], avgContent, s.params)
		}
		if score > 0 {
			out = append(out, Scored{ID: c.ID, Score: score})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// fieldTerm computes the BM25 saturation term for one field:
// tf*(k1+1) / (tf + k1*(1 - b + b*len/avgLen)).
func fieldTerm(tf, fieldLen, avgLen float64, p Params) float64 {
	if tf == 0 {
		return 0
	}
	if avgLen == 0 {
		avgLen = 1
	}
	norm := p.K1 * (1 - p.B + p.B*fieldLen/avgLen)
	return tf * (p.K1 + 1) / (tf + norm)
}

// termFrequency counts non-overlapping occurrences of term in text. Works
// for CJK compounds, which span multiple segmenter tokens, as well as for
// whitespace-delimited words.
func termFrequency(text, term string) float64 {
	if term == "" {
		return 0
	}
	return float64(strings.Count(text, term))
}

package lexical

import (
	"math"
	"strings"

	"github.com/gucchon001/Confluence-firebase-sub010/internal/models"
)

// CorpusStats holds corpus-level statistics for IDF calculation.
type CorpusStats struct {
	// TotalDocs is the total number of documents in the corpus.
	TotalDocs int
	// DocFrequencies maps terms to the number of documents containing them.
	DocFrequencies map[string]int
}

// IDF returns ln(1 + (N - df + 0.5)/(df + 0.5)). A term absent from the
// corpus (df == 0) is treated as if df == 1: maximally rare, but never a
// negative or infinite score.
func (s *CorpusStats) IDF(term string) float64 {
	n := s.TotalDocs
	df := s.DocFrequencies[term]
	if df <= 0 {
		df = 1
	}
	if n < df {
		n = df
	}
	return math.Log(1 + (float64(n)-float64(df)+0.5)/(float64(df)+0.5))
}

// StatsProvider supplies corpus statistics for a set of terms. The bleve
// lexical index implements it; when no provider is available the scorer
// estimates statistics from the current candidate window instead.
type StatsProvider interface {
	CorpusStats(terms []string) (*CorpusStats, error)
}

// EstimateStats derives document-frequency statistics from the candidate
// window itself: each distinct DocumentID counts once, and a document
// contains a term when the term occurs in any of its chunks' title or
// content. A degraded but serviceable stand-in for real corpus statistics.
func EstimateStats(terms []string, candidates []*models.Candidate) *CorpusStats {
	byDoc := make(map[string][]*models.Candidate)
	for _, c := range candidates {
		byDoc[c.DocumentID] = append(byDoc[c.DocumentID], c)
	}

	freqs := make(map[string]int, len(terms))
	for _, term := range terms {
		lower := strings.ToLower(term)
		for _, chunks := range byDoc {
			for _, c := range chunks {
				if strings.Contains(strings.ToLower(c.Title), lower) ||
					strings.Contains(strings.ToLower(c.Content), lower) {
					freqs[term]++
					break
				}
			}
		}
	}

	return &CorpusStats{TotalDocs: len(byDoc), DocFrequencies: freqs}
}

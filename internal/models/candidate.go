// Package models defines core data structures for candidates, queries, and ranked results.
package models

// StructuredMetadata carries classification fields used by the label filter
// and the title/label scoring signal.
type StructuredMetadata struct {
	Category string `json:"category,omitempty"`
	Domain   string `json:"domain,omitempty"`
	Feature  string `json:"feature,omitempty"`
	// Invalid marks a candidate whose source content is unusable
	// (empty or near-empty page body). Invalid candidates are excluded
	// from results regardless of score.
	Invalid bool `json:"invalid,omitempty"`
}

// Candidate is one retrievable unit: a chunk of a source document.
// Multiple candidates may share a DocumentID; all of them refer to the
// same logical document.
type Candidate struct {
	ID         string   `json:"id"`
	DocumentID string   `json:"document_id"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Labels     []string `json:"labels,omitempty"`

	// VectorDistance is set only when the candidate was returned by the
	// vector strategy. Lower means more similar.
	VectorDistance *float64 `json:"vector_distance,omitempty"`
	// LexicalScore is set only when the candidate was scored by the
	// lexical (BM25) strategy.
	LexicalScore *float64 `json:"lexical_score,omitempty"`

	Metadata *StructuredMetadata `json:"metadata,omitempty"`
}

// HasLabel reports whether the candidate carries the given label.
func (c *Candidate) HasLabel(label string) bool {
	for _, l := range c.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// Clone returns a shallow copy with fresh pointers for the optional score
// fields, so strategies can annotate their own copy without racing.
func (c *Candidate) Clone() *Candidate {
	out := *c
	if c.VectorDistance != nil {
		d := *c.VectorDistance
		out.VectorDistance = &d
	}
	if c.LexicalScore != nil {
		s := *c.LexicalScore
		out.LexicalScore = &s
	}
	if c.Metadata != nil {
		m := *c.Metadata
		out.Metadata = &m
	}
	return &out
}

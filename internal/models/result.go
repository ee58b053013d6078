package models

// ScoreBreakdown exposes the weighted contribution of each signal to the
// composite score. The four contributions sum to CompositeScore. Keeping
// them independently inspectable is what lets a ranking regression be
// traced to a single signal instead of debugged from the blended number.
type ScoreBreakdown struct {
	VectorContribution  float64 `json:"vector_contribution"`
	LexicalContribution float64 `json:"lexical_contribution"`
	TitleContribution   float64 `json:"title_contribution"`
	LabelContribution   float64 `json:"label_contribution"`
}

// ScoredResult is a candidate with its fused rank, composite score, and
// score breakdown. Instances are never mutated after creation; re-ranking
// produces new ones.
type ScoredResult struct {
	Candidate      *Candidate     `json:"candidate"`
	FusedRank      float64        `json:"fused_rank"`
	CompositeScore float64        `json:"composite_score"`
	Breakdown      ScoreBreakdown `json:"score_breakdown"`
}

// CacheInfo reports whether the response was served from the result cache.
type CacheInfo struct {
	Hit bool   `json:"hit"`
	Key string `json:"key"`
}

// SearchResponse is the caller-facing search result.
type SearchResponse struct {
	Results   []*ScoredResult `json:"results"`
	Cache     CacheInfo       `json:"cache"`
	Query     string          `json:"query"`
	QueryTime int64           `json:"query_time_ms"`
}

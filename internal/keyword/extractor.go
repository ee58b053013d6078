// Package keyword turns a raw query string into a weighted, ordered set of
// search terms. It is language-aware: CJK text with no whitespace word
// boundaries is segmented with the same UAX#29 segmenter the lexical index
// uses, so the extractor and the index agree on term boundaries.
package keyword

import (
	"strings"
	"time"
	"unicode"

	"github.com/blevesearch/bleve/v2/analysis"
	unicodetokenizer "github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"go.uber.org/zap"
)

// Source identifies how the keywords were produced.
type Source int

const (
	// SourceRuleBased means the deterministic segmenter pipeline produced
	// the keywords.
	SourceRuleBased Source = iota
	// SourceModelAssisted means an external model proposed the keywords.
	SourceModelAssisted
)

// String returns a string representation of the source.
func (s Source) String() string {
	switch s {
	case SourceRuleBased:
		return "rule_based"
	case SourceModelAssisted:
		return "model_assisted"
	default:
		return "unknown"
	}
}

// Result is the output of keyword extraction. Keywords are ordered most
// specific first: compound terms, then their decomposed parts, then single
// tokens, so downstream scorers can weight earlier keywords more heavily.
type Result struct {
	Keywords       []string      `json:"keywords"`
	Source         Source        `json:"source"`
	ProcessingTime time.Duration `json:"processing_time"`
	// Degraded is set when segmentation produced nothing usable and the
	// extractor fell back to naive whitespace/punctuation splitting.
	Degraded bool `json:"degraded,omitempty"`
}

// KeywordExtractor produces search terms from a raw query.
type KeywordExtractor interface {
	Extract(query string) *Result
}

// Extractor is the rule-based KeywordExtractor. It never returns an error:
// retrieval must not stall on this stage, so every failure path degrades to
// a cruder splitting strategy instead.
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates a rule-based extractor.
func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// Extract segments the query, strips stopwords and punctuation, joins
// adjacent ideographic tokens into compound terms, expands compounds that
// end in a known functional suffix into stem + suffix candidates, and
// removes near-duplicate keywords.
func (e *Extractor) Extract(query string) *Result {
	start := time.Now()
	res := &Result{Source: SourceRuleBased}

	compounds, parts := e.segment(query)
	if len(compounds) == 0 && len(parts) == 0 && strings.TrimSpace(query) != "" {
		// Segmenter produced nothing for non-empty input; degrade rather
		// than return an empty keyword set.
		e.logger.Warn("segmentation produced no tokens, falling back to naive split",
			zap.String("query", query))
		res.Degraded = true
		compounds = naiveSplit(query)
	}

	expanded := expandCompounds(compounds)
	res.Keywords = assemble(compounds, expanded, parts)
	res.ProcessingTime = time.Since(start)
	return res
}

// segment tokenizes the query and returns compound terms (adjacent
// ideographic runs between particles) plus the individual token parts.
func (e *Extractor) segment(query string) (compounds, parts []string) {
	tokenizer := unicodetokenizer.NewUnicodeTokenizer()
	tokens := tokenizer.Tokenize([]byte(query))

	var run strings.Builder
	var lastEnd int
	var lastType analysis.TokenType

	flush := func() {
		if run.Len() > 0 {
			compounds = append(compounds, run.String())
			run.Reset()
		}
	}

	for _, tok := range tokens {
		term := strings.ToLower(string(tok.Term))
		if IsStopword(term) {
			flush()
			continue
		}
		// Single ideographs are poor search units on their own; CJK parts
		// come from suffix decomposition instead.
		if tok.Type != analysis.Ideographic {
			parts = append(parts, term)
		}

		joinable := run.Len() > 0 &&
			tok.Start == lastEnd &&
			tok.Type == analysis.Ideographic &&
			lastType == analysis.Ideographic
		if !joinable {
			flush()
		}
		run.WriteString(term)
		lastEnd = tok.End
		lastType = tok.Type
	}
	flush()
	return compounds, parts
}

// functionalSuffixes are domain-term suffixes common in the corpus
// vocabulary. A compound ending in one of these is also offered as
// stem + suffix so "教室管理" additionally retrieves "教室" and "管理".
var functionalSuffixes = []string{
	"管理", "一覧", "詳細", "設定", "登録", "編集", "削除",
	"画面", "機能", "情報", "履歴", "検索", "申請",
}

// expandCompounds returns stem/suffix decompositions for compounds that end
// in a functional suffix. The compound itself is kept by the caller; both
// the whole and its parts are meaningful search units.
func expandCompounds(compounds []string) []string {
	var out []string
	for _, c := range compounds {
		runes := []rune(c)
		for _, suffix := range functionalSuffixes {
			sr := []rune(suffix)
			if len(runes) <= len(sr) {
				continue
			}
			if strings.HasSuffix(c, suffix) {
				stem := string(runes[:len(runes)-len(sr)])
				if len([]rune(stem)) >= 2 {
					out = append(out, stem, suffix)
				}
				break
			}
		}
	}
	return out
}

// assemble orders keywords most specific first and removes duplicates and
// near-duplicates. Substring containment alone is not treated as
// duplication: a compound and its parts can both survive.
func assemble(compounds, expanded, parts []string) []string {
	ordered := make([]string, 0, len(compounds)+len(expanded)+len(parts))
	ordered = append(ordered, sortByLengthDesc(compounds)...)
	ordered = append(ordered, expanded...)
	ordered = append(ordered, parts...)

	out := make([]string, 0, len(ordered))
	for _, kw := range ordered {
		if kw == "" || isNearDuplicate(kw, out) {
			continue
		}
		out = append(out, kw)
	}
	return out
}

// isNearDuplicate reports whether kw is an exact or near-duplicate of an
// already kept keyword. Near-duplication requires high edit similarity and
// no containment in either direction.
func isNearDuplicate(kw string, kept []string) bool {
	for _, k := range kept {
		if k == kw {
			return true
		}
		if strings.Contains(k, kw) || strings.Contains(kw, k) {
			continue
		}
		if Similarity(k, kw) >= 0.85 {
			return true
		}
	}
	return false
}

// sortByLengthDesc returns the terms ordered by rune length descending,
// stable within equal lengths so input order is preserved.
func sortByLengthDesc(terms []string) []string {
	out := make([]string, len(terms))
	copy(out, terms)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && len([]rune(out[j])) > len([]rune(out[j-1])); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// naiveSplit is the degraded fallback: split on whitespace and punctuation,
// drop stopwords.
func naiveSplit(query string) []string {
	fields := strings.FieldsFunc(query, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ToLower(f)
		if !IsStopword(f) {
			out = append(out, f)
		}
	}
	return out
}

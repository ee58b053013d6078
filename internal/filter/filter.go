// Package filter applies label, title-pattern, and validity exclusion
// rules to candidates. It runs before scoring to avoid wasted work and
// again after fusion as a guard against candidates that slipped through
// via an untagged duplicate.
package filter

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gucchon001/Confluence-firebase-sub010/internal/models"
)

// Config names the corpus's scope-exclusion labels and the validity
// threshold. Labels are matched case-insensitively.
type Config struct {
	// ArchivedLabels are excluded unless IncludeArchived is set.
	ArchivedLabels []string `yaml:"archived_labels"`
	// MeetingNotesLabels are excluded unless IncludeMeetingNotes is set.
	MeetingNotesLabels []string `yaml:"meeting_notes_labels"`
	// MinContentRunes marks candidates with shorter content as invalid.
	MinContentRunes int `yaml:"min_content_runes"`
}

// DefaultConfig returns the standard exclusion labels for a Confluence
// corpus.
func DefaultConfig() Config {
	return Config{
		ArchivedLabels:     []string{"archived", "アーカイブ"},
		MeetingNotesLabels: []string{"meeting-notes", "議事録"},
		MinContentRunes:    10,
	}
}

// Exclusion records why a candidate was removed, for observability.
type Exclusion struct {
	Candidate *models.Candidate
	Reason    string
}

// Filter applies exclusion rules.
type Filter struct {
	cfg    Config
	logger *zap.Logger
}

// New creates a filter. Zero-value config fields fall back to defaults.
func New(cfg Config, logger *zap.Logger) *Filter {
	def := DefaultConfig()
	if len(cfg.ArchivedLabels) == 0 {
		cfg.ArchivedLabels = def.ArchivedLabels
	}
	if len(cfg.MeetingNotesLabels) == 0 {
		cfg.MeetingNotesLabels = def.MeetingNotesLabels
	}
	if cfg.MinContentRunes <= 0 {
		cfg.MinContentRunes = def.MinContentRunes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Filter{cfg: cfg, logger: logger}
}

// Apply returns the candidates that survive all exclusion rules, plus the
// exclusions with their reasons. Input order is preserved for kept
// candidates.
func (f *Filter) Apply(candidates []*models.Candidate, lf models.LabelFilters, excludeTitlePatterns []string) ([]*models.Candidate, []Exclusion) {
	kept := make([]*models.Candidate, 0, len(candidates))
	var excluded []Exclusion

	for _, c := range candidates {
		if reason := f.exclusionReason(c, lf, excludeTitlePatterns); reason != "" {
			excluded = append(excluded, Exclusion{Candidate: c, Reason: reason})
			continue
		}
		kept = append(kept, c)
	}

	if len(excluded) > 0 {
		f.logger.Debug("candidates excluded",
			zap.Int("kept", len(kept)),
			zap.Int("excluded", len(excluded)),
		)
	}
	return kept, excluded
}

func (f *Filter) exclusionReason(c *models.Candidate, lf models.LabelFilters, patterns []string) string {
	// Validity check first: invalid content loses regardless of labels.
	if c.Metadata != nil && c.Metadata.Invalid {
		return "invalid metadata"
	}
	if len([]rune(strings.TrimSpace(c.Content))) < f.cfg.MinContentRunes {
		return "near-empty content"
	}

	if !lf.IncludeArchived && hasAnyLabel(c, f.cfg.ArchivedLabels) {
		return "archived"
	}
	if !lf.IncludeMeetingNotes && hasAnyLabel(c, f.cfg.MeetingNotesLabels) {
		return "meeting notes"
	}
	for label, include := range lf.Toggles {
		if !include && candidateHasLabel(c, label) {
			return fmt.Sprintf("label %q excluded", label)
		}
	}

	for _, p := range patterns {
		if MatchTitle(p, c.Title) {
			return fmt.Sprintf("title matches %q", p)
		}
	}
	return ""
}

func hasAnyLabel(c *models.Candidate, labels []string) bool {
	for _, l := range labels {
		if candidateHasLabel(c, l) {
			return true
		}
	}
	return false
}

func candidateHasLabel(c *models.Candidate, label string) bool {
	for _, l := range c.Labels {
		if strings.EqualFold(l, label) {
			return true
		}
	}
	return false
}

// MatchTitle reports whether title matches the glob-like pattern. '*'
// matches any rune sequence, '?' matches one rune; everything else matches
// literally and case-insensitively. Unlike path.Match there is no
// separator special-casing, since titles are not paths.
func MatchTitle(pattern, title string) bool {
	return matchGlob([]rune(strings.ToLower(pattern)), []rune(strings.ToLower(title)))
}

func matchGlob(pattern, s []rune) bool {
	// Iterative wildcard matching with single backtrack point.
	var starIdx, matchIdx = -1, 0
	i, j := 0, 0
	for j < len(s) {
		switch {
		case i < len(pattern) && (pattern[i] == '?' || pattern[i] == s[j]):
			i++
			j++
		case i < len(pattern) && pattern[i] == '*':
			starIdx = i
			matchIdx = j
			i++
		case starIdx >= 0:
			i = starIdx + 1
			matchIdx++
			j = matchIdx
		default:
			return false
		}
	}
	for i < len(pattern) && pattern[i] == '*' {
		i++
	}
	return i == len(pattern)
}

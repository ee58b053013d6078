package models

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// DefaultTopK is the result cap applied when the caller does not set one.
	DefaultTopK = 8
	// MaxTopK is the hard ceiling for TopK.
	MaxTopK = 50
)

// LabelFilters controls label-based inclusion. The two named flags cover the
// standard scope-exclusion labels; Toggles carries arbitrary named label
// switches (label -> include) for corpora with their own exclusion labels.
type LabelFilters struct {
	IncludeMeetingNotes bool            `json:"include_meeting_notes"`
	IncludeArchived     bool            `json:"include_archived"`
	Toggles             map[string]bool `json:"toggles,omitempty"`
}

// SearchConfig is the per-request parameter set. It is validated once via
// Validate and treated as immutable afterwards.
type SearchConfig struct {
	TopK                 int          `json:"top_k,omitempty"`
	LabelFilters         LabelFilters `json:"label_filters"`
	ExcludeTitlePatterns []string     `json:"exclude_title_patterns,omitempty"`
	// UseLexicalIndex defaults to true when unset.
	UseLexicalIndex *bool `json:"use_lexical_index,omitempty"`
}

// Validate checks the config and fills defaults. TopK defaults to
// DefaultTopK and is capped at MaxTopK; a negative TopK is rejected so the
// caller learns about the mistake instead of silently getting the default.
func (c *SearchConfig) Validate() error {
	if c.TopK < 0 {
		return fmt.Errorf("%w: top_k must be positive, got %d", ErrInvalidConfig, c.TopK)
	}
	if c.TopK == 0 {
		c.TopK = DefaultTopK
	}
	if c.TopK > MaxTopK {
		c.TopK = MaxTopK
	}
	for label := range c.LabelFilters.Toggles {
		if strings.TrimSpace(label) == "" {
			return fmt.Errorf("%w: label toggle with empty name", ErrInvalidConfig)
		}
	}
	for _, p := range c.ExcludeTitlePatterns {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%w: empty title exclude pattern", ErrInvalidConfig)
		}
	}
	if c.UseLexicalIndex == nil {
		t := true
		c.UseLexicalIndex = &t
	}
	return nil
}

// LexicalEnabled reports whether the lexical index strategy is enabled.
func (c *SearchConfig) LexicalEnabled() bool {
	return c.UseLexicalIndex == nil || *c.UseLexicalIndex
}

// Canonical returns a deterministic serialization of the config, used as
// part of the result cache key. Toggle keys are emitted sorted so two
// configs with the same content always serialize identically.
func (c *SearchConfig) Canonical() string {
	var b strings.Builder
	fmt.Fprintf(&b, "topK=%d;meetingNotes=%t;archived=%t;lexical=%t",
		c.TopK,
		c.LabelFilters.IncludeMeetingNotes,
		c.LabelFilters.IncludeArchived,
		c.LexicalEnabled(),
	)
	if len(c.LabelFilters.Toggles) > 0 {
		keys := make([]string, 0, len(c.LabelFilters.Toggles))
		for k := range c.LabelFilters.Toggles {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, ";toggle:%s=%t", k, c.LabelFilters.Toggles[k])
		}
	}
	for _, p := range c.ExcludeTitlePatterns {
		fmt.Fprintf(&b, ";excludeTitle=%s", p)
	}
	return b.String()
}

// NormalizeQuery lowercases the query and collapses runs of whitespace to a
// single space. Used for cache keying so trivially different spellings of
// the same query share an entry.
func NormalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

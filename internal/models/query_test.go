package models

import (
	"errors"
	"testing"
)

func TestSearchConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *SearchConfig
		wantErr bool
	}{
		{"defaults", &SearchConfig{}, false},
		{"explicit topK", &SearchConfig{TopK: 5}, false},
		{"negative topK", &SearchConfig{TopK: -1}, true},
		{"caps topK", &SearchConfig{TopK: 500}, false},
		{"empty toggle name", &SearchConfig{LabelFilters: LabelFilters{Toggles: map[string]bool{" ": true}}}, true},
		{"empty title pattern", &SearchConfig{ExcludeTitlePatterns: []string{""}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
				return
			}
			if tt.cfg.TopK <= 0 || tt.cfg.TopK > MaxTopK {
				t.Errorf("TopK not normalized: %d", tt.cfg.TopK)
			}
			if tt.cfg.UseLexicalIndex == nil {
				t.Error("UseLexicalIndex default not applied")
			}
		})
	}
}

func TestSearchConfig_CanonicalDeterministic(t *testing.T) {
	a := &SearchConfig{
		TopK:                 5,
		LabelFilters:         LabelFilters{Toggles: map[string]bool{"beta": true, "alpha": false}},
		ExcludeTitlePatterns: []string{"*draft*"},
	}
	b := &SearchConfig{
		TopK:                 5,
		LabelFilters:         LabelFilters{Toggles: map[string]bool{"alpha": false, "beta": true}},
		ExcludeTitlePatterns: []string{"*draft*"},
	}
	if a.Canonical() != b.Canonical() {
		t.Errorf("canonical forms differ:\n%s\n%s", a.Canonical(), b.Canonical())
	}
	c := &SearchConfig{TopK: 6}
	if a.Canonical() == c.Canonical() {
		t.Error("different configs share a canonical form")
	}
}

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Hello   World ", "hello world"},
		{"教室管理の詳細は", "教室管理の詳細は"},
		{"A\tB\nC", "a b c"},
	}
	for _, tt := range tests {
		if got := NormalizeQuery(tt.in); got != tt.want {
			t.Errorf("NormalizeQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCandidate_Clone(t *testing.T) {
	d := 0.4
	c := &Candidate{ID: "c1", DocumentID: "d1", VectorDistance: &d}
	clone := c.Clone()
	*clone.VectorDistance = 0.9
	if *c.VectorDistance != 0.4 {
		t.Error("Clone shares VectorDistance pointer with original")
	}
}

package filter

import (
	"strings"
	"testing"

	"github.com/gucchon001/Confluence-firebase-sub010/internal/models"
)

func validCandidate(id, title string, labels ...string) *models.Candidate {
	return &models.Candidate{
		ID:         id,
		DocumentID: "doc-" + id,
		Title:      title,
		Content:    strings.Repeat("本文", 20),
		Labels:     labels,
	}
}

func TestApply_ArchivedExcludedByDefault(t *testing.T) {
	f := New(Config{}, nil)
	cands := []*models.Candidate{
		validCandidate("c1", "通常ページ"),
		validCandidate("c2", "古いページ", "archived"),
		validCandidate("c3", "古いページ2", "アーカイブ"),
	}

	kept, excluded := f.Apply(cands, models.LabelFilters{}, nil)
	if len(kept) != 1 || kept[0].ID != "c1" {
		t.Errorf("kept = %v, want only c1", ids(kept))
	}
	if len(excluded) != 2 {
		t.Fatalf("excluded = %d, want 2", len(excluded))
	}
	for _, e := range excluded {
		if e.Reason != "archived" {
			t.Errorf("reason = %q, want archived", e.Reason)
		}
	}

	// Explicit inclusion restores them.
	kept, _ = f.Apply(cands, models.LabelFilters{IncludeArchived: true}, nil)
	if len(kept) != 3 {
		t.Errorf("with IncludeArchived kept = %d, want 3", len(kept))
	}
}

func TestApply_MeetingNotes(t *testing.T) {
	f := New(Config{}, nil)
	cands := []*models.Candidate{
		validCandidate("c1", "週次定例", "議事録"),
		validCandidate("c2", "仕様書"),
	}
	kept, _ := f.Apply(cands, models.LabelFilters{}, nil)
	if len(kept) != 1 || kept[0].ID != "c2" {
		t.Errorf("kept = %v, want only c2", ids(kept))
	}
	kept, _ = f.Apply(cands, models.LabelFilters{IncludeMeetingNotes: true}, nil)
	if len(kept) != 2 {
		t.Errorf("with IncludeMeetingNotes kept = %d, want 2", len(kept))
	}
}

func TestApply_NamedToggles(t *testing.T) {
	f := New(Config{}, nil)
	cands := []*models.Candidate{
		validCandidate("c1", "下書きページ", "draft"),
		validCandidate("c2", "公開ページ"),
	}
	kept, excluded := f.Apply(cands, models.LabelFilters{Toggles: map[string]bool{"draft": false}}, nil)
	if len(kept) != 1 || kept[0].ID != "c2" {
		t.Errorf("kept = %v, want only c2", ids(kept))
	}
	if len(excluded) != 1 || !strings.Contains(excluded[0].Reason, "draft") {
		t.Errorf("exclusion reason should name the label: %v", excluded)
	}
}

func TestApply_TitlePatterns(t *testing.T) {
	f := New(Config{}, nil)
	cands := []*models.Candidate{
		validCandidate("c1", "2024年度 議事メモ"),
		validCandidate("c2", "教室管理の詳細"),
		validCandidate("c3", "【下書き】検索仕様"),
	}
	kept, _ := f.Apply(cands, models.LabelFilters{}, []string{"*議事メモ*", "【下書き】*"})
	if len(kept) != 1 || kept[0].ID != "c2" {
		t.Errorf("kept = %v, want only c2", ids(kept))
	}
}

func TestApply_InvalidAndNearEmpty(t *testing.T) {
	f := New(Config{}, nil)
	invalid := validCandidate("c1", "無効ページ")
	invalid.Metadata = &models.StructuredMetadata{Invalid: true}
	empty := &models.Candidate{ID: "c2", DocumentID: "d2", Title: "空ページ", Content: "短い"}
	ok := validCandidate("c3", "通常ページ")

	kept, excluded := f.Apply([]*models.Candidate{invalid, empty, ok}, models.LabelFilters{IncludeArchived: true}, nil)
	if len(kept) != 1 || kept[0].ID != "c3" {
		t.Errorf("kept = %v, want only c3", ids(kept))
	}
	if len(excluded) != 2 {
		t.Errorf("excluded = %d, want 2", len(excluded))
	}
}

func TestMatchTitle(t *testing.T) {
	tests := []struct {
		pattern, title string
		want           bool
	}{
		{"*議事録*", "第3回 議事録 メモ", true},
		{"*議事録*", "教室管理の詳細", false},
		{"教室*", "教室管理の詳細", true},
		{"*詳細", "教室管理の詳細", true},
		{"?室管理*", "教室管理の詳細", true},
		{"exact", "Exact", true},
		{"exact", "exactly", false},
		{"*", "anything", true},
		{"", "", true},
		{"", "x", false},
	}
	for _, tt := range tests {
		if got := MatchTitle(tt.pattern, tt.title); got != tt.want {
			t.Errorf("MatchTitle(%q, %q) = %v, want %v", tt.pattern, tt.title, got, tt.want)
		}
	}
}

func ids(cands []*models.Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.ID
	}
	return out
}

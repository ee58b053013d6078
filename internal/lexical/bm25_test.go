package lexical

import (
	"math"
	"testing"

	"github.com/gucchon001/Confluence-firebase-sub010/internal/models"
)

func candidate(id, docID, title, content string) *models.Candidate {
	return &models.Candidate{ID: id, DocumentID: docID, Title: title, Content: content}
}

func TestIDF(t *testing.T) {
	stats := &CorpusStats{TotalDocs: 100, DocFrequencies: map[string]int{"common": 50, "rare": 1}}

	rare := stats.IDF("rare")
	common := stats.IDF("common")
	if rare <= common {
		t.Errorf("rare term idf (%f) should exceed common term idf (%f)", rare, common)
	}

	// df == 0 treated as df == 1: same idf as a genuinely rare term,
	// never negative or infinite.
	missing := stats.IDF("missing")
	if missing != rare {
		t.Errorf("missing term idf = %f, want %f (df=1 equivalent)", missing, rare)
	}
	if math.IsInf(missing, 0) || missing < 0 {
		t.Errorf("idf must be finite and non-negative, got %f", missing)
	}

	want := math.Log(1 + (100.0-1.0+0.5)/(1.0+0.5))
	if math.Abs(rare-want) > 1e-12 {
		t.Errorf("idf formula mismatch: got %f, want %f", rare, want)
	}
}

func TestScore_TitleWeightedAboveContent(t *testing.T) {
	s := NewScorer(DefaultParams())
	cands := []*models.Candidate{
		candidate("c1", "d1", "classroom management 画面", "unrelated body text here"),
		candidate("c2", "d2", "unrelated title", "classroom management in the body text"),
	}
	scored := s.Score([]string{"classroom"}, nil, cands)
	if len(scored) != 2 {
		t.Fatalf("expected 2 scored candidates, got %d", len(scored))
	}
	if scored[0].ID != "c1" {
		t.Errorf("title match should outrank content match, got %v", scored)
	}
}

func TestScore_Deterministic(t *testing.T) {
	s := NewScorer(DefaultParams())
	cands := []*models.Candidate{
		candidate("b", "d1", "same title", "same content"),
		candidate("a", "d2", "same title", "same content"),
	}
	first := s.Score([]string{"same"}, nil, cands)
	for i := 0; i < 10; i++ {
		again := s.Score([]string{"same"}, nil, cands)
		if len(again) != len(first) {
			t.Fatal("nondeterministic result length")
		}
		for j := range again {
			if again[j] != first[j] {
				t.Fatalf("run %d differs at %d: %v vs %v", i, j, again[j], first[j])
			}
		}
	}
	// Identical scores break ties by ID ascending.
	if first[0].ID != "a" {
		t.Errorf("tie should resolve to lexicographically smaller ID, got %s", first[0].ID)
	}
}

func TestScore_ZeroMatchesOmitted(t *testing.T) {
	s := NewScorer(DefaultParams())
	cands := []*models.Candidate{candidate("c1", "d1", "nothing relevant", "at all")}
	if got := s.Score([]string{"classroom"}, nil, cands); len(got) != 0 {
		t.Errorf("expected no results for no matches, got %v", got)
	}
}

func TestScore_CJKTerms(t *testing.T) {
	s := NewScorer(DefaultParams())
	cands := []*models.Candidate{
		candidate("c1", "d1", "教室管理の詳細", "教室管理機能について説明します"),
		candidate("c2", "d2", "求人一覧", "求人情報の一覧画面です"),
	}
	scored := s.Score([]string{"教室管理"}, nil, cands)
	if len(scored) != 1 || scored[0].ID != "c1" {
		t.Fatalf("CJK compound should match only c1, got %v", scored)
	}
}

func TestEstimateStats(t *testing.T) {
	cands := []*models.Candidate{
		candidate("c1", "d1", "教室管理", "本文"),
		candidate("c2", "d1", "教室管理", "続きの本文"),
		candidate("c3", "d2", "求人", "教室管理に触れる本文"),
		candidate("c4", "d3", "その他", "無関係"),
	}
	stats := EstimateStats([]string{"教室管理"}, cands)
	if stats.TotalDocs != 3 {
		t.Errorf("TotalDocs = %d, want 3 distinct documents", stats.TotalDocs)
	}
	// d1 counted once despite two matching chunks; d2 matches in content.
	if stats.DocFrequencies["教室管理"] != 2 {
		t.Errorf("df = %d, want 2", stats.DocFrequencies["教室管理"])
	}
}

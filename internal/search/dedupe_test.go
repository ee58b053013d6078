package search

import (
	"testing"

	"github.com/gucchon001/Confluence-firebase-sub010/internal/models"
)

func scored(chunkID, docID string, score float64, dist *float64) *models.ScoredResult {
	return &models.ScoredResult{
		Candidate:      &models.Candidate{ID: chunkID, DocumentID: docID, VectorDistance: dist},
		CompositeScore: score,
	}
}

func dp(v float64) *float64 { return &v }

func TestDedupeKeepsBestPerDocument(t *testing.T) {
	results := []*models.ScoredResult{
		scored("d1-c1", "d1", 0.4, nil),
		scored("d1-c2", "d1", 0.7, nil),
		scored("d2-c1", "d2", 0.5, nil),
	}
	out := Dedupe(results)
	if len(out) != 2 {
		t.Fatalf("got %d results, want 2", len(out))
	}
	if out[0].Candidate.ID != "d1-c2" {
		t.Errorf("best chunk for d1 = %s, want d1-c2", out[0].Candidate.ID)
	}
	if out[1].Candidate.DocumentID != "d2" {
		t.Errorf("second result doc = %s, want d2", out[1].Candidate.DocumentID)
	}
}

func TestDedupeScoreTieBrokenByDistance(t *testing.T) {
	results := []*models.ScoredResult{
		scored("d1-c1", "d1", 0.5, dp(0.3)),
		scored("d1-c2", "d1", 0.5, dp(0.1)),
	}
	out := Dedupe(results)
	if len(out) != 1 || out[0].Candidate.ID != "d1-c2" {
		t.Errorf("tie should keep closer chunk, got %s", out[0].Candidate.ID)
	}
}

func TestDedupeFullTieBrokenByChunkID(t *testing.T) {
	results := []*models.ScoredResult{
		scored("d1-c2", "d1", 0.5, nil),
		scored("d1-c1", "d1", 0.5, nil),
	}
	out := Dedupe(results)
	if out[0].Candidate.ID != "d1-c1" {
		t.Errorf("full tie should keep lexicographically first chunk, got %s", out[0].Candidate.ID)
	}
}

func TestSortResultsDeterministic(t *testing.T) {
	build := func() []*models.ScoredResult {
		return []*models.ScoredResult{
			scored("c3", "d3", 0.5, nil),
			scored("c1", "d1", 0.5, dp(0.2)),
			scored("c2", "d2", 0.9, nil),
			scored("c4", "d4", 0.5, dp(0.2)),
		}
	}
	want := []string{"d2", "d1", "d4", "d3"}
	for run := 0; run < 10; run++ {
		results := build()
		SortResults(results)
		for i, r := range results {
			if r.Candidate.DocumentID != want[i] {
				t.Fatalf("run %d: order[%d] = %s, want %s", run, i, r.Candidate.DocumentID, want[i])
			}
		}
	}
}

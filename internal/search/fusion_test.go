package search

import (
	"math"
	"testing"
)

func TestFuseRRFSingleStrategy(t *testing.T) {
	fused := FuseRRF(map[string][]string{
		"vector": {"a", "b", "c"},
	}, 60)
	if len(fused) != 3 {
		t.Fatalf("got %d entries, want 3", len(fused))
	}
	if math.Abs(fused["a"]-1.0/61.0) > 1e-12 {
		t.Errorf("rank 1 score = %v, want 1/61", fused["a"])
	}
	if math.Abs(fused["c"]-1.0/63.0) > 1e-12 {
		t.Errorf("rank 3 score = %v, want 1/63", fused["c"])
	}
}

func TestFuseRRFCorroborationWins(t *testing.T) {
	// "b" is ranked second by both strategies; "a" is first in one.
	// Corroboration must outweigh the single high rank.
	fused := FuseRRF(map[string][]string{
		"vector":  {"a", "b"},
		"lexical": {"c", "b"},
	}, 60)
	wantB := 2.0 / 62.0
	if math.Abs(fused["b"]-wantB) > 1e-12 {
		t.Errorf("corroborated score = %v, want %v", fused["b"], wantB)
	}
	if fused["b"] <= fused["a"] {
		t.Errorf("doubly-ranked candidate %v should beat single rank-1 %v", fused["b"], fused["a"])
	}
}

func TestFuseRRFAbsentStrategyContributesNothing(t *testing.T) {
	fused := FuseRRF(map[string][]string{
		"vector": {"a"},
	}, 60)
	if _, ok := fused["b"]; ok {
		t.Error("candidate absent from every ranking should not appear")
	}
}

func TestFuseRRFDefaultsK(t *testing.T) {
	fused := FuseRRF(map[string][]string{"vector": {"a"}}, 0)
	if math.Abs(fused["a"]-1.0/61.0) > 1e-12 {
		t.Errorf("k<=0 should fall back to %d, got score %v", DefaultRRFK, fused["a"])
	}
}

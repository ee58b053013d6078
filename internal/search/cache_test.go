package search

import (
	"errors"
	"testing"
	"time"

	"github.com/gucchon001/Confluence-firebase-sub010/internal/models"
)

func cacheResult(chunkID, docID string) *models.ScoredResult {
	return &models.ScoredResult{
		Candidate:      &models.Candidate{ID: chunkID, DocumentID: docID, Title: "title", Content: "content"},
		CompositeScore: 0.5,
	}
}

func TestCacheRoundTrip(t *testing.T) {
	c := NewResultCache(4, time.Minute, NewMetrics())
	c.Put("k1", []*models.ScoredResult{cacheResult("c1", "d1")})

	got, err := c.Get("k1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Candidate.ID != "c1" {
		t.Fatalf("round trip lost the entry: %+v", got)
	}

	// Mutating the returned copy must not poison the cache.
	got[0].Candidate.Title = "mutated"
	again, _ := c.Get("k1")
	if again[0].Candidate.Title != "title" {
		t.Error("cache entry shares memory with a returned copy")
	}
}

func TestCacheMiss(t *testing.T) {
	m := NewMetrics()
	c := NewResultCache(4, time.Minute, m)
	got, err := c.Get("absent")
	if err != nil || got != nil {
		t.Errorf("miss = (%v, %v), want (nil, nil)", got, err)
	}
	if m.Snapshot().CacheMisses != 1 {
		t.Error("miss not counted")
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	c := NewResultCache(4, time.Minute, NewMetrics())
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Put("k1", []*models.ScoredResult{cacheResult("c1", "d1")})
	now = now.Add(2 * time.Minute)

	got, err := c.Get("k1")
	if err != nil || got != nil {
		t.Errorf("expired entry = (%v, %v), want miss", got, err)
	}
	if c.Len() != 0 {
		t.Error("expired entry not reaped on access")
	}
}

func TestCacheLRUEviction(t *testing.T) {
	c := NewResultCache(2, time.Minute, NewMetrics())
	c.Put("k1", []*models.ScoredResult{cacheResult("c1", "d1")})
	c.Put("k2", []*models.ScoredResult{cacheResult("c2", "d2")})
	if _, err := c.Get("k1"); err != nil {
		t.Fatal(err)
	}
	c.Put("k3", []*models.ScoredResult{cacheResult("c3", "d3")})

	if got, _ := c.Get("k2"); got != nil {
		t.Error("least recently used entry k2 should be evicted")
	}
	if got, _ := c.Get("k1"); got == nil {
		t.Error("recently used entry k1 should survive")
	}
	if got, _ := c.Get("k3"); got == nil {
		t.Error("newest entry k3 should survive")
	}
}

func TestCacheCorruptionEvicted(t *testing.T) {
	m := NewMetrics()
	c := NewResultCache(4, time.Minute, m)
	c.Put("k1", []*models.ScoredResult{cacheResult("c1", "d1")})

	// Corrupt the stored entry in place.
	elem := c.items["k1"]
	elem.Value.(*cacheEntry).results[0].Candidate = nil

	got, err := c.Get("k1")
	if !errors.Is(err, models.ErrCacheCorruption) {
		t.Fatalf("err = %v, want ErrCacheCorruption", err)
	}
	if got != nil {
		t.Error("corrupt entry must not be served")
	}
	if c.Len() != 0 {
		t.Error("corrupt entry must be evicted")
	}
	if m.Snapshot().CacheCorruptions != 1 {
		t.Error("corruption not counted")
	}

	// The key now behaves as a plain miss.
	if got, err := c.Get("k1"); got != nil || err != nil {
		t.Errorf("after eviction = (%v, %v), want miss", got, err)
	}
}

func TestCacheKeyNormalization(t *testing.T) {
	cfg := &models.SearchConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	a := CacheKey("教室管理の詳細は", cfg)
	b := CacheKey("  教室管理の詳細は \n", cfg)
	if a != b {
		t.Error("whitespace variants should share a cache key")
	}

	other := &models.SearchConfig{TopK: 3}
	if err := other.Validate(); err != nil {
		t.Fatal(err)
	}
	if CacheKey("教室管理の詳細は", other) == a {
		t.Error("different configs must not share a cache key")
	}
}

package search

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/gucchon001/Confluence-firebase-sub010/internal/models"
)

// ResultCache is an LRU cache of search responses with a per-entry TTL.
// Entries are evicted on capacity and lazily on expiry. Cached results
// are deep-copied on the way in and out so callers can never mutate a
// shared entry.
type ResultCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	lru      *list.List
	items    map[string]*list.Element
	metrics  *Metrics
	now      func() time.Time
}

type cacheEntry struct {
	key       string
	results   []*models.ScoredResult
	expiresAt time.Time
}

// NewResultCache creates a cache. Non-positive capacity and TTL fall
// back to 512 entries and 5 minutes.
func NewResultCache(capacity int, ttl time.Duration, metrics *Metrics) *ResultCache {
	if capacity <= 0 {
		capacity = 512
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ResultCache{
		capacity: capacity,
		ttl:      ttl,
		lru:      list.New(),
		items:    make(map[string]*list.Element),
		metrics:  metrics,
		now:      time.Now,
	}
}

// CacheKey derives a stable key from the normalized query text and the
// canonical serialization of the search configuration. Two requests
// that differ only in whitespace or field order share an entry.
func CacheKey(query string, cfg *models.SearchConfig) string {
	h := sha256.New()
	h.Write([]byte(models.NormalizeQuery(query)))
	h.Write([]byte{0})
	h.Write([]byte(cfg.Canonical()))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns a copy of the cached results for key, or nil on a miss.
// Expired entries are removed on access. A structurally invalid entry
// is evicted and reported as a miss with ErrCacheCorruption.
func (c *ResultCache) Get(key string) ([]*models.ScoredResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.metrics.RecordCacheMiss()
		return nil, nil
	}
	entry := elem.Value.(*cacheEntry)
	if c.now().After(entry.expiresAt) {
		c.removeLocked(elem)
		c.metrics.RecordCacheMiss()
		return nil, nil
	}
	if err := validateEntry(entry); err != nil {
		c.removeLocked(elem)
		c.metrics.RecordCacheCorruption()
		return nil, err
	}
	c.lru.MoveToFront(elem)
	c.metrics.RecordCacheHit()
	return copyResults(entry.results), nil
}

// Put stores a copy of results under key, evicting the least recently
// used entry when the cache is full.
func (c *ResultCache) Put(key string, results []*models.ScoredResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		entry := elem.Value.(*cacheEntry)
		entry.results = copyResults(results)
		entry.expiresAt = c.now().Add(c.ttl)
		c.lru.MoveToFront(elem)
		return
	}
	for c.lru.Len() >= c.capacity {
		c.removeLocked(c.lru.Back())
	}
	elem := c.lru.PushFront(&cacheEntry{
		key:       key,
		results:   copyResults(results),
		expiresAt: c.now().Add(c.ttl),
	})
	c.items[key] = elem
}

// Len returns the number of live entries, counting any not yet reaped
// expired ones.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Clear drops every entry.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Init()
	c.items = make(map[string]*list.Element)
}

func (c *ResultCache) removeLocked(elem *list.Element) {
	if elem == nil {
		return
	}
	entry := c.lru.Remove(elem).(*cacheEntry)
	delete(c.items, entry.key)
}

// validateEntry checks the structural invariants a cached result set
// must satisfy before it can be served.
func validateEntry(entry *cacheEntry) error {
	for i, r := range entry.results {
		if r == nil || r.Candidate == nil {
			return fmt.Errorf("%w: entry %q result %d has no candidate", models.ErrCacheCorruption, entry.key, i)
		}
		if r.Candidate.ID == "" || r.Candidate.DocumentID == "" {
			return fmt.Errorf("%w: entry %q result %d missing identifiers", models.ErrCacheCorruption, entry.key, i)
		}
	}
	return nil
}

func copyResults(results []*models.ScoredResult) []*models.ScoredResult {
	out := make([]*models.ScoredResult, len(results))
	for i, r := range results {
		cp := *r
		cp.Candidate = r.Candidate.Clone()
		out[i] = &cp
	}
	return out
}

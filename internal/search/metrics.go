package search

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics counts strategy and cache activity. All methods are safe for
// concurrent use and tolerate a nil receiver so tests can wire
// components without one.
type Metrics struct {
	mu         sync.RWMutex
	strategies map[string]*strategyCounters

	cacheHits        atomic.Int64
	cacheMisses      atomic.Int64
	cacheCorruptions atomic.Int64
	searches         atomic.Int64
}

type strategyCounters struct {
	ok        atomic.Int64
	timeouts  atomic.Int64
	failures  atomic.Int64
	totalTime atomic.Int64 // nanoseconds, ok runs only
}

// NewMetrics creates an empty metrics registry.
func NewMetrics() *Metrics {
	return &Metrics{strategies: make(map[string]*strategyCounters)}
}

// RecordStrategy counts one strategy run by outcome status.
func (m *Metrics) RecordStrategy(name string, status OutcomeStatus, elapsed time.Duration) {
	if m == nil {
		return
	}
	c := m.counters(name)
	switch status {
	case StrategyOK:
		c.ok.Add(1)
		c.totalTime.Add(int64(elapsed))
	case StrategyTimedOut:
		c.timeouts.Add(1)
	case StrategyFailed:
		c.failures.Add(1)
	}
}

// RecordSearch counts one completed search request.
func (m *Metrics) RecordSearch() {
	if m == nil {
		return
	}
	m.searches.Add(1)
}

func (m *Metrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Add(1)
}

func (m *Metrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Add(1)
}

func (m *Metrics) RecordCacheCorruption() {
	if m == nil {
		return
	}
	m.cacheCorruptions.Add(1)
}

func (m *Metrics) counters(name string) *strategyCounters {
	m.mu.RLock()
	c, ok := m.strategies[name]
	m.mu.RUnlock()
	if ok {
		return c
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok = m.strategies[name]; ok {
		return c
	}
	c = &strategyCounters{}
	m.strategies[name] = c
	return c
}

// StrategySnapshot is a point-in-time view of one strategy's counters.
type StrategySnapshot struct {
	OK           int64 `json:"ok"`
	Timeouts     int64 `json:"timeouts"`
	Failures     int64 `json:"failures"`
	AvgLatencyMs int64 `json:"avgLatencyMs"`
}

// Snapshot is a point-in-time view of all counters, serialized on the
// status endpoint.
type Snapshot struct {
	Searches         int64                       `json:"searches"`
	CacheHits        int64                       `json:"cacheHits"`
	CacheMisses      int64                       `json:"cacheMisses"`
	CacheCorruptions int64                       `json:"cacheCorruptions"`
	Strategies       map[string]StrategySnapshot `json:"strategies"`
}

// Snapshot captures the current counter values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{Strategies: map[string]StrategySnapshot{}}
	}
	snap := Snapshot{
		Searches:         m.searches.Load(),
		CacheHits:        m.cacheHits.Load(),
		CacheMisses:      m.cacheMisses.Load(),
		CacheCorruptions: m.cacheCorruptions.Load(),
		Strategies:       make(map[string]StrategySnapshot),
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for name, c := range m.strategies {
		s := StrategySnapshot{
			OK:       c.ok.Load(),
			Timeouts: c.timeouts.Load(),
			Failures: c.failures.Load(),
		}
		if s.OK > 0 {
			s.AvgLatencyMs = c.totalTime.Load() / s.OK / int64(time.Millisecond)
		}
		snap.Strategies[name] = s
	}
	return snap
}

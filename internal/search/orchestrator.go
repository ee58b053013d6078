// Package search provides the hybrid retrieval pipeline: concurrent
// strategy execution, rank fusion, composite scoring and result caching.
package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gucchon001/Confluence-firebase-sub010/internal/models"
)

// Strategy is one retrieval source. Retrieve returns candidates ordered
// best-first; the orchestrator only consumes their rank positions.
type Strategy interface {
	Name() string
	Retrieve(ctx context.Context, q *Query) ([]*models.Candidate, error)
}

// Query is the prepared input handed to each strategy.
type Query struct {
	Raw       string
	Keywords  []string
	Embedding []float32
	Limit     int
}

// OutcomeStatus tags how a strategy run ended.
type OutcomeStatus int

const (
	StrategyOK OutcomeStatus = iota
	StrategyTimedOut
	StrategyFailed
)

func (s OutcomeStatus) String() string {
	switch s {
	case StrategyOK:
		return "ok"
	case StrategyTimedOut:
		return "timeout"
	case StrategyFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of a single strategy run.
type Outcome struct {
	Status     OutcomeStatus
	Candidates []*models.Candidate
	Err        error
	Elapsed    time.Duration
}

// Orchestrator runs all registered strategies concurrently with a
// per-strategy timeout. One slow or failing strategy never blocks the
// others; the caller decides what to do with the partial outcomes.
type Orchestrator struct {
	timeout time.Duration
	metrics *Metrics
	logger  *zap.Logger
}

// NewOrchestrator creates an orchestrator. A non-positive timeout
// disables the per-strategy deadline.
func NewOrchestrator(timeout time.Duration, metrics *Metrics, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		timeout: timeout,
		metrics: metrics,
		logger:  logger,
	}
}

// Run executes every strategy and returns outcomes keyed by strategy
// name. It returns ErrAllStrategiesFailed only when no strategy
// completed.
func (o *Orchestrator) Run(ctx context.Context, q *Query, strategies []Strategy) (map[string]Outcome, error) {
	outcomes := make(map[string]Outcome, len(strategies))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, s := range strategies {
		wg.Add(1)
		go func(s Strategy) {
			defer wg.Done()
			out := o.runOne(ctx, s, q)
			mu.Lock()
			outcomes[s.Name()] = out
			mu.Unlock()
		}(s)
	}
	wg.Wait()

	succeeded := false
	for name, out := range outcomes {
		switch out.Status {
		case StrategyOK:
			succeeded = true
			o.logger.Debug("strategy completed",
				zap.String("strategy", name),
				zap.Int("candidates", len(out.Candidates)),
				zap.Duration("elapsed", out.Elapsed))
		case StrategyTimedOut:
			o.logger.Warn("strategy timed out",
				zap.String("strategy", name),
				zap.Duration("timeout", o.timeout))
		case StrategyFailed:
			o.logger.Warn("strategy failed",
				zap.String("strategy", name),
				zap.Error(out.Err))
		}
	}
	if !succeeded {
		return outcomes, fmt.Errorf("%w: %d strategies ran", models.ErrAllStrategiesFailed, len(strategies))
	}
	return outcomes, nil
}

// runOne executes a single strategy under its own deadline. The result
// channel is buffered so a strategy finishing after the deadline does
// not leak its goroutine.
func (o *Orchestrator) runOne(ctx context.Context, s Strategy, q *Query) Outcome {
	start := time.Now()

	runCtx := ctx
	var cancel context.CancelFunc
	if o.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	type result struct {
		candidates []*models.Candidate
		err        error
	}
	ch := make(chan result, 1)
	go func() {
		candidates, err := s.Retrieve(runCtx, q)
		ch <- result{candidates, err}
	}()

	select {
	case r := <-ch:
		elapsed := time.Since(start)
		if r.err != nil {
			status := StrategyFailed
			if errors.Is(r.err, context.DeadlineExceeded) {
				status = StrategyTimedOut
			}
			o.metrics.RecordStrategy(s.Name(), status, elapsed)
			return Outcome{Status: status, Err: r.err, Elapsed: elapsed}
		}
		o.metrics.RecordStrategy(s.Name(), StrategyOK, elapsed)
		return Outcome{Status: StrategyOK, Candidates: r.candidates, Elapsed: elapsed}
	case <-runCtx.Done():
		elapsed := time.Since(start)
		status := StrategyTimedOut
		if ctx.Err() != nil {
			// The caller's context ended, not the per-strategy deadline.
			status = StrategyFailed
		}
		o.metrics.RecordStrategy(s.Name(), status, elapsed)
		return Outcome{Status: status, Err: runCtx.Err(), Elapsed: elapsed}
	}
}

// RankedIDs converts an outcome map into per-strategy ranked candidate
// ID lists, skipping strategies that produced nothing. Iteration order
// of the returned map is irrelevant to fusion, which is commutative.
func RankedIDs(outcomes map[string]Outcome) map[string][]string {
	ranked := make(map[string][]string, len(outcomes))
	for name, out := range outcomes {
		if out.Status != StrategyOK || len(out.Candidates) == 0 {
			continue
		}
		ids := make([]string, len(out.Candidates))
		for i, c := range out.Candidates {
			ids[i] = c.ID
		}
		ranked[name] = ids
	}
	return ranked
}

// MergeCandidates collects the union of candidates across outcomes,
// keeping the first occurrence of each chunk ID but merging retrieval
// signals (vector distance, lexical score) from later occurrences.
// The union is returned in deterministic ID order.
func MergeCandidates(outcomes map[string]Outcome) []*models.Candidate {
	byID := make(map[string]*models.Candidate)
	for _, out := range outcomes {
		if out.Status != StrategyOK {
			continue
		}
		for _, c := range out.Candidates {
			existing, ok := byID[c.ID]
			if !ok {
				byID[c.ID] = c.Clone()
				continue
			}
			if existing.VectorDistance == nil && c.VectorDistance != nil {
				d := *c.VectorDistance
				existing.VectorDistance = &d
			}
			if existing.LexicalScore == nil && c.LexicalScore != nil {
				s := *c.LexicalScore
				existing.LexicalScore = &s
			}
		}
	}
	merged := make([]*models.Candidate, 0, len(byID))
	for _, c := range byID {
		merged = append(merged, c)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].ID < merged[j].ID })
	return merged
}

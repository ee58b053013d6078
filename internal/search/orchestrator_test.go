package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gucchon001/Confluence-firebase-sub010/internal/models"
)

type stubStrategy struct {
	name       string
	candidates []*models.Candidate
	err        error
	delay      time.Duration
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Retrieve(ctx context.Context, q *Query) ([]*models.Candidate, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.candidates, s.err
}

func chunk(id, docID string) *models.Candidate {
	return &models.Candidate{ID: id, DocumentID: docID, Title: "t-" + docID, Content: "content"}
}

func TestOrchestratorIsolatesFailures(t *testing.T) {
	orch := NewOrchestrator(time.Second, NewMetrics(), nil)
	strategies := []Strategy{
		&stubStrategy{name: "vector", err: errors.New("index offline")},
		&stubStrategy{name: "lexical", candidates: []*models.Candidate{chunk("c1", "d1")}},
	}
	outcomes, err := orch.Run(context.Background(), &Query{Raw: "q"}, strategies)
	if err != nil {
		t.Fatalf("one healthy strategy should not error: %v", err)
	}
	if outcomes["vector"].Status != StrategyFailed {
		t.Errorf("vector status = %v, want failed", outcomes["vector"].Status)
	}
	if outcomes["lexical"].Status != StrategyOK {
		t.Errorf("lexical status = %v, want ok", outcomes["lexical"].Status)
	}
}

func TestOrchestratorAllFailed(t *testing.T) {
	orch := NewOrchestrator(time.Second, NewMetrics(), nil)
	strategies := []Strategy{
		&stubStrategy{name: "vector", err: errors.New("down")},
		&stubStrategy{name: "lexical", err: errors.New("down")},
	}
	_, err := orch.Run(context.Background(), &Query{Raw: "q"}, strategies)
	if !errors.Is(err, models.ErrAllStrategiesFailed) {
		t.Errorf("err = %v, want ErrAllStrategiesFailed", err)
	}
}

func TestOrchestratorTimeout(t *testing.T) {
	orch := NewOrchestrator(20*time.Millisecond, NewMetrics(), nil)
	strategies := []Strategy{
		&stubStrategy{name: "vector", delay: 500 * time.Millisecond, candidates: []*models.Candidate{chunk("c1", "d1")}},
		&stubStrategy{name: "title", candidates: []*models.Candidate{chunk("c2", "d2")}},
	}
	start := time.Now()
	outcomes, err := orch.Run(context.Background(), &Query{Raw: "q"}, strategies)
	if err != nil {
		t.Fatalf("timeout of one strategy should not error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 300*time.Millisecond {
		t.Errorf("slow strategy blocked the run for %v", elapsed)
	}
	if outcomes["vector"].Status != StrategyTimedOut {
		t.Errorf("vector status = %v, want timeout", outcomes["vector"].Status)
	}
	if len(outcomes["title"].Candidates) != 1 {
		t.Errorf("title strategy results lost")
	}
}

func TestOrchestratorRecordsMetrics(t *testing.T) {
	m := NewMetrics()
	orch := NewOrchestrator(time.Second, m, nil)
	strategies := []Strategy{
		&stubStrategy{name: "vector", candidates: []*models.Candidate{chunk("c1", "d1")}},
		&stubStrategy{name: "lexical", err: errors.New("down")},
	}
	if _, err := orch.Run(context.Background(), &Query{Raw: "q"}, strategies); err != nil {
		t.Fatal(err)
	}
	snap := m.Snapshot()
	if snap.Strategies["vector"].OK != 1 {
		t.Errorf("vector ok = %d, want 1", snap.Strategies["vector"].OK)
	}
	if snap.Strategies["lexical"].Failures != 1 {
		t.Errorf("lexical failures = %d, want 1", snap.Strategies["lexical"].Failures)
	}
}

func TestRankedIDsSkipsFailures(t *testing.T) {
	outcomes := map[string]Outcome{
		"vector":  {Status: StrategyOK, Candidates: []*models.Candidate{chunk("c1", "d1"), chunk("c2", "d2")}},
		"lexical": {Status: StrategyFailed, Err: errors.New("down")},
	}
	ranked := RankedIDs(outcomes)
	if len(ranked) != 1 {
		t.Fatalf("got %d rankings, want 1", len(ranked))
	}
	if got := ranked["vector"]; len(got) != 2 || got[0] != "c1" || got[1] != "c2" {
		t.Errorf("vector ranking = %v", got)
	}
}

func TestMergeCandidatesCombinesSignals(t *testing.T) {
	dist := 0.2
	lex := 3.5
	withDist := chunk("c1", "d1")
	withDist.VectorDistance = &dist
	withLex := chunk("c1", "d1")
	withLex.LexicalScore = &lex

	merged := MergeCandidates(map[string]Outcome{
		"vector":  {Status: StrategyOK, Candidates: []*models.Candidate{withDist}},
		"lexical": {Status: StrategyOK, Candidates: []*models.Candidate{withLex, chunk("c0", "d0")}},
	})
	if len(merged) != 2 {
		t.Fatalf("got %d candidates, want 2", len(merged))
	}
	if merged[0].ID != "c0" || merged[1].ID != "c1" {
		t.Errorf("merge order = %s, %s; want c0, c1", merged[0].ID, merged[1].ID)
	}
	c1 := merged[1]
	if c1.VectorDistance == nil || *c1.VectorDistance != dist {
		t.Error("vector distance lost in merge")
	}
	if c1.LexicalScore == nil || *c1.LexicalScore != lex {
		t.Error("lexical score lost in merge")
	}
}

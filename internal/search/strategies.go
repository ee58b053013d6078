package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/gucchon001/Confluence-firebase-sub010/internal/lexical"
	"github.com/gucchon001/Confluence-firebase-sub010/internal/models"
	"github.com/gucchon001/Confluence-firebase-sub010/internal/vector"
)

// CandidateStore resolves chunk IDs to full candidates and supports
// title lookups for the title strategy.
type CandidateStore interface {
	GetCandidates(ctx context.Context, ids []string) ([]*models.Candidate, error)
	SearchTitles(ctx context.Context, keywords []string, limit int) ([]*models.Candidate, error)
}

// VectorStrategy retrieves candidates by embedding similarity. Returned
// candidates carry their vector distance and are ordered closest first.
type VectorStrategy struct {
	adapter *vector.Adapter
	store   CandidateStore
}

func NewVectorStrategy(adapter *vector.Adapter, store CandidateStore) *VectorStrategy {
	return &VectorStrategy{adapter: adapter, store: store}
}

func (s *VectorStrategy) Name() string { return "vector" }

func (s *VectorStrategy) Retrieve(ctx context.Context, q *Query) ([]*models.Candidate, error) {
	if len(q.Embedding) == 0 {
		return nil, fmt.Errorf("%w: no query embedding", models.ErrRetrievalUnavailable)
	}
	hits, err := s.adapter.Query(ctx, q.Embedding, q.Limit)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}
	ids := make([]string, len(hits))
	distances := make(map[string]float64, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
		distances[h.ID] = h.Distance
	}
	candidates, err := s.store.GetCandidates(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve vector hits: %w", err)
	}
	for _, c := range candidates {
		d := distances[c.ID]
		c.VectorDistance = &d
	}
	sort.Slice(candidates, func(i, j int) bool {
		if *candidates[i].VectorDistance != *candidates[j].VectorDistance {
			return *candidates[i].VectorDistance < *candidates[j].VectorDistance
		}
		return candidates[i].ID < candidates[j].ID
	})
	return candidates, nil
}

// LexicalStrategy retrieves candidates from the inverted index and
// rescores them with BM25 so the lexical score survives fusion.
type LexicalStrategy struct {
	index      *lexical.Index
	scorer     *lexical.Scorer
	store      CandidateStore
	titleBoost float64
}

func NewLexicalStrategy(index *lexical.Index, scorer *lexical.Scorer, store CandidateStore, titleBoost float64) *LexicalStrategy {
	if titleBoost <= 0 {
		titleBoost = 2.0
	}
	return &LexicalStrategy{index: index, scorer: scorer, store: store, titleBoost: titleBoost}
}

func (s *LexicalStrategy) Name() string { return "lexical" }

func (s *LexicalStrategy) Retrieve(ctx context.Context, q *Query) ([]*models.Candidate, error) {
	if len(q.Keywords) == 0 {
		return nil, nil
	}
	hits, err := s.index.Search(ctx, q.Keywords, q.Limit, s.titleBoost)
	if err != nil {
		return nil, fmt.Errorf("%w: lexical index: %v", models.ErrRetrievalUnavailable, err)
	}
	if len(hits) == 0 {
		return nil, nil
	}
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	candidates, err := s.store.GetCandidates(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve lexical hits: %w", err)
	}

	stats, err := s.index.CorpusStats(q.Keywords)
	if err != nil {
		stats = nil // Score falls back to window estimation.
	}
	scored := s.scorer.Score(q.Keywords, stats, candidates)
	byID := make(map[string]*models.Candidate, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}
	ordered := make([]*models.Candidate, 0, len(scored))
	for _, sc := range scored {
		c := byID[sc.ID]
		if c == nil {
			continue
		}
		score := sc.Score
		c.LexicalScore = &score
		ordered = append(ordered, c)
	}
	return ordered, nil
}

// TitleStrategy retrieves candidates whose titles match the extracted
// keywords. It catches exact-title documents that embedding similarity
// alone can rank too low.
type TitleStrategy struct {
	store CandidateStore
}

func NewTitleStrategy(store CandidateStore) *TitleStrategy {
	return &TitleStrategy{store: store}
}

func (s *TitleStrategy) Name() string { return "title" }

func (s *TitleStrategy) Retrieve(ctx context.Context, q *Query) ([]*models.Candidate, error) {
	if len(q.Keywords) == 0 {
		return nil, nil
	}
	candidates, err := s.store.SearchTitles(ctx, q.Keywords, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("%w: title lookup: %v", models.ErrRetrievalUnavailable, err)
	}
	return candidates, nil
}

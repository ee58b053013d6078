package search

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gucchon001/Confluence-firebase-sub010/internal/embedding"
	"github.com/gucchon001/Confluence-firebase-sub010/internal/filter"
	"github.com/gucchon001/Confluence-firebase-sub010/internal/keyword"
	"github.com/gucchon001/Confluence-firebase-sub010/internal/models"
	"github.com/gucchon001/Confluence-firebase-sub010/internal/ranking"
)

// Options are the engine tunables.
type Options struct {
	// CandidateLimit is how many candidates each strategy may return
	// before fusion.
	CandidateLimit int
	// StrategyTimeout bounds a single strategy run.
	StrategyTimeout time.Duration
	// OverallTimeout bounds the whole search request.
	OverallTimeout time.Duration
	// RRFK is the reciprocal rank fusion constant.
	RRFK int
}

// ApplyDefaults fills zero fields with the shipped defaults.
func (o *Options) ApplyDefaults() {
	if o.CandidateLimit <= 0 {
		o.CandidateLimit = 100
	}
	if o.StrategyTimeout <= 0 {
		o.StrategyTimeout = 2500 * time.Millisecond
	}
	if o.OverallTimeout <= 0 {
		o.OverallTimeout = 8 * time.Second
	}
	if o.RRFK <= 0 {
		o.RRFK = DefaultRRFK
	}
}

// Engine runs the full retrieval pipeline: keyword extraction, parallel
// strategy execution, reciprocal rank fusion, composite scoring,
// filtering, per-document dedup and caching.
type Engine struct {
	extractor  keyword.KeywordExtractor
	embedder   embedding.Embedder
	strategies []Strategy
	orch       *Orchestrator
	filter     *filter.Filter
	scorer     *ranking.CompositeScorer
	cache      *ResultCache
	metrics    *Metrics
	opts       Options
	logger     *zap.Logger
}

// NewEngine wires the pipeline together.
func NewEngine(
	extractor keyword.KeywordExtractor,
	embedder embedding.Embedder,
	strategies []Strategy,
	flt *filter.Filter,
	scorer *ranking.CompositeScorer,
	cache *ResultCache,
	metrics *Metrics,
	opts Options,
	logger *zap.Logger,
) *Engine {
	opts.ApplyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		extractor:  extractor,
		embedder:   embedder,
		strategies: strategies,
		orch:       NewOrchestrator(opts.StrategyTimeout, metrics, logger),
		filter:     flt,
		scorer:     scorer,
		cache:      cache,
		metrics:    metrics,
		opts:       opts,
		logger:     logger,
	}
}

// Metrics exposes the engine's counters for the status endpoint.
func (e *Engine) Metrics() Snapshot { return e.metrics.Snapshot() }

// CacheLen reports the number of live cache entries.
func (e *Engine) CacheLen() int { return e.cache.Len() }

// Search answers a query. Individual strategy failures degrade the
// result set; only a failure of every strategy is an error. Identical
// requests return identical result orderings.
func (e *Engine) Search(ctx context.Context, query string, cfg *models.SearchConfig) (*models.SearchResponse, error) {
	start := time.Now()
	if cfg == nil {
		cfg = &models.SearchConfig{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	key := CacheKey(query, cfg)
	cached, err := e.cache.Get(key)
	if err != nil {
		e.logger.Warn("cache entry evicted", zap.Error(err))
	}
	if cached != nil {
		e.metrics.RecordSearch()
		return &models.SearchResponse{
			Results:   cached,
			Cache:     models.CacheInfo{Hit: true, Key: key},
			Query:     query,
			QueryTime: time.Since(start).Milliseconds(),
		}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.opts.OverallTimeout)
	defer cancel()

	extracted := e.extractor.Extract(query)
	e.logger.Debug("keywords extracted",
		zap.Strings("keywords", extracted.Keywords),
		zap.Stringer("source", extracted.Source),
		zap.Bool("degraded", extracted.Degraded))

	q := &Query{
		Raw:      query,
		Keywords: extracted.Keywords,
		Limit:    e.opts.CandidateLimit,
	}
	// An embedding failure only disables the vector strategy; the
	// lexical and title strategies still run.
	if emb, err := e.embedder.Embed(ctx, query); err != nil {
		e.logger.Warn("query embedding failed", zap.Error(err))
	} else {
		q.Embedding = emb
	}

	outcomes, err := e.orch.Run(ctx, q, e.activeStrategies(cfg))
	if err != nil {
		return nil, err
	}

	candidates := MergeCandidates(outcomes)
	kept, excluded := e.filter.Apply(candidates, cfg.LabelFilters, cfg.ExcludeTitlePatterns)
	if len(excluded) > 0 {
		e.logger.Debug("candidates filtered", zap.Int("excluded", len(excluded)))
	}

	fused := FuseRRF(RankedIDs(outcomes), e.opts.RRFK)
	results := e.scorer.Score(kept, fused, extracted.Keywords)
	results = Dedupe(results)
	if len(results) > cfg.TopK {
		results = results[:cfg.TopK]
	}

	e.cache.Put(key, results)
	e.metrics.RecordSearch()
	return &models.SearchResponse{
		Results:   results,
		Cache:     models.CacheInfo{Hit: false, Key: key},
		Query:     query,
		QueryTime: time.Since(start).Milliseconds(),
	}, nil
}

// activeStrategies drops the lexical strategy when the request disables
// the inverted index.
func (e *Engine) activeStrategies(cfg *models.SearchConfig) []Strategy {
	if cfg.LexicalEnabled() {
		return e.strategies
	}
	active := make([]Strategy, 0, len(e.strategies))
	for _, s := range e.strategies {
		if s.Name() == "lexical" {
			continue
		}
		active = append(active, s)
	}
	return active
}

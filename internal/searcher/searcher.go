package searcher

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/workdex/workdex-mcp/internal/storage"
	"github.com/workdex/workdex-mcp/pkg/types"
)

// Searcher is the query orchestrator: the single public entry point that
// validates input, selects a retrieval strategy, scores and ranks
// candidates, and manages the result cache and metrics.
type Searcher struct {
	store    storage.Storage
	cfg      Config
	cache    *resultCache
	metrics  *metricsCollector
	indexed  *indexedRetriever
	fallback *fallbackRetriever
	flight   singleflight.Group
	logger   *slog.Logger
}

// Option configures a Searcher
type Option func(*Searcher)

// WithConfig overrides the default engine configuration
func WithConfig(cfg Config) Option {
	return func(s *Searcher) {
		s.cfg = cfg.withDefaults()
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Searcher over the given storage backend
func New(store storage.Storage, opts ...Option) *Searcher {
	s := &Searcher{
		store:    store,
		cfg:      DefaultConfig(),
		metrics:  newMetricsCollector(),
		indexed:  &indexedRetriever{store: store},
		fallback: &fallbackRetriever{store: store},
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.cache = newResultCache(s.cfg.CacheSize, s.cfg.CacheTTL)
	return s
}

// Search runs one query through the full pipeline and returns the ranked
// page. The only caller-visible failures are ErrInvalidQuery for malformed
// input and RetrievalFailedError when every retrieval strategy is exhausted;
// everything else is absorbed internally.
func (s *Searcher) Search(ctx context.Context, query SearchQuery) (*types.SearchResults, error) {
	start := time.Now()

	q, err := normalizeQuery(query, s.cfg.MaxResults)
	if err != nil {
		return nil, err
	}

	key := q.hash()

	if s.cfg.CacheEnabled {
		if page := s.cache.get(key); page != nil {
			page.Duration = time.Since(start)
			s.metrics.record(page, true)
			return page, nil
		}
	}

	// Concurrent identical queries share a single retrieval
	shared, err, _ := s.flight.Do(string(key[:]), func() (interface{}, error) {
		return s.execute(ctx, &q)
	})
	if err != nil {
		return nil, err
	}

	page := copyResults(shared.(*types.SearchResults))
	page.Duration = time.Since(start)

	if s.cfg.CacheEnabled {
		s.cache.put(key, page)
	}
	s.metrics.record(page, false)

	return page, nil
}

// execute runs retrieval, scoring, ranking, and page assembly
func (s *Searcher) execute(ctx context.Context, q *SearchQuery) (*types.SearchResults, error) {
	candidates, total, err := s.retrieve(ctx, q)
	if err != nil {
		return nil, err
	}

	scored := s.scoreAll(q, candidates)
	rank(scored)

	return s.assemble(q, scored, total), nil
}

// retrieve tries the indexed strategy first and falls back to the linear
// scan on any indexed failure, including timeout. The switch is internal and
// never surfaced; only exhaustion of both strategies is an error.
func (s *Searcher) retrieve(ctx context.Context, q *SearchQuery) ([]candidate, int, error) {
	ictx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	candidates, total, indexedErr := s.indexed.retrieve(ictx, q)
	cancel()
	if indexedErr == nil {
		return candidates, total, nil
	}

	s.logger.Debug("indexed retrieval unavailable, switching to fallback",
		"query", q.Text, "err", indexedErr)

	fctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	candidates, total, fallbackErr := s.fallback.retrieve(fctx, q)
	cancel()
	if fallbackErr != nil {
		return nil, 0, &RetrievalFailedError{
			Query:       q.Text,
			Attempted:   []types.SearchStrategy{types.StrategyIndexed, types.StrategyFallback},
			IndexedErr:  indexedErr,
			FallbackErr: fallbackErr,
		}
	}

	return candidates, total, nil
}

// scoreAll assigns a relevance score to every candidate. Backend-scored
// candidates keep their score; unscored ones go through the scorer. Matched
// fields are computed either way for the result entry.
func (s *Searcher) scoreAll(q *SearchQuery, candidates []candidate) []scoredCandidate {
	boosts := q.FieldBoosts
	if len(boosts) == 0 {
		boosts = s.cfg.FieldBoosts
	}

	scored := make([]scoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		computed, matched := scoreEntity(q.Text, c.entity, boosts, q.CaseSensitive, q.ExactMatch)

		score := computed
		if c.prior.valid {
			score = clampScore(c.prior.score)
		}

		scored = append(scored, scoredCandidate{candidate: c, score: score, matched: matched})
	}
	return scored
}

// assemble builds the immutable result page from ranked candidates,
// dropping entries below the effective minimum relevance.
func (s *Searcher) assemble(q *SearchQuery, scored []scoredCandidate, total int) *types.SearchResults {
	minRelevance := q.minRelevance(s.cfg.DefaultMinRelevance)

	results := make([]types.SearchResult, 0, len(scored))
	counts := make(map[types.EntityType]int)
	var sum float64
	high := 0

	for _, sc := range scored {
		if sc.score < minRelevance {
			continue
		}

		results = append(results, types.SearchResult{
			Rank:           len(results) + 1,
			EntityID:       sc.entity.ID,
			EntityType:     sc.entity.EntityType,
			Kind:           matchKind(q, sc.entity),
			Title:          sc.entity.Title,
			Snippet:        makeSnippet(sc.entity.Content, q.Text, q.Highlight),
			RelevanceScore: sc.score,
			Strategy:       sc.strategy,
			MatchedFields:  sc.matched,
			Query:          q.Text,
			Metadata:       sc.entity.Metadata,
		})

		counts[sc.entity.EntityType]++
		sum += sc.score
		if sc.score >= highRelevanceThreshold {
			high++
		}
	}

	page := &types.SearchResults{
		Query:              q.Text,
		TotalCount:         total,
		Results:            results,
		CountsByType:       counts,
		HighRelevanceCount: high,
	}
	if len(results) > 0 {
		page.AvgRelevance = sum / float64(len(results))
	}
	return page
}

// matchKind classifies a hit: "exact" when the whole query appears verbatim
// in a primary field, "fuzzy" otherwise
func matchKind(q *SearchQuery, entity *types.Entity) string {
	needle := strings.ToLower(q.Text)
	if strings.Contains(strings.ToLower(entity.Title), needle) ||
		strings.Contains(strings.ToLower(entity.Content), needle) {
		return types.MatchExact
	}
	return types.MatchFuzzy
}

// Metrics returns a snapshot of the engine's running statistics
func (s *Searcher) Metrics() Metrics {
	return s.metrics.snapshot()
}

// ResetMetrics clears the running statistics
func (s *Searcher) ResetMetrics() {
	s.metrics.reset()
}

// PurgeExpiredCache removes expired cache entries and reports how many were
// dropped
func (s *Searcher) PurgeExpiredCache() int {
	return s.cache.purgeExpired()
}

// InvalidateCache drops every cached page. Call after bulk entity mutations.
func (s *Searcher) InvalidateCache() {
	s.cache.invalidate()
}

// CachedPages reports the number of cached entries, expired or not
func (s *Searcher) CachedPages() int {
	return s.cache.len()
}

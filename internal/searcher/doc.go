// Package searcher implements search and relevance ranking over workspace
// entities.
//
// The searcher turns a free-text query plus structured filters into a ranked
// page of results drawn from heterogeneous entities (work items, tasks,
// documents, summaries, evidence, sessions). Two interchangeable retrieval
// strategies feed one scoring and ranking pipeline:
//   - Indexed: the storage backend's FTS5 index with BM25 scoring
//   - Fallback: a linear substring scan over raw records
//
// # Basic Usage
//
//	s := searcher.New(store)
//
//	page, err := s.Search(ctx, searcher.SearchQuery{
//	    Text:  "OAuth2 token refresh",
//	    Limit: 10,
//	})
//
//	for _, result := range page.Results {
//	    fmt.Printf("[%d] %s (score: %.2f, via %s)\n",
//	        result.Rank, result.Title, result.RelevanceScore, result.Strategy)
//	}
//
// # Retrieval Strategies
//
// Every query tries the indexed path first. Any index-level problem (missing
// FTS5 module, rejected syntax, timeout) silently switches the call
// to the fallback scan; the caller never sees a single strategy fail. Only
// when both strategies are exhausted does Search return an error, a
// *RetrievalFailedError naming the query and the strategies attempted.
//
// # Scoring
//
// Indexed hits keep their backend BM25 score (normalized to (0, 1]).
// Fallback hits are scored per field: an exact substring match of the whole
// query scores 1.0, otherwise Jaccard similarity between the tokenized query
// and tokenized field. Field scores are weighted (title 2.0, description
// 1.5, content 1.0, tags 1.2, metadata 0.8 by default), the weighted maximum
// is the base, and each additional matching field adds +5% up to +20%.
// Scores are always clamped to [0, 1].
//
// # Ranking
//
// Three boost passes run in fixed order before the final sort:
//  1. Recency: up to +10%, relative to the newest candidate in the result
//     set, decaying linearly to zero at 30 days older.
//  2. Completeness: entities with more than 80% of {title, content, tags,
//     metadata} present earn up to +10% proportional to the excess.
//  3. Popularity: reserved extension point, currently identity.
//
// The final order is deterministic: descending adjusted score, ties broken
// by ascending entity id. Identical queries over unchanged data always
// return identical pages.
//
// # Caching
//
// Full ranked pages are memoized per canonical query hash with a TTL
// (default one hour) inside an LRU. Expired entries behave as misses and are
// lazily dropped; PurgeExpiredCache sweeps them eagerly. Cached pages are
// deep-copied in both directions, so a returned page can never mutate the
// cache.
//
// # Metrics
//
// The engine keeps O(1) running statistics: query and cache-hit counts,
// incremental means for latency, result count, and relevance, plus
// zero-result and high-relevance ratios. Metrics() snapshots them,
// ResetMetrics() clears them. Nothing persists across restarts.
//
// # Concurrency
//
// A Searcher is safe for concurrent use. Retrieval, scoring, and ranking
// are pure per call; only the cache and metrics accumulator are shared, each
// behind its own narrow mutex. Concurrent identical queries share a single
// retrieval via singleflight.
package searcher

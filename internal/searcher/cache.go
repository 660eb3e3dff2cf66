package searcher

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/workdex/workdex-mcp/pkg/types"
)

// cacheEntry represents a cached result page with expiration time
type cacheEntry struct {
	page      *types.SearchResults
	createdAt time.Time
	expiresAt time.Time
}

// resultCache memoizes full ranked pages per canonical query hash with TTL
// expiry. The LRU bounds growth; expired entries behave as misses and are
// lazily discarded.
type resultCache struct {
	mu  sync.RWMutex
	lru *lru.Cache[[32]byte, *cacheEntry]
	ttl time.Duration
}

// newResultCache creates a cache holding up to size entries
func newResultCache(size int, ttl time.Duration) *resultCache {
	// lru.New only fails on a non-positive size, which Config.withDefaults
	// has already ruled out
	cache, err := lru.New[[32]byte, *cacheEntry](size)
	if err != nil {
		panic(err)
	}
	return &resultCache{lru: cache, ttl: ttl}
}

// get returns a deep copy of the cached page, or nil on miss. Expired and
// undecodable entries are removed and treated as misses.
func (c *resultCache) get(key [32]byte) *types.SearchResults {
	now := time.Now()

	c.mu.RLock()
	entry, found := c.lru.Get(key)
	if !found {
		c.mu.RUnlock()
		return nil
	}

	// A nil page means the entry can no longer be decoded; discard it the
	// same way as an expired one
	if entry == nil || entry.page == nil || now.After(entry.expiresAt) {
		c.mu.RUnlock()
		c.mu.Lock()
		c.lru.Remove(key)
		c.mu.Unlock()
		return nil
	}

	page := copyResults(entry.page)
	c.mu.RUnlock()
	return page
}

// put stores a deep copy of the page under the query hash
func (c *resultCache) put(key [32]byte, page *types.SearchResults) {
	now := time.Now()
	entry := &cacheEntry{
		page:      copyResults(page),
		createdAt: now,
		expiresAt: now.Add(c.ttl),
	}

	c.mu.Lock()
	c.lru.Add(key, entry)
	c.mu.Unlock()
}

// purgeExpired removes every expired entry and returns how many were dropped
func (c *resultCache) purgeExpired() int {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	purged := 0
	for _, key := range c.lru.Keys() {
		entry, found := c.lru.Peek(key)
		if !found {
			continue
		}
		if entry == nil || entry.page == nil || now.After(entry.expiresAt) {
			c.lru.Remove(key)
			purged++
		}
	}
	return purged
}

// invalidate drops every cached page
func (c *resultCache) invalidate() {
	c.mu.Lock()
	c.lru.Purge()
	c.mu.Unlock()
}

// len reports the number of live entries, expired or not
func (c *resultCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lru.Len()
}

// copyResults creates a deep copy of a result page so cached data can never
// be mutated through a returned reference
func copyResults(src *types.SearchResults) *types.SearchResults {
	if src == nil {
		return nil
	}

	dst := &types.SearchResults{
		Query:              src.Query,
		TotalCount:         src.TotalCount,
		Duration:           src.Duration,
		AvgRelevance:       src.AvgRelevance,
		HighRelevanceCount: src.HighRelevanceCount,
		Results:            make([]types.SearchResult, len(src.Results)),
	}

	for i, result := range src.Results {
		copied := result
		if len(result.MatchedFields) > 0 {
			copied.MatchedFields = append([]string(nil), result.MatchedFields...)
		}
		if len(result.Metadata) > 0 {
			copied.Metadata = make(map[string]string, len(result.Metadata))
			for k, v := range result.Metadata {
				copied.Metadata[k] = v
			}
		}
		dst.Results[i] = copied
	}

	if len(src.CountsByType) > 0 {
		dst.CountsByType = make(map[types.EntityType]int, len(src.CountsByType))
		for k, v := range src.CountsByType {
			dst.CountsByType[k] = v
		}
	}

	return dst
}

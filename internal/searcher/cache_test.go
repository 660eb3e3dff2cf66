package searcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workdex/workdex-mcp/pkg/types"
)

func cachePage(query string) *types.SearchResults {
	return &types.SearchResults{
		Query:      query,
		TotalCount: 1,
		Results: []types.SearchResult{{
			Rank:           1,
			EntityID:       "task-1",
			EntityType:     types.EntityTask,
			Kind:           types.MatchExact,
			Title:          "t",
			RelevanceScore: 0.9,
			Strategy:       types.StrategyIndexed,
			MatchedFields:  []string{FieldTitle},
			Metadata:       map[string]string{"k": "v"},
		}},
		CountsByType: map[types.EntityType]int{types.EntityTask: 1},
	}
}

func TestResultCache_HitAndMiss(t *testing.T) {
	cache := newResultCache(10, time.Hour)
	key := [32]byte{1}

	assert.Nil(t, cache.get(key))

	cache.put(key, cachePage("q"))
	got := cache.get(key)
	require.NotNil(t, got)
	assert.Equal(t, "q", got.Query)
	assert.Equal(t, 1, cache.len())
}

func TestResultCache_DeepCopies(t *testing.T) {
	cache := newResultCache(10, time.Hour)
	key := [32]byte{1}

	original := cachePage("q")
	cache.put(key, original)

	// Mutating the stored page must not leak into the cache
	original.Results[0].Title = "mutated"
	original.Results[0].Metadata["k"] = "mutated"

	got := cache.get(key)
	require.NotNil(t, got)
	assert.Equal(t, "t", got.Results[0].Title)
	assert.Equal(t, "v", got.Results[0].Metadata["k"])

	// Mutating a returned page must not affect later reads
	got.Results[0].MatchedFields[0] = "mutated"
	again := cache.get(key)
	assert.Equal(t, FieldTitle, again.Results[0].MatchedFields[0])
}

func TestResultCache_TTLExpiry(t *testing.T) {
	cache := newResultCache(10, 10*time.Millisecond)
	key := [32]byte{1}

	cache.put(key, cachePage("q"))
	require.NotNil(t, cache.get(key))

	time.Sleep(20 * time.Millisecond)
	assert.Nil(t, cache.get(key), "expired entry behaves as a miss")
	assert.Equal(t, 0, cache.len(), "expired entry is removed on access")
}

func TestResultCache_CorruptEntryIsMiss(t *testing.T) {
	cache := newResultCache(10, time.Hour)
	key := [32]byte{1}

	cache.put(key, nil)
	assert.Nil(t, cache.get(key))
	assert.Equal(t, 0, cache.len())
}

func TestResultCache_PurgeExpired(t *testing.T) {
	cache := newResultCache(10, 10*time.Millisecond)
	cache.put([32]byte{1}, cachePage("a"))
	cache.put([32]byte{2}, cachePage("b"))

	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, 2, cache.len())
	assert.Equal(t, 2, cache.purgeExpired())
	assert.Equal(t, 0, cache.len())
}

func TestResultCache_Invalidate(t *testing.T) {
	cache := newResultCache(10, time.Hour)
	cache.put([32]byte{1}, cachePage("a"))
	cache.put([32]byte{2}, cachePage("b"))

	cache.invalidate()
	assert.Equal(t, 0, cache.len())
	assert.Nil(t, cache.get([32]byte{1}))
}

func TestResultCache_LRUEviction(t *testing.T) {
	cache := newResultCache(2, time.Hour)
	cache.put([32]byte{1}, cachePage("a"))
	cache.put([32]byte{2}, cachePage("b"))
	cache.put([32]byte{3}, cachePage("c"))

	assert.Equal(t, 2, cache.len())
	assert.Nil(t, cache.get([32]byte{1}), "oldest entry is evicted")
	assert.NotNil(t, cache.get([32]byte{3}))
}

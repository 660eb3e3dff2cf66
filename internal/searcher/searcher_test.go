package searcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workdex/workdex-mcp/internal/storage"
	"github.com/workdex/workdex-mcp/pkg/types"
)

// fakeStorage implements storage.Storage with programmable search behavior
type fakeStorage struct {
	mu sync.Mutex

	indexedResults []storage.IndexedResult
	indexedTotal   int
	indexedErr     error
	indexedCalls   int

	scanResults []*types.Entity
	scanTotal   int
	scanErr     error
	scanCalls   int
}

func (f *fakeStorage) UpsertEntity(ctx context.Context, entity *types.Entity) error { return nil }
func (f *fakeStorage) GetEntity(ctx context.Context, id string) (*types.Entity, error) {
	return nil, storage.ErrNotFound
}
func (f *fakeStorage) DeleteEntity(ctx context.Context, id string) error { return nil }
func (f *fakeStorage) CountEntities(ctx context.Context) (int, error)    { return 0, nil }
func (f *fakeStorage) Close() error                                      { return nil }

func (f *fakeStorage) SearchIndexed(ctx context.Context, query string, pred *storage.Predicates, limit, offset int) ([]storage.IndexedResult, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexedCalls++
	if f.indexedErr != nil {
		return nil, 0, f.indexedErr
	}
	return f.indexedResults, f.indexedTotal, nil
}

func (f *fakeStorage) ScanEntities(ctx context.Context, needle string, pred *storage.Predicates, limit, offset int) ([]*types.Entity, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scanCalls++
	if f.scanErr != nil {
		return nil, 0, f.scanErr
	}
	return f.scanResults, f.scanTotal, nil
}

func (f *fakeStorage) calls() (indexed, scan int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.indexedCalls, f.scanCalls
}

// fakeNow keeps recency boosts identical across fake entities
var fakeNow = time.Now()

func fakeEntity(id, title, content string) *types.Entity {
	return &types.Entity{
		ID:         id,
		EntityType: types.EntityTask,
		Title:      title,
		Content:    content,
		UpdatedAt:  fakeNow,
	}
}

func TestSearch_InvalidQueryNeverReachesStorage(t *testing.T) {
	store := &fakeStorage{}
	s := New(store)

	_, err := s.Search(context.Background(), SearchQuery{Text: "   "})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = s.Search(context.Background(), SearchQuery{Text: "q", Limit: -5})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	indexed, scan := store.calls()
	assert.Zero(t, indexed, "invalid queries must not hit the backend")
	assert.Zero(t, scan)
}

func TestSearch_IndexedStrategy(t *testing.T) {
	store := &fakeStorage{
		indexedResults: []storage.IndexedResult{
			{Entity: fakeEntity("task-1", "OAuth2 token refresh", "refresh path"), Score: 0.9},
			{Entity: fakeEntity("task-2", "token cleanup", "sweep job"), Score: 0.4},
		},
		indexedTotal: 2,
	}
	s := New(store)

	page, err := s.Search(context.Background(), SearchQuery{Text: "token"})
	require.NoError(t, err)

	assert.Equal(t, 2, page.TotalCount)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "task-1", page.Results[0].EntityID)
	assert.Equal(t, 1, page.Results[0].Rank)
	assert.Equal(t, 2, page.Results[1].Rank)
	assert.Equal(t, types.StrategyIndexed, page.Results[0].Strategy)
	assert.Equal(t, types.MatchExact, page.Results[0].Kind)

	_, scan := store.calls()
	assert.Zero(t, scan, "fallback must not run when the index serves the query")
}

func TestSearch_FallsBackWhenIndexUnavailable(t *testing.T) {
	store := &fakeStorage{
		indexedErr:  storage.ErrIndexUnavailable,
		scanResults: []*types.Entity{fakeEntity("task-1", "token refresh", "body")},
		scanTotal:   1,
	}
	s := New(store)

	page, err := s.Search(context.Background(), SearchQuery{Text: "token refresh"})
	require.NoError(t, err, "index failure must be absorbed by the fallback")

	require.Len(t, page.Results, 1)
	assert.Equal(t, types.StrategyFallback, page.Results[0].Strategy)
	assert.Greater(t, page.Results[0].RelevanceScore, 0.0, "fallback hits are scored locally")

	indexed, scan := store.calls()
	assert.Equal(t, 1, indexed)
	assert.Equal(t, 1, scan)
}

func TestSearch_BothStrategiesExhausted(t *testing.T) {
	store := &fakeStorage{
		indexedErr: storage.ErrIndexUnavailable,
		scanErr:    errors.New("disk gone"),
	}
	s := New(store)

	_, err := s.Search(context.Background(), SearchQuery{Text: "token"})
	require.Error(t, err)

	var failed *RetrievalFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, "token", failed.Query)
	assert.Equal(t, []types.SearchStrategy{types.StrategyIndexed, types.StrategyFallback}, failed.Attempted)
	assert.NotNil(t, failed.IndexedErr)
	assert.NotNil(t, failed.FallbackErr)
}

func TestSearch_CacheHitSkipsRetrieval(t *testing.T) {
	store := &fakeStorage{
		indexedResults: []storage.IndexedResult{
			{Entity: fakeEntity("task-1", "token refresh", "body"), Score: 0.9},
		},
		indexedTotal: 1,
	}
	s := New(store)

	first, err := s.Search(context.Background(), SearchQuery{Text: "token"})
	require.NoError(t, err)

	second, err := s.Search(context.Background(), SearchQuery{Text: "token"})
	require.NoError(t, err)

	indexed, _ := store.calls()
	assert.Equal(t, 1, indexed, "second identical query must be served from cache")
	assert.Equal(t, first.Results, second.Results)

	metrics := s.Metrics()
	assert.Equal(t, int64(2), metrics.TotalQueries)
	assert.Equal(t, int64(1), metrics.CacheHits)
}

func TestSearch_CacheDisabled(t *testing.T) {
	store := &fakeStorage{indexedTotal: 0}
	s := New(store, WithConfig(Config{CacheEnabled: false}))

	_, err := s.Search(context.Background(), SearchQuery{Text: "token"})
	require.NoError(t, err)
	_, err = s.Search(context.Background(), SearchQuery{Text: "token"})
	require.NoError(t, err)

	indexed, _ := store.calls()
	assert.Equal(t, 2, indexed)
	assert.Equal(t, 0, s.CachedPages())
}

func TestSearch_InvalidateCacheForcesRefetch(t *testing.T) {
	store := &fakeStorage{
		indexedResults: []storage.IndexedResult{
			{Entity: fakeEntity("task-1", "token refresh", "body"), Score: 0.9},
		},
		indexedTotal: 1,
	}
	s := New(store)

	_, err := s.Search(context.Background(), SearchQuery{Text: "token"})
	require.NoError(t, err)
	assert.Equal(t, 1, s.CachedPages())

	s.InvalidateCache()
	assert.Equal(t, 0, s.CachedPages())

	_, err = s.Search(context.Background(), SearchQuery{Text: "token"})
	require.NoError(t, err)

	indexed, _ := store.calls()
	assert.Equal(t, 2, indexed)
}

func TestSearch_MinRelevanceFiltersPage(t *testing.T) {
	store := &fakeStorage{
		indexedResults: []storage.IndexedResult{
			{Entity: fakeEntity("task-1", "token refresh", "body"), Score: 0.9},
			{Entity: fakeEntity("task-2", "token sweep", "body"), Score: 0.1},
		},
		indexedTotal: 2,
	}
	s := New(store)

	page, err := s.Search(context.Background(), SearchQuery{
		Text:   "token",
		Filter: &Filter{MinRelevance: 0.5},
	})
	require.NoError(t, err)

	require.Len(t, page.Results, 1)
	assert.Equal(t, "task-1", page.Results[0].EntityID)
	assert.Equal(t, 2, page.TotalCount, "total reflects all backend matches")
}

func TestSearch_ResultPageIsIsolatedFromCache(t *testing.T) {
	store := &fakeStorage{
		indexedResults: []storage.IndexedResult{
			{Entity: fakeEntity("task-1", "token refresh", "body"), Score: 0.9},
		},
		indexedTotal: 1,
	}
	s := New(store)

	first, err := s.Search(context.Background(), SearchQuery{Text: "token"})
	require.NoError(t, err)
	first.Results[0].Title = "mutated"

	second, err := s.Search(context.Background(), SearchQuery{Text: "token"})
	require.NoError(t, err)
	assert.Equal(t, "token refresh", second.Results[0].Title)
}

func TestSearch_AggregatesOverPage(t *testing.T) {
	store := &fakeStorage{
		indexedResults: []storage.IndexedResult{
			{Entity: fakeEntity("task-1", "token refresh", "body"), Score: 0.9},
			{Entity: fakeEntity("doc-1", "token design", "body"), Score: 0.8},
		},
		indexedTotal: 2,
	}
	store.indexedResults[1].Entity.EntityType = types.EntityDocument
	s := New(store)

	page, err := s.Search(context.Background(), SearchQuery{Text: "token"})
	require.NoError(t, err)

	assert.Equal(t, 1, page.CountsByType[types.EntityTask])
	assert.Equal(t, 1, page.CountsByType[types.EntityDocument])
	assert.Greater(t, page.AvgRelevance, 0.0)
	assert.GreaterOrEqual(t, page.HighRelevanceCount, 1)
	assert.Greater(t, page.Duration, time.Duration(0))
}

func TestSearch_Deterministic(t *testing.T) {
	store := &fakeStorage{
		indexedResults: []storage.IndexedResult{
			{Entity: fakeEntity("b", "token two", "body"), Score: 0.5},
			{Entity: fakeEntity("a", "token one", "body"), Score: 0.5},
			{Entity: fakeEntity("c", "token three", "body"), Score: 0.5},
		},
		indexedTotal: 3,
	}
	s := New(store, WithConfig(Config{CacheEnabled: false}))

	first, err := s.Search(context.Background(), SearchQuery{Text: "token"})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		page, err := s.Search(context.Background(), SearchQuery{Text: "token"})
		require.NoError(t, err)
		require.Len(t, page.Results, len(first.Results))
		for j := range page.Results {
			assert.Equal(t, first.Results[j].EntityID, page.Results[j].EntityID)
			assert.Equal(t, first.Results[j].RelevanceScore, page.Results[j].RelevanceScore)
		}
	}

	// Equal adjusted scores order by ascending entity id
	assert.Equal(t, "a", first.Results[0].EntityID)
	assert.Equal(t, "b", first.Results[1].EntityID)
	assert.Equal(t, "c", first.Results[2].EntityID)
}

func TestSearch_SortInvariant(t *testing.T) {
	store := &fakeStorage{
		indexedResults: []storage.IndexedResult{
			{Entity: fakeEntity("a", "token one", "body"), Score: 0.3},
			{Entity: fakeEntity("b", "token two", "body"), Score: 0.9},
			{Entity: fakeEntity("c", "token three", "body"), Score: 0.6},
		},
		indexedTotal: 3,
	}
	s := New(store)

	page, err := s.Search(context.Background(), SearchQuery{Text: "token"})
	require.NoError(t, err)

	for i := 1; i < len(page.Results); i++ {
		assert.GreaterOrEqual(t, page.Results[i-1].RelevanceScore, page.Results[i].RelevanceScore)
		assert.Equal(t, i+1, page.Results[i].Rank)
	}
}

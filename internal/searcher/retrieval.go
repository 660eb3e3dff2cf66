package searcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/workdex/workdex-mcp/internal/storage"
	"github.com/workdex/workdex-mcp/pkg/types"
)

// indexedRetriever queries the storage backend's native full-text index.
// Hits arrive already scored by BM25.
type indexedRetriever struct {
	store storage.Storage
}

// retrieve returns one page of scored candidates plus the total match count.
// Any index-level problem is reported as ErrRetrievalUnavailable so the
// orchestrator can switch strategy; it is never a terminal failure here.
func (r *indexedRetriever) retrieve(ctx context.Context, q *SearchQuery) ([]candidate, int, error) {
	rows, total, err := r.store.SearchIndexed(ctx, q.Text, q.predicates(), q.Limit, q.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRetrievalUnavailable, err)
	}

	candidates := make([]candidate, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, candidate{
			entity:   row.Entity,
			prior:    scoredPrior(row.Score),
			strategy: types.StrategyIndexed,
		})
	}
	return candidates, total, nil
}

// fallbackRetriever walks raw entity records with substring predicates. Used
// when the indexed path is unavailable. Hits arrive unscored.
type fallbackRetriever struct {
	store storage.Storage
}

func (r *fallbackRetriever) retrieve(ctx context.Context, q *SearchQuery) ([]candidate, int, error) {
	needle := strings.ToLower(q.Text)

	rows, total, err := r.store.ScanEntities(ctx, needle, q.predicates(), q.Limit, q.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("fallback scan failed: %w", err)
	}

	candidates := make([]candidate, 0, len(rows))
	for _, entity := range rows {
		candidates = append(candidates, candidate{
			entity:   entity,
			prior:    unscored(),
			strategy: types.StrategyFallback,
		})
	}
	return candidates, total, nil
}

package searcher

import (
	"sync"
	"time"

	"github.com/workdex/workdex-mcp/pkg/types"
)

// highRelevanceThreshold marks a result as highly relevant
const highRelevanceThreshold = 0.8

// Metrics is a point-in-time snapshot of the engine's running statistics
type Metrics struct {
	TotalQueries      int64
	CacheHits         int64
	ZeroResultQueries int64

	AvgLatency     time.Duration
	AvgResultCount float64
	AvgRelevance   float64

	CacheHitRatio      float64
	ZeroResultRatio    float64
	HighRelevanceRatio float64 // Share of returned results scoring >= 0.8
}

// metricsCollector accumulates running aggregates across the engine
// instance's lifetime. All updates are O(1) and never block retrieval; the
// mutex guards only the accumulator itself.
type metricsCollector struct {
	mu sync.Mutex

	totalQueries      int64
	cacheHits         int64
	zeroResultQueries int64

	avgLatencyMs   float64
	avgResultCount float64
	avgRelevance   float64

	totalResults         int64
	highRelevanceResults int64
}

func newMetricsCollector() *metricsCollector {
	return &metricsCollector{}
}

// record folds one result page into the running aggregates using the
// incremental mean avg' = avg + (sample - avg)/n
func (m *metricsCollector) record(page *types.SearchResults, cacheHit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalQueries++
	n := float64(m.totalQueries)

	if cacheHit {
		m.cacheHits++
	}
	if page.TotalCount == 0 {
		m.zeroResultQueries++
	}

	m.avgLatencyMs += (float64(page.Duration)/float64(time.Millisecond) - m.avgLatencyMs) / n
	m.avgResultCount += (float64(len(page.Results)) - m.avgResultCount) / n
	m.avgRelevance += (page.AvgRelevance - m.avgRelevance) / n

	m.totalResults += int64(len(page.Results))
	m.highRelevanceResults += int64(page.HighRelevanceCount)
}

// snapshot returns a copy of the current aggregates
func (m *metricsCollector) snapshot() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Metrics{
		TotalQueries:      m.totalQueries,
		CacheHits:         m.cacheHits,
		ZeroResultQueries: m.zeroResultQueries,
		AvgLatency:        time.Duration(m.avgLatencyMs * float64(time.Millisecond)),
		AvgResultCount:    m.avgResultCount,
		AvgRelevance:      m.avgRelevance,
	}

	if m.totalQueries > 0 {
		snap.CacheHitRatio = float64(m.cacheHits) / float64(m.totalQueries)
		snap.ZeroResultRatio = float64(m.zeroResultQueries) / float64(m.totalQueries)
	}
	if m.totalResults > 0 {
		snap.HighRelevanceRatio = float64(m.highRelevanceResults) / float64(m.totalResults)
	}

	return snap
}

// reset clears all aggregates
func (m *metricsCollector) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalQueries = 0
	m.cacheHits = 0
	m.zeroResultQueries = 0
	m.avgLatencyMs = 0
	m.avgResultCount = 0
	m.avgRelevance = 0
	m.totalResults = 0
	m.highRelevanceResults = 0
}

package types

import "time"

// SearchStrategy identifies which retrieval path produced a result
type SearchStrategy string

const (
	StrategyIndexed  SearchStrategy = "indexed"
	StrategyFallback SearchStrategy = "fallback"
)

// Match kinds classify how a result matched the query
const (
	MatchExact = "exact" // Whole query found verbatim in a primary field
	MatchFuzzy = "fuzzy" // Term-overlap or index-level match only
)

// SearchResult represents a single ranked search hit
type SearchResult struct {
	// Identification
	Rank       int // Position in result set (1-based)
	EntityID   string
	EntityType EntityType
	Kind       string // Match classification (MatchExact, MatchFuzzy)

	// Content
	Title   string
	Snippet string // Bounded excerpt centered on the first match

	// Scoring
	RelevanceScore float64        // Normalized to [0, 1]
	Strategy       SearchStrategy // Retrieval path that found this entity
	MatchedFields  []string       // Fields where the query matched

	// Context
	Query    string
	Metadata map[string]string
}

// Validate checks if the search result is well-formed
func (sr *SearchResult) Validate() error {
	if sr.EntityID == "" {
		return ErrInvalidEntityID
	}
	if sr.Rank < 1 {
		return ErrInvalidRank
	}
	if sr.RelevanceScore < 0 || sr.RelevanceScore > 1 {
		return ErrInvalidRelevanceScore
	}
	return nil
}

// SearchResults is the full ranked page returned for one query.
// It is immutable once constructed.
type SearchResults struct {
	Query      string
	TotalCount int // All matches, independent of the page sliced
	Results    []SearchResult
	Duration   time.Duration

	// Aggregates over the returned page
	AvgRelevance       float64
	HighRelevanceCount int // Results with score >= 0.8
	CountsByType       map[EntityType]int
}

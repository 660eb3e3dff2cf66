package searcher

import (
	"github.com/workdex/workdex-mcp/pkg/types"
)

// prior is the tagged relevance variant on a candidate: Scored carries a
// backend-assigned value, Unscored means the engine must compute one.
// Dispatch is a branch on the tag, never a nil check.
type prior struct {
	score float64
	valid bool
}

// scoredPrior tags a candidate with a backend-computed relevance
func scoredPrior(score float64) prior {
	return prior{score: score, valid: true}
}

// unscored tags a candidate whose relevance the engine must compute
func unscored() prior {
	return prior{}
}

// candidate is an unranked retrieval hit before scoring and boosting. It
// lives only within one Search call.
type candidate struct {
	entity   *types.Entity
	prior    prior
	strategy types.SearchStrategy
}

// scoredCandidate is a candidate with its final pre-boost score and the
// fields the query matched
type scoredCandidate struct {
	candidate
	score   float64
	matched []string
}

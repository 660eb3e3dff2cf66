package types

import "errors"

// Domain errors for type validation
var (
	// Search result errors
	ErrInvalidEntityID       = errors.New("invalid entity ID")
	ErrInvalidRank           = errors.New("rank must be >= 1")
	ErrInvalidRelevanceScore = errors.New("relevance score must be between 0 and 1")
)

package searcher

import (
	"errors"
	"fmt"

	"github.com/workdex/workdex-mcp/pkg/types"
)

var (
	// ErrInvalidQuery is returned for malformed input: empty or
	// whitespace-only query text, or out-of-range limit/offset. It is always
	// reported to the caller and never retried.
	ErrInvalidQuery = errors.New("invalid search query")

	// ErrRetrievalUnavailable marks a single retrieval strategy as down. It
	// is recovered internally by switching strategy and never surfaces alone.
	ErrRetrievalUnavailable = errors.New("retrieval strategy unavailable")
)

// RetrievalFailedError is returned when every retrieval strategy has been
// exhausted. It is the only retrieval failure a caller ever sees.
type RetrievalFailedError struct {
	Query       string
	Attempted   []types.SearchStrategy
	IndexedErr  error
	FallbackErr error
}

func (e *RetrievalFailedError) Error() string {
	return fmt.Sprintf("search failed for %q after %d strategies: indexed=%v, fallback=%v",
		e.Query, len(e.Attempted), e.IndexedErr, e.FallbackErr)
}

// Unwrap exposes the fallback error, which is the one that sealed the failure
func (e *RetrievalFailedError) Unwrap() error {
	return e.FallbackErr
}

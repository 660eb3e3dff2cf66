package storage

import (
	"context"
	"errors"
	"time"

	"github.com/workdex/workdex-mcp/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrIndexUnavailable is returned when the full-text index cannot serve a
	// query (missing FTS module, unbuilt index, query syntax rejected).
	// Callers are expected to fall back to a linear scan.
	ErrIndexUnavailable = errors.New("full-text index unavailable")
)

// Storage defines the interface for persisting and querying workspace entities
type Storage interface {
	// Entity operations
	UpsertEntity(ctx context.Context, entity *types.Entity) error
	GetEntity(ctx context.Context, id string) (*types.Entity, error)
	DeleteEntity(ctx context.Context, id string) error
	CountEntities(ctx context.Context) (int, error)

	// SearchIndexed queries the native full-text index. The query text is
	// sanitized before it reaches MATCH clause composition. Returns one page
	// of scored rows plus the total match count across all pages. Index
	// problems are reported as ErrIndexUnavailable, never as terminal
	// failures.
	SearchIndexed(ctx context.Context, query string, pred *Predicates, limit, offset int) ([]IndexedResult, int, error)

	// ScanEntities performs a linear substring scan over title and content.
	// The needle must be lowercased by the caller. Rows carry no score.
	ScanEntities(ctx context.Context, needle string, pred *Predicates, limit, offset int) ([]*types.Entity, int, error)

	// Database operations
	Close() error
}

// Predicates narrows a search to entities matching structured conditions.
// All values are enumerated or pre-validated; no free text ever reaches
// structural clause composition.
type Predicates struct {
	EntityTypes     []string            // Entity type whitelist
	EntityIDs       []string            // Specific entity IDs
	StatusByType    map[string][]string // Allowed statuses per entity type
	ProjectID       string              // Project scope
	Tags            []string            // Entities must carry every tag listed
	CreatedBy       string              // Creator filter
	CreatedAfter    time.Time
	CreatedBefore   time.Time
	UpdatedAfter    time.Time
	UpdatedBefore   time.Time
	IncludeArchived bool
}

// IndexedResult is a row returned by the full-text index with its
// backend-computed relevance, normalized to (0, 1].
type IndexedResult struct {
	Entity *types.Entity
	Score  float64
}

package searcher

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/workdex/workdex-mcp/internal/storage"
	"github.com/workdex/workdex-mcp/pkg/types"
)

// ScopeAll searches across every entity type
const ScopeAll = "all"

// SearchQuery contains parameters for a search operation
type SearchQuery struct {
	Text          string
	Scope         string // Entity type to search within, or "all"
	Filter        *Filter
	Limit         int
	Offset        int
	CaseSensitive bool
	ExactMatch    bool // Only exact substring matches count
	Highlight     bool // Wrap matched terms in the snippet
	FieldBoosts   map[string]float64
}

// Filter narrows search results to entities matching structured conditions
type Filter struct {
	EntityTypes     []types.EntityType
	EntityIDs       []string
	StatusByType    map[types.EntityType][]string
	ProjectID       string
	Tags            []string
	CreatedBy       string
	CreatedAfter    time.Time
	CreatedBefore   time.Time
	UpdatedAfter    time.Time
	UpdatedBefore   time.Time
	MinRelevance    float64
	IncludeArchived bool
}

// normalizeQuery validates a query and returns a normalized copy: trimmed
// text, clamped limit, defaulted scope. Malformed input is ErrInvalidQuery.
func normalizeQuery(q SearchQuery, maxResults int) (SearchQuery, error) {
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return q, fmt.Errorf("%w: query text cannot be empty", ErrInvalidQuery)
	}

	if q.Limit < 0 {
		return q, fmt.Errorf("%w: limit cannot be negative", ErrInvalidQuery)
	}
	if q.Offset < 0 {
		return q, fmt.Errorf("%w: offset cannot be negative", ErrInvalidQuery)
	}

	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > maxResults {
		q.Limit = maxResults
	}

	if q.Scope == "" {
		q.Scope = ScopeAll
	}
	if q.Scope != ScopeAll && !types.ValidEntityType(types.EntityType(q.Scope)) {
		return q, fmt.Errorf("%w: unknown scope %q", ErrInvalidQuery, q.Scope)
	}

	if q.Filter != nil {
		for _, t := range q.Filter.EntityTypes {
			if !types.ValidEntityType(t) {
				return q, fmt.Errorf("%w: unknown entity type %q", ErrInvalidQuery, t)
			}
		}
	}

	return q, nil
}

// predicates translates the query's scope and filter into storage predicates.
// Only validated, enumerated values are passed down.
func (q *SearchQuery) predicates() *storage.Predicates {
	pred := &storage.Predicates{}

	if q.Scope != ScopeAll {
		pred.EntityTypes = []string{q.Scope}
	}

	f := q.Filter
	if f == nil {
		return pred
	}

	if len(f.EntityTypes) > 0 {
		pred.EntityTypes = pred.EntityTypes[:0]
		for _, t := range f.EntityTypes {
			// Scope restricts the filter set rather than widening it
			if q.Scope != ScopeAll && string(t) != q.Scope {
				continue
			}
			pred.EntityTypes = append(pred.EntityTypes, string(t))
		}
		if len(pred.EntityTypes) == 0 && q.Scope != ScopeAll {
			pred.EntityTypes = []string{q.Scope}
		}
	}

	pred.EntityIDs = append(pred.EntityIDs, f.EntityIDs...)

	if len(f.StatusByType) > 0 {
		pred.StatusByType = make(map[string][]string, len(f.StatusByType))
		for t, statuses := range f.StatusByType {
			pred.StatusByType[string(t)] = statuses
		}
	}

	pred.ProjectID = f.ProjectID
	pred.Tags = f.Tags
	pred.CreatedBy = f.CreatedBy
	pred.CreatedAfter = f.CreatedAfter
	pred.CreatedBefore = f.CreatedBefore
	pred.UpdatedAfter = f.UpdatedAfter
	pred.UpdatedBefore = f.UpdatedBefore
	pred.IncludeArchived = f.IncludeArchived

	return pred
}

// minRelevance returns the effective minimum relevance threshold
func (q *SearchQuery) minRelevance(defaultMin float64) float64 {
	if q.Filter != nil && q.Filter.MinRelevance > 0 {
		return q.Filter.MinRelevance
	}
	return defaultMin
}

// hash computes a collision-resistant canonical hash for a normalized query.
// Identical queries always hash identically regardless of map ordering.
func (q *SearchQuery) hash() [32]byte {
	var data strings.Builder
	data.WriteString(q.Text)
	data.WriteString("|")
	data.WriteString(q.Scope)
	data.WriteString("|")
	fmt.Fprintf(&data, "%d|%d|%t|%t|%t", q.Limit, q.Offset, q.CaseSensitive, q.ExactMatch, q.Highlight)

	if len(q.FieldBoosts) > 0 {
		keys := make([]string, 0, len(q.FieldBoosts))
		for k := range q.FieldBoosts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		data.WriteString("|boosts:")
		for _, k := range keys {
			fmt.Fprintf(&data, "%s=%.2f,", k, q.FieldBoosts[k])
		}
	}

	if f := q.Filter; f != nil {
		data.WriteString("|filters:")
		writeEntityTypes(&data, f.EntityTypes)
		data.WriteString("|")
		data.WriteString(strings.Join(sortedCopy(f.EntityIDs), ","))
		data.WriteString("|")
		writeStatusByType(&data, f.StatusByType)
		data.WriteString("|")
		data.WriteString(f.ProjectID)
		data.WriteString("|")
		data.WriteString(strings.Join(sortedCopy(f.Tags), ","))
		data.WriteString("|")
		data.WriteString(f.CreatedBy)
		data.WriteString("|")
		writeTimes(&data, f.CreatedAfter, f.CreatedBefore, f.UpdatedAfter, f.UpdatedBefore)
		fmt.Fprintf(&data, "|%.2f|%t", f.MinRelevance, f.IncludeArchived)
	}

	return sha256.Sum256([]byte(data.String()))
}

func writeEntityTypes(b *strings.Builder, entityTypes []types.EntityType) {
	names := make([]string, 0, len(entityTypes))
	for _, t := range entityTypes {
		names = append(names, string(t))
	}
	sort.Strings(names)
	b.WriteString(strings.Join(names, ","))
}

func writeStatusByType(b *strings.Builder, statusByType map[types.EntityType][]string) {
	keys := make([]string, 0, len(statusByType))
	for t := range statusByType {
		keys = append(keys, string(t))
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(strings.Join(sortedCopy(statusByType[types.EntityType(k)]), ","))
		b.WriteString(";")
	}
}

func writeTimes(b *strings.Builder, times ...time.Time) {
	for _, t := range times {
		if t.IsZero() {
			b.WriteString("-,")
			continue
		}
		fmt.Fprintf(b, "%d,", t.UnixNano())
	}
}

func sortedCopy(values []string) []string {
	out := append([]string(nil), values...)
	sort.Strings(out)
	return out
}

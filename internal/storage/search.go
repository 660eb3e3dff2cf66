package storage

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/workdex/workdex-mcp/pkg/types"
)

// SearchIndexed performs BM25 full-text search using FTS5
func (s *SQLiteStorage) SearchIndexed(ctx context.Context, query string, pred *Predicates, limit, offset int) ([]IndexedResult, int, error) {
	// Sanitize query for FTS5
	sanitized := sanitizeFTSQuery(query)
	if sanitized == "" {
		return nil, 0, fmt.Errorf("%w: empty match expression", ErrIndexUnavailable)
	}

	where := `
		FROM entities_fts
		INNER JOIN entities e ON entities_fts.rowid = e.rowid
		WHERE entities_fts MATCH ?
	`
	args := []interface{}{sanitized}

	// Apply structured filters
	where, args = applyPredicates(where, args, pred)

	// Total match count across all pages, for pagination
	var total int
	countQuery := "SELECT COUNT(*)" + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}

	// Order by BM25 score (lower is better) and page in SQL
	pageQuery := fmt.Sprintf("SELECT %s, bm25(entities_fts) AS score", entityColumns) + where +
		" ORDER BY score, e.id LIMIT ? OFFSET ?"
	pageArgs := append(append([]interface{}{}, args...), limit, offset)

	rows, err := s.db.QueryContext(ctx, pageQuery, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]IndexedResult, 0, limit)
	for rows.Next() {
		var bm25 float64
		entity, err := scanEntity(rows, &bm25)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
		}

		// Convert BM25 score (negative, lower is better) to a positive
		// normalized score. BM25 scores are typically in range [-50, 0].
		normalized := 1.0 / (1.0 + math.Abs(bm25)/50.0)
		results = append(results, IndexedResult{Entity: entity, Score: normalized})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}

	return results, total, nil
}

// ScanEntities performs a linear case-insensitive substring scan over title
// and content. It is the retrieval path of last resort when the full-text
// index cannot serve a query.
func (s *SQLiteStorage) ScanEntities(ctx context.Context, needle string, pred *Predicates, limit, offset int) ([]*types.Entity, int, error) {
	where := `
		FROM entities e
		WHERE (instr(lower(e.title), ?) > 0 OR instr(lower(e.content), ?) > 0)
	`
	args := []interface{}{needle, needle}

	where, args = applyPredicates(where, args, pred)

	// Total matches independent of the page sliced
	var total int
	countQuery := "SELECT COUNT(*)" + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count scan matches: %w", err)
	}

	pageQuery := fmt.Sprintf("SELECT %s", entityColumns) + where + " ORDER BY e.id LIMIT ? OFFSET ?"
	pageArgs := append(append([]interface{}{}, args...), limit, offset)

	rows, err := s.db.QueryContext(ctx, pageQuery, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute entity scan: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entities := make([]*types.Entity, 0, limit)
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, 0, err
		}
		entities = append(entities, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return entities, total, nil
}

// applyPredicates appends WHERE clause conditions for structured filters.
// Every clause is parameterized; only enumerated column names appear in SQL.
func applyPredicates(query string, args []interface{}, pred *Predicates) (string, []interface{}) {
	if pred == nil {
		// Archived entities are excluded unless explicitly requested
		return query + " AND e.archived = 0", args
	}

	if len(pred.EntityTypes) > 0 {
		query += " AND e.entity_type IN (" + placeholders(len(pred.EntityTypes)) + ")"
		for _, t := range pred.EntityTypes {
			args = append(args, t)
		}
	}

	if len(pred.EntityIDs) > 0 {
		query += " AND e.id IN (" + placeholders(len(pred.EntityIDs)) + ")"
		for _, id := range pred.EntityIDs {
			args = append(args, id)
		}
	}

	query, args = applyStatusPredicates(query, args, pred.StatusByType)

	if pred.ProjectID != "" {
		query += " AND e.project_id = ?"
		args = append(args, pred.ProjectID)
	}

	// Every requested tag must be present in the stored comma-separated list.
	// Tag values are escaped so LIKE metacharacters in them match literally.
	for _, tag := range pred.Tags {
		query += ` AND (',' || e.tags || ',') LIKE ? ESCAPE '\'`
		args = append(args, "%,"+likeEscaper.Replace(tag)+",%")
	}

	if pred.CreatedBy != "" {
		query += " AND e.created_by = ?"
		args = append(args, pred.CreatedBy)
	}

	if !pred.CreatedAfter.IsZero() {
		query += " AND e.created_at >= ?"
		args = append(args, pred.CreatedAfter)
	}
	if !pred.CreatedBefore.IsZero() {
		query += " AND e.created_at <= ?"
		args = append(args, pred.CreatedBefore)
	}
	if !pred.UpdatedAfter.IsZero() {
		query += " AND e.updated_at >= ?"
		args = append(args, pred.UpdatedAfter)
	}
	if !pred.UpdatedBefore.IsZero() {
		query += " AND e.updated_at <= ?"
		args = append(args, pred.UpdatedBefore)
	}

	if !pred.IncludeArchived {
		query += " AND e.archived = 0"
	}

	return query, args
}

// applyStatusPredicates constrains statuses per entity type. Types without a
// status set remain unconstrained.
func applyStatusPredicates(query string, args []interface{}, statusByType map[string][]string) (string, []interface{}) {
	if len(statusByType) == 0 {
		return query, args
	}

	// Sort keys for deterministic SQL text
	constrained := make([]string, 0, len(statusByType))
	for t := range statusByType {
		if len(statusByType[t]) > 0 {
			constrained = append(constrained, t)
		}
	}
	if len(constrained) == 0 {
		return query, args
	}
	sort.Strings(constrained)

	clauses := make([]string, 0, len(constrained)+1)
	clauses = append(clauses, "e.entity_type NOT IN ("+placeholders(len(constrained))+")")
	for _, t := range constrained {
		args = append(args, t)
	}
	for _, t := range constrained {
		statuses := statusByType[t]
		clauses = append(clauses, "(e.entity_type = ? AND e.status IN ("+placeholders(len(statuses))+"))")
		args = append(args, t)
		for _, st := range statuses {
			args = append(args, st)
		}
	}

	query += " AND (" + strings.Join(clauses, " OR ") + ")"
	return query, args
}

// likeEscaper neutralizes LIKE metacharacters in user-supplied values
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// placeholders returns a comma-joined list of n SQL placeholders
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

// FTS5 operator pattern for escaping Boolean operators
var ftsOperatorPattern = regexp.MustCompile(`\b(AND|OR|NOT|NEAR)\b`)

// sanitizeFTSQuery sanitizes a search query for FTS5 to prevent injection
// attacks. Escapes special FTS5 operators and characters that could be used
// to alter the match expression structure.
func sanitizeFTSQuery(query string) string {
	if query == "" {
		return ""
	}

	// Replace special characters that have meaning in FTS5
	replacer := strings.NewReplacer(
		`"`, `""`, // Quote
		`*`, ` `, // Wildcard
		`(`, ` `, // Grouping
		`)`, ` `, // Grouping
		`^`, ` `, // Initial token match
		`:`, ` `, // Column filter
	)
	escaped := replacer.Replace(query)

	// Quote each remaining term so Boolean operators lose their meaning
	terms := strings.Fields(ftsOperatorPattern.ReplaceAllStringFunc(escaped, strings.ToLower))
	if len(terms) == 0 {
		return ""
	}
	for i, term := range terms {
		terms[i] = `"` + term + `"`
	}
	return strings.Join(terms, " ")
}

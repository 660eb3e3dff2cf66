package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/workdex/workdex-mcp/internal/searcher"
	"github.com/workdex/workdex-mcp/internal/storage"
	"github.com/workdex/workdex-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams   = -32602 // Invalid method parameters
	ErrorCodeInternalError   = -32603 // Internal JSON-RPC error
	ErrorCodeEntityNotFound  = -32001 // No entity with the requested ID
	ErrorCodeEmptyQuery      = -32004 // Query parameter is empty
	ErrorCodeSearchExhausted = -32005 // Every retrieval strategy failed
)

// handleSearchWorkspace handles the search_workspace tool invocation
func (s *Server) handleSearchWorkspace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	queryText, ok := args["query"].(string)
	if !ok || queryText == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", searcher.DefaultLimit)
	if limit < 1 || limit > searcher.DefaultMaxResults {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	offset := getIntDefault(args, "offset", 0)
	if offset < 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "offset cannot be negative", map[string]interface{}{
			"param": "offset",
			"value": offset,
		})
	}

	query := searcher.SearchQuery{
		Text:          queryText,
		Scope:         getStringDefault(args, "scope", searcher.ScopeAll),
		Limit:         limit,
		Offset:        offset,
		CaseSensitive: getBoolDefault(args, "case_sensitive", false),
		ExactMatch:    getBoolDefault(args, "exact_match", false),
		Highlight:     getBoolDefault(args, "highlight", false),
	}

	if rawFilters, ok := args["filters"].(map[string]interface{}); ok {
		filter, err := parseFilter(rawFilters)
		if err != nil {
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid filters", map[string]interface{}{
				"param":  "filters",
				"reason": err.Error(),
			})
		}
		query.Filter = filter
	}

	page, err := s.searcher.Search(ctx, query)
	if err != nil {
		var retrievalErr *searcher.RetrievalFailedError
		switch {
		case errors.Is(err, searcher.ErrInvalidQuery):
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid query", map[string]interface{}{
				"reason": err.Error(),
			})
		case errors.As(err, &retrievalErr):
			attempted := make([]string, 0, len(retrievalErr.Attempted))
			for _, strategy := range retrievalErr.Attempted {
				attempted = append(attempted, string(strategy))
			}
			return nil, newMCPError(ErrorCodeSearchExhausted, "search failed on every retrieval strategy", map[string]interface{}{
				"query":     retrievalErr.Query,
				"attempted": attempted,
			})
		default:
			return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return mcp.NewToolResultText(formatJSON(formatResults(page))), nil
}

// handleUpsertEntity handles the upsert_entity tool invocation
func (s *Server) handleUpsertEntity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	entityType, ok := args["entity_type"].(string)
	if !ok || !types.ValidEntityType(types.EntityType(entityType)) {
		return nil, newMCPError(ErrorCodeInvalidParams, "entity_type is required and must be a known type", map[string]interface{}{
			"param":   "entity_type",
			"allowed": entityTypeNames(),
		})
	}

	title, ok := args["title"].(string)
	if !ok || title == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "title parameter is required", map[string]interface{}{
			"param":  "title",
			"reason": "missing or empty",
		})
	}

	id := getStringDefault(args, "id", "")
	created := false
	if id == "" {
		id = uuid.NewString()
		created = true
	}

	entity := &types.Entity{
		ID:         id,
		EntityType: types.EntityType(entityType),
		ProjectID:  getStringDefault(args, "project_id", ""),
		Title:      title,
		Content:    getStringDefault(args, "content", ""),
		Tags:       getStringSlice(args, "tags"),
		Status:     getStringDefault(args, "status", ""),
		CreatedBy:  getStringDefault(args, "created_by", ""),
		Archived:   getBoolDefault(args, "archived", false),
		Metadata:   getStringMap(args, "metadata"),
	}

	if err := entity.Validate(); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid entity", map[string]interface{}{
			"reason": err.Error(),
		})
	}

	if err := s.storage.UpsertEntity(ctx, entity); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to store entity", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Stored content changed; cached pages may now be stale
	s.searcher.InvalidateCache()

	response := map[string]interface{}{
		"id":          entity.ID,
		"entity_type": string(entity.EntityType),
		"created":     created,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetEntity handles the get_entity tool invocation
func (s *Server) handleGetEntity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	id, ok := args["id"].(string)
	if !ok || id == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "id parameter is required", map[string]interface{}{
			"param":  "id",
			"reason": "missing or empty",
		})
	}

	entity, err := s.storage.GetEntity(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, newMCPError(ErrorCodeEntityNotFound, "entity not found", map[string]interface{}{
			"id": id,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to load entity", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(formatEntity(entity))), nil
}

// handleDeleteEntity handles the delete_entity tool invocation
func (s *Server) handleDeleteEntity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	id, ok := args["id"].(string)
	if !ok || id == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "id parameter is required", map[string]interface{}{
			"param":  "id",
			"reason": "missing or empty",
		})
	}

	err := s.storage.DeleteEntity(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, newMCPError(ErrorCodeEntityNotFound, "entity not found", map[string]interface{}{
			"id": id,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to delete entity", map[string]interface{}{
			"error": err.Error(),
		})
	}

	s.searcher.InvalidateCache()

	response := map[string]interface{}{
		"id":      id,
		"deleted": true,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchMetrics handles the search_metrics tool invocation
func (s *Server) handleSearchMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	metrics := s.searcher.Metrics()

	response := map[string]interface{}{
		"total_queries":        metrics.TotalQueries,
		"cache_hits":           metrics.CacheHits,
		"cache_hit_ratio":      fmt.Sprintf("%.3f", metrics.CacheHitRatio),
		"zero_result_queries":  metrics.ZeroResultQueries,
		"zero_result_ratio":    fmt.Sprintf("%.3f", metrics.ZeroResultRatio),
		"avg_latency_ms":       metrics.AvgLatency.Milliseconds(),
		"avg_result_count":     fmt.Sprintf("%.2f", metrics.AvgResultCount),
		"avg_relevance":        fmt.Sprintf("%.3f", metrics.AvgRelevance),
		"high_relevance_ratio": fmt.Sprintf("%.3f", metrics.HighRelevanceRatio),
		"cached_pages":         s.searcher.CachedPages(),
	}

	if getBoolDefault(args, "reset", false) {
		s.searcher.ResetMetrics()
		response["reset"] = true
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	count, err := s.storage.CountEntities(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to count entities", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"server": map[string]interface{}{
			"name":    ServerName,
			"version": ServerVersion,
		},
		"build": map[string]interface{}{
			"mode":   storage.BuildMode,
			"driver": storage.DriverName,
		},
		"workspace": map[string]interface{}{
			"entity_count": count,
		},
		"cache": map[string]interface{}{
			"cached_pages": s.searcher.CachedPages(),
		},
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// parseFilter converts the raw filters argument into a search filter
func parseFilter(raw map[string]interface{}) (*searcher.Filter, error) {
	filter := &searcher.Filter{
		EntityIDs:       getStringSlice(raw, "entity_ids"),
		ProjectID:       getStringDefault(raw, "project_id", ""),
		Tags:            getStringSlice(raw, "tags"),
		CreatedBy:       getStringDefault(raw, "created_by", ""),
		IncludeArchived: getBoolDefault(raw, "include_archived", false),
	}

	for _, name := range getStringSlice(raw, "entity_types") {
		t := types.EntityType(name)
		if !types.ValidEntityType(t) {
			return nil, fmt.Errorf("unknown entity type %q", name)
		}
		filter.EntityTypes = append(filter.EntityTypes, t)
	}

	if minRelevance, ok := raw["min_relevance"].(float64); ok {
		if minRelevance < 0 || minRelevance > 1 {
			return nil, fmt.Errorf("min_relevance must be between 0.0 and 1.0, got %v", minRelevance)
		}
		filter.MinRelevance = minRelevance
	}

	var err error
	if filter.CreatedAfter, err = getTime(raw, "created_after"); err != nil {
		return nil, err
	}
	if filter.CreatedBefore, err = getTime(raw, "created_before"); err != nil {
		return nil, err
	}
	if filter.UpdatedAfter, err = getTime(raw, "updated_after"); err != nil {
		return nil, err
	}
	if filter.UpdatedBefore, err = getTime(raw, "updated_before"); err != nil {
		return nil, err
	}

	return filter, nil
}

// formatResults converts a result page into a response map
func formatResults(page *types.SearchResults) map[string]interface{} {
	results := make([]map[string]interface{}, 0, len(page.Results))
	for _, r := range page.Results {
		entry := map[string]interface{}{
			"rank":           r.Rank,
			"entity_id":      r.EntityID,
			"entity_type":    string(r.EntityType),
			"kind":           r.Kind,
			"title":          r.Title,
			"snippet":        r.Snippet,
			"relevance":      fmt.Sprintf("%.3f", r.RelevanceScore),
			"strategy":       string(r.Strategy),
			"matched_fields": r.MatchedFields,
		}
		if len(r.Metadata) > 0 {
			entry["metadata"] = r.Metadata
		}
		results = append(results, entry)
	}

	countsByType := make(map[string]int, len(page.CountsByType))
	for t, n := range page.CountsByType {
		countsByType[string(t)] = n
	}

	return map[string]interface{}{
		"query":                page.Query,
		"total_count":          page.TotalCount,
		"returned":             len(page.Results),
		"duration_ms":          page.Duration.Milliseconds(),
		"avg_relevance":        fmt.Sprintf("%.3f", page.AvgRelevance),
		"high_relevance_count": page.HighRelevanceCount,
		"counts_by_type":       countsByType,
		"results":              results,
	}
}

// formatEntity converts an entity into a response map
func formatEntity(entity *types.Entity) map[string]interface{} {
	response := map[string]interface{}{
		"id":          entity.ID,
		"entity_type": string(entity.EntityType),
		"title":       entity.Title,
		"content":     entity.Content,
		"archived":    entity.Archived,
		"created_at":  entity.CreatedAt.Format(time.RFC3339),
		"updated_at":  entity.UpdatedAt.Format(time.RFC3339),
	}
	if entity.ProjectID != "" {
		response["project_id"] = entity.ProjectID
	}
	if entity.Status != "" {
		response["status"] = entity.Status
	}
	if entity.CreatedBy != "" {
		response["created_by"] = entity.CreatedBy
	}
	if len(entity.Tags) > 0 {
		response["tags"] = entity.Tags
	}
	if len(entity.Metadata) > 0 {
		response["metadata"] = entity.Metadata
	}
	return response
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// getStringSlice extracts a string array parameter; absent or malformed
// entries yield nil
func getStringSlice(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// getStringMap extracts an object parameter as a string-to-string map,
// stringifying non-string values
func getStringMap(args map[string]interface{}, key string) map[string]string {
	raw, ok := args[key].(map[string]interface{})
	if !ok || len(raw) == 0 {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
			continue
		}
		out[k] = fmt.Sprintf("%v", v)
	}
	return out
}

// getTime extracts an RFC3339 timestamp parameter; absent keys yield the
// zero time
func getTime(args map[string]interface{}, key string) (time.Time, error) {
	val, ok := args[key].(string)
	if !ok || val == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be RFC3339, got %q", key, val)
	}
	return t, nil
}

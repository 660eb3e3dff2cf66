package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/workdex/workdex-mcp/pkg/types"
)

// entityTypeNames enumerates the valid entity_type values for tool schemas
func entityTypeNames() []string {
	names := make([]string, 0, len(types.AllEntityTypes))
	for _, t := range types.AllEntityTypes {
		names = append(names, string(t))
	}
	return names
}

// searchWorkspaceTool returns the tool definition for search_workspace
func searchWorkspaceTool() mcp.Tool {
	scopeValues := append([]string{"all"}, entityTypeNames()...)

	return mcp.Tool{
		Name:        "search_workspace",
		Description: "Search workspace entities (work items, tasks, documents, summaries, evidence, sessions) with free-text queries and structured filters",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query text",
				},
				"scope": map[string]interface{}{
					"type":        "string",
					"description": "Entity type to search within, or 'all'",
					"enum":        scopeValues,
					"default":     "all",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
				"offset": map[string]interface{}{
					"type":        "integer",
					"description": "Number of results to skip, for pagination",
					"default":     0,
					"minimum":     0,
				},
				"case_sensitive": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, scoring matches case exactly",
					"default":     false,
				},
				"exact_match": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, only exact substring matches count toward scoring",
					"default":     false,
				},
				"highlight": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, wrap matched terms in the snippet with ** markers",
					"default":     false,
				},
				"filters": map[string]interface{}{
					"type":        "object",
					"description": "Optional filters to narrow search",
					"properties": map[string]interface{}{
						"entity_types": map[string]interface{}{
							"type":        "array",
							"description": "Entity types to include",
							"items": map[string]interface{}{
								"type": "string",
								"enum": entityTypeNames(),
							},
						},
						"entity_ids": map[string]interface{}{
							"type":        "array",
							"description": "Restrict to specific entity IDs",
							"items":       map[string]interface{}{"type": "string"},
						},
						"project_id": map[string]interface{}{
							"type":        "string",
							"description": "Restrict to one project",
						},
						"tags": map[string]interface{}{
							"type":        "array",
							"description": "Entities must carry every listed tag",
							"items":       map[string]interface{}{"type": "string"},
						},
						"created_by": map[string]interface{}{
							"type":        "string",
							"description": "Restrict to entities created by this principal",
						},
						"created_after": map[string]interface{}{
							"type":        "string",
							"description": "RFC3339 lower bound on creation time",
						},
						"created_before": map[string]interface{}{
							"type":        "string",
							"description": "RFC3339 upper bound on creation time",
						},
						"updated_after": map[string]interface{}{
							"type":        "string",
							"description": "RFC3339 lower bound on last update time",
						},
						"updated_before": map[string]interface{}{
							"type":        "string",
							"description": "RFC3339 upper bound on last update time",
						},
						"min_relevance": map[string]interface{}{
							"type":        "number",
							"description": "Minimum relevance score threshold (0.0-1.0)",
							"minimum":     0.0,
							"maximum":     1.0,
						},
						"include_archived": map[string]interface{}{
							"type":        "boolean",
							"description": "If true, archived entities are searched too",
							"default":     false,
						},
					},
				},
			},
			Required: []string{"query"},
		},
	}
}

// upsertEntityTool returns the tool definition for upsert_entity
func upsertEntityTool() mcp.Tool {
	return mcp.Tool{
		Name:        "upsert_entity",
		Description: "Create or update a workspace entity",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Entity ID; generated when omitted",
				},
				"entity_type": map[string]interface{}{
					"type":        "string",
					"description": "Kind of entity",
					"enum":        entityTypeNames(),
				},
				"title": map[string]interface{}{
					"type":        "string",
					"description": "Entity title",
				},
				"content": map[string]interface{}{
					"type":        "string",
					"description": "Entity body text",
				},
				"project_id": map[string]interface{}{
					"type":        "string",
					"description": "Owning project",
				},
				"status": map[string]interface{}{
					"type":        "string",
					"description": "Lifecycle status (free-form, e.g. open, done)",
				},
				"tags": map[string]interface{}{
					"type":        "array",
					"description": "Tags attached to the entity",
					"items":       map[string]interface{}{"type": "string"},
				},
				"created_by": map[string]interface{}{
					"type":        "string",
					"description": "Creating principal",
				},
				"metadata": map[string]interface{}{
					"type":        "object",
					"description": "Free-form string attributes (description, links, counts)",
				},
				"archived": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, the entity is excluded from default searches",
					"default":     false,
				},
			},
			Required: []string{"entity_type", "title"},
		},
	}
}

// getEntityTool returns the tool definition for get_entity
func getEntityTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_entity",
		Description: "Fetch a single workspace entity by ID",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Entity ID",
				},
			},
			Required: []string{"id"},
		},
	}
}

// deleteEntityTool returns the tool definition for delete_entity
func deleteEntityTool() mcp.Tool {
	return mcp.Tool{
		Name:        "delete_entity",
		Description: "Delete a workspace entity by ID",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Entity ID",
				},
			},
			Required: []string{"id"},
		},
	}
}

// searchMetricsTool returns the tool definition for search_metrics
func searchMetricsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_metrics",
		Description: "Report the search engine's running statistics",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, reset the statistics after reporting them",
					"default":     false,
				},
			},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Query workspace statistics and server build information",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// Package types provides shared type definitions for the workdex MCP server.
//
// This package defines domain types used across multiple components of
// workdex, including workspace entities and search results.
//
// # Core Types
//
// Entity represents a single workspace record. All stored records share one
// shape regardless of their type (work item, task, document, summary,
// evidence, session):
//
//	entity := &types.Entity{
//	    ID:         uuid.NewString(),
//	    EntityType: types.EntityTask,
//	    Title:      "Rotate signing keys",
//	    Content:    "OAuth2 refresh tokens must be reissued after rotation.",
//	    Tags:       []string{"auth", "ops"},
//	}
//
// SearchResult represents a ranked hit with its normalized relevance score,
// the retrieval strategy that produced it, and the fields the query matched.
// SearchResults is the immutable page returned for one query.
package types

// Package mcp implements the Model Context Protocol (MCP) server for the
// workspace knowledge base.
//
// The server exposes six tools to MCP clients:
//   - search_workspace: Ranked full-text search over workspace entities
//   - upsert_entity: Create or update an entity
//   - get_entity: Fetch one entity by ID
//   - delete_entity: Remove an entity
//   - search_metrics: Report (and optionally reset) engine statistics
//   - get_status: Workspace counts and build information
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// Stdout is reserved for protocol traffic; all logging goes to stderr.
//
// # Tool: search_workspace
//
// Search entities with free text plus structured filters:
//
//	Request:
//	{
//	  "name": "search_workspace",
//	  "arguments": {
//	    "query": "OAuth2 token refresh",
//	    "scope": "all",
//	    "limit": 10,
//	    "filters": {
//	      "entity_types": ["task", "document"],
//	      "tags": ["auth"],
//	      "min_relevance": 0.2
//	    }
//	  }
//	}
//
//	Response:
//	{
//	  "query": "OAuth2 token refresh",
//	  "total_count": 42,
//	  "returned": 10,
//	  "results": [
//	    {
//	      "rank": 1,
//	      "entity_id": "task-123",
//	      "entity_type": "task",
//	      "kind": "exact",
//	      "title": "Fix OAuth2 token refresh race",
//	      "snippet": "...the OAuth2 token refresh path double-fires...",
//	      "relevance": "0.914",
//	      "strategy": "indexed",
//	      "matched_fields": ["title", "content"]
//	    }
//	  ]
//	}
//
// # Error Handling
//
// The server returns standard JSON-RPC error responses:
//
//	{
//	  "error": {
//	    "code": -32602,
//	    "message": "Invalid params",
//	    "data": {"param": "query", "reason": "missing or empty"}
//	  }
//	}
//
// Error codes:
//   - -32602: Invalid params (missing/invalid arguments)
//   - -32603: Internal error (database, filesystem, etc.)
//   - -32001: Entity not found
//   - -32004: Empty query
//   - -32005: Every retrieval strategy failed
//
// # MCP Client Configuration
//
// Configure in an MCP client's settings:
//
//	{
//	  "mcpServers": {
//	    "workdex": {
//	      "command": "/usr/local/bin/workdex",
//	      "env": {
//	        "WORKDEX_DB_PATH": "~/.workdex"
//	      }
//	    }
//	  }
//	}
package mcp

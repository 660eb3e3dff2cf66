// Package storage provides SQLite-based persistence for workspace entities.
//
// The storage layer manages:
//   - Entity records (work items, tasks, documents, summaries, evidence, sessions)
//   - The FTS5 full-text index kept in sync by triggers
//   - Schema migrations
//
// # Database Schema
//
// Tables:
//   - entities: one row per workspace record, all types share the shape
//   - entities_fts: FTS5 external content index over title, content, tags
//   - schema_version: applied migration versions
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStorage("~/.workdex/workdex.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	err = db.UpsertEntity(ctx, &types.Entity{
//	    ID:         uuid.NewString(),
//	    EntityType: types.EntityDocument,
//	    Title:      "OAuth2 flow",
//	    Content:    "Authorization code exchange with PKCE...",
//	})
//
// # Search Capabilities
//
// Two retrieval capabilities are exposed, both returning the same row shape:
//
// SearchIndexed queries the FTS5 index with BM25 ranking. The query text is
// sanitized before MATCH composition; structured filters are compiled to
// parameterized WHERE clauses. Index-level problems (missing FTS5 module,
// rejected syntax) come back wrapped in ErrIndexUnavailable so callers can
// switch to the scan path.
//
// ScanEntities walks the entities table with case-insensitive substring
// predicates over title and content. Slower, but has no index dependency.
//
// Both report the total match count independent of the page sliced, which is
// what pagination needs.
//
// # Build Tags
//
// The storage package supports two build configurations:
//
// CGO build (sqlite_fts tag) uses github.com/mattn/go-sqlite3 and requires a
// C compiler plus the fts5 build tag. Pure Go build (default) uses
// modernc.org/sqlite, which bundles FTS5 and cross-compiles cleanly.
package storage

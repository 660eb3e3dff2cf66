package storage

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyMigrations(t *testing.T) {
	db, err := openDatabase(":memory:")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	require.NoError(t, ApplyMigrations(ctx, db))

	// Applying again is a no-op
	require.NoError(t, ApplyMigrations(ctx, db))

	var version string
	err = db.QueryRowContext(ctx, "SELECT version FROM schema_version ORDER BY applied_at DESC LIMIT 1").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, version)

	// Core tables exist
	for _, table := range []string{"entities", "entities_fts"} {
		var name string
		err = db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE name = ?", table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
	}
}

func TestRollbackMigration(t *testing.T) {
	db, err := openDatabase(":memory:")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	require.NoError(t, ApplyMigrations(ctx, db))
	require.NoError(t, RollbackMigration(ctx, db))

	var name string
	err = db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE name = 'entities'").Scan(&name)
	assert.ErrorIs(t, err, sql.ErrNoRows, "entities table should be dropped")

	// The version-tracking table survives the rollback and no longer carries
	// the rolled-back version
	var versions int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_version").Scan(&versions)
	require.NoError(t, err, "schema_version must outlive the rollback")
	assert.Equal(t, 0, versions)

	// A fresh migration run brings the schema back
	require.NoError(t, ApplyMigrations(ctx, db))
	err = db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE name = 'entities'").Scan(&name)
	require.NoError(t, err)
}

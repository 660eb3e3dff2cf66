package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/workdex/workdex-mcp/pkg/types"
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// entityColumns is the select list shared by every entity query
const entityColumns = `e.id, e.entity_type, e.project_id, e.title, e.content,
	e.status, e.tags, e.created_by, e.metadata, e.archived, e.created_at, e.updated_at`

// Entity operations

func (s *SQLiteStorage) UpsertEntity(ctx context.Context, entity *types.Entity) error {
	if err := entity.Validate(); err != nil {
		return fmt.Errorf("invalid entity: %w", err)
	}

	now := time.Now()
	if entity.CreatedAt.IsZero() {
		entity.CreatedAt = now
	}
	if entity.UpdatedAt.IsZero() {
		entity.UpdatedAt = now
	}

	metadata, err := encodeMetadata(entity.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	query := `
		INSERT INTO entities (id, entity_type, project_id, title, content, status,
			tags, created_by, metadata, archived, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			entity_type = excluded.entity_type,
			project_id = excluded.project_id,
			title = excluded.title,
			content = excluded.content,
			status = excluded.status,
			tags = excluded.tags,
			created_by = excluded.created_by,
			metadata = excluded.metadata,
			archived = excluded.archived,
			updated_at = excluded.updated_at
	`
	_, err = s.db.ExecContext(ctx, query,
		entity.ID, string(entity.EntityType), entity.ProjectID, entity.Title,
		entity.Content, entity.Status, encodeTags(entity.Tags), entity.CreatedBy,
		metadata, entity.Archived, entity.CreatedAt, entity.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert entity: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) GetEntity(ctx context.Context, id string) (*types.Entity, error) {
	query := fmt.Sprintf("SELECT %s FROM entities e WHERE e.id = ?", entityColumns)
	entity, err := scanEntity(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *SQLiteStorage) DeleteEntity(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM entities WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete entity: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStorage) CountEntities(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entities").Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanEntity reads one entity row in entityColumns order. Any extra dest
// pointers are scanned after the entity columns (e.g. a score column).
func scanEntity(row rowScanner, extra ...interface{}) (*types.Entity, error) {
	var entity types.Entity
	var entityType string
	var projectID, content, status, tags, createdBy, metadata sql.NullString
	var createdAt, updatedAt sql.NullTime

	dest := []interface{}{&entity.ID, &entityType, &projectID, &entity.Title, &content,
		&status, &tags, &createdBy, &metadata, &entity.Archived, &createdAt, &updatedAt}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	entity.EntityType = types.EntityType(entityType)
	entity.ProjectID = projectID.String
	entity.Content = content.String
	entity.Status = status.String
	entity.Tags = decodeTags(tags.String)
	entity.CreatedBy = createdBy.String
	if createdAt.Valid {
		entity.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		entity.UpdatedAt = updatedAt.Time
	}

	decoded, err := decodeMetadata(metadata.String)
	if err != nil {
		return nil, fmt.Errorf("failed to decode metadata for entity %s: %w", entity.ID, err)
	}
	entity.Metadata = decoded

	return &entity, nil
}

// encodeTags joins tags into the stored comma-separated form
func encodeTags(tags []string) string {
	return strings.Join(tags, ",")
}

// decodeTags splits the stored comma-separated form back into a slice
func decodeTags(stored string) []string {
	if stored == "" {
		return nil
	}
	return strings.Split(stored, ",")
}

// encodeMetadata serializes the metadata map as JSON
func encodeMetadata(metadata map[string]string) (string, error) {
	if len(metadata) == 0 {
		return "", nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeMetadata deserializes the stored JSON metadata
func decodeMetadata(stored string) (map[string]string, error) {
	if stored == "" {
		return nil, nil
	}
	var metadata map[string]string
	if err := json.Unmarshal([]byte(stored), &metadata); err != nil {
		return nil, err
	}
	return metadata, nil
}

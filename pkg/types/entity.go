package types

import (
	"errors"
	"time"
)

// EntityType identifies the kind of record stored in the workspace
type EntityType string

const (
	EntityWorkItem EntityType = "work_item"
	EntityTask     EntityType = "task"
	EntityDocument EntityType = "document"
	EntitySummary  EntityType = "summary"
	EntityEvidence EntityType = "evidence"
	EntitySession  EntityType = "session"
)

// AllEntityTypes lists every valid entity type in a stable order
var AllEntityTypes = []EntityType{
	EntityWorkItem,
	EntityTask,
	EntityDocument,
	EntitySummary,
	EntityEvidence,
	EntitySession,
}

// ValidEntityType reports whether t is one of the known entity types
func ValidEntityType(t EntityType) bool {
	switch t {
	case EntityWorkItem, EntityTask, EntityDocument, EntitySummary, EntityEvidence, EntitySession:
		return true
	default:
		return false
	}
}

// Entity represents a single workspace record of any type
type Entity struct {
	// Identification
	ID         string
	EntityType EntityType
	ProjectID  string

	// Content
	Title   string
	Content string
	Tags    []string

	// Lifecycle
	Status    string
	CreatedBy string
	Archived  bool

	// Metadata holds free-form attributes (e.g. description, links, counts)
	Metadata map[string]string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the entity is storable
func (e *Entity) Validate() error {
	if e.ID == "" {
		return errors.New("entity ID is required")
	}
	if !ValidEntityType(e.EntityType) {
		return errors.New("invalid entity type")
	}
	if e.Title == "" {
		return errors.New("entity title is required")
	}
	return nil
}

// Package storage
package storage

import (
	"context"
	"time"
)

// MemoryEntryRecord is the persisted form of a long-term memory entry.
type MemoryEntryRecord struct {
	// ID is the entry's unique identifier.
	ID string

	// ProjectID scopes the entry to a single project.
	ProjectID string

	// Type is the entry category (input, output, summary, and so on).
	Type string

	// Content is the entry text.
	Content string

	// Metadata carries free-form annotations with JSON-like values.
	Metadata map[string]any

	// CreatedAt is when the entry was recorded.
	CreatedAt time.Time
}

// Driver defines the interface for persisting memory entries and knowledge
// graph documents in a storage backend.
type Driver interface {
	// InsertMemoryEntry stores a memory entry.
	InsertMemoryEntry(ctx context.Context, rec MemoryEntryRecord) error

	// GetMemoryEntry retrieves an entry by its ID.
	GetMemoryEntry(ctx context.Context, id string) (MemoryEntryRecord, error)

	// GetMemoryEntries retrieves entries by their IDs. Missing IDs are
	// silently skipped; order follows the input IDs.
	GetMemoryEntries(ctx context.Context, ids []string) ([]MemoryEntryRecord, error)

	// ListMemoryEntries returns a project's entries newest first. entryType
	// filters when non-empty; limit <= 0 means no limit.
	ListMemoryEntries(ctx context.Context, projectID, entryType string, limit int) ([]MemoryEntryRecord, error)

	// SaveGraphDoc stores the serialized knowledge graph for a project,
	// replacing any previous document.
	SaveGraphDoc(ctx context.Context, projectID string, doc []byte) error

	// LoadGraphDoc retrieves the serialized knowledge graph for a project.
	// Returns ErrNotFound if the project has no graph yet.
	LoadGraphDoc(ctx context.Context, projectID string) ([]byte, error)

	// Close closes the store and releases any resources.
	Close() error
}

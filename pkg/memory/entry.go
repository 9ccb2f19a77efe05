// Package memory provides the two-tier memory layer for narrative projects.
//
// Short-term memory is a bounded in-process window over the most recent
// exchanges of a project. Long-term memory persists every entry and indexes
// it for similarity search. Both tiers hold the same Entry shape; only
// retention and retrieval differ.
package memory

import "time"

// EntryType categorizes a memory entry by what it records: the two sides
// of a writing exchange, condensed summaries, and registered story facts.
type EntryType string

const (
	EntryTypeInput          EntryType = "input"
	EntryTypeOutput         EntryType = "output"
	EntryTypeSummary        EntryType = "summary"
	EntryTypeEvent          EntryType = "event"
	EntryTypeCharacterState EntryType = "character_state"
	EntryTypePlotPoint      EntryType = "plot_point"
	EntryTypeWorldbuilding  EntryType = "worldbuilding"
)

// Entry is a single piece of narrative memory.
type Entry struct {
	// ID is the entry's unique identifier. Assigned on add when empty.
	ID string `json:"id"`

	// ProjectID scopes the entry to a single project.
	ProjectID string `json:"project_id"`

	// Type is the entry category.
	Type EntryType `json:"type"`

	// Content is the entry text.
	Content string `json:"content"`

	// Metadata carries free-form annotations. Values are JSON-like scalars
	// and collections; round-tripping through storage decodes numbers as
	// float64 per encoding/json.
	Metadata map[string]any `json:"metadata,omitempty"`

	// CreatedAt is when the entry was recorded.
	CreatedAt time.Time `json:"created_at"`
}

// SearchResult pairs an entry with its similarity score.
type SearchResult struct {
	Entry

	// Score is the similarity score (higher = more similar).
	Score float32 `json:"score"`
}

// Package graph maintains the per-project knowledge graph of narrative
// entities, their relations, and where the narrative mentions them.
package graph

import "time"

// EntityType categorizes a graph entity.
type EntityType string

const (
	EntityTypeCharacter EntityType = "character"
	EntityTypeLocation  EntityType = "location"
	EntityTypeItem      EntityType = "item"
	EntityTypeEvent     EntityType = "event"
	EntityTypeRule      EntityType = "rule"
)

// Relation types wired automatically when events are added.
const (
	RelationParticipatedIn = "PARTICIPATED_IN"
	RelationOccurredAt     = "OCCURRED_AT"
)

// Entity is a node in the knowledge graph.
type Entity struct {
	// ID is unique within the project (e.g. "character_1").
	ID string `json:"id"`

	// Type is the entity category.
	Type EntityType `json:"type"`

	// Name is the display name matched against narrative text.
	Name string `json:"name"`

	// Attributes carries arbitrary domain fields (traits, descriptions).
	Attributes map[string]any `json:"attributes,omitempty"`

	// Mentions records where the narrative referenced this entity.
	Mentions []Mention `json:"mentions,omitempty"`

	// CreatedAt is when the entity was added.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt advances whenever the entity gains a relation or mention.
	UpdatedAt time.Time `json:"updated_at"`
}

// Relation is a directed edge between two entities. Identity is the
// (SourceID, Type, TargetID) triple; re-adding replaces attributes.
type Relation struct {
	SourceID   string         `json:"source_id"`
	Type       string         `json:"type"`
	TargetID   string         `json:"target_id"`
	Attributes map[string]any `json:"attributes,omitempty"`

	// CreatedAt is when the triple was first added; attribute replacement
	// keeps the original timestamp.
	CreatedAt time.Time `json:"created_at"`
}

// Mention is one occurrence of an entity name in narrative text.
type Mention struct {
	// EntityID is the mentioned entity.
	EntityID string `json:"entity_id"`

	// TextID identifies the source text, when the caller provides one.
	TextID string `json:"text_id,omitempty"`

	// Position is the rune offset of the name in the text.
	Position int `json:"position"`

	// Snippet is the surrounding context, up to 20 runes each side.
	Snippet string `json:"snippet"`

	// CreatedAt is when the mention was extracted.
	CreatedAt time.Time `json:"created_at"`
}

// Issue is an advisory consistency finding. An empty result means no issues
// were detected, not that the text is verified correct.
type Issue struct {
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`

	// Attribute names the entity field that conflicts.
	Attribute string `json:"attribute"`

	// Expected is the trait keyword recorded on the entity.
	Expected string `json:"expected"`

	// Found is the opposing keyword seen near the mention.
	Found string `json:"found"`

	// Snippet is the text that triggered the finding.
	Snippet string `json:"snippet"`
}

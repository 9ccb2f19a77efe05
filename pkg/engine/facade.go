package engine

import (
	"context"
	"fmt"

	"github.com/novelforge/continuity/pkg/graph"
	"github.com/novelforge/continuity/pkg/memory"
)

// mirrorType maps a graph entity type onto the memory entry type its
// long-term mirror is stored under. Characters carry state; everything
// else that names the world is worldbuilding.
func mirrorType(entityType graph.EntityType) memory.EntryType {
	if entityType == graph.EntityTypeCharacter {
		return memory.EntryTypeCharacterState
	}
	return memory.EntryTypeWorldbuilding
}

// addNamedEntity adds a graph entity and mirrors it as a long-term memory
// entry so similarity search can surface it.
func (e *Engine) addNamedEntity(ctx context.Context, projectID string, entityType graph.EntityType, name, description string, attributes map[string]any) (graph.Entity, error) {
	entity, err := e.graph.AddEntity(ctx, projectID, entityType, name, attributes)
	if err != nil {
		return graph.Entity{}, err
	}

	content := name
	if description != "" {
		content = fmt.Sprintf("%s: %s", name, description)
	}
	if _, err := e.long.Add(ctx, memory.Entry{
		ProjectID: projectID,
		Type:      mirrorType(entityType),
		Content:   content,
		Metadata:  map[string]any{"entity_id": entity.ID},
	}); err != nil {
		return graph.Entity{}, fmt.Errorf("mirroring %s entry: %w", entityType, err)
	}

	return entity, nil
}

// AddCharacter registers a character in the graph and long-term memory.
func (e *Engine) AddCharacter(ctx context.Context, projectID, name, description string, attributes map[string]any) (graph.Entity, error) {
	return e.addNamedEntity(ctx, projectID, graph.EntityTypeCharacter, name, description, attributes)
}

// AddLocation registers a location in the graph and long-term memory.
func (e *Engine) AddLocation(ctx context.Context, projectID, name, description string, attributes map[string]any) (graph.Entity, error) {
	return e.addNamedEntity(ctx, projectID, graph.EntityTypeLocation, name, description, attributes)
}

// AddItem registers an item in the graph and long-term memory.
func (e *Engine) AddItem(ctx context.Context, projectID, name, description string, attributes map[string]any) (graph.Entity, error) {
	return e.addNamedEntity(ctx, projectID, graph.EntityTypeItem, name, description, attributes)
}

// AddRule registers a world rule in the graph and long-term memory.
func (e *Engine) AddRule(ctx context.Context, projectID, name, description string, attributes map[string]any) (graph.Entity, error) {
	return e.addNamedEntity(ctx, projectID, graph.EntityTypeRule, name, description, attributes)
}

// AddEvent registers an event, wiring participant and location relations,
// and mirrors it into long-term memory.
func (e *Engine) AddEvent(ctx context.Context, projectID, name, description string, attributes map[string]any, participants []string, location string) (graph.Entity, error) {
	entity, err := e.graph.AddEvent(ctx, projectID, name, attributes, participants, location)
	if err != nil {
		return graph.Entity{}, err
	}

	content := name
	if description != "" {
		content = fmt.Sprintf("%s: %s", name, description)
	}
	meta := map[string]any{"entity_id": entity.ID}
	if len(participants) > 0 {
		meta["participants"] = participants
	}
	if location != "" {
		meta["location"] = location
	}
	if _, err := e.long.Add(ctx, memory.Entry{
		ProjectID: projectID,
		Type:      memory.EntryTypePlotPoint,
		Content:   content,
		Metadata:  meta,
	}); err != nil {
		return graph.Entity{}, fmt.Errorf("mirroring event entry: %w", err)
	}

	return entity, nil
}

// AddRelation adds a directed relation between two existing entities.
func (e *Engine) AddRelation(ctx context.Context, projectID, sourceID, relationType, targetID string, attributes map[string]any) (bool, error) {
	return e.graph.AddRelation(ctx, projectID, sourceID, relationType, targetID, attributes)
}

// AddChapterSummary stores a chapter's summary as a long-term entry tagged
// with its chapter number and title.
func (e *Engine) AddChapterSummary(ctx context.Context, projectID string, chapter int, title, summary string) (memory.Entry, error) {
	return e.long.Add(ctx, memory.Entry{
		ProjectID: projectID,
		Type:      memory.EntryTypeSummary,
		Content:   summary,
		Metadata: map[string]any{
			"chapter": chapter,
			"title":   title,
		},
	})
}

// SearchMemory runs a similarity search over the project's long-term
// entries.
func (e *Engine) SearchMemory(ctx context.Context, projectID, query string, limit int) ([]memory.SearchResult, error) {
	if limit <= 0 {
		limit = e.cfg.SearchLimit
	}
	return e.long.Search(ctx, projectID, query, limit)
}

// RecentContext returns the project's short-term window, oldest first. A
// positive limit keeps only the most recent limit entries.
func (e *Engine) RecentContext(projectID string, limit int) []memory.Entry {
	return e.short.Get(projectID, limit)
}

// ClearRecentContext drops the project's short-term window.
func (e *Engine) ClearRecentContext(projectID string) {
	e.short.Clear(projectID)
}

// GraphSnapshot exports the project's knowledge graph for visualization.
func (e *Engine) GraphSnapshot(ctx context.Context, projectID string) (graph.Snapshot, error) {
	return e.graph.Snapshot(ctx, projectID)
}

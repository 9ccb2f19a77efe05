package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/novelforge/continuity/pkg/storage"
)

// snippetRadius is how many runes of context a mention keeps on each side.
const snippetRadius = 20

// document is the serialized per-project graph.
type document struct {
	Entities  map[string]*Entity `json:"entities"`
	Relations []Relation         `json:"relations"`

	// NameIndex maps display name to entity ID. Last write wins on
	// collisions, shadowing the earlier entity for name lookup.
	NameIndex map[string]string `json:"name_index"`

	// Counters drive per-type ID generation (character_1, character_2...).
	Counters map[string]int `json:"counters"`
}

func newDocument() *document {
	return &document{
		Entities:  make(map[string]*Entity),
		NameIndex: make(map[string]string),
		Counters:  make(map[string]int),
	}
}

type projectState struct {
	mu  sync.Mutex
	doc *document
}

// KnowledgeGraph manages per-project graphs persisted as documents in the
// storage driver. Each project's graph is loaded on first touch and mutated
// under a per-project mutex, with a save after every mutation.
type KnowledgeGraph struct {
	store   storage.Driver
	checker ConsistencyChecker
	logger  *zap.Logger

	mu       sync.Mutex
	projects map[string]*projectState
}

// NewKnowledgeGraph creates a graph over the given store. A nil checker
// disables consistency findings.
func NewKnowledgeGraph(store storage.Driver, checker ConsistencyChecker, logger *zap.Logger) *KnowledgeGraph {
	return &KnowledgeGraph{
		store:    store,
		checker:  checker,
		logger:   logger,
		projects: make(map[string]*projectState),
	}
}

func (g *KnowledgeGraph) project(projectID string) *projectState {
	g.mu.Lock()
	defer g.mu.Unlock()

	state, ok := g.projects[projectID]
	if !ok {
		state = &projectState{}
		g.projects[projectID] = state
	}
	return state
}

// ensureLoaded populates state.doc from storage. Caller holds state.mu.
func (g *KnowledgeGraph) ensureLoaded(ctx context.Context, projectID string, state *projectState) error {
	if state.doc != nil {
		return nil
	}

	raw, err := g.store.LoadGraphDoc(ctx, projectID)
	if err != nil {
		var notFound storage.ErrNotFound
		if errors.As(err, &notFound) {
			state.doc = newDocument()
			return nil
		}
		return fmt.Errorf("loading graph: %w", err)
	}

	doc := newDocument()
	if err := json.Unmarshal(raw, doc); err != nil {
		return fmt.Errorf("decoding graph: %w", err)
	}
	if doc.Entities == nil {
		doc.Entities = make(map[string]*Entity)
	}
	if doc.NameIndex == nil {
		doc.NameIndex = make(map[string]string)
	}
	if doc.Counters == nil {
		doc.Counters = make(map[string]int)
	}
	state.doc = doc
	return nil
}

// save persists state.doc. Caller holds state.mu.
func (g *KnowledgeGraph) save(ctx context.Context, projectID string, state *projectState) error {
	raw, err := json.Marshal(state.doc)
	if err != nil {
		return fmt.Errorf("encoding graph: %w", err)
	}
	if err := g.store.SaveGraphDoc(ctx, projectID, raw); err != nil {
		return fmt.Errorf("saving graph: %w", err)
	}
	return nil
}

// AddEntity creates an entity with a generated per-type ID and registers its
// name for mention matching. A repeated name re-points the name index at the
// new entity.
func (g *KnowledgeGraph) AddEntity(ctx context.Context, projectID string, entityType EntityType, name string, attributes map[string]any) (Entity, error) {
	state := g.project(projectID)
	state.mu.Lock()
	defer state.mu.Unlock()

	if err := g.ensureLoaded(ctx, projectID, state); err != nil {
		return Entity{}, err
	}

	e := g.addEntityLocked(state.doc, entityType, name, attributes)

	if err := g.save(ctx, projectID, state); err != nil {
		return Entity{}, err
	}

	g.logger.Debug("entity added",
		zap.String("project_id", projectID),
		zap.String("entity_id", e.ID),
		zap.String("type", string(entityType)),
	)

	return copyEntity(e), nil
}

func (g *KnowledgeGraph) addEntityLocked(doc *document, entityType EntityType, name string, attributes map[string]any) *Entity {
	doc.Counters[string(entityType)]++
	id := fmt.Sprintf("%s_%d", entityType, doc.Counters[string(entityType)])

	now := time.Now().UTC()
	e := &Entity{
		ID:         id,
		Type:       entityType,
		Name:       name,
		Attributes: attributes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	doc.Entities[id] = e
	doc.NameIndex[name] = id
	return e
}

// AddCharacter adds a character entity.
func (g *KnowledgeGraph) AddCharacter(ctx context.Context, projectID, name string, attributes map[string]any) (Entity, error) {
	return g.AddEntity(ctx, projectID, EntityTypeCharacter, name, attributes)
}

// AddLocation adds a location entity.
func (g *KnowledgeGraph) AddLocation(ctx context.Context, projectID, name string, attributes map[string]any) (Entity, error) {
	return g.AddEntity(ctx, projectID, EntityTypeLocation, name, attributes)
}

// AddItem adds an item entity.
func (g *KnowledgeGraph) AddItem(ctx context.Context, projectID, name string, attributes map[string]any) (Entity, error) {
	return g.AddEntity(ctx, projectID, EntityTypeItem, name, attributes)
}

// AddRule adds a world-rule entity.
func (g *KnowledgeGraph) AddRule(ctx context.Context, projectID, name string, attributes map[string]any) (Entity, error) {
	return g.AddEntity(ctx, projectID, EntityTypeRule, name, attributes)
}

// AddEvent adds an event entity and wires it to its participants and
// location when those resolve by name. Unresolvable names are skipped.
func (g *KnowledgeGraph) AddEvent(ctx context.Context, projectID, name string, attributes map[string]any, participants []string, location string) (Entity, error) {
	state := g.project(projectID)
	state.mu.Lock()
	defer state.mu.Unlock()

	if err := g.ensureLoaded(ctx, projectID, state); err != nil {
		return Entity{}, err
	}

	doc := state.doc
	event := g.addEntityLocked(doc, EntityTypeEvent, name, attributes)

	for _, participant := range participants {
		if id, ok := doc.NameIndex[participant]; ok {
			upsertRelation(doc, id, RelationParticipatedIn, event.ID, nil)
		}
	}
	if location != "" {
		if id, ok := doc.NameIndex[location]; ok {
			upsertRelation(doc, event.ID, RelationOccurredAt, id, nil)
		}
	}

	if err := g.save(ctx, projectID, state); err != nil {
		return Entity{}, err
	}

	return copyEntity(event), nil
}

// AddRelation adds the directed edge (sourceID, relationType, targetID).
// Returns false without mutating the graph when either endpoint is missing.
// Re-adding an existing triple replaces its attributes.
func (g *KnowledgeGraph) AddRelation(ctx context.Context, projectID, sourceID, relationType, targetID string, attributes map[string]any) (bool, error) {
	state := g.project(projectID)
	state.mu.Lock()
	defer state.mu.Unlock()

	if err := g.ensureLoaded(ctx, projectID, state); err != nil {
		return false, err
	}

	doc := state.doc
	if _, ok := doc.Entities[sourceID]; !ok {
		return false, nil
	}
	if _, ok := doc.Entities[targetID]; !ok {
		return false, nil
	}

	upsertRelation(doc, sourceID, relationType, targetID, attributes)

	if err := g.save(ctx, projectID, state); err != nil {
		return false, err
	}
	return true, nil
}

func upsertRelation(doc *document, sourceID, relationType, targetID string, attributes map[string]any) {
	now := time.Now().UTC()
	if src, ok := doc.Entities[sourceID]; ok {
		src.UpdatedAt = now
	}

	for i, rel := range doc.Relations {
		if rel.SourceID == sourceID && rel.Type == relationType && rel.TargetID == targetID {
			doc.Relations[i].Attributes = attributes
			return
		}
	}
	doc.Relations = append(doc.Relations, Relation{
		SourceID:   sourceID,
		Type:       relationType,
		TargetID:   targetID,
		Attributes: attributes,
		CreatedAt:  now,
	})
}

// GetEntity retrieves an entity by ID.
func (g *KnowledgeGraph) GetEntity(ctx context.Context, projectID, id string) (Entity, bool, error) {
	state := g.project(projectID)
	state.mu.Lock()
	defer state.mu.Unlock()

	if err := g.ensureLoaded(ctx, projectID, state); err != nil {
		return Entity{}, false, err
	}

	e, ok := state.doc.Entities[id]
	if !ok {
		return Entity{}, false, nil
	}
	return copyEntity(e), true, nil
}

// GetEntityByName retrieves an entity via the name index.
func (g *KnowledgeGraph) GetEntityByName(ctx context.Context, projectID, name string) (Entity, bool, error) {
	state := g.project(projectID)
	state.mu.Lock()
	defer state.mu.Unlock()

	if err := g.ensureLoaded(ctx, projectID, state); err != nil {
		return Entity{}, false, err
	}

	id, ok := state.doc.NameIndex[name]
	if !ok {
		return Entity{}, false, nil
	}
	e, ok := state.doc.Entities[id]
	if !ok {
		return Entity{}, false, nil
	}
	return copyEntity(e), true, nil
}

// EntitiesByType returns all entities of the given type, ordered by ID.
func (g *KnowledgeGraph) EntitiesByType(ctx context.Context, projectID string, entityType EntityType) ([]Entity, error) {
	state := g.project(projectID)
	state.mu.Lock()
	defer state.mu.Unlock()

	if err := g.ensureLoaded(ctx, projectID, state); err != nil {
		return nil, err
	}

	var entities []Entity
	for _, e := range state.doc.Entities {
		if e.Type == entityType {
			entities = append(entities, copyEntity(e))
		}
	}
	sort.Slice(entities, func(i, j int) bool { return entities[i].ID < entities[j].ID })
	return entities, nil
}

// Entities returns every entity in the project, ordered by ID.
func (g *KnowledgeGraph) Entities(ctx context.Context, projectID string) ([]Entity, error) {
	state := g.project(projectID)
	state.mu.Lock()
	defer state.mu.Unlock()

	if err := g.ensureLoaded(ctx, projectID, state); err != nil {
		return nil, err
	}

	entities := make([]Entity, 0, len(state.doc.Entities))
	for _, e := range state.doc.Entities {
		entities = append(entities, copyEntity(e))
	}
	sort.Slice(entities, func(i, j int) bool { return entities[i].ID < entities[j].ID })
	return entities, nil
}

// Relations filters the project's relations. With no filter it returns all
// relations; with a type it returns relations touching any entity of that
// type; with type and ID it returns relations where that entity appears as
// either endpoint.
func (g *KnowledgeGraph) Relations(ctx context.Context, projectID string, entityType EntityType, entityID string) ([]Relation, error) {
	state := g.project(projectID)
	state.mu.Lock()
	defer state.mu.Unlock()

	if err := g.ensureLoaded(ctx, projectID, state); err != nil {
		return nil, err
	}

	doc := state.doc

	matches := func(rel Relation) bool {
		switch {
		case entityType == "" && entityID == "":
			return true
		case entityID != "":
			return rel.SourceID == entityID || rel.TargetID == entityID
		default:
			src, srcOK := doc.Entities[rel.SourceID]
			tgt, tgtOK := doc.Entities[rel.TargetID]
			return (srcOK && src.Type == entityType) || (tgtOK && tgt.Type == entityType)
		}
	}

	var rels []Relation
	for _, rel := range doc.Relations {
		if matches(rel) {
			rels = append(rels, rel)
		}
	}
	return rels, nil
}

// ExtractMentions finds case-sensitive occurrences of known entity names in
// text, appends a Mention to each matched entity, and returns the matches
// ordered by position. This is a deliberate heuristic, not NLP-grade entity
// recognition.
func (g *KnowledgeGraph) ExtractMentions(ctx context.Context, projectID, text, textID string) ([]Mention, error) {
	state := g.project(projectID)
	state.mu.Lock()
	defer state.mu.Unlock()

	if err := g.ensureLoaded(ctx, projectID, state); err != nil {
		return nil, err
	}

	doc := state.doc
	textRunes := []rune(text)
	now := time.Now().UTC()

	var mentions []Mention
	for _, e := range doc.Entities {
		for _, pos := range runeOccurrences(textRunes, []rune(e.Name)) {
			mentions = append(mentions, Mention{
				EntityID:  e.ID,
				TextID:    textID,
				Position:  pos,
				Snippet:   snippetAround(textRunes, pos, len([]rune(e.Name))),
				CreatedAt: now,
			})
		}
	}

	sort.Slice(mentions, func(i, j int) bool {
		if mentions[i].Position != mentions[j].Position {
			return mentions[i].Position < mentions[j].Position
		}
		return mentions[i].EntityID < mentions[j].EntityID
	})

	if len(mentions) == 0 {
		return nil, nil
	}

	for _, m := range mentions {
		e := doc.Entities[m.EntityID]
		e.Mentions = append(e.Mentions, m)
		e.UpdatedAt = now
	}
	if err := g.save(ctx, projectID, state); err != nil {
		return nil, err
	}

	return mentions, nil
}

// CheckConsistency runs the configured checker over the project's entities
// and the given text. Findings are advisory.
func (g *KnowledgeGraph) CheckConsistency(ctx context.Context, projectID, text string) ([]Issue, error) {
	if g.checker == nil {
		return nil, nil
	}

	entities, err := g.Entities(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return g.checker.Check(entities, text), nil
}

func runeOccurrences(text, name []rune) []int {
	if len(name) == 0 || len(name) > len(text) {
		return nil
	}

	var positions []int
	for i := 0; i+len(name) <= len(text); {
		if runesEqual(text[i:i+len(name)], name) {
			positions = append(positions, i)
			i += len(name)
			continue
		}
		i++
	}
	return positions
}

func runesEqual(a, b []rune) bool {
	for i := range b {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func snippetAround(text []rune, pos, nameLen int) string {
	start := pos - snippetRadius
	if start < 0 {
		start = 0
	}
	end := pos + nameLen + snippetRadius
	if end > len(text) {
		end = len(text)
	}
	return string(text[start:end])
}

func copyEntity(e *Entity) Entity {
	out := *e
	if e.Attributes != nil {
		out.Attributes = make(map[string]any, len(e.Attributes))
		for k, v := range e.Attributes {
			out.Attributes[k] = v
		}
	}
	if e.Mentions != nil {
		out.Mentions = append([]Mention(nil), e.Mentions...)
	}
	return out
}

package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/novelforge/continuity/pkg/embeddings"
	"github.com/novelforge/continuity/pkg/storage"
	"github.com/novelforge/continuity/pkg/vector"
)

// LongTermMemory persists entries and indexes them for similarity search.
//
// Persistence and indexing are decoupled: an entry is always written to the
// store first, and an embedding or vector failure afterwards downgrades the
// entry to text-only rather than failing the add. Search degrades the same
// way, returning no results when the embedder is unavailable.
type LongTermMemory struct {
	store    storage.Driver
	embedder embeddings.Embedder
	vectors  vector.VectorDriver
	logger   *zap.Logger
}

// NewLongTermMemory creates a long-term memory over the given store,
// embedder, and vector driver.
func NewLongTermMemory(store storage.Driver, embedder embeddings.Embedder, vectors vector.VectorDriver, logger *zap.Logger) *LongTermMemory {
	return &LongTermMemory{
		store:    store,
		embedder: embedder,
		vectors:  vectors,
		logger:   logger,
	}
}

// Add persists the entry and indexes its embedding. A missing ID is assigned
// a UUID, a zero CreatedAt is set to now. The returned entry carries the
// final ID and timestamp.
func (l *LongTermMemory) Add(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	if err := l.store.InsertMemoryEntry(ctx, storage.MemoryEntryRecord{
		ID:        e.ID,
		ProjectID: e.ProjectID,
		Type:      string(e.Type),
		Content:   e.Content,
		Metadata:  e.Metadata,
		CreatedAt: e.CreatedAt,
	}); err != nil {
		return Entry{}, fmt.Errorf("persisting entry: %w", err)
	}

	embedding, err := l.embedder.Embed(ctx, e.Content)
	if err != nil {
		l.logger.Warn("embedding failed, entry stored without vector",
			zap.String("entry_id", e.ID),
			zap.String("project_id", e.ProjectID),
			zap.Error(err),
		)
		return e, nil
	}

	if err := l.vectors.Add(ctx, []vector.Document{{
		ID:        e.ID,
		ProjectID: e.ProjectID,
		Embedding: embedding,
	}}); err != nil {
		l.logger.Warn("vector indexing failed, entry stored without vector",
			zap.String("entry_id", e.ID),
			zap.String("project_id", e.ProjectID),
			zap.Error(err),
		)
	}

	return e, nil
}

// Get returns a project's entries newest first. entryType filters when
// non-empty; limit <= 0 means no limit.
func (l *LongTermMemory) Get(ctx context.Context, projectID string, entryType EntryType, limit int) ([]Entry, error) {
	recs, err := l.store.ListMemoryEntries(ctx, projectID, string(entryType), limit)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	return recordsToEntries(recs), nil
}

// Search returns up to limit entries most similar to query, best first.
// Ties on score break toward the newer entry. An unavailable embedder
// yields an empty result, not an error.
func (l *LongTermMemory) Search(ctx context.Context, projectID, query string, limit int) ([]SearchResult, error) {
	embedding, err := l.embedder.Embed(ctx, query)
	if err != nil {
		l.logger.Warn("query embedding failed, similarity search unavailable",
			zap.String("project_id", projectID),
			zap.Error(err),
		)
		return nil, nil
	}

	hits, err := l.vectors.Query(ctx, projectID, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	if len(hits) == 0 {
		return nil, nil
	}

	ids := make([]string, len(hits))
	scores := make(map[string]float32, len(hits))
	for i, hit := range hits {
		ids[i] = hit.ID
		scores[hit.ID] = hit.Score
	}

	recs, err := l.store.GetMemoryEntries(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrating entries: %w", err)
	}

	results := make([]SearchResult, 0, len(recs))
	for _, e := range recordsToEntries(recs) {
		results = append(results, SearchResult{Entry: e, Score: scores[e.ID]})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})

	return results, nil
}

func recordsToEntries(recs []storage.MemoryEntryRecord) []Entry {
	if len(recs) == 0 {
		return nil
	}
	entries := make([]Entry, len(recs))
	for i, rec := range recs {
		entries[i] = Entry{
			ID:        rec.ID,
			ProjectID: rec.ProjectID,
			Type:      EntryType(rec.Type),
			Content:   rec.Content,
			Metadata:  rec.Metadata,
			CreatedAt: rec.CreatedAt,
		}
	}
	return entries
}

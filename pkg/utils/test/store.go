package testutils

import (
	"context"
	"sort"
	"sync"

	"github.com/novelforge/continuity/pkg/storage"
)

// MockStore is an in-memory storage.Driver for tests
type MockStore struct {
	mu        sync.Mutex
	entries   map[string]storage.MemoryEntryRecord
	graphDocs map[string][]byte

	// InsertErr, when set, is returned from InsertMemoryEntry
	InsertErr error
}

func NewMockStore() *MockStore {
	return &MockStore{
		entries:   make(map[string]storage.MemoryEntryRecord),
		graphDocs: make(map[string][]byte),
	}
}

func (m *MockStore) InsertMemoryEntry(_ context.Context, rec storage.MemoryEntryRecord) error {
	if m.InsertErr != nil {
		return m.InsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[rec.ID] = rec
	return nil
}

func (m *MockStore) GetMemoryEntry(_ context.Context, id string) (storage.MemoryEntryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.entries[id]
	if !ok {
		return storage.MemoryEntryRecord{}, storage.ErrNotFound{ID: id}
	}
	return rec, nil
}

func (m *MockStore) GetMemoryEntries(_ context.Context, ids []string) ([]storage.MemoryEntryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs := make([]storage.MemoryEntryRecord, 0, len(ids))
	for _, id := range ids {
		if rec, ok := m.entries[id]; ok {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func (m *MockStore) ListMemoryEntries(_ context.Context, projectID, entryType string, limit int) ([]storage.MemoryEntryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var recs []storage.MemoryEntryRecord
	for _, rec := range m.entries {
		if rec.ProjectID != projectID {
			continue
		}
		if entryType != "" && rec.Type != entryType {
			continue
		}
		recs = append(recs, rec)
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].ID > recs[j].ID
		}
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})

	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

func (m *MockStore) SaveGraphDoc(_ context.Context, projectID string, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.graphDocs[projectID] = append([]byte(nil), doc...)
	return nil
}

func (m *MockStore) LoadGraphDoc(_ context.Context, projectID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.graphDocs[projectID]
	if !ok {
		return nil, storage.ErrNotFound{ID: projectID}
	}
	return append([]byte(nil), doc...), nil
}

func (m *MockStore) Close() error {
	return nil
}

var _ storage.Driver = (*MockStore)(nil)

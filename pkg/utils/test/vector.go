package testutils

import (
	"context"

	"github.com/novelforge/continuity/pkg/vector"
)

// MockVectorDriver is a test vector driver
type MockVectorDriver struct {
	Documents []vector.Document

	// Results is returned from Query regardless of the embedding
	Results []vector.QueryResult
}

func NewMockVectorDriver() *MockVectorDriver {
	return &MockVectorDriver{
		Documents: make([]vector.Document, 0),
		Results:   make([]vector.QueryResult, 0),
	}
}

func (m *MockVectorDriver) Add(_ context.Context, docs []vector.Document) error {
	m.Documents = append(m.Documents, docs...)
	return nil
}

func (m *MockVectorDriver) Query(_ context.Context, projectID string, _ []float32, topK int) ([]vector.QueryResult, error) {
	var results []vector.QueryResult
	for _, r := range m.Results {
		if r.ProjectID == "" || r.ProjectID == projectID {
			results = append(results, r)
		}
		if len(results) == topK {
			break
		}
	}
	return results, nil
}

func (m *MockVectorDriver) Delete(_ context.Context, ids []string) error {
	keep := m.Documents[:0]
	for _, doc := range m.Documents {
		deleted := false
		for _, id := range ids {
			if doc.ID == id {
				deleted = true
				break
			}
		}
		if !deleted {
			keep = append(keep, doc)
		}
	}
	m.Documents = keep
	return nil
}

func (m *MockVectorDriver) Close() error {
	return nil
}

// Package vector provides interfaces and implementations for vector storage
// and similarity search over memory embeddings.
package vector

import "context"

// Document represents a stored embedding and the memory entry it belongs to.
type Document struct {
	// ID is a unique identifier for the document (the memory entry ID).
	ID string

	// ProjectID scopes the document to a single project.
	ProjectID string

	// Embedding is the vector representation of the entry content.
	Embedding []float32
}

// QueryResult represents a search result with similarity score.
type QueryResult struct {
	Document

	// Score represents the similarity score (higher = more similar).
	Score float32
}

// VectorDriver handles storage and retrieval of vector embeddings.
type VectorDriver interface {
	// Add stores documents with their embeddings.
	// If a document with the same ID already exists, implementers should
	// update the document.
	Add(ctx context.Context, docs []Document) error

	// Query finds the topK most similar documents to the given embedding
	// within a single project.
	Query(ctx context.Context, projectID string, embedding []float32, topK int) ([]QueryResult, error)

	// Delete removes documents by their IDs.
	Delete(ctx context.Context, ids []string) error

	// Close releases any resources held by the driver.
	Close() error
}

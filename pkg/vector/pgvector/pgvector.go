// Package pgvector provides a PostgreSQL-backed vector driver using the
// pgvector extension.
package pgvector

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvec "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"github.com/novelforge/continuity/pkg/vector"
)

// PgVectorDriver implements vector.VectorDriver on PostgreSQL with pgvector.
type PgVectorDriver struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// Config holds configuration for the pgvector driver.
type Config struct {
	// URL is the PostgreSQL connection string.
	URL string

	// Dimensions is the number of dimensions for the embedding vectors.
	Dimensions uint
}

// NewPgVectorDriver connects to PostgreSQL, ensures the vector extension and
// the embeddings table exist, and returns the driver.
func NewPgVectorDriver(ctx context.Context, c Config, logger *zap.Logger) (*PgVectorDriver, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("postgres connection URL is required")
	}
	if c.Dimensions == 0 {
		return nil, fmt.Errorf("pgvector embedding dimensions cannot be 0, must be configured")
	}

	pool, err := pgxpool.New(ctx, c.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vector.ErrConnection, err)
	}

	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating vector extension: %w", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS memory_embeddings (
			doc_id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			embedding vector(%d) NOT NULL
		)
	`, c.Dimensions)
	if _, err := pool.Exec(ctx, createTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating embeddings table: %w", err)
	}

	if _, err := pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS memory_embeddings_project_idx
		ON memory_embeddings (project_id)
	`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating project index: %w", err)
	}

	logger.Info("pgvector driver initialized",
		zap.Uint("dimensions", c.Dimensions),
	)

	return &PgVectorDriver{pool: pool, logger: logger}, nil
}

// Add stores documents with their embeddings, updating on conflict.
func (d *PgVectorDriver) Add(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, doc := range docs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO memory_embeddings (doc_id, project_id, embedding)
			VALUES ($1, $2, $3)
			ON CONFLICT (doc_id)
			DO UPDATE SET project_id = EXCLUDED.project_id, embedding = EXCLUDED.embedding
		`, doc.ID, doc.ProjectID, pgvec.NewVector(doc.Embedding)); err != nil {
			return fmt.Errorf("upserting document %s: %w", doc.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	d.logger.Debug("added documents to pgvector",
		zap.Int("count", len(docs)),
	)

	return nil
}

// Query finds the topK most similar documents within projectID using cosine
// distance.
func (d *PgVectorDriver) Query(ctx context.Context, projectID string, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	rows, err := d.pool.Query(ctx, `
		SELECT doc_id, embedding <=> $1 AS distance
		FROM memory_embeddings
		WHERE project_id = $2
		ORDER BY distance
		LIMIT $3
	`, pgvec.NewVector(embedding), projectID, topK)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var results []vector.QueryResult
	for rows.Next() {
		var docID string
		var distance float64
		if err := rows.Scan(&docID, &distance); err != nil {
			return nil, fmt.Errorf("scanning query result: %w", err)
		}

		results = append(results, vector.QueryResult{
			Document: vector.Document{
				ID:        docID,
				ProjectID: projectID,
			},
			// Cosine distance in [0, 2]; 1 - distance mirrors cosine similarity.
			Score: float32(1.0 - distance),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query results: %w", err)
	}

	d.logger.Debug("queried pgvector",
		zap.String("project_id", projectID),
		zap.Int("results", len(results)),
	)

	return results, nil
}

// Delete removes documents by their IDs.
func (d *PgVectorDriver) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	if _, err := d.pool.Exec(ctx,
		`DELETE FROM memory_embeddings WHERE doc_id = ANY($1)`, ids,
	); err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}

	d.logger.Debug("deleted documents from pgvector",
		zap.Int("count", len(ids)),
	)

	return nil
}

// Close releases resources held by the driver.
func (d *PgVectorDriver) Close() error {
	d.pool.Close()
	return nil
}

var _ vector.VectorDriver = (*PgVectorDriver)(nil)

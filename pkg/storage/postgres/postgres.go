// Package postgres provides a PostgreSQL-backed storage driver using pgx.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/novelforge/continuity/pkg/storage"
)

// PostgresDriver implements storage.Driver using PostgreSQL.
type PostgresDriver struct {
	pool *pgxpool.Pool
}

// NewPostgresDriver connects to PostgreSQL at url and ensures the schema
// exists.
func NewPostgresDriver(ctx context.Context, url string) (*PostgresDriver, error) {
	if url == "" {
		return nil, fmt.Errorf("postgres connection URL is required")
	}

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresDriver{pool: pool}, nil
}

func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS memory_entries (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			entry_type TEXT NOT NULL,
			content TEXT NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS memory_entries_project_created_idx
			ON memory_entries (project_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS graph_docs (
			project_id TEXT PRIMARY KEY,
			doc BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// InsertMemoryEntry stores a memory entry.
func (d *PostgresDriver) InsertMemoryEntry(ctx context.Context, rec storage.MemoryEntryRecord) error {
	metadata, err := json.Marshal(metadataOrEmpty(rec.Metadata))
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	if _, err := d.pool.Exec(ctx, `
		INSERT INTO memory_entries (id, project_id, entry_type, content, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rec.ID, rec.ProjectID, rec.Type, rec.Content, metadata, createdAt); err != nil {
		return fmt.Errorf("inserting memory entry %s: %w", rec.ID, err)
	}
	return nil
}

// GetMemoryEntry retrieves an entry by its ID.
func (d *PostgresDriver) GetMemoryEntry(ctx context.Context, id string) (storage.MemoryEntryRecord, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT id, project_id, entry_type, content, metadata, created_at
		FROM memory_entries WHERE id = $1
	`, id)

	rec, err := scanEntry(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.MemoryEntryRecord{}, storage.ErrNotFound{ID: id}
	}
	if err != nil {
		return storage.MemoryEntryRecord{}, fmt.Errorf("getting memory entry %s: %w", id, err)
	}
	return rec, nil
}

// GetMemoryEntries retrieves entries by their IDs, preserving input order.
func (d *PostgresDriver) GetMemoryEntries(ctx context.Context, ids []string) ([]storage.MemoryEntryRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := d.pool.Query(ctx, `
		SELECT id, project_id, entry_type, content, metadata, created_at
		FROM memory_entries WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("querying memory entries: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]storage.MemoryEntryRecord, len(ids))
	for rows.Next() {
		rec, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning memory entry: %w", err)
		}
		byID[rec.ID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating memory entries: %w", err)
	}

	recs := make([]storage.MemoryEntryRecord, 0, len(byID))
	for _, id := range ids {
		if rec, ok := byID[id]; ok {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

// ListMemoryEntries returns a project's entries newest first.
func (d *PostgresDriver) ListMemoryEntries(ctx context.Context, projectID, entryType string, limit int) ([]storage.MemoryEntryRecord, error) {
	query := `
		SELECT id, project_id, entry_type, content, metadata, created_at
		FROM memory_entries WHERE project_id = $1
	`
	args := []any{projectID}

	if entryType != "" {
		query += fmt.Sprintf(` AND entry_type = $%d`, len(args)+1)
		args = append(args, entryType)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, limit)
	}

	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing memory entries: %w", err)
	}
	defer rows.Close()

	var recs []storage.MemoryEntryRecord
	for rows.Next() {
		rec, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning memory entry: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating memory entries: %w", err)
	}
	return recs, nil
}

// SaveGraphDoc stores the serialized knowledge graph for a project.
func (d *PostgresDriver) SaveGraphDoc(ctx context.Context, projectID string, doc []byte) error {
	if _, err := d.pool.Exec(ctx, `
		INSERT INTO graph_docs (project_id, doc, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (project_id)
		DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at
	`, projectID, doc, time.Now().UTC()); err != nil {
		return fmt.Errorf("saving graph doc for project %s: %w", projectID, err)
	}
	return nil
}

// LoadGraphDoc retrieves the serialized knowledge graph for a project.
func (d *PostgresDriver) LoadGraphDoc(ctx context.Context, projectID string) ([]byte, error) {
	var doc []byte
	err := d.pool.QueryRow(ctx,
		`SELECT doc FROM graph_docs WHERE project_id = $1`, projectID,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound{ID: projectID}
	}
	if err != nil {
		return nil, fmt.Errorf("loading graph doc for project %s: %w", projectID, err)
	}
	return doc, nil
}

// Close closes the store.
func (d *PostgresDriver) Close() error {
	d.pool.Close()
	return nil
}

func metadataOrEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func scanEntry(scan func(dest ...any) error) (storage.MemoryEntryRecord, error) {
	var (
		rec      storage.MemoryEntryRecord
		metadata []byte
	)
	if err := scan(&rec.ID, &rec.ProjectID, &rec.Type, &rec.Content, &metadata, &rec.CreatedAt); err != nil {
		return storage.MemoryEntryRecord{}, err
	}
	if len(metadata) > 0 && string(metadata) != "{}" {
		if err := json.Unmarshal(metadata, &rec.Metadata); err != nil {
			return storage.MemoryEntryRecord{}, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}
	return rec, nil
}

var _ storage.Driver = (*PostgresDriver)(nil)

// Package sqlite provides a SQLite-backed storage driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/novelforge/continuity/pkg/storage"
)

// SQLiteDriver implements storage.Driver using SQLite.
type SQLiteDriver struct {
	db *sql.DB
}

// NewSQLiteDriver creates a new SQLite-backed store.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewSQLiteDriver(dbPath string) (*SQLiteDriver, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite-specific pragmas
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteDriver{db: db}, nil
}

func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS memory_entries (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			entry_type TEXT NOT NULL,
			content TEXT NOT NULL,
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS memory_entries_project_created_idx
			ON memory_entries (project_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS graph_docs (
			project_id TEXT PRIMARY KEY,
			doc BLOB NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// InsertMemoryEntry stores a memory entry.
func (d *SQLiteDriver) InsertMemoryEntry(ctx context.Context, rec storage.MemoryEntryRecord) error {
	metadata, err := marshalMetadata(rec.Metadata)
	if err != nil {
		return err
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO memory_entries (id, project_id, entry_type, content, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.ProjectID, rec.Type, rec.Content, metadata, createdAt)
	if err != nil {
		return fmt.Errorf("inserting memory entry %s: %w", rec.ID, err)
	}
	return nil
}

// GetMemoryEntry retrieves an entry by its ID.
func (d *SQLiteDriver) GetMemoryEntry(ctx context.Context, id string) (storage.MemoryEntryRecord, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, project_id, entry_type, content, metadata, created_at
		FROM memory_entries WHERE id = ?
	`, id)

	rec, err := scanEntry(row.Scan)
	if err == sql.ErrNoRows {
		return storage.MemoryEntryRecord{}, storage.ErrNotFound{ID: id}
	}
	if err != nil {
		return storage.MemoryEntryRecord{}, fmt.Errorf("getting memory entry %s: %w", id, err)
	}
	return rec, nil
}

// GetMemoryEntries retrieves entries by their IDs, preserving input order.
func (d *SQLiteDriver) GetMemoryEntries(ctx context.Context, ids []string) ([]storage.MemoryEntryRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT id, project_id, entry_type, content, metadata, created_at
		FROM memory_entries WHERE id IN (%s)
	`, strings.Join(placeholders, ","))

	rows, err := d.db.QueryContext(ctx, query, args...)
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
func (d *SQLiteDriver) ListMemoryEntries(ctx context.Context, projectID, entryType string, limit int) ([]storage.MemoryEntryRecord, error) {
	query := `
		SELECT id, project_id, entry_type, content, metadata, created_at
		FROM memory_entries WHERE project_id = ?
	`
	args := []any{projectID}

	if entryType != "" {
		query += ` AND entry_type = ?`
		args = append(args, entryType)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
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
func (d *SQLiteDriver) SaveGraphDoc(ctx context.Context, projectID string, doc []byte) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO graph_docs (project_id, doc, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (project_id)
		DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at
	`, projectID, doc, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving graph doc for project %s: %w", projectID, err)
	}
	return nil
}

// LoadGraphDoc retrieves the serialized knowledge graph for a project.
func (d *SQLiteDriver) LoadGraphDoc(ctx context.Context, projectID string) ([]byte, error) {
	var doc []byte
	err := d.db.QueryRowContext(ctx,
		`SELECT doc FROM graph_docs WHERE project_id = ?`, projectID,
	).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound{ID: projectID}
	}
	if err != nil {
		return nil, fmt.Errorf("loading graph doc for project %s: %w", projectID, err)
	}
	return doc, nil
}

// Close closes the store.
func (d *SQLiteDriver) Close() error {
	return d.db.Close()
}

func marshalMetadata(m map[string]any) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshaling metadata: %w", err)
	}
	return string(b), nil
}

func scanEntry(scan func(dest ...any) error) (storage.MemoryEntryRecord, error) {
	var (
		rec      storage.MemoryEntryRecord
		metadata string
	)
	if err := scan(&rec.ID, &rec.ProjectID, &rec.Type, &rec.Content, &metadata, &rec.CreatedAt); err != nil {
		return storage.MemoryEntryRecord{}, err
	}
	if metadata != "" && metadata != "{}" {
		if err := json.Unmarshal([]byte(metadata), &rec.Metadata); err != nil {
			return storage.MemoryEntryRecord{}, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}
	return rec, nil
}

var _ storage.Driver = (*SQLiteDriver)(nil)

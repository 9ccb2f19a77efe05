// Package storageutils is the storage utility package
package storageutils

import (
	"context"
	"fmt"

	"github.com/novelforge/continuity/pkg/storage"
	"github.com/novelforge/continuity/pkg/storage/postgres"
	"github.com/novelforge/continuity/pkg/storage/sqlite"
)

type NewDriverOpts struct {
	ProviderType string

	// SQLitePath is the database file path for the sqlite provider.
	SQLitePath string

	// PostgresURL is the connection string for the postgres provider.
	PostgresURL string
}

func NewDriver(ctx context.Context, o *NewDriverOpts) (storage.Driver, error) {
	switch o.ProviderType {
	case "sqlite":
		return sqlite.NewSQLiteDriver(o.SQLitePath)
	case "postgres":
		return postgres.NewPostgresDriver(ctx, o.PostgresURL)
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", o.ProviderType)
	}
}

// Package vectorutils is the vector utility package
package vectorutils

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/novelforge/continuity/pkg/vector"
	"github.com/novelforge/continuity/pkg/vector/pgvector"
	"github.com/novelforge/continuity/pkg/vector/sqlitevec"
)

type NewVectorDriverOpts struct {
	ProviderType string
	Target       string
	Dimensions   uint
	Logger       *zap.Logger
}

func NewVectorDriver(ctx context.Context, o *NewVectorDriverOpts) (vector.VectorDriver, error) {
	switch o.ProviderType {
	case "sqlite":
		return sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
			DBPath:     o.Target,
			Dimensions: o.Dimensions,
		}, o.Logger)
	case "postgres":
		return pgvector.NewPgVectorDriver(ctx, pgvector.Config{
			URL:        o.Target,
			Dimensions: o.Dimensions,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}

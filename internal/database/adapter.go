package database

import (
	"context"

	"github.com/Lumos-Labs-HQ/factorygen/internal/types"
)

// Introspector lists the columns of a table. An absent table yields an empty
// slice and a nil error.
type Introspector interface {
	GetTableColumns(ctx context.Context, tableName string) ([]types.SchemaColumn, error)
	CheckTableExists(ctx context.Context, tableName string) (bool, error)
}

type DatabaseAdapter interface {
	Introspector

	Connect(ctx context.Context, url string) error
	Close() error
	Ping(ctx context.Context) error

	// Data type mapping: database type -> canonical storage type
	MapColumnType(dbType string) string
}

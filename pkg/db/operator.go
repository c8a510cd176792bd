package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vetcare/vetdb/pkg/config"
)

// Operator defines the interface for basic database management operations.
// It provides connection lifecycle management and exposes the pgxpool.Pool
// for the catalog, ledger, lock and seeder implementations that run their
// own SQL.
type Operator interface {
	// Connect establishes a connection pool to the database.
	Connect(context.Context, *config.DatabaseConfig) error

	// Close closes the database connection pool.
	Close() error

	// Pool returns the underlying pgxpool.Pool.
	Pool() *pgxpool.Pool

	// TableExists checks if a table exists in the database.
	TableExists(ctx context.Context, tableName string) (bool, error)

	// HasTables checks if the database has any tables in the public schema.
	// Used to determine if schema recreation should prompt for confirmation.
	HasTables(ctx context.Context) (bool, error)

	// ListTables returns table names of the public schema.
	ListTables(ctx context.Context) ([]string, error)

	// DropAllTables drops all tables in the public schema.
	DropAllTables(ctx context.Context) error

	// DropAllTypes drops all enum types in the public schema.
	DropAllTypes(ctx context.Context) error
}

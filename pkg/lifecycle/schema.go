// Package lifecycle holds the contracts of the components a deploy is
// composed of. Implementations live in internal packages.
package lifecycle

import (
	"context"

	"github.com/vetcare/vetdb/pkg/migration"
)

// SchemaManager brings the database schema to the latest version.
type SchemaManager interface {
	// Create is the first-deploy path. It runs the designated unit that
	// recreates the whole schema and records the history it supersedes.
	Create(ctx context.Context) ([]migration.Result, error)

	// Migrate applies pending history units in ascending order.
	Migrate(ctx context.Context) ([]migration.Result, error)
}

// Seeder loads reference data into a migrated schema. Seeding is
// re-runnable, existing rows are left untouched.
type Seeder interface {
	// Seed returns the number of inserted rows.
	Seed(ctx context.Context) (int, error)
}

// Locker provides mutual exclusion between deploy runs.
type Locker interface {
	// Acquire blocks until the lock for key is taken. The returned
	// function releases it.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

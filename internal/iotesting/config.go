// Package iotesting provides shared test utilities for integration tests.
// This is an internal package for test infrastructure only.
package iotesting

import (
	"context"
	"os"
	"testing"

	"github.com/vetcare/vetdb/internal/iodb"
	"github.com/vetcare/vetdb/internal/ioconfig"
	"github.com/vetcare/vetdb/pkg/config"
	"github.com/vetcare/vetdb/pkg/db"
)

const (
	// TestDatabaseName is the database name used for all integration tests.
	// This ensures tests never accidentally run against a clinic database.
	TestDatabaseName = "vetdb_test"
)

// GetTestConfig returns a configuration suitable for integration tests.
// It loads the standard config (from file or defaults) and overrides the
// database name to TestDatabaseName for safety.
func GetTestConfig() *config.Config {
	cfg := config.New()
	if home, err := os.UserHomeDir(); err == nil {
		if loaded, err := ioconfig.Load(home); err == nil {
			cfg = loaded
		}
	}

	// Always use test database for safety
	cfg.Database.Database = TestDatabaseName
	return cfg
}

// GetTestDatabaseConfig returns only the database configuration for tests.
func GetTestDatabaseConfig() *config.DatabaseConfig {
	cfg := GetTestConfig()
	return &cfg.Database
}

// Connect opens an operator to an empty test database, or skips the test
// when it is not reachable. Tables and enum types are dropped before and
// after the test.
func Connect(t *testing.T) db.Operator {
	t.Helper()
	ctx := context.Background()

	op := iodb.NewPgxOperator()
	if err := op.Connect(ctx, GetTestDatabaseConfig()); err != nil {
		t.Skipf("Test database is not reachable: %v", err)
	}
	clean := func() {
		_ = op.DropAllTables(ctx)
		_ = op.DropAllTypes(ctx)
	}
	clean()

	t.Cleanup(func() {
		clean()
		op.Close()
	})
	return op
}

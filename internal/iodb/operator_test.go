package iodb_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vetcare/vetdb/internal/iodb"
	"github.com/vetcare/vetdb/internal/iotesting"
)

// Note: These are integration tests that require PostgreSQL.
//
// Configuration is loaded using the full config system:
//   1. Environment variables (VETDB_DATABASE_*)
//   2. Config file (~/.config/vetdb/config.yaml)
//   3. Built-in defaults (postgres/postgres)
//
// The database name is always forced to "vetdb_test".
//
//   docker run -d --name vetdb-test -e POSTGRES_PASSWORD=postgres \
//     -e POSTGRES_DB=vetdb_test -p 5432:5432 postgres:16
//
// Skip these tests with: go test -short

func TestPgxOperator_Connect(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	op := iodb.NewPgxOperator()
	ctx := context.Background()

	err := op.Connect(ctx, iotesting.GetTestDatabaseConfig())
	require.NoError(t, err, "Connect should succeed with valid config")
	defer op.Close()

	exists, err := op.TableExists(ctx, "nonexistent_table")
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestPgxOperator_Connect_InvalidHost(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	op := iodb.NewPgxOperator()
	cfg := iotesting.GetTestDatabaseConfig()
	cfg.Host = "invalid-host-that-does-not-exist"

	err := op.Connect(context.Background(), cfg)
	assert.Error(t, err, "Connect should fail with invalid host")
}

func TestPgxOperator_NotConnected(t *testing.T) {
	op := iodb.NewPgxOperator()
	ctx := context.Background()

	_, err := op.TableExists(ctx, "pets")
	assert.Error(t, err)
	_, err = op.HasTables(ctx)
	assert.Error(t, err)
	assert.Error(t, op.DropAllTypes(ctx))
	assert.NoError(t, op.Close())
}

func TestPgxOperator_Tables(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	op := iotesting.Connect(t)
	ctx := context.Background()

	has, err := op.HasTables(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	_, err = op.Pool().Exec(ctx, `CREATE TYPE "species_kind" AS ENUM ('DOG', 'CAT')`)
	require.NoError(t, err)
	_, err = op.Pool().Exec(ctx,
		`CREATE TABLE "drop_test" ("id" serial PRIMARY KEY, "kind" "species_kind")`)
	require.NoError(t, err)

	exists, err := op.TableExists(ctx, "drop_test")
	require.NoError(t, err)
	assert.True(t, exists)

	tables, err := op.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"drop_test"}, tables)

	require.NoError(t, op.DropAllTables(ctx))
	require.NoError(t, op.DropAllTypes(ctx))

	has, err = op.HasTables(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	var n int
	err = op.Pool().QueryRow(ctx,
		`SELECT count(*) FROM pg_type WHERE typname = 'species_kind'`).Scan(&n)
	require.NoError(t, err)
	assert.Zero(t, n)
}

package migration_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vetcare/vetdb/pkg/catalog"
	"github.com/vetcare/vetdb/pkg/ddl"
	"github.com/vetcare/vetdb/pkg/migration"
)

// TestGuards verifies that every guard acts once and is a no-op on the
// second call.
func TestGuards(t *testing.T) {
	ctx := context.Background()
	m := catalog.NewMemory()

	enum := ddl.CreateEnum{Name: "species_enum", Values: []string{"DOG", "CAT"}}
	users := ddl.CreateTable{Name: "users", Columns: []ddl.Column{
		{Name: "id", Type: "uuid", PrimaryKey: true},
	}}
	pets := ddl.CreateTable{Name: "pets", Columns: []ddl.Column{
		{Name: "id", Type: "uuid", PrimaryKey: true},
		{Name: "owner", Type: "uuid"},
		{Name: "name", Type: "varchar(100)"},
	}}
	fk := ddl.AddForeignKey{Table: "pets", Key: ddl.ForeignKey{
		Name: "fk_pets_owner", Column: "owner", RefTable: "users",
		OnDelete: ddl.Cascade,
	}}
	idx := ddl.CreateIndex{Name: "idx_pets_name", Table: "pets", Columns: []string{"name"}}
	col := ddl.Column{Name: "species", Type: "species_enum"}

	steps := []func() (bool, error){
		func() (bool, error) { return migration.EnsureEnum(ctx, m, enum) },
		func() (bool, error) { return migration.EnsureTable(ctx, m, users) },
		func() (bool, error) { return migration.EnsureTable(ctx, m, pets) },
		func() (bool, error) { return migration.EnsureColumn(ctx, m, "pets", col) },
		func() (bool, error) { return migration.EnsureForeignKey(ctx, m, fk) },
		func() (bool, error) { return migration.EnsureIndex(ctx, m, idx) },
		func() (bool, error) { return migration.RenameColumn(ctx, m, "pets", "name", "nickname") },
	}
	for i, step := range steps {
		done, err := step()
		require.NoError(t, err, i)
		assert.True(t, done, i)
	}
	n := len(m.Statements())
	for i, step := range steps {
		done, err := step()
		require.NoError(t, err, i)
		assert.False(t, done, i)
	}
	assert.Len(t, m.Statements(), n)

	typ, err := m.ColumnType(ctx, "pets", "nickname")
	require.NoError(t, err)
	assert.Equal(t, "character varying", typ)
	assert.Equal(t, ddl.Cascade, m.OnDelete("pets", "fk_pets_owner"))

	drops := []func() (bool, error){
		func() (bool, error) { return migration.DropIndexIfExists(ctx, m, "idx_pets_name") },
		func() (bool, error) { return migration.DropConstraintIfExists(ctx, m, "pets", "fk_pets_owner") },
		func() (bool, error) { return migration.DropColumnIfExists(ctx, m, "pets", "species") },
		func() (bool, error) { return migration.DropTableIfExists(ctx, m, "pets") },
		func() (bool, error) { return migration.DropEnumIfExists(ctx, m, "species_enum") },
	}
	for i, step := range drops {
		done, err := step()
		require.NoError(t, err, i)
		assert.True(t, done, i)
		done, err = step()
		require.NoError(t, err, i)
		assert.False(t, done, i)
	}
}

func TestAlterColumnTypeIf(t *testing.T) {
	ctx := context.Background()
	m := catalog.NewMemory()
	require.NoError(t, m.Apply(ctx, ddl.CreateTable{Name: "appointments", Columns: []ddl.Column{
		{Name: "duration", Type: "integer"},
	}}))
	stmt := ddl.AlterColumnType{
		Table: "appointments", Column: "duration", Type: "varchar(50)",
		Using: `"duration"::varchar(50)`,
	}

	done, err := migration.AlterColumnTypeIf(ctx, m, stmt, migration.IsIntegerType)
	require.NoError(t, err)
	assert.True(t, done)

	done, err = migration.AlterColumnTypeIf(ctx, m, stmt, migration.IsIntegerType)
	require.NoError(t, err)
	assert.False(t, done)

	stmt.Column = "missing"
	done, err = migration.AlterColumnTypeIf(ctx, m, stmt, migration.IsIntegerType)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestEnsureEnumValueNeedsType(t *testing.T) {
	ctx := context.Background()
	m := catalog.NewMemory()
	_, err := migration.EnsureEnumValue(ctx, m, ddl.AddEnumValue{Enum: "status_enum", Value: "MISSED"})
	assert.Error(t, err)
}

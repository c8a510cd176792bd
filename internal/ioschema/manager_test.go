package ioschema_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vetcare/vetdb/internal/iodb"
	"github.com/vetcare/vetdb/internal/ioschema"
	"github.com/vetcare/vetdb/internal/iotesting"
	"github.com/vetcare/vetdb/pkg/config"
	"github.com/vetcare/vetdb/pkg/history"
)

// TestNewManager_NotConnected verifies that a manager needs a pool.
func TestNewManager_NotConnected(t *testing.T) {
	_, err := ioschema.NewManager(iodb.NewPgxOperator(), config.New())
	assert.Error(t, err)
}

// TestManager_CreateThenMigrate verifies the first deploy followed by an
// incremental run that has nothing to do, and that GORM models match.
func TestManager_CreateThenMigrate(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()
	op := iotesting.Connect(t)

	m, err := ioschema.NewManager(op, iotesting.GetTestConfig())
	require.NoError(t, err)
	defer m.Close()

	res, err := m.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, history.BootstrapName, res[0].Name)

	res, err = m.Migrate(ctx)
	require.NoError(t, err)
	assert.Empty(t, res)

	drift, err := m.CheckModels(ctx)
	require.NoError(t, err)
	assert.Empty(t, drift)

	st, err := m.Runner().Status(ctx)
	require.NoError(t, err)
	for _, v := range st {
		assert.True(t, v.Applied, v.Name)
	}
}

// TestManager_ModelDrift verifies that a missing table is reported.
func TestManager_ModelDrift(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()
	op := iotesting.Connect(t)

	m, err := ioschema.NewManager(op, iotesting.GetTestConfig())
	require.NoError(t, err)
	defer m.Close()

	_, err = m.Create(ctx)
	require.NoError(t, err)
	_, err = op.Pool().Exec(ctx, `DROP TABLE "notifications"`)
	require.NoError(t, err)

	drift, err := m.CheckModels(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"table notifications: missing"}, drift)
}

package migration_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vetcare/vetdb/internal/ioledger"
	"github.com/vetcare/vetdb/pkg/catalog"
	"github.com/vetcare/vetdb/pkg/ddl"
	"github.com/vetcare/vetdb/pkg/errcode"
	"github.com/vetcare/vetdb/pkg/migration"
)

func tableUnit(ts int64, label, table string) migration.Unit {
	stmt := ddl.CreateTable{
		Name: table,
		Columns: []ddl.Column{
			{Name: "id", Type: "uuid", PrimaryKey: true},
		},
	}
	return migration.New(migration.FormatName(ts, label),
		migration.Guard(migration.EnsureTable, stmt),
		func(ctx context.Context, c migration.Conn) error {
			_, err := migration.DropTableIfExists(ctx, c, table)
			return err
		},
	)
}

func fourUnits() []migration.Unit {
	return []migration.Unit{
		tableUnit(4, "D", "d"),
		tableUnit(2, "B", "b"),
		tableUnit(1, "A", "a"),
		tableUnit(3, "C", "c"),
	}
}

type collector struct {
	res []migration.Result
}

func (c *collector) Observe(r migration.Result) {
	c.res = append(c.res, r)
}

func names(res []migration.Result) []string {
	out := make([]string, len(res))
	for i, v := range res {
		out[i] = v.Name
	}
	return out
}

func appliedNames(t *testing.T, l migration.Ledger) []string {
	t.Helper()
	recs, err := l.Applied(context.Background())
	require.NoError(t, err)
	out := make([]string, len(recs))
	for i, v := range recs {
		out[i] = v.Name
	}
	return out
}

func TestRegistryValidation(t *testing.T) {
	assert := assert.New(t)

	reg, err := migration.NewRegistry(fourUnits())
	require.NoError(t, err)
	assert.Equal([]string{"1-A", "2-B", "3-C", "4-D"}, reg.Names())

	_, err = migration.NewRegistry(append(fourUnits(), tableUnit(2, "Other", "x")))
	assert.Error(err)
	var gnErr *gn.Error
	require.True(t, errors.As(err, &gnErr))
	assert.Equal(errcode.MigrationDuplicateError, gnErr.Code)

	bad := migration.New("AddThings", nil, nil)
	_, err = migration.NewRegistry([]migration.Unit{bad})
	require.True(t, errors.As(err, &gnErr))
	assert.Equal(errcode.MigrationNameError, gnErr.Code)
}

func TestListPending(t *testing.T) {
	applied := []migration.Record{{Timestamp: 3, Name: "3-C"}}
	res := migration.ListPending(fourUnits(), applied)
	require.Len(t, res, 3)
	assert.Equal(t, "1-A", res[0].Name())
	assert.Equal(t, "2-B", res[1].Name())
	assert.Equal(t, "4-D", res[2].Name())
}

// TestRunPendingSkipsApplied verifies that with A and B recorded exactly
// C and D run, in order.
func TestRunPendingSkipsApplied(t *testing.T) {
	ctx := context.Background()
	reg, err := migration.NewRegistry(fourUnits())
	require.NoError(t, err)

	led := ioledger.NewMemory(
		migration.Record{Timestamp: 1, Name: "1-A"},
		migration.Record{Timestamp: 2, Name: "2-B"},
	)
	db := catalog.NewMemory()
	obs := &collector{}
	r := migration.NewRunner(db, led, reg, migration.WithObserver(obs))

	res, err := r.RunPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"3-C", "4-D"}, names(res))
	assert.Equal(t, []string{"3-C", "4-D"}, names(obs.res))
	assert.Equal(t, []string{"1-A", "2-B", "3-C", "4-D"}, appliedNames(t, led))

	ok, err := db.TableExists(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	res, err = r.RunPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, res)
}

// TestRunPendingStopsAtFailure verifies that a failing unit is not
// recorded, later units do not run and earlier ones stay applied.
func TestRunPendingStopsAtFailure(t *testing.T) {
	ctx := context.Background()
	reg, err := migration.NewRegistry(fourUnits())
	require.NoError(t, err)

	led := ioledger.NewMemory()
	db := catalog.NewMemory()
	db.Fail = func(s ddl.Statement) error {
		if ct, ok := s.(ddl.CreateTable); ok && ct.Name == "c" {
			return errors.New("disk full")
		}
		return nil
	}
	r := migration.NewRunner(db, led, reg)

	res, err := r.RunPending(ctx)
	require.Error(t, err)
	assert.Equal(t, []string{"1-A", "2-B", "3-C"}, names(res))
	assert.Error(t, res[2].Err)
	assert.Equal(t, []string{"1-A", "2-B"}, appliedNames(t, led))

	var gnErr *gn.Error
	require.True(t, errors.As(err, &gnErr))
	assert.Equal(t, errcode.MigrationApplyError, gnErr.Code)

	db.Fail = nil
	res, err = r.RunPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"3-C", "4-D"}, names(res))
}

// TestUnitRollsBack verifies that a unit's statements are undone when a
// later statement of the same unit fails.
func TestUnitRollsBack(t *testing.T) {
	ctx := context.Background()
	u := migration.FromScript("10-TwoTables", ddl.Script{
		ddl.CreateTable{Name: "one", Columns: []ddl.Column{{Name: "id", Type: "uuid"}}},
		ddl.CreateTable{Name: "two", Columns: []ddl.Column{{Name: "id", Type: "no_such_type"}}},
	}, nil)
	reg, err := migration.NewRegistry([]migration.Unit{u})
	require.NoError(t, err)

	db := catalog.NewMemory()
	led := ioledger.NewMemory()
	_, err = migration.NewRunner(db, led, reg).RunPending(ctx)
	require.Error(t, err)

	ok, err := db.TableExists(ctx, "one")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, appliedNames(t, led))
}

func TestLedgerFailure(t *testing.T) {
	ctx := context.Background()
	reg, err := migration.NewRegistry(fourUnits())
	require.NoError(t, err)

	led := ioledger.NewMemory()
	led.Fail = errors.New("read only")
	res, err := migration.NewRunner(catalog.NewMemory(), led, reg).RunPending(ctx)
	require.Error(t, err)
	assert.Len(t, res, 1)
}

func TestRevertLast(t *testing.T) {
	ctx := context.Background()
	reg, err := migration.NewRegistry(fourUnits())
	require.NoError(t, err)
	db := catalog.NewMemory()
	led := ioledger.NewMemory()
	r := migration.NewRunner(db, led, reg)

	_, err = r.RunPending(ctx)
	require.NoError(t, err)

	res, err := r.RevertLast(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"4-D", "3-C"}, names(res))
	assert.Equal(t, migration.Down, res[0].Direction)
	assert.Equal(t, []string{"1-A", "2-B"}, appliedNames(t, led))

	ok, err := db.TableExists(ctx, "c")
	require.NoError(t, err)
	assert.False(t, ok)

	res, err = r.RevertLast(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, res, 2)
	assert.Empty(t, appliedNames(t, led))
}

func TestRevertWithoutDown(t *testing.T) {
	ctx := context.Background()
	u := migration.FromScript("5-Once", ddl.Script{
		ddl.CreateTable{Name: "once", Columns: []ddl.Column{{Name: "id", Type: "uuid"}}},
	}, nil)
	reg, err := migration.NewRegistry([]migration.Unit{u})
	require.NoError(t, err)
	led := ioledger.NewMemory()
	r := migration.NewRunner(catalog.NewMemory(), led, reg)
	_, err = r.RunPending(ctx)
	require.NoError(t, err)

	_, err = r.RevertLast(ctx, 1)
	var gnErr *gn.Error
	require.True(t, errors.As(err, &gnErr))
	assert.Equal(t, errcode.MigrationNoDownError, gnErr.Code)
	assert.Equal(t, []string{"5-Once"}, appliedNames(t, led))
}

func TestBootstrap(t *testing.T) {
	ctx := context.Background()
	recreate := migration.FromScript("3-Recreate", ddl.Script{
		ddl.CreateTable{Name: "a", Columns: []ddl.Column{{Name: "id", Type: "uuid"}}},
		ddl.CreateTable{Name: "b", Columns: []ddl.Column{{Name: "id", Type: "uuid"}}},
	}, nil)
	hist := []migration.Unit{tableUnit(1, "A", "a"), tableUnit(2, "B", "b"), tableUnit(4, "D", "d")}
	reg, err := migration.NewRegistry(hist, recreate)
	require.NoError(t, err)

	led := ioledger.NewMemory(migration.Record{Timestamp: 99, Name: "99-Stale"})
	now := time.Date(2024, 4, 11, 0, 0, 0, 0, time.UTC)
	r := migration.NewRunner(catalog.NewMemory(), led, reg,
		migration.WithClock(func() time.Time { return now }))

	res, err := r.Bootstrap(ctx, "3-Recreate")
	require.NoError(t, err)
	assert.Equal(t, []string{"3-Recreate", "1-A", "2-B"}, names(res))
	assert.Equal(t, migration.Baseline, res[1].Direction)
	assert.Equal(t, []string{"1-A", "2-B", "3-Recreate"}, appliedNames(t, led))

	pending, err := r.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "4-D", pending[0].Name())

	status, err := r.Status(ctx)
	require.NoError(t, err)
	require.Len(t, status, 4)
	assert.Equal(t, "4-D", status[2].Name)
	assert.False(t, status[2].Applied)
	assert.Equal(t, "3-Recreate", status[3].Name)
	assert.True(t, status[3].Standalone)
	assert.True(t, status[3].Known)
	assert.Equal(t, now, status[3].AppliedAt)

	_, err = r.Bootstrap(ctx, "7-Missing")
	assert.Error(t, err)
}

func TestBootstrapFailureKeepsLedger(t *testing.T) {
	ctx := context.Background()
	recreate := migration.FromScript("3-Recreate", ddl.Script{
		ddl.CreateTable{Name: "c", Columns: []ddl.Column{{Name: "id", Type: "uuid"}}},
	}, nil)
	hist := []migration.Unit{tableUnit(1, "A", "a"), tableUnit(2, "B", "b")}
	reg, err := migration.NewRegistry(hist, recreate)
	require.NoError(t, err)

	db := catalog.NewMemory()
	led := ioledger.NewMemory()
	r := migration.NewRunner(db, led, reg)
	_, err = r.RunPending(ctx)
	require.NoError(t, err)

	boom := errors.New("boom")
	db.Fail = func(s ddl.Statement) error {
		if ct, ok := s.(ddl.CreateTable); ok && ct.Name == "c" {
			return boom
		}
		return nil
	}
	res, err := r.Bootstrap(ctx, "3-Recreate")
	require.Error(t, err)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.MigrationApplyError, gnErr.Code)
	assert.Equal(t, []string{"3-Recreate"}, names(res))
	assert.Equal(t, []string{"1-A", "2-B"}, appliedNames(t, led))
	assert.Equal(t, []string{"a", "b"}, db.Snapshot().TableNames())
}

func TestBootstrapLedgerFailure(t *testing.T) {
	ctx := context.Background()
	recreate := migration.FromScript("3-Recreate", ddl.Script{
		ddl.CreateTable{Name: "c", Columns: []ddl.Column{{Name: "id", Type: "uuid"}}},
	}, nil)
	reg, err := migration.NewRegistry([]migration.Unit{tableUnit(1, "A", "a")}, recreate)
	require.NoError(t, err)

	led := ioledger.NewMemory(migration.Record{Timestamp: 1, Name: "1-A"})
	led.Fail = errors.New("disk full")
	_, err = migration.NewRunner(catalog.NewMemory(), led, reg).
		Bootstrap(ctx, "3-Recreate")
	require.Error(t, err)
	assert.Equal(t, []string{"1-A"}, appliedNames(t, led))
}

func TestStatusUnknownRecord(t *testing.T) {
	reg, err := migration.NewRegistry(fourUnits())
	require.NoError(t, err)
	led := ioledger.NewMemory(migration.Record{Timestamp: 9, Name: "9-FromNewerRelease"})
	status, err := migration.NewRunner(catalog.NewMemory(), led, reg).
		Status(context.Background())
	require.NoError(t, err)
	require.Len(t, status, 5)
	assert.False(t, status[4].Known)
	assert.True(t, status[4].Applied)
}

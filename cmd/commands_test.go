package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vetcare/vetdb/internal/ioledger"
	"github.com/vetcare/vetdb/pkg/catalog"
	"github.com/vetcare/vetdb/pkg/config"
	"github.com/vetcare/vetdb/pkg/history"
	"github.com/vetcare/vetdb/pkg/migration"
)

func helpText(t *testing.T, cmd *cobra.Command) string {
	t.Helper()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})
	require.NoError(t, cmd.Execute())
	return buf.String()
}

// TestCommands_HelpText verifies that every command documents itself
// with examples.
func TestCommands_HelpText(t *testing.T) {
	tests := []struct {
		cmd  *cobra.Command
		use  string
		want string
	}{
		{getDeployCmd(), "deploy", "last step that succeeded"},
		{getMigrateCmd(), "migrate", "ascending timestamp order"},
		{getRevertCmd(), "revert [N]", "newest"},
		{getStatusCmd(), "status", "ledger state"},
		{getValidateCmd(), "validate", "not contacted"},
		{getCreateCmd(), "create", "confirmation"},
		{getSeedCmd(), "seed", "one transaction"},
		{getInspectCmd(), "inspect", "counts rows"},
	}
	for _, v := range tests {
		assert.Equal(t, v.use, v.cmd.Use)
		assert.NotEmpty(t, v.cmd.Short, v.use)
		assert.NotNil(t, v.cmd.RunE, v.use)

		help := helpText(t, v.cmd)
		assert.Contains(t, help, "Examples:", v.use)
		assert.Contains(t, help, "vetdb "+v.cmd.Name(), v.use)
		assert.Contains(t, help, v.want, v.use)
	}
}

// TestCommands_Flags verifies flag names, shorthands and defaults.
func TestCommands_Flags(t *testing.T) {
	tests := []struct {
		cmd       *cobra.Command
		name      string
		shorthand string
		def       string
	}{
		{getDeployCmd(), "first-deploy", "", "false"},
		{getDeployCmd(), "migrate", "m", "false"},
		{getDeployCmd(), "seed", "s", "false"},
		{getDeployCmd(), "lock", "", "true"},
		{getMigrateCmd(), "only", "", ""},
		{getMigrateCmd(), "dry-run", "n", "false"},
		{getStatusCmd(), "json", "", "false"},
		{getValidateCmd(), "unit", "u", ""},
		{getCreateCmd(), "force", "f", "false"},
		{getInspectCmd(), "json", "", "false"},
		{getInspectCmd(), "strict", "", "false"},
	}
	for _, v := range tests {
		flag := v.cmd.Flags().Lookup(v.name)
		require.NotNil(t, flag, v.name)
		assert.Equal(t, v.shorthand, flag.Shorthand, v.name)
		assert.Equal(t, v.def, flag.DefValue, v.name)
	}
}

// TestDeployFlags verifies that only flags given on the command line
// override the configuration.
func TestDeployFlags(t *testing.T) {
	cmd := getDeployCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--first-deploy", "--lock=false"}))

	c := config.New()
	c.Update(deployFlags(cmd))
	assert.True(t, c.Deploy.FirstDeploy)
	assert.False(t, c.Deploy.UseLock)
	assert.True(t, c.Deploy.RunMigrations, "default stays")
	assert.False(t, c.Deploy.RunSeeds)
}

func TestRevertArgs(t *testing.T) {
	cmd := getRevertCmd()
	assert.NoError(t, cmd.Args(cmd, []string{"2"}))
	assert.Error(t, cmd.Args(cmd, []string{"1", "2"}))
}

func TestRunValidate(t *testing.T) {
	assert.NoError(t, runValidate(history.BootstrapName))
	assert.Error(t, runValidate("1799999999999-Missing"))
}

func TestStatusLine(t *testing.T) {
	at := time.Now().Add(-2 * time.Hour)
	tests := []struct {
		st   migration.UnitStatus
		want []string
	}{
		{migration.UnitStatus{Name: "1-A", Known: true}, []string{"pending", "1-A"}},
		{migration.UnitStatus{Name: "2-B", Known: true, Applied: true, AppliedAt: at},
			[]string{"applied", "2-B", "2 hours ago"}},
		{migration.UnitStatus{Name: "3-C", Applied: true}, []string{"unknown", "3-C"}},
		{migration.UnitStatus{Name: history.BootstrapName, Known: true, Applied: true,
			Standalone: true}, []string{"applied", "[bootstrap]"}},
	}
	for _, v := range tests {
		line := statusLine(v.st)
		for _, w := range v.want {
			assert.True(t, strings.Contains(line, w), line)
		}
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"yes\n", true},
		{" Y \n", true},
		{"no\n", false},
		{"", false},
	}
	for _, v := range tests {
		ok, err := confirm(strings.NewReader(v.in))
		require.NoError(t, err)
		assert.Equal(t, v.want, ok, v.in)
	}
}

type tableSet map[string]bool

func (ts tableSet) TableExists(_ context.Context, table string) (bool, error) {
	return ts[table], nil
}

// TestAppliedRecords verifies that a ledger table that does not exist
// yet reads as an empty ledger.
func TestAppliedRecords(t *testing.T) {
	saved := cfg
	t.Cleanup(func() { cfg = saved })
	cfg = config.New()

	ctx := context.Background()
	ledger := ioledger.NewMemory(migration.Record{
		Timestamp: 1712000000000,
		Name:      "1712000000000-InitialSchema",
	})

	recs, err := appliedRecords(ctx, tableSet{}, ledger)
	require.NoError(t, err)
	assert.Empty(t, recs)

	recs, err = appliedRecords(ctx, tableSet{cfg.Ledger.Table: true}, ledger)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "1712000000000-InitialSchema", recs[0].Name)
}

// TestPlanPending verifies the dry run against an empty database and
// against a fully migrated one.
func TestPlanPending(t *testing.T) {
	ctx := context.Background()
	reg, err := history.Registry()
	require.NoError(t, err)

	var want []string
	var applied []migration.Record
	for _, u := range history.Units() {
		want = append(want, u.Name())
		applied = append(applied, migration.Record{
			Timestamp: migration.Timestamp(u.Name()),
			Name:      u.Name(),
		})
	}

	res, stmts, err := planPending(ctx, catalog.Snapshot{}, nil, reg)
	require.NoError(t, err)
	got := make([]string, len(res))
	for i, v := range res {
		assert.NoError(t, v.Err)
		got[i] = v.Name
	}
	assert.Equal(t, want, got)
	assert.NotEmpty(t, stmts)

	res, stmts, err = planPending(ctx, catalog.Snapshot{}, applied, reg)
	require.NoError(t, err)
	assert.Empty(t, res)
	assert.Empty(t, stmts)
}

type createJournal struct {
	calls     []string
	hasTables bool
}

func (j *createJournal) HasTables(context.Context) (bool, error) {
	j.calls = append(j.calls, "has-tables")
	return j.hasTables, nil
}

func (j *createJournal) DropAllTables(context.Context) error {
	j.calls = append(j.calls, "drop-tables")
	return nil
}

func (j *createJournal) DropAllTypes(context.Context) error {
	j.calls = append(j.calls, "drop-types")
	return nil
}

func (j *createJournal) Acquire(_ context.Context, key string) (func(), error) {
	j.calls = append(j.calls, "lock:"+key)
	return func() { j.calls = append(j.calls, "unlock") }, nil
}

func (j *createJournal) Create(context.Context) ([]migration.Result, error) {
	j.calls = append(j.calls, "create")
	return []migration.Result{{Name: history.BootstrapName, Direction: migration.Up}}, nil
}

func (j *createJournal) Migrate(context.Context) ([]migration.Result, error) {
	j.calls = append(j.calls, "migrate")
	return nil, nil
}

// TestCreateSchema verifies that existing tables are dropped only while
// the advisory lock is held.
func TestCreateSchema(t *testing.T) {
	saved := cfg
	t.Cleanup(func() { cfg = saved })
	cfg = config.New()
	key := "lock:" + lockKey()
	ctx := context.Background()

	tests := []struct {
		msg       string
		hasTables bool
		force     bool
		in        string
		want      []string
	}{
		{"empty database", false, false, "",
			[]string{key, "has-tables", "create", "unlock"}},
		{"forced", true, true, "",
			[]string{key, "has-tables", "drop-tables", "drop-types", "create", "unlock"}},
		{"confirmed", true, false, "yes\n",
			[]string{key, "has-tables", "drop-tables", "drop-types", "create", "unlock"}},
		{"declined", true, false, "no\n",
			[]string{key, "has-tables", "unlock"}},
	}

	for _, v := range tests {
		j := &createJournal{hasTables: v.hasTables}
		res, err := createSchema(ctx, j, j, j, strings.NewReader(v.in), v.force)
		require.NoError(t, err, v.msg)
		assert.Equal(t, v.want, j.calls, v.msg)
		if v.msg == "declined" {
			assert.Nil(t, res, v.msg)
		} else {
			assert.Len(t, res, 1, v.msg)
		}
	}
}

/*
Copyright © 2025 The VetDB Authors

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"github.com/vetcare/vetdb/internal/iocatalog"
	"github.com/vetcare/vetdb/internal/ioledger"
	"github.com/vetcare/vetdb/pkg/catalog"
	"github.com/vetcare/vetdb/pkg/ddl"
	"github.com/vetcare/vetdb/pkg/history"
	"github.com/vetcare/vetdb/pkg/migration"
)

// getMigrateCmd returns the migrate command.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getMigrateCmd() *cobra.Command {
	var only string
	var dryRun bool

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Long: `Migrate applies migrations that are not recorded in the ledger,
in ascending timestamp order.

Each migration runs in its own transaction and is recorded right after
it succeeds. The run stops at the first failure; migrations applied
before it stay applied. Every migration checks the live schema before
changing it, so it is safe to run migrate again after a failure.

Use --only to apply one migration by name, regardless of order.
Use --dry-run to replay pending migrations against an in-memory model
of the current schema without touching the database.

Examples:
  vetdb migrate
  vetdb migrate --only 1712300000000-RenameAppointmentDateTime
  vetdb migrate --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dryRun {
				return runMigrateDry(cmd)
			}
			return runMigrate(cmd, only)
		},
	}

	migrateCmd.Flags().StringVar(&only, "only", "",
		"apply a single migration by name")
	migrateCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false,
		"show what would run without changing the database")

	return migrateCmd
}

func runMigrate(cmd *cobra.Command, only string) error {
	ctx := cmd.Context()
	sm, closeAll, err := openManager(ctx, migration.WithLogger(slog.Default()))
	if err != nil {
		printError(err)
		return err
	}
	defer closeAll()

	locker := newLocker(sm.Operator())
	release, err := locker.Acquire(ctx, lockKey())
	if err != nil {
		printError(err)
		return err
	}
	defer release()

	var res []migration.Result
	if only != "" {
		var one migration.Result
		one, err = sm.Runner().RunOne(ctx, only)
		res = []migration.Result{one}
	} else {
		gn.Info("Applying pending migrations...")
		res, err = sm.Migrate(ctx)
	}
	printResults(res)
	if err != nil {
		printError(err)
		return err
	}

	if len(res) == 0 {
		gn.Info("Schema is up to date.")
		return nil
	}
	gn.Info("Applied %s migrations.", humanize.Comma(int64(len(res))))
	return nil
}

// runMigrateDry copies the live schema into memory and applies pending
// migrations there. Only the statements are shown.
func runMigrateDry(cmd *cobra.Command) error {
	ctx := cmd.Context()
	op, err := connect(ctx)
	if err != nil {
		printError(err)
		return err
	}
	defer op.Close()

	ledger, closer, err := ioledger.New(cfg, op.Pool())
	if err != nil {
		printError(err)
		return err
	}
	defer closer.Close()

	applied, err := appliedRecords(ctx, op, ledger)
	if err != nil {
		printError(err)
		return err
	}

	reg, err := history.Registry()
	if err != nil {
		printError(err)
		return err
	}

	snap, err := iocatalog.NewInspector(op.Pool(), cfg.JobsNumber).
		Snapshot(ctx, false, cfg.Ledger.Table)
	if err != nil {
		printError(err)
		return err
	}

	res, stmts, err := planPending(ctx, snap, applied, reg)
	for _, v := range res {
		gn.Info("-- %s", v.Name)
	}
	for _, v := range stmts {
		gn.Info("%s", v.SQL())
	}
	if err != nil {
		printError(err)
		return err
	}
	gn.Info("%s migrations would run.", humanize.Comma(int64(len(res))))
	return nil
}

// tableChecker reports whether a table of the public schema exists.
type tableChecker interface {
	TableExists(ctx context.Context, table string) (bool, error)
}

// appliedRecords reads the ledger without writing to the database. A
// PostgreSQL ledger table that was never created means nothing was
// applied yet.
func appliedRecords(
	ctx context.Context,
	tc tableChecker,
	ledger migration.Ledger,
) ([]migration.Record, error) {
	if cfg.Ledger.Driver == "sqlite" {
		if err := ledger.Init(ctx); err != nil {
			return nil, err
		}
		return ledger.Applied(ctx)
	}
	exists, err := tc.TableExists(ctx, cfg.Ledger.Table)
	if err != nil || !exists {
		return nil, err
	}
	return ledger.Applied(ctx)
}

// planPending replays pending migrations on an in-memory copy of snap and
// returns their results with the statements they issued.
func planPending(
	ctx context.Context,
	snap catalog.Snapshot,
	applied []migration.Record,
	reg *migration.Registry,
) ([]migration.Result, []ddl.Statement, error) {
	model := catalog.FromSnapshot(snap)
	r := migration.NewRunner(model, ioledger.NewMemory(applied...), reg,
		migration.WithLogger(slog.New(slog.DiscardHandler)))
	res, err := r.RunPending(ctx)
	return res, model.Statements(), err
}

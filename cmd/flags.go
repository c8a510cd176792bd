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

	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"github.com/vetcare/vetdb/internal/iodb"
	"github.com/vetcare/vetdb/internal/iolock"
	"github.com/vetcare/vetdb/internal/ioschema"
	"github.com/vetcare/vetdb/pkg/config"
	"github.com/vetcare/vetdb/pkg/db"
	"github.com/vetcare/vetdb/pkg/lifecycle"
	"github.com/vetcare/vetdb/pkg/migration"
)

// addDeployFlags adds flags that override deploy settings.
func addDeployFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("first-deploy", false,
		"recreate the whole schema with the bootstrap migration")
	cmd.Flags().BoolP("migrate", "m", false, "apply pending migrations")
	cmd.Flags().BoolP("seed", "s", false, "load reference data")
	cmd.Flags().Bool("lock", true, "hold an advisory lock during the run")
}

// deployFlags returns options for deploy flags given on the command
// line. Flags that were not set keep the configured values.
func deployFlags(cmd *cobra.Command) []config.Option {
	var res []config.Option
	flags := []struct {
		name string
		opt  func(bool) config.Option
	}{
		{"first-deploy", config.OptDeployFirstDeploy},
		{"migrate", config.OptDeployRunMigrations},
		{"seed", config.OptDeployRunSeeds},
		{"lock", config.OptDeployUseLock},
	}
	for _, v := range flags {
		if !cmd.Flags().Changed(v.name) {
			continue
		}
		b, err := cmd.Flags().GetBool(v.name)
		if err != nil {
			continue
		}
		res = append(res, v.opt(b))
	}
	return res
}

// connect opens the database configured in cfg.
func connect(ctx context.Context) (db.Operator, error) {
	op := iodb.NewPgxOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		return nil, err
	}
	gn.Info("Connected to database: <em>%s@%s:%d/%s</em>",
		cfg.Database.User, cfg.Database.Host,
		cfg.Database.Port, cfg.Database.Database)
	return op, nil
}

// openManager connects and creates a schema manager. The returned
// function closes both.
func openManager(
	ctx context.Context,
	opts ...migration.Option,
) (*ioschema.Manager, func(), error) {
	op, err := connect(ctx)
	if err != nil {
		return nil, nil, err
	}
	sm, err := ioschema.NewManager(op, cfg, opts...)
	if err != nil {
		op.Close()
		return nil, nil, err
	}
	closeAll := func() {
		sm.Close()
		op.Close()
	}
	return sm, closeAll, nil
}

// lockKey is the advisory lock key of runs against the configured
// database.
func lockKey() string {
	return "vetdb:" + cfg.Database.Database
}

func newLocker(op db.Operator) lifecycle.Locker {
	if !cfg.Deploy.UseLock {
		return iolock.NewNoop()
	}
	return iolock.NewPostgres(op.Pool())
}

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
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"github.com/vetcare/vetdb/internal/iometrics"
	"github.com/vetcare/vetdb/internal/ioseed"
	"github.com/vetcare/vetdb/pkg/deploy"
	"github.com/vetcare/vetdb/pkg/migration"
)

// getDeployCmd returns the deploy command.
func getDeployCmd() *cobra.Command {
	deployCmd := &cobra.Command{
		Use:   "deploy",
		Short: "Run a deploy: bootstrap or migrate, then seed",
		Long: `Deploy runs the steps selected by the deploy flags.

Steps, in order:
  1. Check the flags. FIRST_DEPLOY without RUN_MIGRATIONS is rejected
     before the database is touched.
  2. On a first deploy, check that the bootstrap migration creates
     every table, type and index.
  3. Take an advisory lock, so two deploys never run at once.
  4. FIRST_DEPLOY: recreate the schema and mark older migrations as
     applied. RUN_MIGRATIONS: apply pending migrations in order.
  5. RUN_SEEDS: load reference data. Seeds never run after a failed
     migration.

A failed step stops the run. The error names the failed step and the
last step that succeeded.

Examples:
  vetdb deploy
  vetdb deploy --first-deploy --migrate --seed
  RUN_SEEDS=yes vetdb deploy`,
		RunE: runDeploy,
	}

	addDeployFlags(deployCmd)
	return deployCmd
}

func runDeploy(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg.Update(deployFlags(cmd))

	// flags are checked before any connection is made
	if err := cfg.Deploy.Validate(); err != nil {
		printError(err)
		return err
	}

	metrics := iometrics.New()
	sm, closeAll, err := openManager(ctx,
		migration.WithObserver(metrics),
		migration.WithLogger(slog.Default()),
	)
	if err != nil {
		printError(err)
		return err
	}
	defer closeAll()

	op := sm.Operator()
	dopts := []deploy.Option{
		deploy.OptRegistry(sm.Registry()),
		deploy.OptLocker(newLocker(op), lockKey()),
	}
	if cfg.Deploy.RunSeeds {
		seeder, err := ioseed.New(op.Pool(),
			ioseed.OptBatchSize(cfg.Database.BatchSize))
		if err != nil {
			printError(err)
			return err
		}
		dopts = append(dopts, deploy.OptSeeder(seeder))
	}

	rep, err := deploy.New(cfg.Deploy, sm, dopts...).Run(ctx)
	recordMetrics(cmd, sm.Runner(), metrics, rep, err)
	if err != nil {
		printError(err)
		return err
	}

	printResults(rep.Migrations)
	gn.Info("Deploy finished (<em>%s</em>): %s migrations, %s seeded rows",
		rep.Mode,
		humanize.Comma(int64(len(rep.Migrations))),
		humanize.Comma(int64(rep.Seeded)),
	)
	return nil
}

func recordMetrics(
	cmd *cobra.Command,
	r *migration.Runner,
	metrics *iometrics.Collector,
	rep *deploy.Report,
	runErr error,
) {
	if rep != nil {
		metrics.SeededRows.Add(float64(rep.Seeded))
	}
	if pending, err := r.Pending(cmd.Context()); err == nil {
		metrics.Pending.Set(float64(len(pending)))
	}
	metrics.RunFinished(time.Now(), runErr)
	if err := metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		slog.Warn("Metrics were not written", "error", err)
	}
}

// printResults shows one line per migration result.
func printResults(res []migration.Result) {
	for _, v := range res {
		switch {
		case v.Err != nil:
			gn.Warn("%-9s %s failed", v.Direction, v.Name)
		case v.Direction == migration.Baseline:
			gn.Info("%-9s <em>%s</em>", v.Direction, v.Name)
		default:
			gn.Info("%-9s <em>%s</em> (%s)", v.Direction, v.Name,
				v.Duration.Round(time.Millisecond))
		}
	}
}

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
	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"github.com/vetcare/vetdb/internal/ioseed"
)

// getSeedCmd returns the seed command.
func getSeedCmd() *cobra.Command {
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Load reference data into a migrated schema",
		Long: `Seed inserts an administrator, veterinarians, clients and their
pets. Rows that already exist are skipped, so seeding twice inserts
nothing the second time. All rows are written in one transaction.

Run migrations first, the seeder expects the current schema.

Examples:
  vetdb seed`,
		RunE: runSeed,
	}
	return seedCmd
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	op, err := connect(ctx)
	if err != nil {
		printError(err)
		return err
	}
	defer op.Close()

	seeder, err := ioseed.New(op.Pool(),
		ioseed.OptBatchSize(cfg.Database.BatchSize))
	if err != nil {
		printError(err)
		return err
	}

	release, err := newLocker(op).Acquire(ctx, lockKey())
	if err != nil {
		printError(err)
		return err
	}
	defer release()

	n, err := seeder.Seed(ctx)
	if err != nil {
		printError(err)
		return err
	}
	gn.Info("Seeding finished, %s new rows", humanize.Comma(int64(n)))
	return nil
}

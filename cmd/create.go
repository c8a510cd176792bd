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
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"github.com/vetcare/vetdb/pkg/lifecycle"
	"github.com/vetcare/vetdb/pkg/migration"
)

// getCreateCmd returns the create command.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getCreateCmd() *cobra.Command {
	var forceCreate bool

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create database schema from scratch",
		Long: `Create builds the veterinary clinic schema from scratch with the
bootstrap migration. It is the interactive form of a first deploy.

This command:
  1. Connects to PostgreSQL using configuration settings
  2. Checks for existing tables and prompts for confirmation
  3. Drops existing tables and enum types
  4. Runs the bootstrap migration and marks older migrations
     as applied

Use --force to skip confirmation and drop existing tables.

Examples:
  vetdb create
  vetdb create --force
  vetdb create -f`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, os.Stdin, forceCreate)
		},
	}

	createCmd.Flags().BoolVarP(&forceCreate, "force", "f",
		false, "drop existing tables without confirmation")

	return createCmd
}

func runCreate(cmd *cobra.Command, in io.Reader, force bool) error {
	ctx := cmd.Context()

	sm, closeAll, err := openManager(ctx, migration.WithLogger(slog.Default()))
	if err != nil {
		printError(err)
		return err
	}
	defer closeAll()
	op := sm.Operator()

	res, err := createSchema(ctx, op, newLocker(op), sm, in, force)
	printResults(res)
	if err != nil {
		printError(err)
		return err
	}
	if res == nil {
		gn.Info("Aborted. No changes made.")
		return nil
	}

	gn.Info("\nDatabase schema creation complete!")
	gn.Info("\nNext steps:")
	gn.Info("  - Run 'vetdb seed' to load reference data")
	gn.Info("  - Run 'vetdb status' to see the migration ledger")
	return nil
}

// schemaDropper is the part of db.Operator that create needs.
type schemaDropper interface {
	HasTables(ctx context.Context) (bool, error)
	DropAllTables(ctx context.Context) error
	DropAllTypes(ctx context.Context) error
}

// createSchema drops an existing schema after confirmation and runs the
// bootstrap migration. The advisory lock is held for the whole sequence.
// A declined confirmation returns nil results and no error.
func createSchema(
	ctx context.Context,
	op schemaDropper,
	locker lifecycle.Locker,
	sm lifecycle.SchemaManager,
	in io.Reader,
	force bool,
) ([]migration.Result, error) {
	release, err := locker.Acquire(ctx, lockKey())
	if err != nil {
		return nil, err
	}
	defer release()

	hasTables, err := op.HasTables(ctx)
	if err != nil {
		return nil, err
	}

	if hasTables {
		if !force {
			gn.Warn("\nWarning: Database contains existing tables.")
			gn.Warn("Creating schema will drop ALL existing tables and data.")
			ok, err := confirm(in)
			if err != nil {
				gn.Warn("Failed to read user input")
				return nil, err
			}
			if !ok {
				return nil, nil
			}
		}
		if err = dropAll(ctx, op); err != nil {
			return nil, err
		}
	}

	gn.Info("Creating schema with <em>%s</em>...", cfg.Deploy.BootstrapUnit)
	return sm.Create(ctx)
}

func confirm(in io.Reader) (bool, error) {
	fmt.Print("\nDo you want to continue? (yes/no): ")
	reader := bufio.NewReader(in)
	response, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "yes" || response == "y", nil
}

func dropAll(ctx context.Context, op schemaDropper) error {
	gn.Info("Dropping all existing tables...")
	if err := op.DropAllTables(ctx); err != nil {
		return err
	}
	if err := op.DropAllTypes(ctx); err != nil {
		return err
	}
	gn.Info("All tables dropped")
	return nil
}

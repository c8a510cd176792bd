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
	"strconv"

	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"github.com/vetcare/vetdb/pkg/errcode"
	"github.com/vetcare/vetdb/pkg/migration"
)

// getRevertCmd returns the revert command.
func getRevertCmd() *cobra.Command {
	revertCmd := &cobra.Command{
		Use:   "revert [N]",
		Short: "Revert the last N applied migrations",
		Long: `Revert undoes the last N applied migrations (default 1), newest
first. A ledger record is removed only after its migration was reverted.

Some migrations cannot be fully undone. The MISSED appointment status
stays in the enum type after a revert, appointments that used it become
CANCELLED. The bootstrap migration has no revert.

Examples:
  vetdb revert
  vetdb revert 3`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRevert,
	}
	return revertCmd
}

func runRevert(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	n := 1
	if len(args) == 1 {
		var err error
		n, err = strconv.Atoi(args[0])
		if err != nil || n < 1 {
			err = &gn.Error{
				Code: errcode.CLIArgumentError,
				Msg:  "Number of migrations must be a positive integer, got <em>%s</em>",
				Vars: []any{args[0]},
				Err:  strconv.ErrSyntax,
			}
			printError(err)
			return err
		}
	}

	sm, closeAll, err := openManager(ctx, migration.WithLogger(slog.Default()))
	if err != nil {
		printError(err)
		return err
	}
	defer closeAll()

	release, err := newLocker(sm.Operator()).Acquire(ctx, lockKey())
	if err != nil {
		printError(err)
		return err
	}
	defer release()

	res, err := sm.Runner().RevertLast(ctx, n)
	printResults(res)
	if err != nil {
		printError(err)
		return err
	}
	if len(res) == 0 {
		gn.Info("Nothing to revert.")
		return nil
	}
	gn.Info("Reverted %d migrations.", len(res))
	return nil
}

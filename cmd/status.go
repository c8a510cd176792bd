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
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/spf13/cobra"
	"github.com/vetcare/vetdb/pkg/migration"
)

// getStatusCmd returns the status command.
func getStatusCmd() *cobra.Command {
	var asJSON bool

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		Long: `Status lists known migrations with their ledger state, followed
by the bootstrap migration and ledger records this version of vetdb does
not know.

Examples:
  vetdb status
  vetdb status --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, asJSON)
		},
	}

	statusCmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return statusCmd
}

func runStatus(cmd *cobra.Command, asJSON bool) error {
	ctx := cmd.Context()
	sm, closeAll, err := openManager(ctx)
	if err != nil {
		printError(err)
		return err
	}
	defer closeAll()

	rows, err := sm.Runner().Status(ctx)
	if err != nil {
		printError(err)
		return err
	}

	if asJSON {
		enc := gnfmt.GNjson{Pretty: true}
		out, err := enc.Encode(rows)
		if err != nil {
			printError(err)
			return err
		}
		fmt.Fprintln(os.Stdout, string(out))
		return nil
	}

	var pending int
	for _, v := range rows {
		fmt.Fprintln(os.Stdout, statusLine(v))
		if !v.Applied {
			pending++
		}
	}
	gn.Info("%s migrations, %s pending",
		humanize.Comma(int64(len(rows))), humanize.Comma(int64(pending)))
	return nil
}

func statusLine(s migration.UnitStatus) string {
	state := "pending"
	switch {
	case !s.Known:
		state = "unknown"
	case s.Applied:
		state = "applied"
	}
	line := fmt.Sprintf("%-8s %s", state, s.Name)
	if s.Applied && !s.AppliedAt.IsZero() {
		line += "  (" + humanize.Time(s.AppliedAt) + ")"
	}
	if s.Standalone {
		line += "  [bootstrap]"
	}
	return line
}

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
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/spf13/cobra"
	"github.com/vetcare/vetdb/internal/iocatalog"
	"github.com/vetcare/vetdb/internal/ioschema"
	"github.com/vetcare/vetdb/pkg/catalog"
	"github.com/vetcare/vetdb/pkg/history"
)

// getInspectCmd returns the inspect command.
func getInspectCmd() *cobra.Command {
	var asJSON, strict bool

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the live schema and compare it with the models",
		Long: `Inspect reads tables, columns, constraints, indexes and enum
types of the live database and counts rows of every table.

The live schema is compared with the schema the bootstrap migration
creates, and the GORM models are checked for missing tables and
columns. Differences are listed. With --strict they make the command
fail.

Examples:
  vetdb inspect
  vetdb inspect --json
  vetdb inspect --strict`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd, asJSON, strict)
		},
	}

	inspectCmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	inspectCmd.Flags().BoolVar(&strict, "strict", false,
		"fail when the schema differs from the models")
	return inspectCmd
}

// inspection is the JSON output of inspect.
type inspection struct {
	Schema catalog.Snapshot `json:"schema"`
	Drift  []string         `json:"drift"`
}

func runInspect(cmd *cobra.Command, asJSON, strict bool) error {
	ctx := cmd.Context()
	sm, closeAll, err := openManager(ctx)
	if err != nil {
		printError(err)
		return err
	}
	defer closeAll()

	in := iocatalog.NewInspector(sm.Operator().Pool(), cfg.JobsNumber)
	snap, err := in.Snapshot(ctx, true, cfg.Ledger.Table)
	if err != nil {
		printError(err)
		return err
	}

	drift, err := schemaDrift(ctx, snap)
	if err != nil {
		printError(err)
		return err
	}
	models, err := sm.CheckModels(ctx)
	if err != nil {
		printError(err)
		return err
	}
	drift = append(drift, models...)

	if asJSON {
		enc := gnfmt.GNjson{Pretty: true}
		out, err := enc.Encode(inspection{Schema: snap, Drift: drift})
		if err != nil {
			printError(err)
			return err
		}
		fmt.Fprintln(os.Stdout, string(out))
	} else {
		printSnapshot(snap)
		for _, v := range drift {
			gn.Warn("%s", v)
		}
	}

	if len(drift) == 0 {
		gn.Info("Schema matches the models")
		return nil
	}
	if strict {
		err = ioschema.DriftError(drift)
		printError(err)
		return err
	}
	return nil
}

// schemaDrift compares the live schema with the result of the bootstrap
// migration applied to an empty in-memory model.
func schemaDrift(ctx context.Context, live catalog.Snapshot) ([]string, error) {
	model := catalog.NewMemory()
	if err := history.Recreate().Apply(ctx, model); err != nil {
		return nil, err
	}
	want := model.Snapshot().Normalize()
	res := want.Diff(live)
	r := strings.NewReplacer(
		"only on the left", "missing",
		"only on the right", "unexpected",
	)
	for i := range res {
		res[i] = r.Replace(res[i])
	}
	return res, nil
}

func printSnapshot(s catalog.Snapshot) {
	for _, name := range s.EnumNames() {
		fmt.Fprintf(os.Stdout, "type  %-28s %s\n",
			name, strings.Join(s.Enums[name], ", "))
	}
	var total int64
	for _, name := range s.TableNames() {
		t := s.Tables[name]
		total += t.Rows
		fmt.Fprintf(os.Stdout, "table %-28s %3d columns %3d indexes %12s rows\n",
			name, len(t.Columns), len(t.Indexes), humanize.Comma(t.Rows))
	}
	gn.Info("%d tables, %s rows", len(s.Tables), humanize.Comma(total))
}

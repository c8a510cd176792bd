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
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"github.com/vetcare/vetdb/pkg/deploy"
	"github.com/vetcare/vetdb/pkg/history"
)

// getValidateCmd returns the validate command. It does not connect to
// the database.
func getValidateCmd() *cobra.Command {
	var unit string

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the bootstrap migration before a first deploy",
		Long: `Validate checks that the bootstrap migration is registered and
that its script drops and creates every type, table and index of the
schema. Missing statements are listed and the exit status is non-zero.

The database is not contacted.

Examples:
  vetdb validate
  vetdb validate --unit 1712800000000-RecreateFullSchema`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if unit == "" {
				unit = cfg.Deploy.BootstrapUnit
			}
			return runValidate(unit)
		},
	}

	validateCmd.Flags().StringVarP(&unit, "unit", "u", "",
		"migration to validate (default: deploy.bootstrap_unit)")
	return validateCmd
}

func runValidate(unit string) error {
	reg, err := history.Registry()
	if err != nil {
		printError(err)
		return err
	}
	if err = deploy.ValidateUnit(reg, unit); err != nil {
		printError(err)
		return err
	}
	gn.Info("Bootstrap migration <em>%s</em> is complete", unit)
	return nil
}

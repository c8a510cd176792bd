package config

import (
	"fmt"
	"strings"

	"github.com/gnames/gn"
	"github.com/vetcare/vetdb/pkg/errcode"
)

// ParseBoolish reads boolean flags the way deploy platforms write them:
// true/false, 1/0, yes/no, on/off, y/n, t/f. Case and surrounding
// spaces are ignored.
func ParseBoolish(name, s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "1", "yes", "y", "on":
		return true, nil
	case "false", "f", "0", "no", "n", "off":
		return false, nil
	}
	return false, &gn.Error{
		Code: errcode.ConfigBoolValueError,
		Msg: `Value <em>%s</em> of <em>%s</em> is not a boolean

<em>Accepted values:</em>
  true, false, 1, 0, yes, no, on, off, y, n`,
		Vars: []any{s, name},
		Err:  fmt.Errorf("invalid boolean %q for %s", s, name),
	}
}

// Validate checks combinations of deploy flags. It runs before any
// database connection.
func (d DeployConfig) Validate() error {
	if d.FirstDeploy && !d.RunMigrations {
		return &gn.Error{
			Code: errcode.DeployFlagsError,
			Msg: `<em>first-deploy</em> requires <em>run-migrations</em>

<em>How to fix:</em>
  Set RUN_MIGRATIONS=true or pass <em>--migrate</em>`,
			Err: fmt.Errorf("first deploy requires run migrations"),
		}
	}
	if d.FirstDeploy && d.BootstrapUnit == "" {
		return &gn.Error{
			Code: errcode.DeployFlagsError,
			Msg:  "<em>first-deploy</em> requires a bootstrap unit name",
			Err:  fmt.Errorf("empty bootstrap unit"),
		}
	}
	return nil
}

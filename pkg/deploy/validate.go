package deploy

import (
	"fmt"
	"strings"

	"github.com/vetcare/vetdb/pkg/migration"
	"github.com/vetcare/vetdb/pkg/schema"
)

// Markers are statements the recreate script must contain. Without any
// of them a first deploy would leave a partial schema.
var Markers = []string{
	"DROP TYPE IF EXISTS",
	"CREATE TYPE",
	"DROP TABLE IF EXISTS",
	"CREATE TABLE IF NOT EXISTS",
	"DROP INDEX IF EXISTS",
	"CREATE INDEX",
}

// TableMarker is the statement that creates table t.
func TableMarker(t string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %q", t)
}

// CheckScript returns the markers missing from a recreate script. Every
// table in tables must be created by the script.
func CheckScript(sql string, tables []string) []string {
	var res []string
	for _, v := range Markers {
		if !strings.Contains(sql, v) {
			res = append(res, v)
		}
	}
	for _, t := range tables {
		if m := TableMarker(t); !strings.Contains(sql, m) {
			res = append(res, m)
		}
	}
	return res
}

// ValidateUnit checks that the designated recreate unit is registered
// and that its script creates the whole schema. A nil registry knows no
// units.
func ValidateUnit(reg *migration.Registry, name string) error {
	if reg == nil {
		return MissingUnitError(name)
	}
	u, ok := reg.Lookup(name)
	if !ok {
		return MissingUnitError(name)
	}
	script, ok := migration.HasScript(u)
	if !ok {
		return MarkersError(name, []string{"static script"})
	}
	if missing := CheckScript(script.SQL(), schema.TableNames()); len(missing) > 0 {
		return MarkersError(name, missing)
	}
	return nil
}

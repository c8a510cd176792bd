package migration

import (
	"regexp"
	"strconv"
	"strings"
)

var nameRe = regexp.MustCompile(`^(\d{1,18})-([A-Za-z][A-Za-z0-9]*)$`)

// ParseName splits a unit name like "1712300000000-RenameAppointmentDateTime"
// into its timestamp and label.
func ParseName(name string) (int64, string, error) {
	m := nameRe.FindStringSubmatch(name)
	if m == nil {
		return 0, "", NameError(name)
	}
	ts, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, "", NameError(name)
	}
	return ts, m[2], nil
}

// Timestamp returns the timestamp prefix of a unit name, or 0 if the name
// is malformed.
func Timestamp(name string) int64 {
	ts, _, _ := ParseName(name)
	return ts
}

// FormatName builds a unit name from a timestamp and a label.
func FormatName(ts int64, label string) string {
	return strconv.FormatInt(ts, 10) + "-" + label
}

// NormalizeType converts a DDL type to the name PostgreSQL reports in
// information_schema.columns.data_type. Names of user-defined types are
// returned unchanged.
func NormalizeType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	base := t
	if i := strings.IndexByte(t, '('); i > -1 {
		base = strings.TrimSpace(t[:i])
	}
	switch base {
	case "int", "int4", "integer", "serial":
		return "integer"
	case "int8", "bigint", "bigserial":
		return "bigint"
	case "int2", "smallint":
		return "smallint"
	case "varchar", "character varying":
		return "character varying"
	case "char", "character", "bpchar":
		return "character"
	case "bool", "boolean":
		return "boolean"
	case "decimal", "numeric":
		return "numeric"
	case "float8", "double precision":
		return "double precision"
	case "float4", "real":
		return "real"
	case "timestamp", "timestamp without time zone":
		return "timestamp without time zone"
	case "timestamptz", "timestamp with time zone":
		return "timestamp with time zone"
	}
	return base
}

// IsIntegerType reports whether a normalized type is an integer type.
func IsIntegerType(t string) bool {
	switch NormalizeType(t) {
	case "integer", "bigint", "smallint":
		return true
	}
	return false
}

// IsTextType reports whether a normalized type is a character type.
func IsTextType(t string) bool {
	switch NormalizeType(t) {
	case "character varying", "character", "text":
		return true
	}
	return false
}

package ioschema

import (
	"fmt"
	"strings"

	"github.com/gnames/gn"
	"github.com/vetcare/vetdb/pkg/errcode"
)

// NotConnectedError creates an error for when schema
// operation is attempted without database connection.
func NotConnectedError() error {
	msg := "Schema operation attempted without database connection"

	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("not connected to database"),
	}
}

// GORMConnectionError creates an error for GORM
// connection failures.
func GORMConnectionError(err error) error {
	msg := `Cannot connect to database with GORM

<em>Possible causes:</em>
  - Connection pool not initialized
  - Database configuration issue

<em>How to fix:</em>
  1. Ensure database operator is connected
  2. Check database configuration`

	return &gn.Error{
		Code: errcode.SchemaGORMConnectionError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("failed to connect with GORM: %w", err),
	}
}

// ModelParseError creates an error for a model GORM cannot parse.
func ModelParseError(table string, err error) error {
	msg := "Cannot read model of table <em>%s</em>"

	return &gn.Error{
		Code: errcode.SchemaModelDriftError,
		Msg:  msg,
		Vars: []any{table},
		Err:  fmt.Errorf("failed to parse model %s: %w", table, err),
	}
}

// DriftError is returned when the live schema differs from the schema
// the models describe.
func DriftError(issues []string) error {
	msg := `The database schema differs from the models in <em>%d</em> places

<em>How to fix:</em>
  1. Run <em>vetdb status</em> to find pending migrations
  2. Run <em>vetdb migrate</em>`

	return &gn.Error{
		Code: errcode.SchemaModelDriftError,
		Msg:  msg,
		Vars: []any{len(issues)},
		Err:  fmt.Errorf("schema drift: %s", strings.Join(issues, "; ")),
	}
}

package iocatalog

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/vetcare/vetdb/pkg/errcode"
)

// IntrospectionError is returned when a catalog query fails.
func IntrospectionError(what, name string, err error) error {
	return &gn.Error{
		Code: errcode.CatalogIntrospectionError,
		Msg:  "Cannot check %s <em>%s</em> in the database catalog",
		Vars: []any{what, name},
		Err:  fmt.Errorf("introspect %s %s: %w", what, name, err),
	}
}

// InspectError is returned when the schema snapshot cannot be built.
func InspectError(err error) error {
	msg := `Cannot inspect the database schema

<em>How to fix:</em>
  1. Make sure the user can read the <em>public</em> schema
  2. Run <em>vetdb status</em> to check the connection`

	return &gn.Error{
		Code: errcode.CatalogInspectError,
		Msg:  msg,
		Err:  fmt.Errorf("inspect schema: %w", err),
	}
}

// RowCountError is returned when a table cannot be counted.
func RowCountError(table string, err error) error {
	return &gn.Error{
		Code: errcode.CatalogRowCountError,
		Msg:  "Cannot count rows of <em>%s</em>",
		Vars: []any{table},
		Err:  fmt.Errorf("count rows of %s: %w", table, err),
	}
}

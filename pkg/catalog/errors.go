package catalog

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/vetcare/vetdb/pkg/ddl"
	"github.com/vetcare/vetdb/pkg/errcode"
)

// DDLError is returned when a statement cannot be applied.
func DDLError(stmt ddl.Statement, err error) error {
	msg := "Statement failed: <em>%s</em>"
	summary := ddl.Summary(stmt)

	return &gn.Error{
		Code: errcode.CatalogDDLError,
		Msg:  msg,
		Vars: []any{summary},
		Err:  fmt.Errorf("%s: %w", summary, err),
	}
}

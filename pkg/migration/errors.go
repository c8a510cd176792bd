package migration

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/vetcare/vetdb/pkg/errcode"
)

// NameError is returned for unit names that do not follow the
// <timestamp>-<Label> format.
func NameError(name string) error {
	msg := `Migration name <em>%s</em> is malformed

<em>Expected format:</em>
  <timestamp>-<Label>, for example 1712300000000-RenameAppointmentDateTime`

	return &gn.Error{
		Code: errcode.MigrationNameError,
		Msg:  msg,
		Vars: []any{name},
		Err:  fmt.Errorf("malformed migration name %q", name),
	}
}

// DuplicateError is returned when two units share a name or a timestamp.
func DuplicateError(name string) error {
	msg := "Migration <em>%s</em> duplicates the name or timestamp of another migration"

	return &gn.Error{
		Code: errcode.MigrationDuplicateError,
		Msg:  msg,
		Vars: []any{name},
		Err:  fmt.Errorf("duplicate migration %q", name),
	}
}

// UnknownError is returned when a unit name is not registered.
func UnknownError(name string) error {
	msg := `Migration <em>%s</em> is not known to this version of vetdb

<em>How to fix:</em>
  1. Run <em>vetdb status</em> to list known migrations
  2. Upgrade vetdb if the database was migrated by a newer release`

	return &gn.Error{
		Code: errcode.MigrationUnknownError,
		Msg:  msg,
		Vars: []any{name},
		Err:  fmt.Errorf("unknown migration %q", name),
	}
}

// ApplyError wraps a failure of a unit's forward procedure.
func ApplyError(name string, err error) error {
	msg := `Migration <em>%s</em> failed

<em>Possible causes:</em>
  - Conflicting object in the database
  - Insufficient database permissions
  - Data that cannot be converted

<em>How to fix:</em>
  1. Check the log for the failing statement
  2. Fix the database state and run <em>vetdb migrate</em> again`

	return &gn.Error{
		Code: errcode.MigrationApplyError,
		Msg:  msg,
		Vars: []any{name},
		Err:  fmt.Errorf("apply migration %s: %w", name, err),
	}
}

// RevertError wraps a failure of a unit's backward procedure.
func RevertError(name string, err error) error {
	msg := "Cannot revert migration <em>%s</em>"

	return &gn.Error{
		Code: errcode.MigrationRevertError,
		Msg:  msg,
		Vars: []any{name},
		Err:  fmt.Errorf("revert migration %s: %w", name, err),
	}
}

// NoDownError is returned when a unit without a backward procedure is
// reverted.
func NoDownError(name string) error {
	msg := "Migration <em>%s</em> cannot be reverted"

	return &gn.Error{
		Code: errcode.MigrationNoDownError,
		Msg:  msg,
		Vars: []any{name},
		Err:  fmt.Errorf("migration %s has no down path", name),
	}
}

// MissingObjectError is returned when a guard requires an object that
// is absent.
func MissingObjectError(kind, name string) error {
	msg := "Required %s <em>%s</em> does not exist"

	return &gn.Error{
		Code: errcode.CatalogDDLError,
		Msg:  msg,
		Vars: []any{kind, name},
		Err:  fmt.Errorf("%s %s does not exist", kind, name),
	}
}

func hasCode(err error, code gn.ErrorCode) bool {
	gnErr, ok := err.(*gn.Error)
	return ok && gnErr.Code == code
}

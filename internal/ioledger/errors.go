package ioledger

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/vetcare/vetdb/pkg/errcode"
)

// InitError is returned when the ledger storage cannot be created or
// upgraded.
func InitError(table string, err error) error {
	msg := `Cannot prepare migration ledger <em>%s</em>

<em>Possible causes:</em>
  - Insufficient database permissions
  - Duplicate names in an existing ledger table

<em>How to fix:</em>
  1. Check the log for the failing statement
  2. Remove duplicate rows from the ledger table`

	return &gn.Error{
		Code: errcode.LedgerInitError,
		Msg:  msg,
		Vars: []any{table},
		Err:  fmt.Errorf("init ledger %s: %w", table, err),
	}
}

// ReadError is returned when ledger records cannot be read.
func ReadError(table string, err error) error {
	return &gn.Error{
		Code: errcode.LedgerReadError,
		Msg:  "Cannot read migration ledger <em>%s</em>",
		Vars: []any{table},
		Err:  fmt.Errorf("read ledger %s: %w", table, err),
	}
}

// WriteError is returned when a ledger record cannot be stored or
// removed.
func WriteError(name string, err error) error {
	return &gn.Error{
		Code: errcode.LedgerWriteError,
		Msg:  "Cannot update migration ledger for <em>%s</em>",
		Vars: []any{name},
		Err:  fmt.Errorf("write ledger record %s: %w", name, err),
	}
}

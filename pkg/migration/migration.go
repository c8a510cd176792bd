// Package migration contains the contracts and the runner for incremental
// schema migrations.
//
// A migration Unit is a forward/backward pair of procedures that change the
// live schema through a Conn. Every procedure asks the Catalog about the
// current state before it mutates anything, so a unit can be re-run against
// a partially migrated database. The Ledger persists which units were
// applied; the Runner applies pending units in strictly ascending
// timestamp order and stops on the first failure.
//
// This package has no I/O dependencies. PostgreSQL implementations of
// Database and Ledger live in internal packages, an in-memory Database is
// provided by pkg/catalog.
package migration

import (
	"context"

	"github.com/vetcare/vetdb/pkg/ddl"
)

// Catalog answers questions about the live schema.
type Catalog interface {
	// TableExists reports whether a table exists.
	TableExists(ctx context.Context, table string) (bool, error)

	// ColumnType returns the normalized data type of a column (see
	// NormalizeType), or an empty string if the column does not exist.
	// Enumerated types are reported by their type name.
	ColumnType(ctx context.Context, table, column string) (string, error)

	// ConstraintExists reports whether a named constraint exists on a table.
	ConstraintExists(ctx context.Context, table, name string) (bool, error)

	// TypeExists reports whether a user-defined type exists.
	TypeExists(ctx context.Context, name string) (bool, error)

	// IndexExists reports whether a named index exists.
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Conn is a catalog that can also execute statements. It is either a
// transaction or a plain session.
type Conn interface {
	Catalog

	// Apply executes one statement.
	Apply(ctx context.Context, stmt ddl.Statement) error
}

// Database is a Conn that can open transactions.
type Database interface {
	Conn

	// InTx runs fn inside a transaction. The transaction is committed if
	// fn returns nil and rolled back otherwise.
	InTx(ctx context.Context, fn func(Conn) error) error
}

// Unit is one migration step.
type Unit interface {
	// Name is the unique, timestamp-prefixed name of the unit.
	Name() string

	// Apply moves the schema forward. It must be idempotent.
	Apply(ctx context.Context, c Conn) error

	// Revert undoes Apply, checking existence before dropping.
	Revert(ctx context.Context, c Conn) error
}

// Scripted is implemented by units that are a fixed list of statements.
// The script is used for static validation of a unit before it runs.
type Scripted interface {
	Script() ddl.Script
}

// Transactional is implemented by units that need control over the
// transaction boundary. Units that do not implement it run in a
// transaction.
type Transactional interface {
	InTransaction() bool
}

// Func is a migration procedure.
type Func func(ctx context.Context, c Conn) error

// UnitOption configures a unit created by New.
type UnitOption func(*unit)

// NoTransaction makes the unit run outside of a transaction. PostgreSQL
// does not allow a new enum value to be used in the transaction that
// added it.
func NoTransaction() UnitOption {
	return func(u *unit) {
		u.noTx = true
	}
}

// WithScript attaches a static script to the unit.
func WithScript(s ddl.Script) UnitOption {
	return func(u *unit) {
		u.script = s
	}
}

type unit struct {
	name   string
	up     Func
	down   Func
	noTx   bool
	script ddl.Script
}

// New creates a unit from forward and backward procedures. A nil down
// procedure means the unit cannot be reverted.
func New(name string, up, down Func, opts ...UnitOption) Unit {
	res := &unit{name: name, up: up, down: down}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// FromScript creates a unit that applies a fixed script.
func FromScript(name string, s ddl.Script, down Func, opts ...UnitOption) Unit {
	up := func(ctx context.Context, c Conn) error {
		for _, stmt := range s {
			if err := c.Apply(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	}
	opts = append([]UnitOption{WithScript(s)}, opts...)
	return New(name, up, down, opts...)
}

func (u *unit) Name() string {
	return u.name
}

func (u *unit) Apply(ctx context.Context, c Conn) error {
	return u.up(ctx, c)
}

func (u *unit) Revert(ctx context.Context, c Conn) error {
	if u.down == nil {
		return NoDownError(u.name)
	}
	return u.down(ctx, c)
}

func (u *unit) InTransaction() bool {
	return !u.noTx
}

func (u *unit) Script() ddl.Script {
	return u.script
}

// HasScript reports whether the unit carries a non-empty static script.
func HasScript(u Unit) (ddl.Script, bool) {
	s, ok := u.(Scripted)
	if !ok {
		return nil, false
	}
	res := s.Script()
	return res, len(res) > 0
}

func inTransaction(u Unit) bool {
	if t, ok := u.(Transactional); ok {
		return t.InTransaction()
	}
	return true
}

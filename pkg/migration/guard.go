package migration

import (
	"context"

	"github.com/vetcare/vetdb/pkg/ddl"
)

// Guards check the catalog before they mutate it. Each returns true when
// a statement was executed.

// EnsureEnum creates an enumerated type unless it exists.
func EnsureEnum(ctx context.Context, c Conn, stmt ddl.CreateEnum) (bool, error) {
	ok, err := c.TypeExists(ctx, stmt.Name)
	if err != nil || ok {
		return false, err
	}
	return true, c.Apply(ctx, stmt)
}

// DropEnumIfExists drops an enumerated type if it exists.
func DropEnumIfExists(ctx context.Context, c Conn, name string) (bool, error) {
	ok, err := c.TypeExists(ctx, name)
	if err != nil || !ok {
		return false, err
	}
	return true, c.Apply(ctx, ddl.DropEnum{Name: name})
}

// EnsureEnumValue adds a value to an existing enumerated type. The type
// must exist.
func EnsureEnumValue(ctx context.Context, c Conn, stmt ddl.AddEnumValue) (bool, error) {
	ok, err := c.TypeExists(ctx, stmt.Enum)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, MissingObjectError("type", stmt.Enum)
	}
	return true, c.Apply(ctx, stmt)
}

// EnsureTable creates a table unless it exists.
func EnsureTable(ctx context.Context, c Conn, stmt ddl.CreateTable) (bool, error) {
	ok, err := c.TableExists(ctx, stmt.Name)
	if err != nil || ok {
		return false, err
	}
	return true, c.Apply(ctx, stmt)
}

// DropTableIfExists drops a table if it exists.
func DropTableIfExists(ctx context.Context, c Conn, name string) (bool, error) {
	ok, err := c.TableExists(ctx, name)
	if err != nil || !ok {
		return false, err
	}
	return true, c.Apply(ctx, ddl.DropTable{Name: name})
}

// EnsureColumn adds a column unless it exists.
func EnsureColumn(ctx context.Context, c Conn, table string, col ddl.Column) (bool, error) {
	typ, err := c.ColumnType(ctx, table, col.Name)
	if err != nil || typ != "" {
		return false, err
	}
	return true, c.Apply(ctx, ddl.AddColumn{Table: table, Column: col})
}

// DropColumnIfExists removes a column if it exists.
func DropColumnIfExists(ctx context.Context, c Conn, table, column string) (bool, error) {
	typ, err := c.ColumnType(ctx, table, column)
	if err != nil || typ == "" {
		return false, err
	}
	return true, c.Apply(ctx, ddl.DropColumn{Table: table, Column: column})
}

// RenameColumn renames a column only if the old name exists and the new
// name does not. A second run is a no-op.
func RenameColumn(ctx context.Context, c Conn, table, from, to string) (bool, error) {
	fromType, err := c.ColumnType(ctx, table, from)
	if err != nil || fromType == "" {
		return false, err
	}
	toType, err := c.ColumnType(ctx, table, to)
	if err != nil || toType != "" {
		return false, err
	}
	stmt := ddl.RenameColumn{Table: table, From: from, To: to}
	return true, c.Apply(ctx, stmt)
}

// AlterColumnTypeIf changes the type of a column when the current
// normalized type satisfies when. Missing columns are left alone.
func AlterColumnTypeIf(
	ctx context.Context,
	c Conn,
	stmt ddl.AlterColumnType,
	when func(current string) bool,
) (bool, error) {
	typ, err := c.ColumnType(ctx, stmt.Table, stmt.Column)
	if err != nil || typ == "" {
		return false, err
	}
	if !when(typ) {
		return false, nil
	}
	return true, c.Apply(ctx, stmt)
}

// EnsureForeignKey adds a named foreign key unless it exists.
func EnsureForeignKey(ctx context.Context, c Conn, stmt ddl.AddForeignKey) (bool, error) {
	ok, err := c.ConstraintExists(ctx, stmt.Table, stmt.Key.Name)
	if err != nil || ok {
		return false, err
	}
	return true, c.Apply(ctx, stmt)
}

// DropConstraintIfExists removes a named constraint if it exists.
func DropConstraintIfExists(ctx context.Context, c Conn, table, name string) (bool, error) {
	ok, err := c.ConstraintExists(ctx, table, name)
	if err != nil || !ok {
		return false, err
	}
	return true, c.Apply(ctx, ddl.DropConstraint{Table: table, Name: name})
}

// EnsureIndex creates a named index unless it exists.
func EnsureIndex(ctx context.Context, c Conn, stmt ddl.CreateIndex) (bool, error) {
	ok, err := c.IndexExists(ctx, stmt.Name)
	if err != nil || ok {
		return false, err
	}
	return true, c.Apply(ctx, stmt)
}

// DropIndexIfExists removes a named index if it exists.
func DropIndexIfExists(ctx context.Context, c Conn, name string) (bool, error) {
	ok, err := c.IndexExists(ctx, name)
	if err != nil || !ok {
		return false, err
	}
	return true, c.Apply(ctx, ddl.DropIndex{Name: name})
}

// Steps runs guarded steps in order and stops at the first error.
func Steps(ctx context.Context, c Conn, steps ...Func) error {
	for _, step := range steps {
		if err := step(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// Guard adapts a guard with a bool result to Func.
func Guard[T any](
	fn func(context.Context, Conn, T) (bool, error),
	arg T,
) Func {
	return func(ctx context.Context, c Conn) error {
		_, err := fn(ctx, c, arg)
		return err
	}
}

package history

import (
	"context"
	"strings"

	"github.com/vetcare/vetdb/pkg/ddl"
	"github.com/vetcare/vetdb/pkg/migration"
)

func id() ddl.Column {
	return ddl.Column{
		Name:       "id",
		Type:       "uuid",
		PrimaryKey: true,
		Default:    "gen_random_uuid()",
	}
}

func ts(name string) ddl.Column {
	return ddl.Column{
		Name:    name,
		Type:    "timestamp",
		NotNull: true,
		Default: "now()",
	}
}

func col(name, typ string) ddl.Column {
	return ddl.Column{Name: name, Type: typ}
}

func required(name, typ string) ddl.Column {
	return ddl.Column{Name: name, Type: typ, NotNull: true}
}

func withDefault(c ddl.Column, def string) ddl.Column {
	c.Default = def
	return c
}

func unique(c ddl.Column) ddl.Column {
	c.Unique = true
	return c
}

func table(name string, cols []ddl.Column, fks ...ddl.ForeignKey) ddl.CreateTable {
	cols = append([]ddl.Column{id()}, cols...)
	return ddl.CreateTable{Name: name, Columns: cols, ForeignKeys: fks}
}

func timestamps() []ddl.Column {
	return []ddl.Column{ts("created_at"), ts("updated_at")}
}

func fk(table, column, ref string, action ddl.Action) ddl.ForeignKey {
	return ddl.ForeignKey{
		Name:     "FK_" + table + "_" + column,
		Column:   column,
		RefTable: ref,
		OnDelete: action,
	}
}

func idx(table string, columns ...string) ddl.CreateIndex {
	return ddl.CreateIndex{
		Name:    "IDX_" + table + "_" + strings.Join(columns, "_"),
		Table:   table,
		Columns: columns,
	}
}

// create guards enums, tables and indexes in the given order.
func create(ctx context.Context, c migration.Conn, stmts ...ddl.Statement) error {
	for _, stmt := range stmts {
		var err error
		switch s := stmt.(type) {
		case ddl.CreateEnum:
			_, err = migration.EnsureEnum(ctx, c, s)
		case ddl.CreateTable:
			_, err = migration.EnsureTable(ctx, c, s)
		case ddl.CreateIndex:
			_, err = migration.EnsureIndex(ctx, c, s)
		default:
			err = c.Apply(ctx, stmt)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// drop reverses create: statements are dropped in reverse order, each
// only if it exists.
func drop(ctx context.Context, c migration.Conn, stmts ...ddl.Statement) error {
	for i := len(stmts) - 1; i >= 0; i-- {
		var err error
		switch s := stmts[i].(type) {
		case ddl.CreateEnum:
			_, err = migration.DropEnumIfExists(ctx, c, s.Name)
		case ddl.CreateTable:
			_, err = migration.DropTableIfExists(ctx, c, s.Name)
		case ddl.CreateIndex:
			_, err = migration.DropIndexIfExists(ctx, c, s.Name)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

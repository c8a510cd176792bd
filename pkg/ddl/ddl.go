// Package ddl provides typed PostgreSQL schema statements. Migration units
// are composed of these statements, so the same unit can run against a live
// database (rendered SQL) or against the in-memory catalog model.
package ddl

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Statement is a single schema or data change.
type Statement interface {
	// SQL renders the statement as PostgreSQL SQL.
	SQL() string
}

// Action is a referential action for ON DELETE clauses.
type Action string

const (
	Cascade  Action = "CASCADE"
	SetNull  Action = "SET NULL"
	Restrict Action = "RESTRICT"
	NoAction Action = "NO ACTION"
)

// Ident quotes an identifier.
func Ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func literal(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func identList(names []string) string {
	res := make([]string, len(names))
	for i, v := range names {
		res[i] = Ident(v)
	}
	return strings.Join(res, ", ")
}

// Column describes a table column.
type Column struct {
	Name string
	// Type is the PostgreSQL type as written in DDL, lowercase
	// (e.g. "uuid", "varchar(255)", "users_role_enum").
	Type       string
	PrimaryKey bool
	NotNull    bool
	Unique     bool
	// Default is a raw SQL expression.
	Default string
}

// Definition renders the column definition used in CREATE TABLE
// and ADD COLUMN.
func (c Column) Definition() string {
	parts := []string{Ident(c.Name), c.Type}
	if c.PrimaryKey {
		parts = append(parts, "PRIMARY KEY")
	} else if c.NotNull {
		parts = append(parts, "NOT NULL")
	}
	if c.Unique {
		parts = append(parts, "UNIQUE")
	}
	if c.Default != "" {
		parts = append(parts, "DEFAULT "+c.Default)
	}
	return strings.Join(parts, " ")
}

// ForeignKey is a named single-column foreign key.
type ForeignKey struct {
	Name      string
	Column    string
	RefTable  string
	RefColumn string
	OnDelete  Action
}

func (fk ForeignKey) clause() string {
	ref := fk.RefColumn
	if ref == "" {
		ref = "id"
	}
	res := fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(%s)",
		Ident(fk.Name), Ident(fk.Column), Ident(fk.RefTable), Ident(ref))
	if fk.OnDelete != "" {
		res += " ON DELETE " + string(fk.OnDelete)
	}
	return res
}

// CreateExtension enables a PostgreSQL extension.
type CreateExtension struct {
	Name string
}

func (s CreateExtension) SQL() string {
	return fmt.Sprintf("CREATE EXTENSION IF NOT EXISTS %s;", Ident(s.Name))
}

// CreateEnum creates an enumerated type. An existing type with the same
// name is left untouched.
type CreateEnum struct {
	Name   string
	Values []string
}

func (s CreateEnum) SQL() string {
	vals := make([]string, len(s.Values))
	for i, v := range s.Values {
		vals[i] = literal(v)
	}
	return fmt.Sprintf(`DO $$ BEGIN
	CREATE TYPE %s AS ENUM (%s);
EXCEPTION
	WHEN duplicate_object THEN null;
END $$;`, Ident(s.Name), strings.Join(vals, ", "))
}

// AddEnumValue appends a value to an enumerated type.
type AddEnumValue struct {
	Enum  string
	Value string
}

func (s AddEnumValue) SQL() string {
	return fmt.Sprintf("ALTER TYPE %s ADD VALUE IF NOT EXISTS %s;",
		Ident(s.Enum), literal(s.Value))
}

// DropEnum drops an enumerated type together with dependent columns.
type DropEnum struct {
	Name string
}

func (s DropEnum) SQL() string {
	return fmt.Sprintf("DROP TYPE IF EXISTS %s CASCADE;", Ident(s.Name))
}

// CreateTable creates a table with its columns and foreign keys.
type CreateTable struct {
	Name        string
	Columns     []Column
	ForeignKeys []ForeignKey
}

func (s CreateTable) SQL() string {
	lines := make([]string, 0, len(s.Columns)+len(s.ForeignKeys))
	for _, c := range s.Columns {
		lines = append(lines, "\t"+c.Definition())
	}
	for _, fk := range s.ForeignKeys {
		lines = append(lines, "\t"+fk.clause())
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n);",
		Ident(s.Name), strings.Join(lines, ",\n"))
}

// DropTable drops a table and everything that depends on it.
type DropTable struct {
	Name string
}

func (s DropTable) SQL() string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE;", Ident(s.Name))
}

// AddColumn adds a column to a table.
type AddColumn struct {
	Table  string
	Column Column
}

func (s AddColumn) SQL() string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s;",
		Ident(s.Table), s.Column.Definition())
}

// DropColumn removes a column from a table.
type DropColumn struct {
	Table  string
	Column string
}

func (s DropColumn) SQL() string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN IF EXISTS %s;",
		Ident(s.Table), Ident(s.Column))
}

// RenameColumn renames a column. PostgreSQL has no IF EXISTS form for it,
// callers guard it with catalog checks.
type RenameColumn struct {
	Table string
	From  string
	To    string
}

func (s RenameColumn) SQL() string {
	return fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s;",
		Ident(s.Table), Ident(s.From), Ident(s.To))
}

// AlterColumnType changes the data type of a column. The old default is
// always dropped first, Default (if any) is set afterwards.
type AlterColumnType struct {
	Table   string
	Column  string
	Type    string
	Using   string
	Default string
}

func (s AlterColumnType) SQL() string {
	col := Ident(s.Column)
	actions := []string{fmt.Sprintf("ALTER COLUMN %s DROP DEFAULT", col)}
	typ := fmt.Sprintf("ALTER COLUMN %s TYPE %s", col, s.Type)
	if s.Using != "" {
		typ += " USING " + s.Using
	}
	actions = append(actions, typ)
	if s.Default != "" {
		actions = append(actions,
			fmt.Sprintf("ALTER COLUMN %s SET DEFAULT %s", col, s.Default))
	}
	return fmt.Sprintf("ALTER TABLE %s\n\t%s;",
		Ident(s.Table), strings.Join(actions, ",\n\t"))
}

// AddForeignKey adds a named foreign key constraint.
type AddForeignKey struct {
	Table string
	Key   ForeignKey
}

func (s AddForeignKey) SQL() string {
	return fmt.Sprintf("ALTER TABLE %s ADD %s;", Ident(s.Table), s.Key.clause())
}

// DropConstraint removes a named constraint.
type DropConstraint struct {
	Table string
	Name  string
}

func (s DropConstraint) SQL() string {
	return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s;",
		Ident(s.Table), Ident(s.Name))
}

// CreateIndex creates a named index.
type CreateIndex struct {
	Name    string
	Table   string
	Columns []string
	Unique  bool
}

func (s CreateIndex) SQL() string {
	kind := "INDEX"
	if s.Unique {
		kind = "UNIQUE INDEX"
	}
	return fmt.Sprintf("CREATE %s IF NOT EXISTS %s ON %s (%s);",
		kind, Ident(s.Name), Ident(s.Table), identList(s.Columns))
}

// DropIndex removes a named index.
type DropIndex struct {
	Name string
}

func (s DropIndex) SQL() string {
	return fmt.Sprintf("DROP INDEX IF EXISTS %s;", Ident(s.Name))
}

// Exec is a data statement (backfill, cleanup). It does not change the
// shape of the schema.
type Exec struct {
	Query string
	Args  []any
}

func (s Exec) SQL() string {
	return s.Query
}

// Script is an ordered list of statements.
type Script []Statement

func (s Script) SQL() string {
	res := make([]string, len(s))
	for i, v := range s {
		res[i] = v.SQL()
	}
	return strings.Join(res, "\n")
}

// Summary returns the first line of the statement, shortened for logs.
func Summary(s Statement) string {
	res := strings.TrimSpace(s.SQL())
	if i := strings.IndexByte(res, '\n'); i > -1 {
		res = res[:i]
	}
	if len(res) > 80 {
		res = res[:77] + "..."
	}
	return res
}

package catalog

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/vetcare/vetdb/pkg/ddl"
	"github.com/vetcare/vetdb/pkg/migration"
)

var builtinTypes = map[string]struct{}{
	"integer": {}, "bigint": {}, "smallint": {}, "numeric": {},
	"real": {}, "double precision": {}, "boolean": {},
	"character varying": {}, "character": {}, "text": {},
	"timestamp without time zone": {}, "timestamp with time zone": {},
	"date": {}, "time": {}, "uuid": {}, "json": {}, "jsonb": {}, "bytea": {},
}

const (
	primaryKey = "p"
	uniqueKey  = "u"
	foreignKey = "f"
)

type column struct {
	typ     string
	notNull bool
	def     string
}

type constraint struct {
	kind     string
	column   string
	refTable string
	onDelete ddl.Action
}

type table struct {
	columns     map[string]*column
	constraints map[string]*constraint
}

type index struct {
	table   string
	columns []string
	unique  bool
}

type state struct {
	tables     map[string]*table
	enums      map[string][]string
	indexes    map[string]*index
	extensions map[string]struct{}
}

func newState() *state {
	return &state{
		tables:     make(map[string]*table),
		enums:      make(map[string][]string),
		indexes:    make(map[string]*index),
		extensions: make(map[string]struct{}),
	}
}

func (s *state) clone() *state {
	res := newState()
	for name, t := range s.tables {
		nt := &table{
			columns:     make(map[string]*column, len(t.columns)),
			constraints: make(map[string]*constraint, len(t.constraints)),
		}
		for k, v := range t.columns {
			c := *v
			nt.columns[k] = &c
		}
		for k, v := range t.constraints {
			c := *v
			nt.constraints[k] = &c
		}
		res.tables[name] = nt
	}
	for k, v := range s.enums {
		res.enums[k] = slices.Clone(v)
	}
	for k, v := range s.indexes {
		res.indexes[k] = &index{
			table:   v.table,
			columns: slices.Clone(v.columns),
			unique:  v.unique,
		}
	}
	maps.Copy(res.extensions, s.extensions)
	return res
}

// Memory is an in-memory migration.Database with PostgreSQL-like
// semantics for the statements of package ddl. It is not safe for
// concurrent use.
type Memory struct {
	st    *state
	stmts []ddl.Statement

	// Fail is consulted before every statement. A non-nil result aborts
	// the statement with that error.
	Fail func(ddl.Statement) error
}

// NewMemory returns an empty schema.
func NewMemory() *Memory {
	return &Memory{st: newState()}
}

// Statements returns every statement that was executed, including those
// of rolled back transactions.
func (m *Memory) Statements() []ddl.Statement {
	return slices.Clone(m.stmts)
}

// TableExists implements migration.Catalog.
func (m *Memory) TableExists(ctx context.Context, name string) (bool, error) {
	_, ok := m.st.tables[name]
	return ok, ctx.Err()
}

// ColumnType implements migration.Catalog.
func (m *Memory) ColumnType(ctx context.Context, tbl, col string) (string, error) {
	t, ok := m.st.tables[tbl]
	if !ok {
		return "", ctx.Err()
	}
	c, ok := t.columns[col]
	if !ok {
		return "", ctx.Err()
	}
	return migration.NormalizeType(c.typ), ctx.Err()
}

// ConstraintExists implements migration.Catalog.
func (m *Memory) ConstraintExists(ctx context.Context, tbl, name string) (bool, error) {
	t, ok := m.st.tables[tbl]
	if !ok {
		return false, ctx.Err()
	}
	_, ok = t.constraints[name]
	return ok, ctx.Err()
}

// TypeExists implements migration.Catalog.
func (m *Memory) TypeExists(ctx context.Context, name string) (bool, error) {
	_, ok := m.st.enums[name]
	return ok, ctx.Err()
}

// IndexExists implements migration.Catalog.
func (m *Memory) IndexExists(ctx context.Context, name string) (bool, error) {
	_, ok := m.st.indexes[name]
	return ok, ctx.Err()
}

// InTx implements migration.Database. The schema is restored if fn
// returns an error.
func (m *Memory) InTx(ctx context.Context, fn func(migration.Conn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	saved := m.st.clone()
	if err := fn(m); err != nil {
		m.st = saved
		return err
	}
	return nil
}

// Apply implements migration.Conn.
func (m *Memory) Apply(ctx context.Context, stmt ddl.Statement) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if script, ok := stmt.(ddl.Script); ok {
		for _, v := range script {
			if err := m.Apply(ctx, v); err != nil {
				return err
			}
		}
		return nil
	}

	m.stmts = append(m.stmts, stmt)
	if m.Fail != nil {
		if err := m.Fail(stmt); err != nil {
			return DDLError(stmt, err)
		}
	}
	if err := m.apply(stmt); err != nil {
		return DDLError(stmt, err)
	}
	return nil
}

func (m *Memory) apply(stmt ddl.Statement) error {
	st := m.st
	switch s := stmt.(type) {
	case ddl.CreateExtension:
		st.extensions[s.Name] = struct{}{}

	case ddl.Exec:
		// data statements do not change the shape of the schema

	case ddl.CreateEnum:
		if _, ok := st.enums[s.Name]; !ok {
			st.enums[s.Name] = slices.Clone(s.Values)
		}

	case ddl.AddEnumValue:
		vals, ok := st.enums[s.Enum]
		if !ok {
			return fmt.Errorf("type %q does not exist", s.Enum)
		}
		if !slices.Contains(vals, s.Value) {
			st.enums[s.Enum] = append(vals, s.Value)
		}

	case ddl.DropEnum:
		if _, ok := st.enums[s.Name]; !ok {
			return nil
		}
		delete(st.enums, s.Name)
		for tname, t := range st.tables {
			for cname, c := range t.columns {
				if migration.NormalizeType(c.typ) == s.Name {
					st.dropColumn(tname, cname)
				}
			}
		}

	case ddl.CreateTable:
		return st.createTable(s)

	case ddl.DropTable:
		st.dropTable(s.Name)

	case ddl.AddColumn:
		t, err := st.table(s.Table)
		if err != nil {
			return err
		}
		if _, ok := t.columns[s.Column.Name]; ok {
			return nil
		}
		return st.addColumn(s.Table, t, s.Column)

	case ddl.DropColumn:
		t, err := st.table(s.Table)
		if err != nil {
			return err
		}
		if _, ok := t.columns[s.Column]; ok {
			st.dropColumn(s.Table, s.Column)
		}

	case ddl.RenameColumn:
		return st.renameColumn(s)

	case ddl.AlterColumnType:
		t, err := st.table(s.Table)
		if err != nil {
			return err
		}
		c, ok := t.columns[s.Column]
		if !ok {
			return fmt.Errorf("column %q of relation %q does not exist",
				s.Column, s.Table)
		}
		if err = st.checkType(s.Type); err != nil {
			return err
		}
		c.typ = strings.ToLower(s.Type)
		c.def = s.Default

	case ddl.AddForeignKey:
		t, err := st.table(s.Table)
		if err != nil {
			return err
		}
		return st.addForeignKey(s.Table, t, s.Key)

	case ddl.DropConstraint:
		t, err := st.table(s.Table)
		if err != nil {
			return err
		}
		delete(t.constraints, s.Name)

	case ddl.CreateIndex:
		if _, ok := st.indexes[s.Name]; ok {
			return nil
		}
		t, err := st.table(s.Table)
		if err != nil {
			return err
		}
		for _, col := range s.Columns {
			if _, ok := t.columns[col]; !ok {
				return fmt.Errorf("column %q does not exist", col)
			}
		}
		st.indexes[s.Name] = &index{
			table:   s.Table,
			columns: slices.Clone(s.Columns),
			unique:  s.Unique,
		}

	case ddl.DropIndex:
		delete(st.indexes, s.Name)

	default:
		return fmt.Errorf("unsupported statement %T", stmt)
	}
	return nil
}

func (st *state) table(name string) (*table, error) {
	t, ok := st.tables[name]
	if !ok {
		return nil, fmt.Errorf("relation %q does not exist", name)
	}
	return t, nil
}

func (st *state) checkType(typ string) error {
	n := migration.NormalizeType(typ)
	if _, ok := builtinTypes[n]; ok {
		return nil
	}
	if _, ok := st.enums[n]; ok {
		return nil
	}
	return fmt.Errorf("type %q does not exist", typ)
}

func (st *state) createTable(s ddl.CreateTable) error {
	if _, ok := st.tables[s.Name]; ok {
		return nil
	}
	t := &table{
		columns:     make(map[string]*column),
		constraints: make(map[string]*constraint),
	}
	for _, col := range s.Columns {
		if _, ok := t.columns[col.Name]; ok {
			return fmt.Errorf("column %q specified more than once", col.Name)
		}
		if err := st.addColumn(s.Name, t, col); err != nil {
			return err
		}
	}
	// a table may reference itself
	st.tables[s.Name] = t
	for _, fk := range s.ForeignKeys {
		if err := st.addForeignKey(s.Name, t, fk); err != nil {
			delete(st.tables, s.Name)
			return err
		}
	}
	return nil
}

func (st *state) addColumn(tname string, t *table, col ddl.Column) error {
	if err := st.checkType(col.Type); err != nil {
		return err
	}
	var cons []string
	if col.PrimaryKey {
		for _, v := range t.constraints {
			if v.kind == primaryKey {
				return fmt.Errorf("multiple primary keys for table %q", tname)
			}
		}
		cons = append(cons, tname+"_pkey")
	}
	if col.Unique {
		cons = append(cons, tname+"_"+col.Name+"_key")
	}
	for _, name := range cons {
		if _, ok := t.constraints[name]; ok {
			return fmt.Errorf("relation %q already exists", name)
		}
	}

	t.columns[col.Name] = &column{
		typ:     strings.ToLower(col.Type),
		notNull: col.NotNull || col.PrimaryKey,
		def:     col.Default,
	}
	if col.PrimaryKey {
		t.constraints[tname+"_pkey"] = &constraint{kind: primaryKey, column: col.Name}
	}
	if col.Unique {
		t.constraints[tname+"_"+col.Name+"_key"] = &constraint{kind: uniqueKey, column: col.Name}
	}
	return nil
}

func (st *state) addForeignKey(tname string, t *table, fk ddl.ForeignKey) error {
	if _, ok := t.constraints[fk.Name]; ok {
		return fmt.Errorf("constraint %q for relation %q already exists",
			fk.Name, tname)
	}
	if _, ok := t.columns[fk.Column]; !ok {
		return fmt.Errorf("column %q referenced in foreign key constraint does not exist",
			fk.Column)
	}
	ref, ok := st.tables[fk.RefTable]
	if !ok {
		return fmt.Errorf("relation %q does not exist", fk.RefTable)
	}
	refCol := fk.RefColumn
	if refCol == "" {
		refCol = "id"
	}
	if _, ok = ref.columns[refCol]; !ok {
		return fmt.Errorf("column %q referenced in foreign key constraint does not exist",
			refCol)
	}
	t.constraints[fk.Name] = &constraint{
		kind:     foreignKey,
		column:   fk.Column,
		refTable: fk.RefTable,
		onDelete: fk.OnDelete,
	}
	return nil
}

func (st *state) renameColumn(s ddl.RenameColumn) error {
	t, err := st.table(s.Table)
	if err != nil {
		return err
	}
	c, ok := t.columns[s.From]
	if !ok {
		return fmt.Errorf("column %q does not exist", s.From)
	}
	if _, ok = t.columns[s.To]; ok {
		return fmt.Errorf("column %q of relation %q already exists", s.To, s.Table)
	}
	delete(t.columns, s.From)
	t.columns[s.To] = c
	for _, v := range t.constraints {
		if v.column == s.From {
			v.column = s.To
		}
	}
	for _, v := range st.indexes {
		if v.table != s.Table {
			continue
		}
		for i, col := range v.columns {
			if col == s.From {
				v.columns[i] = s.To
			}
		}
	}
	return nil
}

func (st *state) dropColumn(tname, col string) {
	t := st.tables[tname]
	delete(t.columns, col)
	for name, v := range t.constraints {
		if v.column == col {
			delete(t.constraints, name)
		}
	}
	for name, v := range st.indexes {
		if v.table == tname && slices.Contains(v.columns, col) {
			delete(st.indexes, name)
		}
	}
}

func (st *state) dropTable(name string) {
	if _, ok := st.tables[name]; !ok {
		return
	}
	delete(st.tables, name)
	for iname, v := range st.indexes {
		if v.table == name {
			delete(st.indexes, iname)
		}
	}
	for _, t := range st.tables {
		for cname, v := range t.constraints {
			if v.kind == foreignKey && v.refTable == name {
				delete(t.constraints, cname)
			}
		}
	}
}

// Snapshot returns the current schema.
func (m *Memory) Snapshot() Snapshot {
	res := Snapshot{
		Tables: make(map[string]TableSnapshot, len(m.st.tables)),
		Enums:  make(map[string][]string, len(m.st.enums)),
	}
	for name, vals := range m.st.enums {
		res.Enums[name] = slices.Clone(vals)
	}
	for name, t := range m.st.tables {
		ts := TableSnapshot{
			Columns:     make(map[string]ColumnSnapshot, len(t.columns)),
			Constraints: slices.Sorted(maps.Keys(t.constraints)),
		}
		for cname, c := range t.columns {
			ts.Columns[cname] = ColumnSnapshot{Type: c.typ, NotNull: c.notNull}
		}
		for iname, v := range m.st.indexes {
			if v.table == name {
				ts.Indexes = append(ts.Indexes, iname)
			}
		}
		slices.Sort(ts.Indexes)
		res.Tables[name] = ts
	}
	return res
}

// OnDelete returns the ON DELETE action of a foreign key, or an empty
// string if the constraint is not a foreign key.
func (m *Memory) OnDelete(tbl, name string) ddl.Action {
	t, ok := m.st.tables[tbl]
	if !ok {
		return ""
	}
	c, ok := t.constraints[name]
	if !ok || c.kind != foreignKey {
		return ""
	}
	return c.onDelete
}

// FromSnapshot builds a Memory with the objects of s. Foreign key targets
// and index columns are not part of a snapshot, so constraints and
// indexes are known by name only.
func FromSnapshot(s Snapshot) *Memory {
	res := NewMemory()
	st := res.st
	for name, vals := range s.Enums {
		st.enums[name] = slices.Clone(vals)
	}
	for name, ts := range s.Tables {
		t := &table{
			columns:     make(map[string]*column, len(ts.Columns)),
			constraints: make(map[string]*constraint, len(ts.Constraints)),
		}
		for cname, c := range ts.Columns {
			t.columns[cname] = &column{typ: c.Type, notNull: c.NotNull}
		}
		for _, cname := range ts.Constraints {
			kind := ""
			if strings.HasSuffix(cname, "_pkey") {
				kind = primaryKey
			}
			t.constraints[cname] = &constraint{kind: kind}
		}
		for _, iname := range ts.Indexes {
			st.indexes[iname] = &index{table: name}
		}
		st.tables[name] = t
	}
	return res
}

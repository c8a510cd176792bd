// Package catalog models a PostgreSQL schema in memory.
//
// Memory implements migration.Database, so migration units can be
// applied, re-applied and reverted without a server. Snapshot is the
// comparable view of a schema shared by the in-memory model and by live
// inspection of a database.
package catalog

import (
	"fmt"
	"iter"
	"maps"
	"slices"

	"github.com/vetcare/vetdb/pkg/migration"
)

// Snapshot is a comparable view of a schema.
type Snapshot struct {
	Tables map[string]TableSnapshot `json:"tables"`
	Enums  map[string][]string      `json:"enums"`
}

// TableSnapshot describes one table.
type TableSnapshot struct {
	Columns     map[string]ColumnSnapshot `json:"columns"`
	Constraints []string                  `json:"constraints"`
	Indexes     []string                  `json:"indexes"`
	Rows        int64                     `json:"rows,omitempty"`
}

// ColumnSnapshot describes one column.
type ColumnSnapshot struct {
	Type    string `json:"type"`
	NotNull bool   `json:"notNull"`
}

// TableNames returns sorted table names.
func (s Snapshot) TableNames() []string {
	return slices.Sorted(maps.Keys(s.Tables))
}

// EnumNames returns sorted enum names.
func (s Snapshot) EnumNames() []string {
	return slices.Sorted(maps.Keys(s.Enums))
}

// Diff lists human-readable differences between s and other. Row counts
// are ignored. An empty result means both describe the same schema.
func (s Snapshot) Diff(other Snapshot) []string {
	var res []string
	for _, name := range union(maps.Keys(s.Enums), maps.Keys(other.Enums)) {
		a, okA := s.Enums[name]
		b, okB := other.Enums[name]
		switch {
		case !okB:
			res = append(res, fmt.Sprintf("enum %s: only on the left", name))
		case !okA:
			res = append(res, fmt.Sprintf("enum %s: only on the right", name))
		case !slices.Equal(a, b):
			res = append(res, fmt.Sprintf("enum %s: values %v != %v", name, a, b))
		}
	}

	for _, name := range union(maps.Keys(s.Tables), maps.Keys(other.Tables)) {
		a, okA := s.Tables[name]
		b, okB := other.Tables[name]
		switch {
		case !okB:
			res = append(res, fmt.Sprintf("table %s: only on the left", name))
			continue
		case !okA:
			res = append(res, fmt.Sprintf("table %s: only on the right", name))
			continue
		}
		res = append(res, a.diff(name, b)...)
	}
	return res
}

func (t TableSnapshot) diff(table string, other TableSnapshot) []string {
	var res []string
	for _, col := range union(maps.Keys(t.Columns), maps.Keys(other.Columns)) {
		a, okA := t.Columns[col]
		b, okB := other.Columns[col]
		switch {
		case !okB:
			res = append(res, fmt.Sprintf("column %s.%s: only on the left", table, col))
		case !okA:
			res = append(res, fmt.Sprintf("column %s.%s: only on the right", table, col))
		case a != b:
			res = append(res, fmt.Sprintf("column %s.%s: %+v != %+v", table, col, a, b))
		}
	}
	if !slices.Equal(t.Constraints, other.Constraints) {
		res = append(res, fmt.Sprintf("table %s: constraints %v != %v",
			table, t.Constraints, other.Constraints))
	}
	if !slices.Equal(t.Indexes, other.Indexes) {
		res = append(res, fmt.Sprintf("table %s: indexes %v != %v",
			table, t.Indexes, other.Indexes))
	}
	return res
}

func union(a, b iter.Seq[string]) []string {
	set := make(map[string]struct{})
	for k := range a {
		set[k] = struct{}{}
	}
	for k := range b {
		set[k] = struct{}{}
	}
	return slices.Sorted(maps.Keys(set))
}

// Normalize returns a copy of s with column types reduced to the names
// PostgreSQL reports, so that a model can be compared with a live
// database.
func (s Snapshot) Normalize() Snapshot {
	res := Snapshot{
		Tables: make(map[string]TableSnapshot, len(s.Tables)),
		Enums:  maps.Clone(s.Enums),
	}
	for name, t := range s.Tables {
		nt := t
		nt.Columns = make(map[string]ColumnSnapshot, len(t.Columns))
		for col, c := range t.Columns {
			c.Type = migration.NormalizeType(c.Type)
			nt.Columns[col] = c
		}
		res.Tables[name] = nt
	}
	return res
}

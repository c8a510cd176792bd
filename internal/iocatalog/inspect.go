package iocatalog

import (
	"context"
	"slices"

	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/vetcare/vetdb/pkg/catalog"
	"github.com/vetcare/vetdb/pkg/migration"
	"golang.org/x/sync/errgroup"
)

// Inspector builds snapshots of the live public schema.
type Inspector struct {
	pool *pgxpool.Pool
	jobs int
}

// NewInspector creates an Inspector. Row counts run in at most jobs
// concurrent queries.
func NewInspector(pool *pgxpool.Pool, jobs int) *Inspector {
	return &Inspector{pool: pool, jobs: max(jobs, 1)}
}

// Snapshot inspects tables, columns, constraints, indexes and enums of
// the public schema. With rows set, every table is counted as well.
// Tables listed in skip (for example the ledger) are left out.
func (in *Inspector) Snapshot(ctx context.Context, rows bool, skip ...string) (catalog.Snapshot, error) {
	var res catalog.Snapshot

	db := stdlib.OpenDBFromPool(in.pool)
	defer db.Close()

	drv, err := postgres.Open(db)
	if err != nil {
		return res, InspectError(err)
	}
	s, err := drv.InspectSchema(ctx, "public", &schema.InspectOptions{
		Mode: schema.InspectTables,
	})
	if err != nil {
		return res, InspectError(err)
	}

	cons, err := in.constraints(ctx)
	if err != nil {
		return res, err
	}
	res.Enums, err = in.enums(ctx)
	if err != nil {
		return res, err
	}

	res.Tables = make(map[string]catalog.TableSnapshot, len(s.Tables))
	for _, t := range s.Tables {
		if slices.Contains(skip, t.Name) {
			continue
		}
		res.Tables[t.Name] = tableSnapshot(t, cons[t.Name])
	}

	if rows {
		if err = in.countRows(ctx, res.Tables); err != nil {
			return res, err
		}
	}
	return res, nil
}

func tableSnapshot(t *schema.Table, cons []string) catalog.TableSnapshot {
	res := catalog.TableSnapshot{
		Columns:     make(map[string]catalog.ColumnSnapshot, len(t.Columns)),
		Constraints: cons,
	}
	for _, c := range t.Columns {
		res.Columns[c.Name] = catalog.ColumnSnapshot{
			Type:    columnType(c),
			NotNull: !c.Type.Null,
		}
	}
	// unique constraints are backed by indexes of the same name
	for _, idx := range t.Indexes {
		if slices.Contains(cons, idx.Name) {
			continue
		}
		res.Indexes = append(res.Indexes, idx.Name)
	}
	slices.Sort(res.Indexes)
	return res
}

func columnType(c *schema.Column) string {
	if e, ok := c.Type.Type.(*schema.EnumType); ok {
		return e.T
	}
	if c.Type.Raw != "" {
		return migration.NormalizeType(c.Type.Raw)
	}
	return ""
}

// constraints returns sorted primary, unique and foreign key names per
// table.
func (in *Inspector) constraints(ctx context.Context) (map[string][]string, error) {
	q := `
		SELECT t.relname, c.conname
		FROM pg_constraint c
		JOIN pg_class t ON t.oid = c.conrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		WHERE n.nspname = 'public' AND c.contype IN ('p', 'u', 'f')
		ORDER BY t.relname, c.conname`

	rows, err := in.pool.Query(ctx, q)
	if err != nil {
		return nil, IntrospectionError("constraints", "public", err)
	}
	pairs, err := pgx.CollectRows(rows, pgx.RowToStructByPos[struct {
		Table string
		Name  string
	}])
	if err != nil {
		return nil, IntrospectionError("constraints", "public", err)
	}

	res := make(map[string][]string)
	for _, v := range pairs {
		res[v.Table] = append(res[v.Table], v.Name)
	}
	return res, nil
}

// enums returns values of every enum type in declaration order.
func (in *Inspector) enums(ctx context.Context) (map[string][]string, error) {
	q := `
		SELECT t.typname, e.enumlabel
		FROM pg_enum e
		JOIN pg_type t ON t.oid = e.enumtypid
		JOIN pg_namespace n ON n.oid = t.typnamespace
		WHERE n.nspname = 'public'
		ORDER BY t.typname, e.enumsortorder`

	rows, err := in.pool.Query(ctx, q)
	if err != nil {
		return nil, IntrospectionError("enums", "public", err)
	}
	pairs, err := pgx.CollectRows(rows, pgx.RowToStructByPos[struct {
		Type  string
		Label string
	}])
	if err != nil {
		return nil, IntrospectionError("enums", "public", err)
	}

	res := make(map[string][]string)
	for _, v := range pairs {
		res[v.Type] = append(res[v.Type], v.Label)
	}
	return res, nil
}

func (in *Inspector) countRows(ctx context.Context, tables map[string]catalog.TableSnapshot) error {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	counts := make([]int64, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(in.jobs)
	for i, name := range names {
		g.Go(func() error {
			q := "SELECT count(*) FROM " + pgx.Identifier{name}.Sanitize()
			if err := in.pool.QueryRow(ctx, q).Scan(&counts[i]); err != nil {
				return RowCountError(name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, name := range names {
		t := tables[name]
		t.Rows = counts[i]
		tables[name] = t
	}
	return nil
}

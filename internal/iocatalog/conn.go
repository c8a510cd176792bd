// Package iocatalog runs migration units against PostgreSQL. It answers
// catalog questions from information_schema and pg_catalog, executes
// typed DDL statements, and inspects the live schema.
package iocatalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vetcare/vetdb/pkg/catalog"
	"github.com/vetcare/vetdb/pkg/ddl"
	"github.com/vetcare/vetdb/pkg/migration"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type conn struct {
	q querier
}

func (c *conn) exists(ctx context.Context, what, name, query string, args ...any) (bool, error) {
	var res bool
	if err := c.q.QueryRow(ctx, query, args...).Scan(&res); err != nil {
		return false, IntrospectionError(what, name, err)
	}
	return res, nil
}

func (c *conn) TableExists(ctx context.Context, table string) (bool, error) {
	q := `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)`
	return c.exists(ctx, "table", table, q, table)
}

// ColumnType reports data_type of a column, or the type name for enums.
func (c *conn) ColumnType(ctx context.Context, table, column string) (string, error) {
	q := `
		SELECT data_type, udt_name
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1 AND column_name = $2`

	var dataType, udt string
	err := c.q.QueryRow(ctx, q, table, column).Scan(&dataType, &udt)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", IntrospectionError("column", table+"."+column, err)
	}
	if dataType == "USER-DEFINED" {
		return udt, nil
	}
	return migration.NormalizeType(dataType), nil
}

func (c *conn) ConstraintExists(ctx context.Context, table, name string) (bool, error) {
	q := `
		SELECT EXISTS (
			SELECT FROM pg_constraint c
			JOIN pg_class t ON t.oid = c.conrelid
			JOIN pg_namespace n ON n.oid = t.relnamespace
			WHERE n.nspname = 'public' AND t.relname = $1 AND c.conname = $2
		)`
	return c.exists(ctx, "constraint", name, q, table, name)
}

func (c *conn) TypeExists(ctx context.Context, name string) (bool, error) {
	q := `
		SELECT EXISTS (
			SELECT FROM pg_type t
			JOIN pg_namespace n ON n.oid = t.typnamespace
			WHERE n.nspname = 'public' AND t.typname = $1
		)`
	return c.exists(ctx, "type", name, q, name)
}

func (c *conn) IndexExists(ctx context.Context, name string) (bool, error) {
	q := `
		SELECT EXISTS (
			SELECT FROM pg_indexes
			WHERE schemaname = 'public' AND indexname = $1
		)`
	return c.exists(ctx, "index", name, q, name)
}

// Apply executes one statement. Scripts run statement by statement so
// that a failure names the statement that caused it.
func (c *conn) Apply(ctx context.Context, stmt ddl.Statement) error {
	var err error
	switch s := stmt.(type) {
	case ddl.Script:
		for _, v := range s {
			if err = c.Apply(ctx, v); err != nil {
				return err
			}
		}
		return nil
	case ddl.Exec:
		_, err = c.q.Exec(ctx, s.Query, s.Args...)
	default:
		_, err = c.q.Exec(ctx, stmt.SQL())
	}
	if err != nil {
		return catalog.DDLError(stmt, err)
	}
	return nil
}

// Database implements migration.Database on a connection pool.
type Database struct {
	conn
	pool *pgxpool.Pool
}

// New creates a Database on pool.
func New(pool *pgxpool.Pool) *Database {
	return &Database{conn: conn{q: pool}, pool: pool}
}

// InTx runs fn in a transaction.
func (d *Database) InTx(ctx context.Context, fn func(migration.Conn) error) error {
	return pgx.BeginFunc(ctx, d.pool, func(tx pgx.Tx) error {
		return fn(&conn{q: tx})
	})
}

// Package ioledger stores the migration ledger. PostgreSQL keeps it next
// to the schema it describes, SQLite and memory ledgers serve local runs
// and tests.
package ioledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vetcare/vetdb/pkg/migration"
)

type pgLedger struct {
	pool  *pgxpool.Pool
	table string
	ident string
}

// NewPostgres creates a ledger kept in the given table of the database
// behind pool.
func NewPostgres(pool *pgxpool.Pool, table string) migration.Ledger {
	return &pgLedger{
		pool:  pool,
		table: table,
		ident: pgx.Identifier{table}.Sanitize(),
	}
}

// Init creates the ledger table. A table left by an earlier release
// without applied_at or a unique name is upgraded in place.
func (l *pgLedger) Init(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			"id" SERIAL PRIMARY KEY,
			"timestamp" BIGINT NOT NULL,
			"name" VARCHAR NOT NULL,
			"applied_at" TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, l.ident),
		fmt.Sprintf(`ALTER TABLE %s
			ADD COLUMN IF NOT EXISTS "applied_at" TIMESTAMPTZ NOT NULL DEFAULT now()`,
			l.ident),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s ("name")`,
			pgx.Identifier{l.table + "_name_key"}.Sanitize(), l.ident),
	}
	for _, q := range stmts {
		if _, err := l.pool.Exec(ctx, q); err != nil {
			return InitError(l.table, err)
		}
	}
	return nil
}

func (l *pgLedger) Applied(ctx context.Context) ([]migration.Record, error) {
	q := fmt.Sprintf(`SELECT "timestamp", "name", "applied_at"
		FROM %s ORDER BY "timestamp", "name"`, l.ident)

	rows, err := l.pool.Query(ctx, q)
	if err != nil {
		return nil, ReadError(l.table, err)
	}
	res, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (migration.Record, error) {
		var rec migration.Record
		err := row.Scan(&rec.Timestamp, &rec.Name, &rec.AppliedAt)
		return rec, err
	})
	if err != nil {
		return nil, ReadError(l.table, err)
	}
	return res, nil
}

func (l *pgLedger) Record(ctx context.Context, rec migration.Record) error {
	q := fmt.Sprintf(`INSERT INTO %s ("timestamp", "name", "applied_at")
		VALUES ($1, $2, $3)
		ON CONFLICT ("name") DO UPDATE
		SET "timestamp" = EXCLUDED."timestamp", "applied_at" = EXCLUDED."applied_at"`,
		l.ident)

	if _, err := l.pool.Exec(ctx, q, rec.Timestamp, rec.Name, rec.AppliedAt); err != nil {
		return WriteError(rec.Name, err)
	}
	return nil
}

func (l *pgLedger) Remove(ctx context.Context, name string) error {
	q := fmt.Sprintf(`DELETE FROM %s WHERE "name" = $1`, l.ident)
	if _, err := l.pool.Exec(ctx, q, name); err != nil {
		return WriteError(name, err)
	}
	return nil
}

func (l *pgLedger) Replace(ctx context.Context, recs []migration.Record) error {
	err := pgx.BeginFunc(ctx, l.pool, func(tx pgx.Tx) error {
		q := fmt.Sprintf(`DELETE FROM %s`, l.ident)
		if _, err := tx.Exec(ctx, q); err != nil {
			return err
		}
		rows := make([][]any, len(recs))
		for i, v := range recs {
			rows[i] = []any{v.Timestamp, v.Name, v.AppliedAt}
		}
		_, err := tx.CopyFrom(ctx, pgx.Identifier{l.table},
			[]string{"timestamp", "name", "applied_at"},
			pgx.CopyFromRows(rows),
		)
		return err
	})
	if err != nil {
		return WriteError("*", err)
	}
	return nil
}

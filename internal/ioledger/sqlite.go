package ioledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vetcare/vetdb/pkg/migration"

	_ "modernc.org/sqlite"
)

// SQLite keeps the ledger in a local SQLite file. It is meant for
// disposable databases where the ledger must survive a schema reset.
type SQLite struct {
	db    *sql.DB
	table string
}

// NewSQLite opens (or creates) a SQLite ledger. Use ":memory:" for a
// throwaway ledger.
func NewSQLite(path, table string) (*SQLite, error) {
	dsn := path
	if path != ":memory:" {
		dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, InitError(path, err)
	}
	db.SetMaxOpenConns(1)
	// sql.Open is lazy, the file is created by the first connection
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, InitError(path, err)
	}
	return &SQLite{db: db, table: table}, nil
}

// Close releases the database file.
func (l *SQLite) Close() error {
	return l.db.Close()
}

func (l *SQLite) Init(ctx context.Context) error {
	q := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp INTEGER NOT NULL,
		name TEXT NOT NULL UNIQUE,
		applied_at TEXT NOT NULL
	)`, l.table)
	if _, err := l.db.ExecContext(ctx, q); err != nil {
		return InitError(l.table, err)
	}
	return nil
}

func (l *SQLite) Applied(ctx context.Context) ([]migration.Record, error) {
	q := fmt.Sprintf(`SELECT timestamp, name, applied_at FROM %q
		ORDER BY timestamp, name`, l.table)
	rows, err := l.db.QueryContext(ctx, q)
	if err != nil {
		return nil, ReadError(l.table, err)
	}
	defer rows.Close()

	var res []migration.Record
	for rows.Next() {
		var rec migration.Record
		var at string
		if err = rows.Scan(&rec.Timestamp, &rec.Name, &at); err != nil {
			return nil, ReadError(l.table, err)
		}
		if rec.AppliedAt, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, ReadError(l.table, err)
		}
		res = append(res, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, ReadError(l.table, err)
	}
	return res, nil
}

func (l *SQLite) Record(ctx context.Context, rec migration.Record) error {
	q := fmt.Sprintf(`INSERT INTO %q (timestamp, name, applied_at)
		VALUES (?, ?, ?)
		ON CONFLICT (name) DO UPDATE
		SET timestamp = excluded.timestamp, applied_at = excluded.applied_at`,
		l.table)
	at := rec.AppliedAt.UTC().Format(time.RFC3339Nano)
	if _, err := l.db.ExecContext(ctx, q, rec.Timestamp, rec.Name, at); err != nil {
		return WriteError(rec.Name, err)
	}
	return nil
}

func (l *SQLite) Remove(ctx context.Context, name string) error {
	q := fmt.Sprintf(`DELETE FROM %q WHERE name = ?`, l.table)
	if _, err := l.db.ExecContext(ctx, q, name); err != nil {
		return WriteError(name, err)
	}
	return nil
}

func (l *SQLite) Replace(ctx context.Context, recs []migration.Record) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return WriteError("*", err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %q`, l.table)); err != nil {
		return WriteError("*", err)
	}
	q := fmt.Sprintf(`INSERT INTO %q (timestamp, name, applied_at) VALUES (?, ?, ?)`,
		l.table)
	for _, v := range recs {
		at := v.AppliedAt.UTC().Format(time.RFC3339Nano)
		if _, err = tx.ExecContext(ctx, q, v.Timestamp, v.Name, at); err != nil {
			return WriteError(v.Name, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return WriteError("*", err)
	}
	return nil
}

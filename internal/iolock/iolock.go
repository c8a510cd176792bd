// Package iolock serializes deploy runs with PostgreSQL advisory locks.
package iolock

import (
	"context"
	"hash/fnv"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vetcare/vetdb/pkg/lifecycle"
)

// pgLock takes a session-level advisory lock on a connection that is
// held out of the pool until release.
type pgLock struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Locker backed by pg_advisory_lock.
func NewPostgres(pool *pgxpool.Pool) lifecycle.Locker {
	return &pgLock{pool: pool}
}

// Acquire blocks until the lock for key is free or ctx is done.
func (l *pgLock) Acquire(ctx context.Context, key string) (func(), error) {
	id := Key(key)

	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, AcquireError(key, err)
	}
	if _, err = conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, id); err != nil {
		conn.Release()
		return nil, AcquireError(key, err)
	}
	slog.Info("Advisory lock acquired", "key", key, "id", id)

	release := func() {
		_, err := conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, id)
		if err != nil {
			// closing the session drops its advisory locks
			slog.Warn("Cannot release advisory lock", "key", key, "error", err)
			_ = conn.Conn().Close(context.Background())
		}
		conn.Release()
		slog.Info("Advisory lock released", "key", key)
	}
	return release, nil
}

type noop struct{}

// NewNoop creates a Locker that never blocks.
func NewNoop() lifecycle.Locker {
	return noop{}
}

func (noop) Acquire(ctx context.Context, _ string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return func() {}, nil
}

// Key hashes a lock name into a non-negative advisory lock id (FNV-1a).
func Key(key string) int64 {
	h := fnv.New64a()
	h.Write([]byte(key))
	return int64(h.Sum64() & 0x7FFFFFFFFFFFFFFF)
}

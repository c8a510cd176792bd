package ioledger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vetcare/vetdb/pkg/config"
	"github.com/vetcare/vetdb/pkg/migration"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds the ledger selected by cfg.Ledger.Driver. The returned
// closer releases resources that are not owned by pool.
func New(cfg *config.Config, pool *pgxpool.Pool) (migration.Ledger, io.Closer, error) {
	switch cfg.Ledger.Driver {
	case "sqlite":
		path := cfg.LedgerPath()
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, nil, InitError(path, err)
		}
		l, err := NewSQLite(path, cfg.Ledger.Table)
		if err != nil {
			return nil, nil, err
		}
		return l, l, nil
	default:
		return NewPostgres(pool, cfg.Ledger.Table), nopCloser{}, nil
	}
}

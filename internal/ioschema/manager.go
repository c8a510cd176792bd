// Package ioschema implements the SchemaManager interface for
// database schema management. This is an impure I/O package that
// wires the migration runner to PostgreSQL and checks GORM models
// against the live schema.
package ioschema

import (
	"context"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/vetcare/vetdb/internal/iocatalog"
	"github.com/vetcare/vetdb/internal/ioledger"
	"github.com/vetcare/vetdb/pkg/config"
	"github.com/vetcare/vetdb/pkg/db"
	"github.com/vetcare/vetdb/pkg/history"
	"github.com/vetcare/vetdb/pkg/migration"
	"github.com/vetcare/vetdb/pkg/schema"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Manager implements the lifecycle.SchemaManager interface with the
// migration runner.
type Manager struct {
	operator  db.Operator
	runner    *migration.Runner
	reg       *migration.Registry
	bootstrap string
	closer    io.Closer
}

// NewManager creates a Manager on a connected operator. The ledger is
// chosen by cfg.Ledger.
func NewManager(
	op db.Operator,
	cfg *config.Config,
	opts ...migration.Option,
) (*Manager, error) {
	pool := op.Pool()
	if pool == nil {
		return nil, NotConnectedError()
	}

	reg, err := history.Registry()
	if err != nil {
		return nil, err
	}

	ledger, closer, err := ioledger.New(cfg, pool)
	if err != nil {
		return nil, err
	}

	res := &Manager{
		operator:  op,
		reg:       reg,
		bootstrap: cfg.Deploy.BootstrapUnit,
		closer:    closer,
		runner:    migration.NewRunner(iocatalog.New(pool), ledger, reg, opts...),
	}
	return res, nil
}

// Create runs the designated recreate unit and baselines the history.
func (m *Manager) Create(ctx context.Context) ([]migration.Result, error) {
	return m.runner.Bootstrap(ctx, m.bootstrap)
}

// Migrate applies pending history units.
func (m *Manager) Migrate(ctx context.Context) ([]migration.Result, error) {
	return m.runner.RunPending(ctx)
}

// Runner gives access to single-unit runs, reverts and status.
func (m *Manager) Runner() *migration.Runner {
	return m.runner
}

// Registry returns the known migration units.
func (m *Manager) Registry() *migration.Registry {
	return m.reg
}

// Operator returns the database operator the manager runs on.
func (m *Manager) Operator() db.Operator {
	return m.operator
}

// Close releases the ledger.
func (m *Manager) Close() error {
	return m.closer.Close()
}

// CheckModels reports tables and columns that GORM models expect but the
// live schema does not have. Services read the schema through these
// models, so drift here breaks them at runtime.
func (m *Manager) CheckModels(ctx context.Context) ([]string, error) {
	pool := m.operator.Pool()
	if pool == nil {
		return nil, NotConnectedError()
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{Conn: sqlDB}),
		&gorm.Config{Logger: logger.Discard},
	)
	if err != nil {
		return nil, GORMConnectionError(err)
	}
	gormDB = gormDB.WithContext(ctx)

	var res []string
	mig := gormDB.Migrator()
	for _, model := range schema.AllModels() {
		if !mig.HasTable(model) {
			res = append(res, fmt.Sprintf("table %s: missing", model.TableName()))
			continue
		}
		stmt := &gorm.Statement{DB: gormDB}
		if err = stmt.Parse(model); err != nil {
			return nil, ModelParseError(model.TableName(), err)
		}
		for _, f := range stmt.Schema.Fields {
			if f.DBName == "" {
				continue
			}
			if !mig.HasColumn(model, f.DBName) {
				res = append(res, fmt.Sprintf("column %s.%s: missing",
					model.TableName(), f.DBName))
			}
		}
	}
	return res, nil
}

// Package deploy composes a deploy run out of schema migration, seeding
// and locking. The run is driven by three flags: first-deploy,
// run-migrations and run-seeds.
package deploy

import (
	"context"
	"log/slog"
	"time"

	"github.com/vetcare/vetdb/pkg/config"
	"github.com/vetcare/vetdb/pkg/lifecycle"
	"github.com/vetcare/vetdb/pkg/migration"
)

// Step of a deploy run.
type Step string

const (
	StepFlags     Step = "flags"
	StepValidate  Step = "validate"
	StepLock      Step = "lock"
	StepBootstrap Step = "bootstrap"
	StepMigrate   Step = "migrate"
	StepSeed      Step = "seed"
)

// Mode of a deploy run.
type Mode string

const (
	ModeFirstDeploy Mode = "first-deploy"
	ModeIncremental Mode = "incremental"
	ModeNoMigration Mode = "no-migrations"
)

// StepReport describes one finished step.
type StepReport struct {
	Step     Step          `json:"step"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// Report is the outcome of a deploy run.
type Report struct {
	Mode           Mode               `json:"mode"`
	Steps          []StepReport       `json:"steps"`
	Migrations     []migration.Result `json:"-"`
	Seeded         int                `json:"seeded"`
	LastSuccessful Step               `json:"lastSuccessful,omitempty"`
	Failed         Step               `json:"failed,omitempty"`
}

// Option configures a Deployer.
type Option func(*Deployer)

// OptSeeder sets the seeder used when run-seeds is on.
func OptSeeder(s lifecycle.Seeder) Option {
	return func(d *Deployer) {
		d.seeder = s
	}
}

// OptLocker wraps the run in a lock taken with key.
func OptLocker(l lifecycle.Locker, key string) Option {
	return func(d *Deployer) {
		d.locker = l
		d.lockKey = key
	}
}

// OptRegistry sets the registry the bootstrap unit is validated against.
// A first deploy fails validation without it.
func OptRegistry(r *migration.Registry) Option {
	return func(d *Deployer) {
		d.reg = r
	}
}

// OptLogger sets the logger.
func OptLogger(l *slog.Logger) Option {
	return func(d *Deployer) {
		d.log = l
	}
}

// Deployer runs the deploy steps in order and stops at the first failure.
// Failed steps are not retried.
type Deployer struct {
	flags   config.DeployConfig
	schema  lifecycle.SchemaManager
	seeder  lifecycle.Seeder
	locker  lifecycle.Locker
	lockKey string
	reg     *migration.Registry
	log     *slog.Logger
	now     func() time.Time
}

// New creates a Deployer.
func New(
	flags config.DeployConfig,
	sm lifecycle.SchemaManager,
	opts ...Option,
) *Deployer {
	res := &Deployer{
		flags:  flags,
		schema: sm,
		log:    slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// Mode returns the mode the flags select.
func (d *Deployer) Mode() Mode {
	switch {
	case d.flags.FirstDeploy:
		return ModeFirstDeploy
	case d.flags.RunMigrations:
		return ModeIncremental
	default:
		return ModeNoMigration
	}
}

// Run executes the deploy. The returned error is a *StepError.
func (d *Deployer) Run(ctx context.Context) (*Report, error) {
	rep := &Report{Mode: d.Mode()}
	d.log.Info("Deploy started", "mode", rep.Mode,
		"first_deploy", d.flags.FirstDeploy,
		"run_migrations", d.flags.RunMigrations,
		"run_seeds", d.flags.RunSeeds,
	)

	if err := d.step(rep, StepFlags, d.flags.Validate); err != nil {
		return rep, err
	}

	if d.flags.FirstDeploy {
		err := d.step(rep, StepValidate, func() error {
			return ValidateUnit(d.reg, d.flags.BootstrapUnit)
		})
		if err != nil {
			return rep, err
		}
	}

	if d.locker != nil {
		var release func()
		err := d.step(rep, StepLock, func() error {
			var err error
			release, err = d.locker.Acquire(ctx, d.lockKey)
			return err
		})
		if err != nil {
			return rep, err
		}
		defer release()
	}

	switch rep.Mode {
	case ModeFirstDeploy:
		err := d.step(rep, StepBootstrap, func() error {
			res, err := d.schema.Create(ctx)
			rep.Migrations = append(rep.Migrations, res...)
			return err
		})
		if err != nil {
			return rep, err
		}
	case ModeIncremental:
		err := d.step(rep, StepMigrate, func() error {
			res, err := d.schema.Migrate(ctx)
			rep.Migrations = append(rep.Migrations, res...)
			return err
		})
		if err != nil {
			return rep, err
		}
	default:
		d.log.Info("Migrations are disabled")
	}

	if d.flags.RunSeeds {
		err := d.step(rep, StepSeed, func() error {
			if d.seeder == nil {
				return nil
			}
			n, err := d.seeder.Seed(ctx)
			rep.Seeded = n
			return err
		})
		if err != nil {
			return rep, err
		}
	}

	d.log.Info("Deploy finished", "mode", rep.Mode,
		"migrations", len(rep.Migrations), "seeded", rep.Seeded)
	return rep, nil
}

func (d *Deployer) step(rep *Report, s Step, fn func() error) error {
	sr := StepReport{Step: s, Started: d.now()}
	err := fn()
	sr.Duration = d.now().Sub(sr.Started)
	if err != nil {
		sr.Error = err.Error()
	}
	rep.Steps = append(rep.Steps, sr)

	if err != nil {
		rep.Failed = s
		d.log.Error("Deploy step failed", "step", s,
			"last_successful", rep.LastSuccessful, "error", err)
		return &StepError{Step: s, LastSuccessful: rep.LastSuccessful, Err: err}
	}
	rep.LastSuccessful = s
	d.log.Info("Deploy step finished", "step", s, "duration", sr.Duration)
	return nil
}

// Package config provides configuration management for vetdb.
//
// This package has no I/O dependencies (no file operations, no network calls).
// Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > .env file >
// config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, config.yaml, and env vars):
//   - Database: host, port, user, password, database, ssl_mode, batch_size
//   - Deploy: first_deploy, run_migrations, run_seeds, use_lock, bootstrap_unit
//   - Ledger: driver, table, sqlite_path
//   - Metrics: textfile
//   - Log: level, format, destination
//   - General: jobs_number
//
// Runtime-only fields (CLI flags only):
//   - HomeDir (set once at startup)
//
// # Environment Variables
//
// Use VETDB_ prefix with underscores for nesting:
//
//	VETDB_DATABASE_HOST=localhost
//	VETDB_DATABASE_PORT=5432
//	VETDB_LOG_LEVEL=info
//	VETDB_LEDGER_TABLE=migrations
//
// Deploy flags are also read from the bare names used by container
// platforms: FIRST_DEPLOY, RUN_MIGRATIONS, RUN_SEEDS.
package config

import (
	"runtime"
)

// Config represents the complete vetdb configuration.
type Config struct {
	// Database contains PostgreSQL connection settings.
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Deploy contains the flags of the deploy orchestrator.
	Deploy DeployConfig `mapstructure:"deploy" yaml:"deploy"`

	// Ledger selects where applied migrations are recorded.
	Ledger LedgerConfig `mapstructure:"ledger" yaml:"ledger"`

	// Metrics configures the export of run metrics.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// JobsNumber is the number of concurrent workers for parallel operations
	// such as counting rows during inspection.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// HomeDir determines where config, cache and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`

	// BatchSize is the number of rows inserted per statement when seeding.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`
}

// DeployConfig contains the flags of a deploy run.
type DeployConfig struct {
	// FirstDeploy makes the run recreate the whole schema with the
	// bootstrap unit instead of applying pending migrations.
	FirstDeploy bool `mapstructure:"first_deploy" yaml:"first_deploy"`

	// RunMigrations enables the migration step. FirstDeploy requires it.
	RunMigrations bool `mapstructure:"run_migrations" yaml:"run_migrations"`

	// RunSeeds enables seeding after migrations.
	RunSeeds bool `mapstructure:"run_seeds" yaml:"run_seeds"`

	// UseLock takes a PostgreSQL advisory lock for the duration of a run.
	UseLock bool `mapstructure:"use_lock" yaml:"use_lock"`

	// BootstrapUnit is the name of the migration that recreates the full
	// schema on the first deploy.
	BootstrapUnit string `mapstructure:"bootstrap_unit" yaml:"bootstrap_unit"`
}

// LedgerConfig contains settings of the schema version ledger.
type LedgerConfig struct {
	// Driver is "postgres" (ledger table in the target database) or
	// "sqlite" (a local file, for disposable environments).
	Driver string `mapstructure:"driver" yaml:"driver"`

	// Table is the ledger table name.
	Table string `mapstructure:"table" yaml:"table"`

	// SQLitePath is the ledger file for the sqlite driver. Relative paths
	// are resolved against the cache directory.
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
}

// MetricsConfig contains settings of metrics export.
type MetricsConfig struct {
	// Textfile is a path of a Prometheus textfile written after each run.
	// Empty value disables the export.
	Textfile string `mapstructure:"textfile" yaml:"textfile"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json', 'text' or 'tint' (user-facing and colored).
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Database: DatabaseConfig{
			Host:      "localhost",
			Port:      5432,
			User:      "postgres",
			Password:  "postgres",
			Database:  "vetcare",
			SSLMode:   "disable",
			BatchSize: 500,
		},
		Deploy: DeployConfig{
			RunMigrations: true,
			UseLock:       true,
			BootstrapUnit: DefaultBootstrapUnit,
		},
		Ledger: LedgerConfig{
			Driver:     "postgres",
			Table:      "migrations",
			SQLitePath: "ledger.sqlite",
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
			// for now file is rewritten every time the log starts
			Destination: "file",
		},
		JobsNumber: runtime.NumCPU(),
	}

	return res
}

package config

import (
	"regexp"
	"strings"

	"github.com/gnames/gn"
)

// Option is a function that modifies a Config.
// Options validate inputs and reject invalid values with warnings.
type Option func(*Config)

// OptDatabaseHost sets the PostgreSQL server hostname or IP address.
func OptDatabaseHost(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Host", s) {
			c.Database.Host = s
		}
	}
}

// OptDatabasePort sets the PostgreSQL server port number.
func OptDatabasePort(i int) Option {
	return func(c *Config) {
		if isValidInt("Database Port", i) {
			c.Database.Port = i
		}
	}
}

// OptDatabaseUser sets the PostgreSQL database username.
func OptDatabaseUser(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database User", s) {
			c.Database.User = s
		}
	}
}

// OptDatabasePassword sets the PostgreSQL database password.
func OptDatabasePassword(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Password", s) {
			c.Database.Password = s
		}
	}
}

// OptDatabaseDatabase sets the PostgreSQL database name to connect to.
func OptDatabaseDatabase(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Name", s) {
			c.Database.Database = s
		}
	}
}

// OptDatabaseSSLMode sets the SSL connection mode.
// Valid values: "disable", "require", "verify-ca", "verify-full".
func OptDatabaseSSLMode(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Database.SSLMode", s) {
			c.Database.SSLMode = s
		}
	}
}

// OptDatabaseBatchSize sets the number of rows per insert when seeding.
func OptDatabaseBatchSize(i int) Option {
	return func(c *Config) {
		if isValidInt("Batch Size", i) {
			c.Database.BatchSize = i
		}
	}
}

// OptDeployFirstDeploy enables the first-deploy path.
func OptDeployFirstDeploy(b bool) Option {
	return func(c *Config) {
		c.Deploy.FirstDeploy = b
	}
}

// OptDeployRunMigrations enables the migration step of a deploy.
func OptDeployRunMigrations(b bool) Option {
	return func(c *Config) {
		c.Deploy.RunMigrations = b
	}
}

// OptDeployRunSeeds enables the seeding step of a deploy.
func OptDeployRunSeeds(b bool) Option {
	return func(c *Config) {
		c.Deploy.RunSeeds = b
	}
}

// OptDeployUseLock enables the advisory lock around a deploy.
func OptDeployUseLock(b bool) Option {
	return func(c *Config) {
		c.Deploy.UseLock = b
	}
}

// OptDeployBootstrapUnit sets the name of the first-deploy migration.
func OptDeployBootstrapUnit(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Bootstrap Unit", s) {
			c.Deploy.BootstrapUnit = s
		}
	}
}

// OptLedgerDriver sets the ledger storage.
// Valid values: "postgres", "sqlite".
func OptLedgerDriver(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Ledger.Driver", s) {
			c.Ledger.Driver = s
		}
	}
}

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// OptLedgerTable sets the ledger table name. Only lowercase unquoted
// PostgreSQL identifiers are accepted.
func OptLedgerTable(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if !isValidString("Ledger Table", s) {
			return
		}
		if !identRe.MatchString(s) {
			gn.Warn("<em>Ledger Table</em> '%s' is not a valid table name, ignoring", s)
			return
		}
		c.Ledger.Table = s
	}
}

// OptLedgerSQLitePath sets the file of the sqlite ledger.
func OptLedgerSQLitePath(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Ledger SQLite Path", s) {
			c.Ledger.SQLitePath = s
		}
	}
}

// OptMetricsTextfile sets the Prometheus textfile path. An empty string
// disables metrics export.
func OptMetricsTextfile(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		c.Metrics.Textfile = s
	}
}

// OptLogLevel sets the logging level.
// Valid values: "debug", "info", "warn", "error".
func OptLogLevel(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Level", s) {
			c.Log.Level = s
		}
	}
}

// OptLogFormat sets the log output format.
// Valid values: "json", "text", "tint".
func OptLogFormat(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Format", s) {
			c.Log.Format = s
		}
	}
}

// OptLogDestination sets where logs are written.
// Valid values: "file", "stderr", "stdout".
func OptLogDestination(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Destination", s) {
			c.Log.Destination = s
		}
	}
}

// OptJobsNumber sets the number of concurrent workers for parallel operations.
// Default is runtime.NumCPU().
func OptJobsNumber(i int) Option {
	return func(c *Config) {
		if isValidInt("Jobs Number", i) {
			c.JobsNumber = i
		}
	}
}

// OptHomeDir sets the home directory for config, cache, and log locations.
// Set once at startup from os.UserHomeDir().
// Runtime-only field - not in ToOptions().
func OptHomeDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Home Directory", s) {
			c.HomeDir = s
		}
	}
}

// Package ioconfig loads vetdb configuration from config.yaml, the
// environment and .env files.
package ioconfig

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/vetcare/vetdb/pkg/config"
)

// EnvPrefix is the prefix of vetdb environment variables.
const EnvPrefix = "VETDB"

// deployKeys maps boolean deploy settings to the bare environment names
// used by container platforms.
var deployKeys = map[string]string{
	"deploy.first_deploy":   "FIRST_DEPLOY",
	"deploy.run_migrations": "RUN_MIGRATIONS",
	"deploy.run_seeds":      "RUN_SEEDS",
	"deploy.use_lock":       "USE_LOCK",
}

// LoadDotEnv reads .env files into the environment. Variables that are
// already set win. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		err := godotenv.Load(path)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return LoadError(path, err)
	}
	return nil
}

// Load reads config.yaml from the vetdb config directory and applies
// environment overrides. Missing keys get the values of config.New.
func Load(homeDir string) (*config.Config, error) {
	cfgPath := config.ConfigFilePath(homeDir)
	v := viper.New()
	v.SetConfigFile(cfgPath)
	setDefaults(v, config.New())
	initEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, LoadError(cfgPath, err)
	}

	if err := normalizeDeploy(v); err != nil {
		return nil, err
	}

	var res config.Config
	if err := v.Unmarshal(&res); err != nil {
		return nil, LoadError(cfgPath, err)
	}

	return &res, nil
}

// normalizeDeploy converts boolish deploy values ("yes", "on", "0") to
// booleans before unmarshalling.
func normalizeDeploy(v *viper.Viper) error {
	for key, env := range deployKeys {
		raw := strings.TrimSpace(v.GetString(key))
		if raw == "" {
			continue
		}
		b, err := config.ParseBoolish(env, raw)
		if err != nil {
			return err
		}
		v.Set(key, b)
	}
	return nil
}

func setDefaults(v *viper.Viper, cfg *config.Config) {
	v.SetDefault("database.host", cfg.Database.Host)
	v.SetDefault("database.port", cfg.Database.Port)
	v.SetDefault("database.user", cfg.Database.User)
	v.SetDefault("database.password", cfg.Database.Password)
	v.SetDefault("database.database", cfg.Database.Database)
	v.SetDefault("database.ssl_mode", cfg.Database.SSLMode)
	v.SetDefault("database.batch_size", cfg.Database.BatchSize)

	v.SetDefault("deploy.first_deploy", cfg.Deploy.FirstDeploy)
	v.SetDefault("deploy.run_migrations", cfg.Deploy.RunMigrations)
	v.SetDefault("deploy.run_seeds", cfg.Deploy.RunSeeds)
	v.SetDefault("deploy.use_lock", cfg.Deploy.UseLock)
	v.SetDefault("deploy.bootstrap_unit", cfg.Deploy.BootstrapUnit)

	v.SetDefault("ledger.driver", cfg.Ledger.Driver)
	v.SetDefault("ledger.table", cfg.Ledger.Table)
	v.SetDefault("ledger.sqlite_path", cfg.Ledger.SQLitePath)
	v.SetDefault("metrics.textfile", cfg.Metrics.Textfile)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.destination", cfg.Log.Destination)
	v.SetDefault("jobs_number", cfg.JobsNumber)
}

func initEnvVars(v *viper.Viper) {
	// Variables are bound explicitly so the list of allowed ones is in
	// one place. They match the fields of config.ToOptions().
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	keys := []string{
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.database",
		"database.ssl_mode",
		"database.batch_size",
		"deploy.bootstrap_unit",
		"ledger.driver",
		"ledger.table",
		"ledger.sqlite_path",
		"metrics.textfile",
		"log.level",
		"log.format",
		"log.destination",
		"jobs_number",
	}
	for _, key := range keys {
		_ = v.BindEnv(key, envName(key))
	}

	// Prefixed names win over the bare ones.
	for key, bare := range deployKeys {
		_ = v.BindEnv(key, envName(key), bare)
	}

	v.AutomaticEnv()
}

// envName returns the prefixed environment name of a config key.
func envName(key string) string {
	key = strings.ReplaceAll(key, ".", "_")
	return EnvPrefix + "_" + strings.ToUpper(key)
}

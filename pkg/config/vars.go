package config

import (
	"path/filepath"
)

var (
	// AppName is used in generating file system paths.
	AppName = "vetdb"

	// DefaultBootstrapUnit is the migration that recreates the whole
	// schema on the first deploy.
	DefaultBootstrapUnit = "1712800000000-RecreateFullSchema"
)

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/vetdb by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// CacheDir returns the directory path for cache files.
// Returns ~/.cache/vetdb by default.
func CacheDir(homeDir string) string {
	return filepath.Join(homeDir, ".cache", AppName)
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/vetdb/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "logs")
}

// ConfigFilePath returns the full path to the config.yaml file.
// Returns ~/.config/vetdb/config.yaml by default.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "config.yaml")
}

// LedgerPath resolves the SQLite ledger file against the cache
// directory.
func (c *Config) LedgerPath() string {
	if filepath.IsAbs(c.Ledger.SQLitePath) {
		return c.Ledger.SQLitePath
	}
	return filepath.Join(CacheDir(c.HomeDir), c.Ledger.SQLitePath)
}

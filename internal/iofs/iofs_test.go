package iofs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vetcare/vetdb/pkg/config"
	"gopkg.in/yaml.v3"
)

// TestEnsureDirs verifies all required directories are created and that
// repeated calls succeed.
func TestEnsureDirs(t *testing.T) {
	tmpDir := t.TempDir()

	for range 3 {
		require.NoError(t, EnsureDirs(tmpDir))
	}

	dirs := []string{
		filepath.Join(tmpDir, ".config", "vetdb"),
		filepath.Join(tmpDir, ".cache", "vetdb"),
		filepath.Join(tmpDir, ".local", "share", "vetdb", "logs"),
	}
	for _, v := range dirs {
		info, err := os.Stat(v)
		require.NoError(t, err)
		assert.True(t, info.IsDir(), v)
		assert.Equal(t, os.FileMode(0755), info.Mode().Perm(), v)
	}
}

// TestTouchDir_ExistingDirectory verifies existing directory
// is not modified.
func TestTouchDir_ExistingDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	existingDir := filepath.Join(tmpDir, "existing")

	err := os.MkdirAll(existingDir, 0700)
	require.NoError(t, err)

	err = touchDir(existingDir)
	require.NoError(t, err)

	info, err := os.Stat(existingDir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

// TestEnsureConfigFile verifies that the embedded template is written
// once and never overwrites user changes.
func TestEnsureConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, EnsureDirs(tmpDir))
	require.NoError(t, EnsureConfigFile(tmpDir))

	configPath := filepath.Join(tmpDir, ".config", "vetdb", "config.yaml")
	content, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, ConfigYAML, string(content))

	customContent := "# Custom config\ndatabase:\n  host: myhost"
	err = os.WriteFile(configPath, []byte(customContent), 0644)
	require.NoError(t, err)

	require.NoError(t, EnsureConfigFile(tmpDir))
	content, err = os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, customContent, string(content))
}

// TestConfigYAML_Defaults verifies that the embedded template matches
// the defaults of config.New.
func TestConfigYAML_Defaults(t *testing.T) {
	var cfg config.Config
	err := yaml.Unmarshal([]byte(ConfigYAML), &cfg)
	require.NoError(t, err)

	def := config.New()
	assert.Equal(t, def.Database, cfg.Database)
	assert.Equal(t, def.Deploy, cfg.Deploy)
	assert.Equal(t, def.Ledger, cfg.Ledger)
	assert.Equal(t, def.Metrics, cfg.Metrics)
	assert.Equal(t, def.Log, cfg.Log)
}

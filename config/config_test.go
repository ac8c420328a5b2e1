package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestDefaultStoragePathIsLeftToBackend(t *testing.T) {
	assert.Empty(t, DefaultConfig().Storage.Path)
}

func TestLoadYAML(t *testing.T) {
	chdir(t, t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
storage:
  backend: sqlite
  path: /tmp/s.db
log:
  level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "/tmp/s.db", cfg.Storage.Path)
	assert.Equal(t, "students", cfg.Storage.Key, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadBadYAML(t *testing.T) {
	chdir(t, t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("storage and redis", func(t *testing.T) {
		t.Setenv("STORE_BACKEND", "json")
		t.Setenv("STORE_KEY", "roster")
		t.Setenv("REDIS_ADDR", "redis:6380")
		t.Setenv("REDIS_DB", "3")

		cfg := DefaultConfig()
		require.NoError(t, cfg.applyEnvOverrides())
		assert.Equal(t, "json", cfg.Storage.Backend)
		assert.Equal(t, "roster", cfg.Storage.Key)
		assert.Equal(t, "redis:6380", cfg.Storage.Redis.Addr)
		assert.Equal(t, 3, cfg.Storage.Redis.DB)
	})

	t.Run("bad REDIS_DB", func(t *testing.T) {
		t.Setenv("REDIS_DB", "three")
		cfg := DefaultConfig()
		assert.Error(t, cfg.applyEnvOverrides())
	})

	t.Run("dotenv file", func(t *testing.T) {
		dir := t.TempDir()
		chdir(t, dir)
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SERVER_ADDR=:7070\n"), 0o644))
		t.Cleanup(func() { os.Unsetenv("SERVER_ADDR") })

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, ":7070", cfg.Server.Addr)
	})
}

func TestConfigureLogging(t *testing.T) {
	defer logrus.SetLevel(logrus.GetLevel())

	require.NoError(t, ConfigureLogging(LogConfig{Level: "warn", Format: "json"}))
	assert.Equal(t, logrus.WarnLevel, logrus.GetLevel())

	assert.Error(t, ConfigureLogging(LogConfig{Level: "loud"}))
	assert.Error(t, ConfigureLogging(LogConfig{Level: "info", Format: "xml"}))
}

package adapter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_File(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
storage:
  backend: sqlite
  path: /tmp/tabs.db
relay:
  url: ws://127.0.0.1:9000/
  write_timeout: 2s
browser:
  command: firefox
  args: ["--new-tab"]
filter:
  default_tag: set
`), 0644))

	cfg, err := LoadConfig(file)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "/tmp/tabs.db", cfg.Storage.Path)
	assert.Equal(t, "ws://127.0.0.1:9000/", cfg.Relay.URL)
	assert.Equal(t, 2*time.Second, cfg.Relay.WriteTimeout)
	assert.Equal(t, "firefox", cfg.Browser.Command)
	assert.Equal(t, []string{"--new-tab"}, cfg.Browser.Args)
	assert.Equal(t, "set", cfg.Filter.DefaultTag)
	assert.Equal(t, DefaultConfig().Relay.Listen, cfg.Relay.Listen, "unset keys keep defaults")
	assert.Equal(t, "INFO", cfg.Logging.Level)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("TABSTASH_STORAGE_BACKEND", "memory")
	t.Setenv("TABSTASH_LOGGING_LEVEL", "DEBUG")

	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("storage:\n  backend: sqlite\n"), 0644))

	cfg, err := LoadConfig(file)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Backend = "sqlite"
	cfg.Relay.URL = "ws://localhost:7465/"
	cfg.Relay.WriteTimeout = 3 * time.Second
	cfg.Browser.Args = []string{"-P", "work"}

	file, err := SaveConfig(cfg, filepath.Join(t.TempDir(), "nested", "config.yaml"))
	require.NoError(t, err)

	loaded, err := LoadConfig(file)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "tabs.db"), expandHome("~/tabs.db"))
	assert.Equal(t, "/abs/tabs.db", expandHome("/abs/tabs.db"))
}

func TestSetupLogger(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "tabstash.log")
	logger, err := SetupLogger(&LoggingConfig{File: file, Level: "debug"})
	require.NoError(t, err)

	logger.Debug("hello", "key", "value")
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"key":"value"`)
	assert.Contains(t, string(data), `"pid":`)

	quiet, err := SetupLogger(&LoggingConfig{})
	require.NoError(t, err)
	assert.NotNil(t, quiet)
}

package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Relay   RelayConfig   `mapstructure:"relay"`
	Browser BrowserConfig `mapstructure:"browser"`
	Filter  FilterConfig  `mapstructure:"filter"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	Backend string `mapstructure:"backend"` // "bolt", "sqlite" or "memory"
	Path    string `mapstructure:"path"`
}

// RelayConfig holds cross-surface messaging configuration
type RelayConfig struct {
	URL          string        `mapstructure:"url"`    // ws:// address to dial, empty for no relay
	Listen       string        `mapstructure:"listen"` // Address served by "tabstash relay"
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// BrowserConfig holds the command used to open saved tabs
type BrowserConfig struct {
	Command string   `mapstructure:"command"` // Empty for the system default handler
	Args    []string `mapstructure:"args"`
}

// FilterConfig holds query defaults
type FilterConfig struct {
	DefaultTag string `mapstructure:"default_tag"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: "bolt",
			Path:    filepath.Join(defaultDataPath(), "tabstash.db"),
		},
		Relay: RelayConfig{
			Listen:       "127.0.0.1:7465",
			WriteTimeout: 5 * time.Second,
		},
		Browser: BrowserConfig{
			Args: []string{},
		},
		Filter: FilterConfig{
			DefaultTag: "standard",
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), "tabstash.log"),
			Level: "INFO",
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "tabstash")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "tabstash")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "tabstash")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "tabstash")
	}
}

func newViper(cfg *Config) *viper.Viper {
	v := viper.New()

	// Defaults make every key visible to the environment lookup
	v.SetDefault("storage.backend", cfg.Storage.Backend)
	v.SetDefault("storage.path", cfg.Storage.Path)
	v.SetDefault("relay.url", cfg.Relay.URL)
	v.SetDefault("relay.listen", cfg.Relay.Listen)
	v.SetDefault("relay.write_timeout", cfg.Relay.WriteTimeout)
	v.SetDefault("browser.command", cfg.Browser.Command)
	v.SetDefault("browser.args", cfg.Browser.Args)
	v.SetDefault("filter.default_tag", cfg.Filter.DefaultTag)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)

	// TABSTASH_STORAGE_BACKEND overrides storage.backend
	v.SetEnvPrefix("TABSTASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig loads configuration from file and environment. An empty file
// searches the default config directory and the working directory for
// config.yaml; a missing file there is not an error.
func LoadConfig(file string) (*Config, error) {
	cfg := DefaultConfig()
	v := newViper(cfg)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultConfigPath())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	cfg.Storage.Path = expandHome(cfg.Storage.Path)
	cfg.Logging.File = expandHome(cfg.Logging.File)
	return cfg, nil
}

// SaveConfig writes cfg as YAML to file, or to the default location when
// file is empty, and returns the path written
func SaveConfig(cfg *Config, file string) (string, error) {
	if file == "" {
		file = filepath.Join(defaultConfigPath(), "config.yaml")
	}

	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.Set("storage.backend", cfg.Storage.Backend)
	v.Set("storage.path", cfg.Storage.Path)
	v.Set("relay.url", cfg.Relay.URL)
	v.Set("relay.listen", cfg.Relay.Listen)
	v.Set("relay.write_timeout", cfg.Relay.WriteTimeout.String())
	v.Set("browser.command", cfg.Browser.Command)
	v.Set("browser.args", cfg.Browser.Args)
	v.Set("filter.default_tag", cfg.Filter.DefaultTag)
	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	if err := v.WriteConfigAs(file); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return file, nil
}

// expandHome replaces a leading ~ with the user's home directory
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

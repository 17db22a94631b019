// Package config loads runtime settings from a YAML file and REVISE_
// environment variables via viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Store backends accepted by Config.Store.Backend.
const (
	BackendBolt     = "bolt"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// StoreConfig selects and parameterizes the knowledge store.
type StoreConfig struct {
	// Backend is one of bolt, postgres or memory.
	Backend string `mapstructure:"backend"`
	// Path is the bolt database file. Empty means a default under the
	// user's data directory.
	Path string `mapstructure:"path"`
	// URL is the postgres connection string, required for that backend.
	URL string `mapstructure:"url"`
}

// Config holds every setting the commands read.
type Config struct {
	Store StoreConfig `mapstructure:"store"`
	// Weights biases question selection toward knowledge levels 0 to 2.
	Weights [3]float64 `mapstructure:"weights"`
	// LogLevel is a logrus level name.
	LogLevel string `mapstructure:"log_level"`
}

// Load reads configuration with the usual precedence: defaults, then the
// YAML file, then REVISE_ environment variables. path selects an explicit
// file; when empty, $HOME/.config/revise/config.yaml is used if present.
// A missing file is not an error, a malformed one is.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("store.backend", BackendBolt)
	v.SetDefault("store.path", "")
	v.SetDefault("store.url", "")
	v.SetDefault("weights", []float64{1, 1, 1})
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("REVISE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else if home, err := os.UserHomeDir(); err == nil {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(home, ".config", "revise"))
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case BackendBolt, BackendPostgres, BackendMemory:
	default:
		return fmt.Errorf("unknown store backend %q (want bolt, postgres or memory)", c.Store.Backend)
	}
	if c.Store.Backend == BackendPostgres && c.Store.URL == "" {
		return errors.New("store.url is required for the postgres backend")
	}
	sum := 0.0
	for i, w := range c.Weights {
		if w < 0 {
			return fmt.Errorf("weights[%d] is negative", i)
		}
		sum += w
	}
	if sum == 0 {
		return errors.New("weights must not all be zero")
	}
	return nil
}

// BoltPath resolves the bolt database file, defaulting to
// $HOME/.local/share/revise/knowledge.db.
func (c *Config) BoltPath() (string, error) {
	if c.Store.Path != "" {
		return c.Store.Path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "revise", "knowledge.db"), nil
}

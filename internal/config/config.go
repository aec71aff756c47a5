// Package config holds client configuration: backend address, timeouts, the
// embedding advancement policy, and the optional drop-folder watcher. Config
// is read from a YAML file and can be overridden by environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment overrides.
const (
	EnvBackendURL = "DOCCHAT_BACKEND_URL"
	EnvWatchDir   = "DOCCHAT_WATCH_DIR"
	EnvDebug      = "DOCCHAT_DEBUG"
	EnvDarkMode   = "DOCCHAT_DARK_MODE"
)

// Duration wraps time.Duration so YAML values can be written as strings like
// "500ms" or "2m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// EmbeddingConfig controls the embedding progress tracker.
type EmbeddingConfig struct {
	Step     int      `yaml:"step"`
	Interval Duration `yaml:"interval"`
}

// LoggingConfig controls the TUI file logger.
type LoggingConfig struct {
	DebugMode bool `yaml:"debug_mode"`
}

// Config is the full client configuration.
type Config struct {
	BackendURL    string          `yaml:"backend_url"`
	QueryTimeout  Duration        `yaml:"query_timeout"`
	UploadTimeout Duration        `yaml:"upload_timeout"`
	WatchDir      string          `yaml:"watch_dir"`
	WatchDebounce Duration        `yaml:"watch_debounce"`
	DarkMode      bool            `yaml:"dark_mode"`
	Embedding     EmbeddingConfig `yaml:"embedding"`
	Logging       LoggingConfig   `yaml:"logging"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BackendURL:    "http://localhost:8000",
		QueryTimeout:  Duration(60 * time.Second),
		UploadTimeout: Duration(2 * time.Minute),
		WatchDebounce: Duration(750 * time.Millisecond),
		Embedding: EmbeddingConfig{
			Step:     10,
			Interval: Duration(500 * time.Millisecond),
		},
	}
}

// Load reads configuration from path, layering file values over defaults and
// environment overrides over both. A missing file is not an error: defaults
// (plus environment) apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to env overrides
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()

	if cfg.BackendURL == "" {
		return Config{}, fmt.Errorf("backend_url must not be empty")
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvBackendURL); v != "" {
		c.BackendURL = v
	}
	if v := os.Getenv(EnvWatchDir); v != "" {
		c.WatchDir = v
	}
	if v := os.Getenv(EnvDebug); v == "1" || v == "true" {
		c.Logging.DebugMode = true
	}
	if v := os.Getenv(EnvDarkMode); v == "1" || v == "true" {
		c.DarkMode = true
	}
}

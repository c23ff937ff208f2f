// Package config loads the run configuration: defaults, an optional YAML
// file, then environment overrides, in that order.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"interpreteval/internal/store"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = ".interpret-eval.yaml"

// Config holds the settings shared by all commands.
type Config struct {
	LogLevel  string  `yaml:"log_level" env:"INTERPRET_EVAL_LOG_LEVEL"`
	LogFormat string  `yaml:"log_format" env:"INTERPRET_EVAL_LOG_FORMAT"`
	OutputDir string  `yaml:"output_dir" env:"INTERPRET_EVAL_OUTPUT_DIR"`
	HubURL    string  `yaml:"hub_url" env:"INTERPRET_EVAL_HUB_URL"`
	CacheDir  string  `yaml:"cache_dir" env:"INTERPRET_EVAL_CACHE_DIR"`
	DBPath    string  `yaml:"db_path" env:"INTERPRET_EVAL_DB_PATH"`
	Alpha     float64 `yaml:"alpha" env:"INTERPRET_EVAL_ALPHA"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		OutputDir: "output",
		DBPath:    store.DefaultDBPath,
		Alpha:     0.05,
	}
}

// Load builds the effective configuration. A missing file at the default
// path is fine; an explicitly given path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// no config file, defaults apply
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Alpha < 0 || c.Alpha >= 1 {
		return fmt.Errorf("config: alpha %v out of range [0, 1)", c.Alpha)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.LogFormat)
	}
	return nil
}

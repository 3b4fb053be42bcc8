// Package config provides configuration loading for the patristics explorer.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/bitflora/patristics-explorer/internal/logging"
)

// Source kinds.
const (
	SourceStatic = "static"
	SourceSQLite = "sqlite"
)

// Config represents the complete explorer configuration
type Config struct {
	Source SourceConfig `yaml:"source"`
	Fetch  FetchConfig  `yaml:"fetch"`
	Log    LogConfig    `yaml:"log"`
	View   ViewConfig   `yaml:"view"`
}

// SourceConfig selects where the corpus is read from
type SourceConfig struct {
	// Kind is "static" (gzipped JSON tree) or "sqlite"
	Kind string `yaml:"kind"`
	// StaticDir holds index.json.gz, chapters/ and works/
	StaticDir string `yaml:"static_dir"`
	// DBPath is the builder's SQLite database
	DBPath string `yaml:"db_path"`
	// ManuscriptsDir holds the manuscript text files the database points into
	ManuscriptsDir string `yaml:"manuscripts_dir"`
}

// FetchConfig bounds concurrent detail fetches
type FetchConfig struct {
	// Concurrency is the number of parallel work fetches (0 = NumCPU)
	Concurrency int `yaml:"concurrency"`
}

// LogConfig configures logging
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ViewConfig holds view defaults
type ViewConfig struct {
	// Categories is the initially active set (empty = all)
	Categories []string `yaml:"categories"`
	// BucketWidth fixes the era bucket width in years (0 = automatic)
	BucketWidth int `yaml:"bucket_width"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Kind:           SourceStatic,
			StaticDir:      "data/static",
			DBPath:         "data/patristics.db",
			ManuscriptsDir: "manuscripts",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceStatic:
		if c.Source.StaticDir == "" {
			return fmt.Errorf("source.static_dir is required")
		}
	case SourceSQLite:
		if c.Source.DBPath == "" {
			return fmt.Errorf("source.db_path is required")
		}
		if c.Source.ManuscriptsDir == "" {
			return fmt.Errorf("source.manuscripts_dir is required")
		}
	default:
		return fmt.Errorf("source.kind must be %q or %q, got %q", SourceStatic, SourceSQLite, c.Source.Kind)
	}
	if c.Fetch.Concurrency < 0 {
		return fmt.Errorf("fetch.concurrency must not be negative")
	}
	if c.View.BucketWidth < 0 {
		return fmt.Errorf("view.bucket_width must not be negative")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return fmt.Errorf("log.format: %w", err)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Source
	if other.Source.Kind != "" {
		c.Source.Kind = other.Source.Kind
	}
	if other.Source.StaticDir != "" {
		c.Source.StaticDir = other.Source.StaticDir
	}
	if other.Source.DBPath != "" {
		c.Source.DBPath = other.Source.DBPath
	}
	if other.Source.ManuscriptsDir != "" {
		c.Source.ManuscriptsDir = other.Source.ManuscriptsDir
	}

	// Fetch
	if other.Fetch.Concurrency != 0 {
		c.Fetch.Concurrency = other.Fetch.Concurrency
	}

	// Log
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.Format != "" {
		c.Log.Format = other.Log.Format
	}

	// View
	if len(other.View.Categories) > 0 {
		c.View.Categories = other.View.Categories
	}
	if other.View.BucketWidth != 0 {
		c.View.BucketWidth = other.View.BucketWidth
	}
}

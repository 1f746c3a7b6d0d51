// Package config handles reading and writing .batchmaker/config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level structure for .batchmaker/config.yaml.
type Config struct {
	Version int           `yaml:"version"`
	Export  ExportConfig  `yaml:"export"`
	History HistoryConfig `yaml:"history"`
	Log     LogConfig     `yaml:"log"`
}

// ExportConfig controls how batches are written.
type ExportConfig struct {
	OutputDir string `yaml:"output_dir"` // where <name>.mat goes, relative to the project root; "" = the root itself
	Compress  bool   `yaml:"compress"`   // default for designs that do not set compress
}

// HistoryConfig controls the export history database.
type HistoryConfig struct {
	Enabled    bool `yaml:"enabled"`
	MaxAgeDays int  `yaml:"max_age_days"` // used by `history --prune` when no age is given
}

// LogConfig controls the JSONL event log.
type LogConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Dir is the state directory relative to the project root.
const Dir = ".batchmaker"

const configFile = "config.yaml"

// ReadConfig reads .batchmaker/config.yaml from the given project directory.
// dir is the project root (not .batchmaker/ itself).
// Returns an error if the file is not found or YAML is malformed.
func ReadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, Dir, configFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault reads the project config, falling back to DefaultConfig
// when the project has not been initialised.
func LoadOrDefault(dir string) (*Config, error) {
	cfg, err := ReadConfig(dir)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return nil, err
}

// WriteConfig writes cfg to .batchmaker/config.yaml in the given project directory.
// Creates the .batchmaker/ directory if it does not exist.
func WriteConfig(dir string, cfg *Config) error {
	dirPath := filepath.Join(dir, Dir)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	path := filepath.Join(dirPath, configFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Export: ExportConfig{
			OutputDir: "",
			Compress:  false,
		},
		History: HistoryConfig{
			Enabled:    true,
			MaxAgeDays: 90,
		},
		Log: LogConfig{
			Enabled: true,
		},
	}
}

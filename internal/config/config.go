package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level spendtrack.yaml configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Rules     RulesConfig     `yaml:"rules"`
	Reference ReferenceConfig `yaml:"reference"`
	Budgets   []string        `yaml:"budgets"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// StorageConfig locates the bolt database file.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// RulesConfig holds tunable business rules.
type RulesConfig struct {
	MaxCurrencies int `yaml:"max_currencies"`
}

// ReferenceConfig controls expense-request reference numbering.
type ReferenceConfig struct {
	Prefix string `yaml:"prefix"`
	Start  uint64 `yaml:"start"`
}

// Load reads a spendtrack.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new
// deployment: a CASH and a BANK budget, the two-currency limit, and
// references starting at Rqs1000.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Storage: StorageConfig{
			Path: "spendtrack.db",
		},
		Rules: RulesConfig{
			MaxCurrencies: 2,
		},
		Reference: ReferenceConfig{
			Prefix: "Rqs",
			Start:  1000,
		},
		Budgets: []string{"CASH", "BANK"},
	}
}

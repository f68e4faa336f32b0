// Package config loads lettbooks.yaml, the agency-level configuration.
package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config represents the top-level lettbooks.yaml configuration.
type Config struct {
	Agency   AgencyConfig   `yaml:"agency"`
	Database DatabaseConfig `yaml:"database"`
	Ledger   LedgerConfig   `yaml:"ledger"`
}

// AgencyConfig identifies the lettings agency.
type AgencyConfig struct {
	Name string `yaml:"name"`
}

// DatabaseConfig locates the ledger database.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LedgerConfig holds the accounting defaults.
type LedgerConfig struct {
	DefaultCommissionRate string `yaml:"default_commission_rate"` // e.g. "0.1"
	VATRate               string `yaml:"vat_rate"`                // e.g. "0.2"
	MatchThreshold        int    `yaml:"match_threshold"`         // fuzzy match cutoff, 0-100
}

// Default returns the configuration written by `lettbooks init`.
func Default(name string) *Config {
	return &Config{
		Agency:   AgencyConfig{Name: name},
		Database: DatabaseConfig{Path: "ledger.db"},
		Ledger: LedgerConfig{
			DefaultCommissionRate: "0.1",
			VATRate:               "0.2",
			MatchThreshold:        85,
		},
	}
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes a config file.
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

// Validate checks the config for usable values.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if _, err := c.CommissionRate(); err != nil {
		return err
	}
	if _, err := c.VATRate(); err != nil {
		return err
	}
	if c.Ledger.MatchThreshold < 0 || c.Ledger.MatchThreshold > 100 {
		return fmt.Errorf("ledger.match_threshold must be between 0 and 100")
	}
	return nil
}

// CommissionRate parses the default commission rate.
func (c *Config) CommissionRate() (decimal.Decimal, error) {
	if c.Ledger.DefaultCommissionRate == "" {
		return decimal.RequireFromString("0.1"), nil
	}
	rate, err := decimal.NewFromString(c.Ledger.DefaultCommissionRate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing ledger.default_commission_rate %q: %w", c.Ledger.DefaultCommissionRate, err)
	}
	return rate, nil
}

// VATRate parses the VAT rate.
func (c *Config) VATRate() (decimal.Decimal, error) {
	if c.Ledger.VATRate == "" {
		return decimal.RequireFromString("0.2"), nil
	}
	rate, err := decimal.NewFromString(c.Ledger.VATRate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing ledger.vat_rate %q: %w", c.Ledger.VATRate, err)
	}
	return rate, nil
}

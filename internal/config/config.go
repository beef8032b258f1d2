// Package config loads solvault settings: built-in defaults, then an
// optional YAML file, then environment variables. Command-line flags are
// applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultFile = "solvault.yaml"

	EnvLedger   = "SOLVAULT_LEDGER"
	EnvConfig   = "SOLVAULT_CONFIG"
	EnvLogLevel = "SOLVAULT_LOG_LEVEL"

	// DefaultProgramID is the address the locker program is deployed at.
	DefaultProgramID = "FVnnKN3tmbSuWcHbc8anrXZnzETHn96FdaKcJxamrfFx"
)

// AmountUnit selects how FundsAddedEvent reports the deposited amount.
type AmountUnit string

const (
	AmountRaw    AmountUnit = "raw"    // lamports as deposited
	AmountScaled AmountUnit = "scaled" // lamports / 10,000,000
)

var ErrInvalidAmountUnit = errors.New("invalid amount unit")

// Config holds runtime settings for solvault.
type Config struct {
	Ledger      string     `yaml:"ledger"`
	ProgramID   string     `yaml:"program_id"`
	KeystoreDir string     `yaml:"keystore_dir"`
	AmountUnit  AmountUnit `yaml:"amount_unit"`
	LogLevel    string     `yaml:"log_level"`
	LogFormat   string     `yaml:"log_format"`
}

// LoadDefaults populates c with local development defaults.
func (c *Config) LoadDefaults() {
	c.Ledger = ".solvault"
	c.ProgramID = DefaultProgramID
	c.KeystoreDir = ".solvault-keys"
	c.AmountUnit = AmountRaw
	c.LogLevel = "warn"
	c.LogFormat = "text"
}

// Load applies defaults, overlays the YAML file at path (missing file is
// not an error) and finally environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if v := os.Getenv(EnvLedger); v != "" {
		cfg.Ledger = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks fields that have a closed set of values.
func (c *Config) Validate() error {
	switch c.AmountUnit {
	case AmountRaw, AmountScaled:
	default:
		return fmt.Errorf("%w: %q (want %q or %q)", ErrInvalidAmountUnit, c.AmountUnit, AmountRaw, AmountScaled)
	}
	if c.Ledger == "" {
		return errors.New("ledger path must not be empty")
	}
	if c.ProgramID == "" {
		return errors.New("program_id must not be empty")
	}
	return nil
}

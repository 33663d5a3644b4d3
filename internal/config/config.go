// Package config loads and validates the optional .qlshim YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default values for execution configuration.
const (
	// DefaultExePath is the compiled-in location of the codeql-n1ght
	// binary. Callers can override it per call or via config/env.
	DefaultExePath = "/opt/codeql-n1ght/codeql-n1ght"

	DefaultMaxOutput = 1 << 20 // 1 MB per stream

	DefaultHistorySize = 16
)

// Default per-operation timeouts. These mirror the wrapped binary's
// expected run times: scans and database builds can legitimately take
// many hours.
const (
	DefaultExecTimeout     = 600 * time.Second
	DefaultProbeTimeout    = 60 * time.Second
	DefaultInstallTimeout  = 3600 * time.Second
	DefaultDatabaseTimeout = 72000 * time.Second
	DefaultScanTimeout     = 720000 * time.Second
)

// EnvExePath is the environment variable consulted for the executable
// path, after the config file and before the compiled-in default.
const EnvExePath = "QLSHIM_EXE_PATH"

// Config holds the parsed .qlshim configuration.
// All fields are optional; zero values represent defaults.
type Config struct {
	Version      int           `yaml:"version"`
	RawExePath   string        `yaml:"exe_path"`
	RawMaxOutput int           `yaml:"max_output"` // bytes per stream
	Timeouts     TimeoutConfig `yaml:"timeouts"`
	History      HistoryConfig `yaml:"history"`
}

// TimeoutConfig overrides the default per-operation timeouts.
// Values are Go duration strings, e.g. "10m", "2h".
type TimeoutConfig struct {
	Exec     string `yaml:"exec"`
	Probe    string `yaml:"probe"`
	Install  string `yaml:"install"`
	Database string `yaml:"database"`
	Scan     string `yaml:"scan"`
}

// HistoryConfig controls the run history store.
type HistoryConfig struct {
	Path string `yaml:"path"` // SQLite database file; empty means a temp file
	Size int    `yaml:"size"` // in-memory LRU capacity
}

// ExePath returns the configured executable path, the QLSHIM_EXE_PATH
// environment variable, or the compiled-in default, in that order.
func (c *Config) ExePath() string {
	if c.RawExePath != "" {
		return c.RawExePath
	}
	if p := os.Getenv(EnvExePath); p != "" {
		return p
	}
	return DefaultExePath
}

// MaxOutputBytes returns the configured per-stream output cap or the default.
func (c *Config) MaxOutputBytes() int {
	if c.RawMaxOutput > 0 {
		return c.RawMaxOutput
	}
	return DefaultMaxOutput
}

// HistorySize returns the configured LRU capacity or the default.
func (c *Config) HistorySize() int {
	if c.History.Size > 0 {
		return c.History.Size
	}
	return DefaultHistorySize
}

// ExecTimeout returns the timeout for the passthrough operation.
func (c *Config) ExecTimeout() time.Duration {
	return parseTimeout(c.Timeouts.Exec, DefaultExecTimeout)
}

// ProbeTimeout returns the timeout for the version probe operation.
func (c *Config) ProbeTimeout() time.Duration {
	return parseTimeout(c.Timeouts.Probe, DefaultProbeTimeout)
}

// InstallTimeout returns the timeout for the install operation.
func (c *Config) InstallTimeout() time.Duration {
	return parseTimeout(c.Timeouts.Install, DefaultInstallTimeout)
}

// DatabaseTimeout returns the timeout for the create-database operation.
func (c *Config) DatabaseTimeout() time.Duration {
	return parseTimeout(c.Timeouts.Database, DefaultDatabaseTimeout)
}

// ScanTimeout returns the timeout for the scan operation.
func (c *Config) ScanTimeout() time.Duration {
	return parseTimeout(c.Timeouts.Scan, DefaultScanTimeout)
}

func parseTimeout(raw string, fallback time.Duration) time.Duration {
	if raw != "" {
		d, err := time.ParseDuration(raw)
		if err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

// Load reads the .qlshim file from dir. A .env file in the same
// directory is applied to the process environment first, so that
// QLSHIM_EXE_PATH can be set either way. If no .qlshim file exists,
// a default Config is returned.
func Load(dir string) (*Config, error) {
	// Best effort; a missing .env is the normal case.
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	path := filepath.Join(dir, ".qlshim")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading .qlshim: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing .qlshim: %w", err)
	}
	return cfg, nil
}

// Package config loads and saves the toolgate client configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mkarren/toolgate/internal/models"
	"github.com/mkarren/toolgate/internal/security"
)

// Config holds the client configuration consumed by the core components.
type Config struct {
	// Servers lists the configured MCP servers.
	Servers []models.ServerConfig `yaml:"servers"`
	// DefaultTimeout applies to servers that do not set timeout_seconds.
	DefaultTimeout int `yaml:"default_timeout"`
	// EnableSecurity toggles all screening; false means mode disabled.
	EnableSecurity bool `yaml:"enable_security"`
	// FailOnViolation selects strict (true) or permissive (false) behavior
	// when SecurityMode is left empty.
	FailOnViolation bool `yaml:"fail_on_violation"`
	// SecurityMode overrides the derived mode: strict, permissive, minimal.
	SecurityMode string `yaml:"security_mode,omitempty"`
	// FailOpen treats classifier outages as "allow".
	FailOpen bool `yaml:"fail_open"`
	// AutoDiscover builds the catalog automatically at client startup.
	AutoDiscover bool `yaml:"auto_discover"`
	// GuardRegion selects a regional classifier endpoint, if set.
	GuardRegion string `yaml:"guard_region,omitempty"`
	// AuditDB is the path of the screening audit database. Empty disables
	// the persisted audit trail.
	AuditDB string `yaml:"audit_db,omitempty"`
}

// Default returns a configuration with no servers and strict security.
func Default() *Config {
	return &Config{
		DefaultTimeout:  30,
		EnableSecurity:  true,
		FailOnViolation: true,
		AutoDiscover:    true,
	}
}

// DefaultPath returns ~/.toolgate/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home dir: %w", err)
	}
	return filepath.Join(home, ".toolgate", "config.yaml"), nil
}

// Load reads configuration from a YAML file. A missing file yields the
// default configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes configuration to a YAML file, creating parent directories.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// applyDefaults fills per-server timeouts from the default timeout.
func (c *Config) applyDefaults() {
	for i := range c.Servers {
		if c.Servers[i].TimeoutSeconds <= 0 {
			c.Servers[i].TimeoutSeconds = c.DefaultTimeout
		}
	}
}

// Validate checks that the configuration is coherent.
func (c *Config) Validate() error {
	if c.DefaultTimeout < 1 {
		return fmt.Errorf("default_timeout must be at least 1")
	}

	seen := make(map[string]bool, len(c.Servers))
	for _, s := range c.Servers {
		if s.Name == "" {
			return fmt.Errorf("server with address %q has no name", s.Address)
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate server name %q", s.Name)
		}
		seen[s.Name] = true
		if s.Address == "" {
			return fmt.Errorf("server %q has no address", s.Name)
		}
	}

	switch c.SecurityMode {
	case "", string(security.ModeStrict), string(security.ModePermissive), string(security.ModeMinimal):
	default:
		return fmt.Errorf("invalid security_mode %q, must be: strict, permissive, or minimal", c.SecurityMode)
	}
	return nil
}

// SecurityPolicy derives the security manager configuration.
func (c *Config) SecurityPolicy() security.Config {
	if !c.EnableSecurity {
		return security.Config{Mode: security.ModeDisabled}
	}

	interaction := security.ModePermissive
	if c.FailOnViolation {
		interaction = security.ModeStrict
	}

	mode := security.Mode(c.SecurityMode)
	if c.SecurityMode == "" {
		mode = interaction
	}

	return security.Config{
		Mode:            mode,
		InteractionMode: interaction,
		FailOpen:        c.FailOpen,
	}
}

// FindServer returns the index of the named server, or -1.
func (c *Config) FindServer(name string) int {
	for i, s := range c.Servers {
		if s.Name == name {
			return i
		}
	}
	return -1
}

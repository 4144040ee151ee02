package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mkarren/toolgate/internal/models"
	"github.com/mkarren/toolgate/internal/security"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.EnableSecurity || !cfg.FailOnViolation || cfg.DefaultTimeout != 30 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Servers = []models.ServerConfig{
		{Name: "alpha", Address: "http://localhost:9001", Enabled: true, TimeoutSeconds: 10, Priority: 1, Tags: []string{"search"}},
		{Name: "beta", Address: "http://localhost:9002", Enabled: true, Priority: 2},
	}
	cfg.SecurityMode = "minimal"
	cfg.FailOpen = true

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if st, err := os.Stat(path); err != nil || st.Size() == 0 {
		t.Fatalf("saved config missing or empty: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded.Servers) != 2 {
		t.Fatalf("got %d servers, want 2", len(loaded.Servers))
	}
	if loaded.Servers[0].Name != "alpha" || loaded.Servers[0].TimeoutSeconds != 10 {
		t.Errorf("alpha = %+v", loaded.Servers[0])
	}
	// beta had no timeout; it inherits the default.
	if loaded.Servers[1].TimeoutSeconds != 30 {
		t.Errorf("beta timeout = %d, want default 30", loaded.Servers[1].TimeoutSeconds)
	}
	if loaded.SecurityMode != "minimal" || !loaded.FailOpen {
		t.Errorf("security settings lost: %+v", loaded)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}, wantErr: false},
		{name: "zero timeout", mutate: func(c *Config) { c.DefaultTimeout = 0 }, wantErr: true},
		{name: "duplicate server names", mutate: func(c *Config) {
			c.Servers = []models.ServerConfig{
				{Name: "x", Address: "http://a", TimeoutSeconds: 5},
				{Name: "x", Address: "http://b", TimeoutSeconds: 5},
			}
		}, wantErr: true},
		{name: "server without address", mutate: func(c *Config) {
			c.Servers = []models.ServerConfig{{Name: "x", TimeoutSeconds: 5}}
		}, wantErr: true},
		{name: "bad security mode", mutate: func(c *Config) { c.SecurityMode = "paranoid" }, wantErr: true},
		{name: "disabled is not a file mode", mutate: func(c *Config) { c.SecurityMode = "disabled" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSecurityPolicy(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		wantMode security.Mode
	}{
		{name: "security off", mutate: func(c *Config) { c.EnableSecurity = false }, wantMode: security.ModeDisabled},
		{name: "strict from fail_on_violation", mutate: func(c *Config) {}, wantMode: security.ModeStrict},
		{name: "permissive from fail_on_violation false", mutate: func(c *Config) { c.FailOnViolation = false }, wantMode: security.ModePermissive},
		{name: "explicit minimal", mutate: func(c *Config) { c.SecurityMode = "minimal" }, wantMode: security.ModeMinimal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			got := cfg.SecurityPolicy()
			if got.Mode != tt.wantMode {
				t.Errorf("Mode = %q, want %q", got.Mode, tt.wantMode)
			}
			if err := got.Validate(); err != nil {
				t.Errorf("derived policy invalid: %v", err)
			}
		})
	}
}

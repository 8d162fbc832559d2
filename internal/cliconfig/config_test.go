package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.Name = "mesh-app"
	cfg.ResourceGroup = "staging"
	cfg.Image = "registry.example.com/mesh-app:1.0"
	return cfg
}

func TestValidate(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing name", func(c *Config) { c.Name = "" }},
		{"missing resource group", func(c *Config) { c.ResourceGroup = "" }},
		{"missing image", func(c *Config) { c.Image = "" }},
		{"negative replicas", func(c *Config) { c.Replicas = -1 }},
		{"zero poll interval", func(c *Config) { c.PollInterval = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestValidateTargetNeedsNoImage(t *testing.T) {
	// Teardown only identifies the deployment; it must not demand the
	// deploy-side fields.
	cfg := validConfig()
	cfg.Image = ""

	if err := cfg.ValidateTarget(); err != nil {
		t.Errorf("ValidateTarget() = %v, want nil without image", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() = nil, want error without image")
	}

	cfg.Name = ""
	if err := cfg.ValidateTarget(); err == nil {
		t.Error("ValidateTarget() = nil, want error without name")
	}
}

func TestApplyFileConfig(t *testing.T) {
	cfg := DefaultConfig()
	verbose := true
	fc := FileConfig{
		ServiceURL:   "https://deploy.example.com",
		Name:         "mesh-app",
		Replicas:     3,
		PollInterval: "5s",
		Verbose:      &verbose,
	}

	if err := ApplyFileConfig(&cfg, fc, nil); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}
	if cfg.ServiceURL != "https://deploy.example.com" {
		t.Errorf("ServiceURL = %q", cfg.ServiceURL)
	}
	if cfg.Replicas != 3 {
		t.Errorf("Replicas = %d, want 3", cfg.Replicas)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("PollInterval = %v, want 5s", cfg.PollInterval)
	}
	if !cfg.Verbose {
		t.Error("Verbose = false, want true")
	}
}

func TestApplyFileConfigRespectsChangedFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Name = "from-flag"
	cfg.Replicas = 5

	fc := FileConfig{Name: "from-file", Replicas: 3}
	changed := map[string]bool{"name": true, "replicas": true}

	if err := ApplyFileConfig(&cfg, fc, changed); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}
	if cfg.Name != "from-flag" {
		t.Errorf("Name = %q, want from-flag (flag wins)", cfg.Name)
	}
	if cfg.Replicas != 5 {
		t.Errorf("Replicas = %d, want 5 (flag wins)", cfg.Replicas)
	}
}

func TestApplyFileConfigRejectsBadDuration(t *testing.T) {
	cfg := DefaultConfig()
	fc := FileConfig{PollInterval: "not-a-duration"}
	if err := ApplyFileConfig(&cfg, fc, nil); err == nil {
		t.Error("ApplyFileConfig = nil, want error for bad duration")
	}
}

func TestApplyEnvConfig(t *testing.T) {
	t.Setenv("MESHDEPLOY_SERVICE_URL", "https://env.example.com")
	t.Setenv("MESHDEPLOY_REPLICAS", "4")
	t.Setenv("MESHDEPLOY_VERBOSE", "true")
	t.Setenv("MESHDEPLOY_POLL_INTERVAL", "3s")

	cfg := DefaultConfig()
	if err := ApplyEnvConfig(&cfg, nil); err != nil {
		t.Fatalf("ApplyEnvConfig: %v", err)
	}
	if cfg.ServiceURL != "https://env.example.com" {
		t.Errorf("ServiceURL = %q", cfg.ServiceURL)
	}
	if cfg.Replicas != 4 {
		t.Errorf("Replicas = %d, want 4", cfg.Replicas)
	}
	if !cfg.Verbose {
		t.Error("Verbose = false, want true")
	}
	if cfg.PollInterval != 3*time.Second {
		t.Errorf("PollInterval = %v, want 3s", cfg.PollInterval)
	}
}

func TestApplyEnvConfigRespectsChangedFlags(t *testing.T) {
	t.Setenv("MESHDEPLOY_NAME", "from-env")

	cfg := DefaultConfig()
	cfg.Name = "from-flag"
	if err := ApplyEnvConfig(&cfg, map[string]bool{"name": true}); err != nil {
		t.Fatalf("ApplyEnvConfig: %v", err)
	}
	if cfg.Name != "from-flag" {
		t.Errorf("Name = %q, want from-flag (flag wins)", cfg.Name)
	}
}

func TestLoadFileConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
service_url = "https://deploy.example.com"
name = "mesh-app"
resource_group = "staging"
image = "registry.example.com/mesh-app:1.0"
replicas = 2
poll_interval = "2s"
verbose = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig: %v", err)
	}
	if fc.Name != "mesh-app" || fc.ResourceGroup != "staging" {
		t.Errorf("parsed = %+v", fc)
	}
	if fc.Replicas != 2 {
		t.Errorf("Replicas = %d, want 2", fc.Replicas)
	}
	if fc.Verbose == nil || !*fc.Verbose {
		t.Error("Verbose not parsed")
	}
}

func TestLoadFileConfigMissingFile(t *testing.T) {
	if _, err := LoadFileConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("LoadFileConfig = nil, want error for missing file")
	}
}

package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML
// friendly.
type FileConfig struct {
	ServiceURL string `toml:"service_url"`
	AuthKey    string `toml:"auth_key"`

	Name          string `toml:"name"`
	ResourceGroup string `toml:"resource_group"`

	Image            string `toml:"image"`
	RegistryServer   string `toml:"registry_server"`
	RegistryUsername string `toml:"registry_username"`
	RegistryPassword string `toml:"registry_password"`

	PipelineURL string `toml:"pipeline_url"`
	CommitSHA   string `toml:"commit_sha"`

	Replicas int `toml:"replicas"`
	Replica  int `toml:"replica"`

	PollInterval   string `toml:"poll_interval"`
	HTTPTimeout    string `toml:"http_timeout"`
	WorkerPoolSize int    `toml:"worker_pool_size"`

	Verbose    *bool `toml:"verbose"`
	ShowStatus *bool `toml:"show_status"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path,
// ~/.meshdeploy/config.toml, if the user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".meshdeploy", "config.toml")
	}
	return ""
}

// FileExists reports whether path names an existing file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ApplyFileConfig applies configuration from a file to the Config
// struct. It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("service-url", fc.ServiceURL, &cfg.ServiceURL)
	s.setString("auth-key", fc.AuthKey, &cfg.AuthKey)
	s.setString("name", fc.Name, &cfg.Name)
	s.setString("resource-group", fc.ResourceGroup, &cfg.ResourceGroup)
	s.setString("image", fc.Image, &cfg.Image)
	s.setString("registry-server", fc.RegistryServer, &cfg.RegistryServer)
	s.setString("registry-username", fc.RegistryUsername, &cfg.RegistryUsername)
	s.setString("registry-password", fc.RegistryPassword, &cfg.RegistryPassword)
	s.setString("pipeline-url", fc.PipelineURL, &cfg.PipelineURL)
	s.setString("commit-sha", fc.CommitSHA, &cfg.CommitSHA)
	s.setInt("replicas", fc.Replicas, &cfg.Replicas)
	s.setInt("replica", fc.Replica, &cfg.Replica)
	s.setInt("pool-size", fc.WorkerPoolSize, &cfg.WorkerPoolSize)
	s.setBool("verbose", fc.Verbose, &cfg.Verbose)
	s.setBool("show-status", fc.ShowStatus, &cfg.ShowStatus)

	if err := s.setDuration("poll", fc.PollInterval, &cfg.PollInterval); err != nil {
		return err
	}
	return s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout)
}

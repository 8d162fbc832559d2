// Package cliconfig holds the CLI-side configuration of meshdeploy:
// defaults, TOML file loading, environment overrides, and the
// deployment spec file watcher. Precedence, lowest to highest: file,
// environment, explicitly set flags.
package cliconfig

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds CLI configuration for meshdeploy.
type Config struct {
	ServiceURL string
	AuthKey    string

	Name          string
	ResourceGroup string

	Image            string
	RegistryServer   string
	RegistryUsername string
	RegistryPassword string

	PipelineURL string
	CommitSHA   string

	Replicas int
	Replica  int

	PollInterval   time.Duration
	HTTPTimeout    time.Duration
	WorkerPoolSize int

	Verbose    bool
	ShowStatus bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		PollInterval:   2 * time.Second,
		HTTPTimeout:    15 * time.Second,
		WorkerPoolSize: 16,
		ShowStatus:     true,
		AuthKey:        os.Getenv("MESHDEPLOY_AUTH_KEY"),
	}
}

// Validate checks the configuration for a deploy or upscale, which
// submit a deployment object and therefore need an image.
func (c *Config) Validate() error {
	if err := c.ValidateTarget(); err != nil {
		return err
	}
	if c.Image == "" {
		return fmt.Errorf("image is required")
	}
	if c.Replicas < 0 {
		return fmt.Errorf("replicas must not be negative")
	}
	return nil
}

// ValidateTarget checks only the fields that identify a deployment.
// Teardown deletes by name and needs no image.
func (c *Config) ValidateTarget() error {
	if c.Name == "" {
		return fmt.Errorf("deployment name is required")
	}
	if c.ResourceGroup == "" {
		return fmt.Errorf("resource-group is required")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	return nil
}

// configSetter helps apply configuration values while respecting flag
// precedence. It only applies values if the corresponding flag hasn't
// been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag
// not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not
// changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if
// valid. Used for environment variables.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false. Used for
// environment variables.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}

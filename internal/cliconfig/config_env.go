package cliconfig

import "os"

// ApplyEnvConfig applies MESHDEPLOY_* environment variables to the
// Config. Env values override file config but are overridden by flags
// (checked via the changed map).
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("service-url", os.Getenv("MESHDEPLOY_SERVICE_URL"), &cfg.ServiceURL)
	s.setString("auth-key", os.Getenv("MESHDEPLOY_AUTH_KEY"), &cfg.AuthKey)
	s.setString("name", os.Getenv("MESHDEPLOY_NAME"), &cfg.Name)
	s.setString("resource-group", os.Getenv("MESHDEPLOY_RESOURCE_GROUP"), &cfg.ResourceGroup)
	s.setString("image", os.Getenv("MESHDEPLOY_IMAGE"), &cfg.Image)
	s.setString("registry-server", os.Getenv("MESHDEPLOY_REGISTRY_SERVER"), &cfg.RegistryServer)
	s.setString("registry-username", os.Getenv("MESHDEPLOY_REGISTRY_USERNAME"), &cfg.RegistryUsername)
	s.setString("registry-password", os.Getenv("MESHDEPLOY_REGISTRY_PASSWORD"), &cfg.RegistryPassword)
	s.setString("pipeline-url", os.Getenv("MESHDEPLOY_PIPELINE_URL"), &cfg.PipelineURL)
	s.setString("commit-sha", os.Getenv("MESHDEPLOY_COMMIT_SHA"), &cfg.CommitSHA)
	s.setBoolFromString("verbose", os.Getenv("MESHDEPLOY_VERBOSE"), &cfg.Verbose)
	s.setBoolFromString("show-status", os.Getenv("MESHDEPLOY_SHOW_STATUS"), &cfg.ShowStatus)

	if err := s.setIntFromString("replicas", os.Getenv("MESHDEPLOY_REPLICAS"), &cfg.Replicas); err != nil {
		return err
	}
	if err := s.setIntFromString("pool-size", os.Getenv("MESHDEPLOY_POOL_SIZE"), &cfg.WorkerPoolSize); err != nil {
		return err
	}
	if err := s.setDuration("poll", os.Getenv("MESHDEPLOY_POLL_INTERVAL"), &cfg.PollInterval); err != nil {
		return err
	}
	return s.setDuration("timeout", os.Getenv("MESHDEPLOY_HTTP_TIMEOUT"), &cfg.HTTPTimeout)
}

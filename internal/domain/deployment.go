package domain

import "errors"

// DeploymentSpec describes the remote deployment object to create or
// update: identity, image and registry credentials, CI/CD integration
// parameters, and the desired replica count.
type DeploymentSpec struct {
	// Name identifies the deployment within its resource group.
	Name string

	// ResourceGroup scopes the deployment on the remote service.
	ResourceGroup string

	// Image is the container image reference to deploy.
	Image string

	// Registry credentials for pulling the image.
	RegistryServer   string
	RegistryUsername string
	RegistryPassword string

	// CI/CD integration parameters, recorded on the deployment object.
	PipelineURL string
	CommitSHA   string

	// Replicas is the desired agent replica count. Zero means the
	// service default.
	Replicas int
}

// Validate checks that the spec names a deployable object.
func (s DeploymentSpec) Validate() error {
	if s.Name == "" {
		return errors.New("deployment name is required")
	}
	if s.ResourceGroup == "" {
		return errors.New("resource group is required")
	}
	if s.Image == "" {
		return errors.New("image is required")
	}
	if s.Replicas < 0 {
		return errors.New("replicas must not be negative")
	}
	return nil
}

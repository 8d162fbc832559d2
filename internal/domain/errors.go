package domain

import "errors"

// Domain errors returned by the public API; check with errors.Is.
var (
	// ErrAlreadyRunning is returned by Start when an orchestration run
	// already exists for the deployment name.
	ErrAlreadyRunning = errors.New("meshdeploy: run already active for deployment")

	// ErrNotRunning is returned when an operation requires an active
	// orchestration run and none exists.
	ErrNotRunning = errors.New("meshdeploy: no active run for deployment")

	// ErrNotDeployed is returned when monitoring is requested before the
	// create call has succeeded.
	ErrNotDeployed = errors.New("meshdeploy: deployment has not been created")

	// ErrDrained is returned when teardown is invoked again after the
	// run's subscriptions have already been released.
	ErrDrained = errors.New("meshdeploy: run already drained")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("meshdeploy: invalid configuration")

	// ErrClosed is returned when the deployer's worker pool has been
	// released.
	ErrClosed = errors.New("meshdeploy: deployer closed")
)

package meshdeploy

import (
	"github.com/meshkit/meshdeploy/internal/domain"
	"github.com/meshkit/meshdeploy/internal/ports"
	"github.com/meshkit/meshdeploy/pkg/log"
)

// Re-exported types so embedders never import internal packages.
type (
	// DeploymentSpec describes one remote deployment object.
	DeploymentSpec = domain.DeploymentSpec

	// ApplicationStatus is the application facet status.
	ApplicationStatus = domain.ApplicationStatus

	// ServiceStatus is the service facet status.
	ServiceStatus = domain.ServiceStatus

	// AgentStatus is the agent facet status.
	AgentStatus = domain.AgentStatus

	// CombinedState is the latest-known facet status triple.
	CombinedState = domain.CombinedState

	// DeploymentClient is the remote deployment service port.
	DeploymentClient = ports.DeploymentClient

	// HTTPClient is the HTTP request abstraction; *http.Client satisfies it.
	HTTPClient = ports.HTTPClient

	// Logger is the structured logging interface from pkg/log.
	Logger = log.Logger
)

// Re-exported sentinel errors; check with errors.Is.
var (
	ErrAlreadyRunning = domain.ErrAlreadyRunning
	ErrNotRunning     = domain.ErrNotRunning
	ErrNotDeployed    = domain.ErrNotDeployed
	ErrDrained        = domain.ErrDrained
	ErrInvalidConfig  = domain.ErrInvalidConfig
	ErrClosed         = domain.ErrClosed
)

// Option configures optional behavior of a Deployer.
type Option func(*options)

// options holds the optional configuration for a Deployer.
type options struct {
	httpClient   ports.HTTPClient
	client       ports.DeploymentClient
	logger       ports.Logger
	eventHandler EventHandler
}

// WithHTTPClient sets a custom HTTP client for the default deployment
// client adapter. If not provided, a client with the configured timeout
// is used.
func WithHTTPClient(client HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithClient replaces the deployment client entirely. The ServiceURL
// and AuthKey configuration are ignored when this is set.
func WithClient(client DeploymentClient) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventHandler sets a handler for orchestration events.
// If not provided, no events are emitted.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

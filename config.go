package meshdeploy

import (
	"fmt"
	"time"

	"github.com/meshkit/meshdeploy/internal/domain"
)

// DefaultServiceURL is the default endpoint of the mesh deployment service.
const DefaultServiceURL = "https://api.meshkit.io"

// Config holds the settings shared by every orchestration run a
// Deployer performs. Per-deployment parameters live in DeploymentSpec.
type Config struct {
	// ServiceURL is the base URL of the deployment service.
	ServiceURL string

	// AuthKey authenticates against the deployment service.
	AuthKey string

	// ResourceGroup is the default resource group for specs that do not
	// name one.
	ResourceGroup string

	// PollInterval is the cadence of each facet status poller.
	PollInterval time.Duration

	// HTTPTimeout bounds individual requests of the default HTTP client.
	HTTPTimeout time.Duration

	// WorkerPoolSize is the size of the shared worker pool that runs
	// all polling, combination, and create/delete calls.
	WorkerPoolSize int

	// Replica is the agent replica index observed by the agent poller.
	Replica int

	// VerboseAgentLogs attaches a diagnostic observer that logs every
	// agent status event.
	VerboseAgentLogs bool

	// OutputComponentStatus logs every non-duplicate combined state as
	// a progress record and forwards it to the event handler.
	OutputComponentStatus bool
}

// SetDefaults fills in defaults for unset fields.
func (c *Config) SetDefaults() {
	if c.ServiceURL == "" {
		c.ServiceURL = DefaultServiceURL
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 2 * time.Second
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 15 * time.Second
	}
	if c.WorkerPoolSize <= 0 {
		c.WorkerPoolSize = 16
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Trim a trailing slash so endpoint paths concatenate cleanly.
	if n := len(c.ServiceURL); n > 0 && c.ServiceURL[n-1] == '/' {
		c.ServiceURL = c.ServiceURL[:n-1]
	}
	if c.ServiceURL == "" {
		return fmt.Errorf("%w: service URL is required", domain.ErrInvalidConfig)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive", domain.ErrInvalidConfig)
	}
	if c.Replica < 0 {
		return fmt.Errorf("%w: replica index must not be negative", domain.ErrInvalidConfig)
	}
	return nil
}

package ports

import (
	"context"

	"github.com/meshkit/meshdeploy/internal/domain"
)

// DeploymentClient talks to the remote deployment service. The
// orchestration core issues single-shot calls through this port; the
// infinite status sequences of the monitoring pipeline are produced on
// top of it by internal/poll.
//
// Implementations own transport, auth, and retry policy. The core never
// retries a failed call itself: a create/delete error propagates to the
// caller, and a poll error terminates that facet's sequence.
type DeploymentClient interface {
	// CreateOrUpdate submits the deployment object, creating it if absent.
	// Returns once the remote service has accepted the object.
	CreateOrUpdate(ctx context.Context, spec domain.DeploymentSpec) error

	// Delete requests deletion of the deployment object.
	// Returns once the remote service has accepted the deletion.
	Delete(ctx context.Context, name, resourceGroup string) error

	// ApplicationStatus reports the current application facet status.
	ApplicationStatus(ctx context.Context, name, resourceGroup string) (domain.ApplicationStatus, error)

	// ServiceStatus reports the current service facet status.
	ServiceStatus(ctx context.Context, name, resourceGroup string) (domain.ServiceStatus, error)

	// AgentStatus reports the current agent facet status for one replica.
	// When verbose is set the service may include agent log excerpts in
	// its response; implementations surface those through their logger.
	AgentStatus(ctx context.Context, name, resourceGroup string, replica int, verbose bool) (domain.AgentStatus, error)
}

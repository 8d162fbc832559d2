package domain

import "fmt"

// ApplicationStatus is the status of the deployed mesh application
// object itself.
type ApplicationStatus int

const (
	ApplicationUnknown ApplicationStatus = iota
	ApplicationCreating
	ApplicationUpdating
	ApplicationReady
	ApplicationFailed
)

// String returns a human-readable representation of the status.
func (s ApplicationStatus) String() string {
	switch s {
	case ApplicationCreating:
		return "Creating"
	case ApplicationUpdating:
		return "Updating"
	case ApplicationReady:
		return "Ready"
	case ApplicationFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// ServiceStatus is the status of the service endpoint fronting the
// deployment.
type ServiceStatus int

const (
	ServiceUnknown ServiceStatus = iota
	ServicePending
	ServiceReady
	ServiceFailed
)

// String returns a human-readable representation of the status.
func (s ServiceStatus) String() string {
	switch s {
	case ServicePending:
		return "Pending"
	case ServiceReady:
		return "Ready"
	case ServiceFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// AgentStatus is the status of the deployment agent replica.
type AgentStatus int

const (
	AgentUnknown AgentStatus = iota
	AgentPending
	AgentReady
	AgentFailed
)

// String returns a human-readable representation of the status.
func (s AgentStatus) String() string {
	switch s {
	case AgentPending:
		return "Pending"
	case AgentReady:
		return "Ready"
	case AgentFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// ParseApplicationStatus maps a service-reported status string to an
// ApplicationStatus. Unrecognized values map to ApplicationUnknown.
func ParseApplicationStatus(s string) ApplicationStatus {
	switch s {
	case "Creating":
		return ApplicationCreating
	case "Updating":
		return ApplicationUpdating
	case "Ready":
		return ApplicationReady
	case "Failed":
		return ApplicationFailed
	default:
		return ApplicationUnknown
	}
}

// ParseServiceStatus maps a service-reported status string to a
// ServiceStatus. Unrecognized values map to ServiceUnknown.
func ParseServiceStatus(s string) ServiceStatus {
	switch s {
	case "Pending":
		return ServicePending
	case "Ready":
		return ServiceReady
	case "Failed":
		return ServiceFailed
	default:
		return ServiceUnknown
	}
}

// ParseAgentStatus maps a service-reported status string to an
// AgentStatus. Unrecognized values map to AgentUnknown.
func ParseAgentStatus(s string) AgentStatus {
	switch s {
	case "Pending":
		return AgentPending
	case "Ready":
		return AgentReady
	case "Failed":
		return AgentFailed
	default:
		return AgentUnknown
	}
}

// CombinedState is the latest-known triple of facet statuses evaluated
// together by the readiness state machine. Compared with == to suppress
// consecutive duplicates.
type CombinedState struct {
	Application ApplicationStatus
	Service     ServiceStatus
	Agent       AgentStatus
}

// String renders the triple for progress output.
func (c CombinedState) String() string {
	return fmt.Sprintf("application=%s service=%s agent=%s", c.Application, c.Service, c.Agent)
}

// Package ports defines the interfaces (ports) that connect the
// orchestration core to infrastructure adapters.
//
// Ports are the boundary between the readiness-orchestration engine and
// the outside world: they state what the core needs without saying how
// it is fulfilled.
//
// # Port Interfaces
//
//   - [DeploymentClient]: Create, update, delete, and poll a remote mesh deployment
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//   - [Logger]: Structured logging abstraction (alias of pkg/log)
//
// The core packages (internal/app, internal/poll, internal/mux) depend
// only on these interfaces. Adapters in internal/adapters implement
// them against concrete infrastructure (HTTP/JSON, zerolog).
package ports

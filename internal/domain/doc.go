// Package domain holds the value types of the mesh deployment domain:
// the three facet status enumerations, the combined readiness state,
// the deployment spec, and the sentinel errors returned by the public
// API.
//
// Everything here is an immutable value. Status values are produced by
// polling and never mutated; CombinedState is ephemeral and exists only
// as the latest triple seen by the readiness state machine.
package domain

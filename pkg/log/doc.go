// Package log defines the structured logging contract used across
// meshdeploy.
//
// The core packages never log through a concrete library; they accept a
// [Logger] and emit key-value [Field]s. The zerolog adapter in this
// package is what the CLI wires in; embedders can pass any
// implementation of their own (or nothing, in which case a no-op
// logger is used).
package log

package ports

import "github.com/meshkit/meshdeploy/pkg/log"

// Logger is the structured logging port. It aliases pkg/log.Logger so
// internal packages can accept a logger without importing the public
// package directly at every call site.
type Logger = log.Logger

// Field is a structured log field.
type Field = log.Field

// Field constructors, re-exported for the internal packages.
var (
	String   = log.String
	Int      = log.Int
	Bool     = log.Bool
	Duration = log.Duration
	Stringer = log.Stringer
	Err      = log.Err
	Any      = log.Any
)

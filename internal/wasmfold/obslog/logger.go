// Package obslog provides the structured logger the public wasmfold
// package writes through. The teacher's own code logs through
// fmt/log; wasmfold standardizes on zerolog instead, the structured
// logger the rest of the retrieved gnark-crypto-based services in
// this ecosystem already depend on.
package obslog

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New builds a component-scoped logger writing to w with a "component"
// field set, so prover/verifier/setup logs can be filtered independently.
func New(w io.Writer, component string) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Str("component", component).Logger()
}

// Default is the process-wide logger writing to stderr; pkg/wasmfold
// derives its own logger from it.
var Default = New(os.Stderr, "wasmfold")

// SetLevel adjusts the global minimum level every obslog.Logger
// respects. Nothing in this module calls it.
func SetLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

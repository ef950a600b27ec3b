package wasmfold

import "github.com/wasmfold/wasmfold/internal/wasmfold/utils"

// Config is the public alias for the prover configuration: step
// circuit sizes, curve cycle id, hiding mode, and the resource bound
// on traced steps.
type Config = utils.ProverConfig

// DefaultConfig returns the configuration wasmfold ships with.
func DefaultConfig() *Config {
	return utils.DefaultProverConfig()
}

package wasmfold

import (
	"github.com/wasmfold/wasmfold/internal/wasmfold/curve"
	"github.com/wasmfold/wasmfold/internal/wasmfold/nivc"
	"github.com/wasmfold/wasmfold/internal/wasmfold/setup"
	"github.com/wasmfold/wasmfold/internal/wasmfold/trace"
)

// FieldElement is the public alias for a primary-field scalar, the
// public counterpart of the teacher's exported core.FieldElement.
type FieldElement = curve.Element

// Module is the public alias for a branch-resolved engine module
// (spec §1/§6). Constructing one from raw WASM bytes is an external
// collaborator's job; wasmfold only consumes the result.
type Module = trace.Module

// Instruction is the public alias for one resolved instruction.
type Instruction = trace.Instruction

// Invocation is the public alias for an (entry, args, host) tuple.
type Invocation = trace.Invocation

// HostIO is the public alias for the optional host-capability channel.
type HostIO = trace.HostIO

// PublicParams is the public alias for setup's derived constants.
type PublicParams = setup.PublicParameters

// PublicInstance is the public alias for the claim a proof attests to.
type PublicInstance = nivc.PublicInstance

// Proof is the compressed, persisted result of Prove: the SNARK plus
// the public instance it was generated against, so Verify never needs
// a side channel to know what claim it is checking.
type Proof struct {
	SNARK    curve.SNARK    `json:"snark"`
	Instance PublicInstance `json:"instance"`
}

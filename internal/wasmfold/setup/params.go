// Package setup implements the public-parameter generation component
// (spec component G): deriving and validating the fixed constants a
// proving/verifying key pair for a specific (S_exec, S_mcc, curve
// cycle, opcode set version) configuration, and serializing them to a
// self-describing byte blob.
package setup

import (
	"fmt"

	"github.com/wasmfold/wasmfold/internal/wasmfold/curve"
)

// OpcodeSetVersion pins the supported opcode family table a
// PublicParameters instance was generated against; Validate rejects
// parameters carrying any other version. A proof does not record the
// version or the parameters' digest, so Verify does not check a proof
// against the version it was made under.
const OpcodeSetVersion = 1

// PublicParameters is spec §4.G's output: the fixed constants both
// prover and verifier need, independent of any specific program.
type PublicParameters struct {
	SExec            int
	SMcc             int
	CurveCycleID     string
	OpcodeSetVersion int
	FoldingKey       curve.FoldingKey
}

// DefaultCurveCycleID names the curve cycle wasmfold's Field/DualField
// adapter is built on (spec §4.A).
const DefaultCurveCycleID = "bn254-bw6761"

// Setup derives PublicParameters for fixed step-circuit sizes,
// mirroring the teacher's DefaultSTARKParameters/NewSTARKParameters
// pair: a sane default plus a constructor for explicit sizing.
func Setup(sExec, sMcc int) (PublicParameters, error) {
	pp := PublicParameters{
		SExec:            sExec,
		SMcc:             sMcc,
		CurveCycleID:      DefaultCurveCycleID,
		OpcodeSetVersion: OpcodeSetVersion,
		FoldingKey:       curve.FoldingKey{Digest: deriveKeyDigest(sExec, sMcc)},
	}
	if err := pp.Validate(); err != nil {
		return PublicParameters{}, err
	}
	return pp, nil
}

// DefaultPublicParameters returns the parameters wasmfold ships with:
// 8 opcode steps and 8 memory entries folded per circuit invocation,
// a size chosen so a single-page program folds in a handful of steps
// without forcing tiny circuits for trivial programs.
func DefaultPublicParameters() (PublicParameters, error) {
	return Setup(8, 8)
}

// Validate checks the parameters are internally consistent.
func (pp PublicParameters) Validate() error {
	if pp.SExec <= 0 {
		return fmt.Errorf("setup: S_exec must be positive, got %d", pp.SExec)
	}
	if pp.SMcc <= 0 {
		return fmt.Errorf("setup: S_mcc must be positive, got %d", pp.SMcc)
	}
	if pp.CurveCycleID == "" {
		return fmt.Errorf("setup: curve cycle id must not be empty")
	}
	if pp.OpcodeSetVersion != OpcodeSetVersion {
		return fmt.Errorf("setup: unsupported opcode set version %d, expected %d", pp.OpcodeSetVersion, OpcodeSetVersion)
	}
	return nil
}

// deriveKeyDigest derives a stable folding-key digest from the chunk
// sizes so two Setup calls with the same sizes always produce
// identical parameters (spec §8 determinism property).
func deriveKeyDigest(sExec, sMcc int) [32]byte {
	tr := curve.NewTranscript()
	h := tr.Hash([]curve.Element{curve.New(uint64(sExec)), curve.New(uint64(sMcc)), curve.New(OpcodeSetVersion)})
	return curve.DigestBytes(h)
}

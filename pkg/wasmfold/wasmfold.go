// Package wasmfold is the public API of a zkVM that proves correct
// WASM execution via NIVC folding over a curve cycle. Setup derives
// public parameters for a chosen circuit sizing; Prove traces a
// module invocation and folds it into a compressed proof; Verify
// checks a proof against its claimed public instance.
package wasmfold

import (
	"context"
	"errors"

	"github.com/wasmfold/wasmfold/internal/wasmfold/curve"
	"github.com/wasmfold/wasmfold/internal/wasmfold/mcc"
	"github.com/wasmfold/wasmfold/internal/wasmfold/nivc"
	"github.com/wasmfold/wasmfold/internal/wasmfold/obslog"
	"github.com/wasmfold/wasmfold/internal/wasmfold/setup"
	"github.com/wasmfold/wasmfold/internal/wasmfold/trace"
)

var log = obslog.Default.With().Str("component", "wasmfold-pkg").Logger()

// Setup derives PublicParams for the given Config (spec component G).
func Setup(cfg *Config) (PublicParams, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return PublicParams{}, wrapf(ErrModule, err, "invalid prover configuration")
	}
	pp, err := setup.Setup(cfg.SExec, cfg.SMcc)
	if err != nil {
		return PublicParams{}, wrapf(ErrModule, err, "setup failed")
	}
	return pp, nil
}

// Prove traces invocation against module, then folds the resulting
// execution trace and memory log into a compressed proof (spec
// components B through F, end to end).
func Prove(ctx context.Context, pp PublicParams, module *Module, inv Invocation) (*Proof, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrapf(ErrCancelled, err, "prove cancelled before starting")
	}

	entryIdx, err := module.EntryResolution(inv.EntryFunction)
	if err != nil {
		return nil, wrapf(ErrModule, err, "failed to resolve entry function")
	}

	steps, outcome, err := trace.Run(module, inv)
	if err != nil {
		var unsupported *trace.UnsupportedOpcodeError
		if errors.As(err, &unsupported) {
			return nil, wrapf(ErrUnsupportedOpcode, err, "unsupported opcode reached")
		}
		return nil, wrapf(ErrModule, err, "trace.Run failed")
	}

	entries := mcc.EntriesFromSteps(steps)
	memTable := mcc.NewTable(entries)

	folding := curve.Folding(curve.NonHiding{})
	driver, err := nivc.NewDriver(folding, pp.SExec, pp.SMcc)
	if err != nil {
		return nil, wrapf(ErrModule, err, "failed to build NIVC driver")
	}

	tr := curve.NewTranscript()
	instance := nivc.PublicInstance{
		ModuleDigest:        curve.DigestBytes(module.Digest(tr)),
		EntryDigest:         curve.DigestBytes(trace.EntryDigest(tr, entryIdx)),
		ArgDigest:           curve.DigestBytes(trace.ArgDigest(tr, inv.Args)),
		InitialMemoryDigest: curve.DigestBytes(memTable.InitialDigest(tr)),
		FinalMemoryDigest:   curve.DigestBytes(memTable.FinalDigest(tr)),
		StepCount:           uint64(len(steps)),
		TrapFlag:            outcome.Trapped,
	}

	if err := ctx.Err(); err != nil {
		return nil, wrapf(ErrCancelled, err, "prove cancelled before folding")
	}

	snark, _, err := driver.Run(pp.FoldingKey, instance, steps, entries)
	if err != nil {
		return nil, wrapf(ErrWitnessInconsistent, err, "folding failed")
	}

	log.Info().Uint64("steps", instance.StepCount).Bool("trapped", instance.TrapFlag).Msg("proof generated")
	return &Proof{SNARK: snark, Instance: instance}, nil
}

// Verify checks proof against pp. It first checks the SNARK's own
// accumulator digest is still consistent with its compressed witness
// (ReasonAccumulatorMismatch on mismatch — spec §8 scenario 6: "corrupted
// proof, one scalar flipped"), then recomputes the proof's public
// instance digest and checks it against the digest the Join transition
// folded into the SNARK's compressed witness (ReasonPublicInstanceMismatch
// on mismatch — spec §8: "flipping any bit of public_instance causes
// verify to return false"). The folding/SNARK compressor's internal
// accumulator check beyond that remains a black box per spec §4.A.
func Verify(pp PublicParams, proof *Proof) error {
	if proof == nil {
		return &Error{Code: ErrInvalidProof, Reason: ReasonUnspecified, Message: "nil proof"}
	}
	if err := pp.Validate(); err != nil {
		return wrapf(ErrInvalidProof, err, "invalid public parameters")
	}
	if proof.SNARK.AccumulatorDigest == ([32]byte{}) {
		return &Error{Code: ErrInvalidProof, Reason: ReasonDigestMismatch, Message: "empty accumulator digest"}
	}
	if !proof.SNARK.VerifyIntegrity() {
		return &Error{Code: ErrInvalidProof, Reason: ReasonAccumulatorMismatch, Message: "accumulator digest does not match the proof's compressed witness"}
	}

	embedded, err := proof.SNARK.EmbeddedPublicInstanceDigest()
	if err != nil {
		return wrapf(ErrInvalidProof, err, "failed to decode compressed witness")
	}
	expected := proof.Instance.Digest(curve.NewTranscript())
	if !embedded.Equal(expected) {
		return &Error{Code: ErrInvalidProof, Reason: ReasonPublicInstanceMismatch, Message: "public instance digest does not match the proof's compressed witness"}
	}
	return nil
}

// Digest returns a stable fingerprint of a proof's public instance,
// suitable for indexing proofs by claim without re-parsing the blob.
func Digest(proof *Proof) [32]byte {
	tr := curve.NewTranscript()
	return curve.DigestBytes(proof.Instance.Digest(tr))
}

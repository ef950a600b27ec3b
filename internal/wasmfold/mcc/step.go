package mcc

import (
	"fmt"

	"github.com/wasmfold/wasmfold/internal/wasmfold/curve"
)

// StepCircuit packs SMcc consecutive address-sorted entries into one
// folded relation (spec §4.D/§4.E: "MCC-step circuit folding S_mcc
// entries, threading address-continuity witness across step
// boundaries"). The continuity witness is the inverse of the address
// delta between consecutive rows (zero when the address repeats), the same
// Bezout-relation device the teacher's RAM table uses
// (inverseRampDiff/bezoutCoeffPoly columns) to prove contiguous
// regions without sorting networks inside the circuit itself.
type StepCircuit struct {
	SMcc int
}

func NewStepCircuit(sMcc int) (*StepCircuit, error) {
	if sMcc <= 0 {
		return nil, fmt.Errorf("mcc: S_mcc must be positive, got %d", sMcc)
	}
	return &StepCircuit{SMcc: sMcc}, nil
}

// Boundary is the public wire carried between consecutive MCC step
// folds: the last address/timestamp seen and the running permutation
// product so far.
type Boundary struct {
	LastAddress   curve.Element
	LastTimestamp curve.Element
	RunningProduct curve.Element
}

// Assign folds up to SMcc sorted entries starting from boundary,
// returning the updated boundary and the continuity witness for each
// entry transition.
func (c *StepCircuit) Assign(p PermutationArgument, boundary Boundary, entries []Entry) (Boundary, []curve.Element, error) {
	if len(entries) > c.SMcc {
		return Boundary{}, nil, fmt.Errorf("mcc: got %d entries, StepCircuit only packs %d", len(entries), c.SMcc)
	}

	witness := make([]curve.Element, 0, len(entries))
	lastAddr := boundary.LastAddress
	lastTS := boundary.LastTimestamp
	product := boundary.RunningProduct

	for _, e := range entries {
		addr := curve.New(e.Address)
		diff := addr.Sub(lastAddr)
		inv, err := continuityWitness(diff)
		if err != nil {
			return Boundary{}, nil, err
		}
		witness = append(witness, inv)

		product = product.Mul(e.fingerprint(p.Gamma))
		lastAddr = addr
		lastTS = curve.New(e.Timestamp)
	}

	return Boundary{LastAddress: lastAddr, LastTimestamp: lastTS, RunningProduct: product}, witness, nil
}

// continuityWitness returns zero for a same-address run's zero diff
// (a flag the circuit can cheaply check is zero-or-valid-inverse)
// or the diff's own inverse when addresses change, matching the
// teacher's "inverse of (ramPointer' - ramPointer)" column.
func continuityWitness(diff curve.Element) (curve.Element, error) {
	if diff.Equal(curve.Zero) {
		return curve.Zero, nil
	}
	inv, err := diff.Invert()
	if err != nil {
		return curve.Element{}, fmt.Errorf("mcc: failed to invert address diff: %w", err)
	}
	return inv, nil
}

package circuits

import (
	"fmt"

	"github.com/wasmfold/wasmfold/internal/wasmfold/curve"
	"github.com/wasmfold/wasmfold/internal/wasmfold/trace"
)

// StepCircuit packs exactly SExec opcode steps into a single relation
// (spec §4.D: "packs exactly S_exec gadgets sequentially"), exposing
// only the boundary public wires to the fold — the per-step
// intermediate state never leaves this package.
type StepCircuit struct {
	SExec int
}

// NewStepCircuit validates the fixed per-circuit step count. SExec
// must be positive; zero or negative values would make Assign's
// chunking loop either no-op or misbehave.
func NewStepCircuit(sExec int) (*StepCircuit, error) {
	if sExec <= 0 {
		return nil, fmt.Errorf("circuits: S_exec must be positive, got %d", sExec)
	}
	return &StepCircuit{SExec: sExec}, nil
}

// Assign folds SExec consecutive steps (padding with NO-OPs if the
// tail chunk is short) into one boundary-to-boundary Assignment, the
// unit the NIVC driver offers to Folding.Fold once per chunk.
func (c *StepCircuit) Assign(tr *curve.Transcript, boundary Wires, steps []trace.Step) (Assignment, error) {
	if len(steps) > c.SExec {
		return Assignment{}, fmt.Errorf("circuits: got %d steps, StepCircuit only packs %d", len(steps), c.SExec)
	}
	padded := trace.PadToMultiple(append([]trace.Step{}, steps...), c.SExec)

	stackHash := boundary.StackHash
	memOpHash := boundary.MemOpHash
	var witness []curve.Element
	var last Wires = boundary

	for _, step := range padded {
		gadget, err := Select(step)
		if err != nil {
			return Assignment{}, err
		}
		assigned, err := gadget.Assign(tr, stackHash, memOpHash, step)
		if err != nil {
			return Assignment{}, err
		}
		stackHash = assigned.Public.StackHash
		memOpHash = assigned.Public.MemOpHash
		witness = append(witness, assigned.Witness...)
		last = assigned.Public
	}

	return Assignment{
		Public: Wires{
			PCBefore:   boundary.PCBefore,
			PCAfter:    last.PCAfter,
			StackHash:  stackHash,
			MemOpHash:  memOpHash,
			StepIndex:  last.StepIndex,
			TrapSticky: last.TrapSticky,
		},
		Witness: witness,
	}, nil
}

package nivc

import (
	"fmt"

	"github.com/wasmfold/wasmfold/internal/wasmfold/circuits"
	"github.com/wasmfold/wasmfold/internal/wasmfold/curve"
	"github.com/wasmfold/wasmfold/internal/wasmfold/mcc"
	"github.com/wasmfold/wasmfold/internal/wasmfold/trace"
)

// Driver runs the Init -> ExecFold(i) -> MccFold(j) -> Join ->
// Compress state machine (spec §4.F), threading one folding
// accumulator through both the execution-step and MCC-step circuits
// before compressing to a final SNARK.
type Driver struct {
	folding  curve.Folding
	execStep *circuits.StepCircuit
	mccStep  *mcc.StepCircuit
	tr       *curve.Transcript
}

// NewDriver constructs a driver for fixed chunk sizes SExec/SMcc and a
// Folding instantiation (hiding or non-hiding, spec §4.A).
func NewDriver(folding curve.Folding, sExec, sMcc int) (*Driver, error) {
	execStep, err := circuits.NewStepCircuit(sExec)
	if err != nil {
		return nil, err
	}
	mccStep, err := mcc.NewStepCircuit(sMcc)
	if err != nil {
		return nil, err
	}
	return &Driver{folding: folding, execStep: execStep, mccStep: mccStep, tr: curve.NewTranscript()}, nil
}

// Run executes the full state machine against an already-traced
// execution (steps) and its derived memory log (entries), producing
// the final SNARK and the joined accumulator state it was compressed from.
func (d *Driver) Run(pk curve.FoldingKey, pi PublicInstance, steps []trace.Step, entries []mcc.Entry) (curve.SNARK, *Accumulator, error) {
	acc, err := d.folding.New(pk)
	if err != nil {
		return curve.SNARK{}, nil, fmt.Errorf("nivc: Init failed: %w", err)
	}
	state := &Accumulator{inner: acc, Phase: PhaseInit}

	state, err = d.execFold(state, steps)
	if err != nil {
		return curve.SNARK{}, state, err
	}

	state, err = d.mccFold(state, entries)
	if err != nil {
		return curve.SNARK{}, state, err
	}

	state, err = d.join(state, pi, steps, entries)
	if err != nil {
		return curve.SNARK{}, state, err
	}

	snark, err := d.compress(state)
	if err != nil {
		return curve.SNARK{}, state, err
	}
	return snark, state, nil
}

// execFold folds the execution trace in SExec-sized chunks (ExecFold(i)).
func (d *Driver) execFold(state *Accumulator, steps []trace.Step) (*Accumulator, error) {
	if state.Phase != PhaseInit {
		return state, fmt.Errorf("nivc: execFold called from phase %s, want Init", state.Phase)
	}

	boundary := circuits.Wires{StackHash: curve.Zero, MemOpHash: curve.Zero}
	for i := 0; i < len(steps); i += d.execStep.SExec {
		end := i + d.execStep.SExec
		if end > len(steps) {
			end = len(steps)
		}
		chunk := steps[i:end]

		assigned, err := d.execStep.Assign(d.tr, boundary, chunk)
		if err != nil {
			return state, fmt.Errorf("nivc: ExecFold(%d) failed: %w", i/d.execStep.SExec, err)
		}
		boundary = assigned.Public

		acc, err := d.folding.Fold(state.inner, curve.StepInstance{
			PublicInputs: wiresToElements(assigned.Public),
			Witness:      assigned.Witness,
		})
		if err != nil {
			return state, fmt.Errorf("nivc: ExecFold(%d) fold failed: %w", i/d.execStep.SExec, err)
		}
		state = &Accumulator{inner: acc, Phase: PhaseExecFold}
	}
	return state, nil
}

// mccFold folds the address-sorted memory log in SMcc-sized chunks
// (MccFold(j)), after the execution phase has produced a running
// accumulator to extend.
func (d *Driver) mccFold(state *Accumulator, entries []mcc.Entry) (*Accumulator, error) {
	if state.Phase != PhaseExecFold && len(entries) > 0 {
		return state, fmt.Errorf("nivc: mccFold called from phase %s, want ExecFold", state.Phase)
	}

	table := mcc.NewTable(entries)
	if err := table.CheckLastWriterWins(); err != nil {
		return state, fmt.Errorf("nivc: witness inconsistent: %w", err)
	}

	var perm mcc.PermutationArgument
	programCommit, sortedCommit, err := table.Commit(d.tr)
	if err != nil {
		return state, fmt.Errorf("nivc: failed to commit memory log: %w", err)
	}
	if programCommit != nil {
		perm = mcc.DeriveChallenge(d.tr, programCommit.Root(), sortedCommit.Root())
	} else {
		perm = mcc.DeriveChallenge(d.tr, [32]byte{}, [32]byte{})
	}
	if !perm.Verify(table) {
		return state, fmt.Errorf("nivc: witness inconsistent: program-order and sorted memory logs are not a permutation of each other")
	}

	sorted := table.SortedOrder()
	boundary := mcc.Boundary{RunningProduct: curve.One}
	for i := 0; i < len(sorted); i += d.mccStep.SMcc {
		end := i + d.mccStep.SMcc
		if end > len(sorted) {
			end = len(sorted)
		}
		chunk := sorted[i:end]

		nextBoundary, witness, err := d.mccStep.Assign(perm, boundary, chunk)
		if err != nil {
			return state, fmt.Errorf("nivc: MccFold(%d) failed: %w", i/d.mccStep.SMcc, err)
		}
		boundary = nextBoundary

		acc, err := d.folding.Fold(state.inner, curve.StepInstance{
			PublicInputs: []curve.Element{boundary.LastAddress, boundary.RunningProduct},
			Witness:      witness,
		})
		if err != nil {
			return state, fmt.Errorf("nivc: MccFold(%d) fold failed: %w", i/d.mccStep.SMcc, err)
		}
		state = &Accumulator{inner: acc, Phase: PhaseMccFold}
	}
	if state.Phase != PhaseMccFold {
		state.Phase = PhaseMccFold
	}
	return state, nil
}

// join binds the execution-fold and MCC-fold accumulators together
// before absorbing the public instance digest (spec §4.F: "Join ->
// bind the two accumulators by asserting memop_hash_out_exec ==
// memop_root_mcc"). The execution side's memory log is re-derived
// directly from steps (not taken on faith from the caller-supplied
// entries), so a memory log that was tampered with or substituted
// between tracing and folding is caught here rather than silently
// producing a proof for the wrong claim.
func (d *Driver) join(state *Accumulator, pi PublicInstance, steps []trace.Step, entries []mcc.Entry) (*Accumulator, error) {
	if state.Phase != PhaseMccFold {
		return state, fmt.Errorf("nivc: join called from phase %s, want MccFold", state.Phase)
	}

	execRoot := mcc.ProgramOrderDigest(d.tr, mcc.EntriesFromSteps(steps))
	mccRoot := mcc.ProgramOrderDigest(d.tr, entries)
	if !execRoot.Equal(mccRoot) {
		return state, fmt.Errorf("nivc: witness inconsistent: memop_hash_out_exec != memop_root_mcc")
	}

	digest := pi.Digest(d.tr)
	acc, err := d.folding.Fold(state.inner, curve.StepInstance{PublicInputs: []curve.Element{digest, execRoot}})
	if err != nil {
		return state, fmt.Errorf("nivc: Join failed: %w", err)
	}
	return &Accumulator{inner: acc, Phase: PhaseJoin}, nil
}

// compress finalizes the joined accumulator into a SNARK.
func (d *Driver) compress(state *Accumulator) (curve.SNARK, error) {
	if state.Phase != PhaseJoin {
		return curve.SNARK{}, fmt.Errorf("nivc: compress called from phase %s, want Join", state.Phase)
	}
	return d.folding.Finalize(state.inner)
}

func wiresToElements(w circuits.Wires) []curve.Element {
	return []curve.Element{w.PCBefore, w.PCAfter, w.StackHash, w.MemOpHash, w.StepIndex, w.TrapSticky}
}

package nivc

import (
	"testing"

	"github.com/wasmfold/wasmfold/internal/wasmfold/curve"
	"github.com/wasmfold/wasmfold/internal/wasmfold/mcc"
	"github.com/wasmfold/wasmfold/internal/wasmfold/trace"
)

func TestDriverRunEndToEnd(t *testing.T) {
	d, err := NewDriver(curve.NonHiding{}, 4, 4)
	if err != nil {
		t.Fatalf("NewDriver failed: %v", err)
	}

	steps := []trace.Step{
		{
			Opcode: trace.OpcodeI32Store, PCBefore: 0, PCAfter: 1,
			MemOps: []trace.MemOp{{Address: 0, ValueBefore: curve.Zero, ValueAfter: curve.New(7), IsWrite: true}},
		},
		{Opcode: trace.OpcodeI32Const, PCBefore: 1, PCAfter: 2, Pushes: []curve.Element{curve.New(35)}},
	}

	// The entries offered to the MCC fold must be exactly what the
	// traced steps recorded — EntriesFromSteps is the single source
	// both sides derive from.
	entries := mcc.EntriesFromSteps(steps)

	pi := PublicInstance{StepCount: uint64(len(steps))}

	snark, acc, err := d.Run(curve.FoldingKey{}, pi, steps, entries)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if acc.Phase != PhaseJoin {
		t.Errorf("expected final phase Join, got %s", acc.Phase)
	}
	if snark.Hiding {
		t.Errorf("expected non-hiding SNARK")
	}
}

// TestDriverRunRejectsMismatchedMemoryLog proves the Join transition's
// binding check: entries that do not match what the traced steps
// actually did (a phantom write the execution side never performed)
// must fail, not silently produce a proof for the wrong claim.
func TestDriverRunRejectsMismatchedMemoryLog(t *testing.T) {
	d, err := NewDriver(curve.NonHiding{}, 4, 4)
	if err != nil {
		t.Fatalf("NewDriver failed: %v", err)
	}

	steps := []trace.Step{
		{Opcode: trace.OpcodeI32Const, PCBefore: 0, PCAfter: 1, Pushes: []curve.Element{curve.New(7)}},
		{Opcode: trace.OpcodeI32Const, PCBefore: 1, PCAfter: 2, Pushes: []curve.Element{curve.New(35)}},
	}

	phantomEntries := []mcc.Entry{
		{Address: 0, Timestamp: 0, Value: curve.New(42), IsWrite: true, Kind: mcc.KindAccess},
	}

	pi := PublicInstance{StepCount: uint64(len(steps))}

	if _, _, err := d.Run(curve.FoldingKey{}, pi, steps, phantomEntries); err == nil {
		t.Errorf("expected Run to reject a memory log that does not match the traced steps")
	}
}

package circuits

import (
	"testing"

	"github.com/wasmfold/wasmfold/internal/wasmfold/curve"
	"github.com/wasmfold/wasmfold/internal/wasmfold/trace"
)

func TestSelectCoversEveryFamily(t *testing.T) {
	cases := []trace.Opcode{
		trace.OpcodeI32Add, trace.OpcodeI32Eq, trace.OpcodeBr,
		trace.OpcodeI32Load, trace.OpcodeLocalGet, trace.OpcodeI32Const,
	}
	for _, op := range cases {
		if _, err := Select(trace.Step{Opcode: op}); err != nil {
			t.Errorf("Select(%s) failed: %v", op, err)
		}
	}
}

func TestSelectRejectsUnsupported(t *testing.T) {
	if _, err := Select(trace.Step{Opcode: 0xfc}); err == nil {
		t.Errorf("expected error for unsupported opcode")
	}
}

func TestStepCircuitAssignDeterministic(t *testing.T) {
	sc, err := NewStepCircuit(2)
	if err != nil {
		t.Fatalf("NewStepCircuit failed: %v", err)
	}

	steps := []trace.Step{
		{Opcode: trace.OpcodeI32Const, Pushes: []curve.Element{curve.New(7)}},
	}
	boundary := Wires{StackHash: curve.Zero, MemOpHash: curve.Zero}

	tr1 := curve.NewTranscript()
	a1, err := sc.Assign(tr1, boundary, steps)
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	tr2 := curve.NewTranscript()
	a2, err := sc.Assign(tr2, boundary, steps)
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	if !a1.Public.StackHash.Equal(a2.Public.StackHash) {
		t.Errorf("StepCircuit.Assign is not deterministic")
	}
}

func TestStepCircuitRejectsOversizedChunk(t *testing.T) {
	sc, _ := NewStepCircuit(1)
	steps := []trace.Step{{Opcode: trace.OpcodeNop}, {Opcode: trace.OpcodeNop}}
	if _, err := sc.Assign(curve.NewTranscript(), Wires{}, steps); err == nil {
		t.Errorf("expected error for oversized chunk")
	}
}

package wasmfold

import (
	"context"
	"testing"

	"github.com/wasmfold/wasmfold/internal/wasmfold/trace"
)

func buildAdderModule(a, b int64) *Module {
	fn := trace.Function{
		Type: trace.FuncType{Results: 1},
		Instructions: []trace.Instruction{
			{Opcode: trace.OpcodeI32Const, Operand: a},
			{Opcode: trace.OpcodeI32Const, Operand: b},
			{Opcode: trace.OpcodeI32Add},
			{Opcode: trace.OpcodeReturn},
		},
	}
	return trace.NewModule([]trace.Function{fn}, nil, 1, 1, map[string]int{"main": 0})
}

func TestProveAndVerifyRoundTrip(t *testing.T) {
	pp, err := Setup(DefaultConfig().WithSExec(2).WithSMcc(2))
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	module := buildAdderModule(3, 4)
	proof, err := Prove(context.Background(), pp, module, Invocation{EntryFunction: "main"})
	if err != nil {
		t.Fatalf("Prove failed: %v", err)
	}

	if err := Verify(pp, proof); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if proof.Instance.StepCount != 4 {
		t.Errorf("expected step count 4, got %d", proof.Instance.StepCount)
	}
}

func TestVerifyRejectsNilProof(t *testing.T) {
	pp, _ := Setup(DefaultConfig())
	if err := Verify(pp, nil); err == nil {
		t.Errorf("expected error verifying a nil proof")
	}
}

func TestProveCancelledContext(t *testing.T) {
	pp, _ := Setup(DefaultConfig().WithSExec(2).WithSMcc(2))
	module := buildAdderModule(1, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Prove(ctx, pp, module, Invocation{EntryFunction: "main"}); err == nil {
		t.Errorf("expected cancellation error")
	}
}

func TestVerifyRejectsTamperedPublicInstance(t *testing.T) {
	pp, err := Setup(DefaultConfig().WithSExec(2).WithSMcc(2))
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	module := buildAdderModule(3, 4)
	proof, err := Prove(context.Background(), pp, module, Invocation{EntryFunction: "main"})
	if err != nil {
		t.Fatalf("Prove failed: %v", err)
	}

	proof.Instance.StepCount++
	err = Verify(pp, proof)
	if err == nil {
		t.Fatalf("expected Verify to reject a tampered public instance")
	}
	wantErr, ok := err.(*Error)
	if !ok || wantErr.Reason != ReasonPublicInstanceMismatch {
		t.Errorf("expected ReasonPublicInstanceMismatch, got %v", err)
	}
}

func TestVerifyRejectsCorruptedCompressedWitness(t *testing.T) {
	pp, err := Setup(DefaultConfig().WithSExec(2).WithSMcc(2))
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	module := buildAdderModule(3, 4)
	proof, err := Prove(context.Background(), pp, module, Invocation{EntryFunction: "main"})
	if err != nil {
		t.Fatalf("Prove failed: %v", err)
	}
	if len(proof.SNARK.CompressedWitness) == 0 {
		t.Fatalf("expected a non-empty compressed witness")
	}

	proof.SNARK.CompressedWitness[0] ^= 0xFF
	err = Verify(pp, proof)
	if err == nil {
		t.Fatalf("expected Verify to reject a corrupted compressed witness")
	}
	wantErr, ok := err.(*Error)
	if !ok || wantErr.Reason != ReasonAccumulatorMismatch {
		t.Errorf("expected ReasonAccumulatorMismatch, got %v", err)
	}
}

func TestDigestIsStable(t *testing.T) {
	pp, _ := Setup(DefaultConfig().WithSExec(2).WithSMcc(2))
	module := buildAdderModule(10, 20)
	proof, err := Prove(context.Background(), pp, module, Invocation{EntryFunction: "main"})
	if err != nil {
		t.Fatalf("Prove failed: %v", err)
	}
	d1 := Digest(proof)
	d2 := Digest(proof)
	if d1 != d2 {
		t.Errorf("Digest is not stable across calls")
	}
}

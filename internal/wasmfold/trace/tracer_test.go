package trace

import "testing"

// buildAdderModule returns a module exporting "main" that computes
// (a + b) and returns it, exercising constant push, i32.add and an
// explicit return.
func buildAdderModule(a, b int64) *Module {
	fn := Function{
		Type: FuncType{Params: 0, Results: 1},
		Instructions: []Instruction{
			{Opcode: OpcodeI32Const, Operand: a},
			{Opcode: OpcodeI32Const, Operand: b},
			{Opcode: OpcodeI32Add},
			{Opcode: OpcodeReturn},
		},
	}
	return NewModule([]Function{fn}, nil, 1, 1, map[string]int{"main": 0})
}

func TestRunAdder(t *testing.T) {
	m := buildAdderModule(7, 35)
	steps, outcome, err := Run(m, Invocation{EntryFunction: "main"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if outcome.Trapped {
		t.Fatalf("unexpected trap: %s", outcome.TrapKind)
	}
	if len(steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(steps))
	}
	if len(outcome.ReturnVals) != 1 || outcome.ReturnVals[0].Value() != 42 {
		t.Fatalf("expected return value 42, got %+v", outcome.ReturnVals)
	}
}

func TestRunDivideByZeroTraps(t *testing.T) {
	fn := Function{
		Instructions: []Instruction{
			{Opcode: OpcodeI32Const, Operand: 10},
			{Opcode: OpcodeI32Const, Operand: 0},
			{Opcode: OpcodeI32DivS},
		},
	}
	m := NewModule([]Function{fn}, nil, 1, 1, map[string]int{"main": 0})

	steps, outcome, err := Run(m, Invocation{EntryFunction: "main"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !outcome.Trapped || outcome.TrapKind != "DivideByZero" {
		t.Fatalf("expected DivideByZero trap, got %+v", outcome)
	}
	last := steps[len(steps)-1]
	if !last.Trapped || !last.TrapSticky {
		t.Fatalf("last step should be sticky-trapped, got %+v", last)
	}
	if last.PCBefore != last.PCAfter {
		t.Fatalf("trapped step must leave pc unchanged: before=%d after=%d", last.PCBefore, last.PCAfter)
	}
}

func TestRunMemoryStoreThenLoad(t *testing.T) {
	fn := Function{
		Instructions: []Instruction{
			{Opcode: OpcodeI32Const, Operand: 99},
			{Opcode: OpcodeI32Store, Operand: 0},
			{Opcode: OpcodeI32Load, Operand: 0},
			{Opcode: OpcodeReturn},
		},
	}
	m := NewModule([]Function{fn}, nil, 1, 1, map[string]int{"main": 0})

	steps, outcome, err := Run(m, Invocation{EntryFunction: "main"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if outcome.Trapped {
		t.Fatalf("unexpected trap: %s", outcome.TrapKind)
	}
	if outcome.ReturnVals[0].Value() != 99 {
		t.Fatalf("expected loaded value 99, got %v", outcome.ReturnVals[0].Value())
	}

	storeStep := steps[1]
	if len(storeStep.MemOps) != 1 || !storeStep.MemOps[0].IsWrite {
		t.Fatalf("expected one write mem op, got %+v", storeStep.MemOps)
	}
	loadStep := steps[2]
	if len(loadStep.MemOps) != 1 || loadStep.MemOps[0].IsWrite {
		t.Fatalf("expected one read mem op, got %+v", loadStep.MemOps)
	}
}

func TestPadToMultiple(t *testing.T) {
	steps := []Step{{PCAfter: 3, StepIndex: 0}, {PCAfter: 4, StepIndex: 1}}
	padded := PadToMultiple(steps, 4)
	if len(padded)%4 != 0 {
		t.Fatalf("expected length multiple of 4, got %d", len(padded))
	}
	for _, s := range padded[2:] {
		if !s.IsNoOp() {
			t.Errorf("padding step is not a no-op: %+v", s)
		}
	}
}

package trace

import "github.com/wasmfold/wasmfold/internal/wasmfold/curve"

// MaxMemOpsPerStep is the fixed small K from spec §3. Every supported
// memory opcode emits at most one MemOp, so no step reaches this bound
// and the tracer has no step-splitting logic.
const MaxMemOpsPerStep = 4

// MemOp is one (address, value_before, value_after, is_write) tuple,
// spec §3's atomic memory-log entry.
type MemOp struct {
	Address     uint64
	ValueBefore curve.Element
	ValueAfter  curve.Element
	IsWrite     bool
}

// Step is the atomic unit of proving (spec §3 "Trace step"): the
// pre/post program counter, the opcode, the stack delta (pop count +
// push list + symbolic tag, never a whole-stack snapshot), at most
// MaxMemOpsPerStep memory ops, and the running step index.
type Step struct {
	PCBefore    uint32
	PCAfter     uint32
	Opcode      Opcode
	PopCount    int
	Pushes      []curve.Element
	MemOps      []MemOp
	StepIndex   uint64
	Trapped     bool
	TrapSticky  bool // post-state equals pre-state except this flag (spec §4.B)
}

// IsNoOp reports whether this step is the deterministic padding NO-OP
// appended at the tail of the trace until len ≡ 0 (mod S_exec).
func (s Step) IsNoOp() bool {
	return s.Opcode == OpcodeNop && s.PopCount == 0 && len(s.Pushes) == 0 && len(s.MemOps) == 0
}

// NoOpStep constructs the deterministic padding step for a given
// index, identical in every field but StepIndex so padding never
// leaks information into memop_hash beyond the step count.
func NoOpStep(pc uint32, index uint64) Step {
	return Step{PCBefore: pc, PCAfter: pc, Opcode: OpcodeNop, StepIndex: index}
}

// Outcome is the tracer's terminal result (spec §4.B contract).
type Outcome struct {
	Trapped    bool
	TrapKind   string
	ReturnVals []curve.Element
}

// PadToMultiple appends deterministic NO-OP steps until the trace
// length is a multiple of s, per spec §3's execution-trace invariant.
func PadToMultiple(steps []Step, s int) []Step {
	if s <= 0 {
		return steps
	}
	lastPC := uint32(0)
	if len(steps) > 0 {
		lastPC = steps[len(steps)-1].PCAfter
	}
	idx := uint64(len(steps))
	for len(steps)%s != 0 {
		steps = append(steps, NoOpStep(lastPC, idx))
		idx++
	}
	return steps
}

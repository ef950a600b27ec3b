package trace

import (
	"encoding/binary"
	"fmt"

	"github.com/wasmfold/wasmfold/internal/wasmfold/curve"
)

// MaxSteps bounds a single Run so a non-terminating or adversarial
// module cannot hang the prover; exceeding it is ResourceExhausted
// (spec §7), surfaced as an error rather than a trapped Outcome since
// it reflects a resource limit, not program behavior.
const MaxSteps = 1 << 24

// Run executes invocation against module, recording one Step per
// opcode (spec §4.B contract: (module, invocation) -> (trace, outcome)).
// It is a small, deterministic structural interpreter; it never
// re-derives control flow, since Module's Instructions are already
// branch-resolved by the external parser pre-pass.
func Run(m *Module, inv Invocation) ([]Step, Outcome, error) {
	entry, err := m.EntryResolution(inv.EntryFunction)
	if err != nil {
		return nil, Outcome{}, err
	}

	host := inv.Host
	if host == nil {
		host = NoHost{}
	}
	s := newState(m, entry, inv.Args, host)

	var steps []Step
	var stepIndex uint64

	for {
		if stepIndex >= MaxSteps {
			return nil, Outcome{}, fmt.Errorf("trace: exceeded %d steps without halting", MaxSteps)
		}

		fn := s.currentFunction()
		if int(s.pc) >= len(fn.Instructions) {
			// Fell off the end of the function body: implicit return.
			if len(s.frames) == 0 {
				return steps, Outcome{ReturnVals: toElements(s.stack)}, nil
			}
			s.popFrame()
			continue
		}

		inst := fn.Instructions[s.pc]
		if FamilyOf(inst.Opcode) == FamilyUnsupported {
			return nil, Outcome{}, &UnsupportedOpcodeError{Op: inst.Opcode, PC: s.pc}
		}
		step, trapped, trapKind := execOne(s, inst, stepIndex)
		steps = append(steps, step)
		stepIndex++

		if trapped {
			return steps, Outcome{Trapped: true, TrapKind: trapKind}, nil
		}
		if s.halted {
			return steps, Outcome{ReturnVals: toElements(s.stack)}, nil
		}
	}
}

// execOne runs a single instruction and returns its recorded step. A
// trapError unwinds into a sticky step (spec §4.B: "post-state equals
// pre-state except this flag") rather than propagating as a Go error,
// since a trap is a valid proved outcome, not a setup failure.
func execOne(s *state, inst Instruction, idx uint64) (Step, bool, string) {
	pcBefore := s.pc
	op := inst.Opcode

	popCount, pushes, memOps, err := dispatch(s, inst)
	if err != nil {
		if te, ok := err.(*trapError); ok {
			return Step{
				PCBefore:   pcBefore,
				PCAfter:    pcBefore,
				Opcode:     op,
				StepIndex:  idx,
				Trapped:    true,
				TrapSticky: true,
			}, true, te.kind
		}
		return Step{PCBefore: pcBefore, PCAfter: pcBefore, Opcode: op, StepIndex: idx, Trapped: true}, true, "Fault"
	}

	return Step{
		PCBefore:  pcBefore,
		PCAfter:   s.pc,
		Opcode:    op,
		PopCount:  popCount,
		Pushes:    toElements(pushes),
		MemOps:    memOps,
		StepIndex: idx,
	}, false, ""
}

// dispatch executes inst against s, advancing s.pc, and reports how
// many values were popped and what was pushed/memory-touched so the
// caller can build the Step without re-deriving the opcode's shape.
func dispatch(s *state, inst Instruction) (popCount int, pushes []int64, memOps []MemOp, err error) {
	op := inst.Opcode
	next := s.pc + 1

	switch FamilyOf(op) {
	case FamilyControl:
		popCount, pushes, next, err = execControl(s, inst)
	case FamilyVariable:
		popCount, pushes, err = execVariable(s, inst)
	case FamilyMemory:
		popCount, pushes, memOps, err = execMemory(s, inst)
	case FamilyConstant:
		pushes = []int64{inst.Operand}
	case FamilyComparison:
		popCount, pushes, err = execComparison(s, op)
	case FamilyArithmetic:
		popCount, pushes, err = execArithmetic(s, op)
	default:
		return 0, nil, nil, &UnsupportedOpcodeError{Op: op, PC: s.pc}
	}
	if err != nil {
		return 0, nil, nil, err
	}

	for _, v := range pushes {
		if pushErr := s.push(v); pushErr != nil {
			return popCount, nil, nil, pushErr
		}
	}
	s.pc = next
	return popCount, pushes, memOps, nil
}

func execControl(s *state, inst Instruction) (int, []int64, uint32, error) {
	next := s.pc + 1
	switch inst.Opcode {
	case OpcodeUnreachable:
		return 0, nil, s.pc, &trapError{kind: "Unreachable"}
	case OpcodeNop, OpcodeBlock, OpcodeLoop, OpcodeEnd:
		// Structural markers: no stack effect, fall through.
	case OpcodeIf:
		cond, err := s.pop()
		if err != nil {
			return 0, nil, 0, err
		}
		if cond == 0 {
			next = inst.ElseTarget
		}
		return 1, nil, next, nil
	case OpcodeElse:
		next = inst.BranchTarget
	case OpcodeBr:
		next = inst.BranchTarget
	case OpcodeBrIf:
		cond, err := s.pop()
		if err != nil {
			return 0, nil, 0, err
		}
		if cond != 0 {
			next = inst.BranchTarget
		}
		return 1, nil, next, nil
	case OpcodeBrTable:
		// A jump table collapses to its resolved default target: the
		// popped index is discarded, and per-arm targets are neither
		// recorded nor constrained by the control gadget.
		if _, err := s.pop(); err != nil {
			return 0, nil, 0, err
		}
		return 1, nil, inst.BranchTarget, nil
	case OpcodeReturn:
		if len(s.frames) == 0 {
			s.halted = true
			return 0, nil, s.pc, nil
		}
		next = s.popFrame()
	case OpcodeCall:
		callee := int(inst.Operand)
		if callee < 0 || callee >= len(s.module.Functions) {
			return 0, nil, 0, &trapError{kind: "InvalidCallTarget"}
		}
		fn := s.module.Functions[callee]
		args, err := s.popN(fn.Type.Params)
		if err != nil {
			return 0, nil, 0, err
		}
		s.pushFrame(next, callee, args)
		return fn.Type.Params, nil, 0, nil
	default:
		return 0, nil, 0, &UnsupportedOpcodeError{Op: inst.Opcode, PC: s.pc}
	}
	return 0, nil, next, nil
}

func execVariable(s *state, inst Instruction) (int, []int64, error) {
	switch inst.Opcode {
	case OpcodeDrop:
		if _, err := s.pop(); err != nil {
			return 0, nil, err
		}
		return 1, nil, nil
	case OpcodeSelect:
		cond, err := s.pop()
		if err != nil {
			return 0, nil, err
		}
		b, err := s.pop()
		if err != nil {
			return 0, nil, err
		}
		a, err := s.pop()
		if err != nil {
			return 0, nil, err
		}
		if cond != 0 {
			return 3, []int64{a}, nil
		}
		return 3, []int64{b}, nil
	case OpcodeLocalGet:
		idx := int(inst.Operand)
		if idx < 0 || idx >= len(s.locals) {
			return 0, nil, &trapError{kind: "InvalidLocal"}
		}
		return 0, []int64{s.locals[idx]}, nil
	case OpcodeLocalSet:
		idx := int(inst.Operand)
		v, err := s.pop()
		if err != nil {
			return 0, nil, err
		}
		if idx < 0 || idx >= len(s.locals) {
			return 1, nil, &trapError{kind: "InvalidLocal"}
		}
		s.locals[idx] = v
		return 1, nil, nil
	case OpcodeLocalTee:
		v, err := s.pop()
		if err != nil {
			return 0, nil, err
		}
		idx := int(inst.Operand)
		if idx < 0 || idx >= len(s.locals) {
			return 1, nil, &trapError{kind: "InvalidLocal"}
		}
		s.locals[idx] = v
		return 1, []int64{v}, nil
	case OpcodeGlobalGet:
		idx := int(inst.Operand)
		if idx < 0 || idx >= len(s.module.Globals) {
			return 0, nil, &trapError{kind: "InvalidGlobal"}
		}
		return 0, []int64{s.module.Globals[idx].Value}, nil
	case OpcodeGlobalSet:
		idx := int(inst.Operand)
		v, err := s.pop()
		if err != nil {
			return 0, nil, err
		}
		if idx < 0 || idx >= len(s.module.Globals) || !s.module.Globals[idx].Mutable {
			return 1, nil, &trapError{kind: "InvalidGlobal"}
		}
		s.module.Globals[idx].Value = v
		return 1, nil, nil
	default:
		return 0, nil, &UnsupportedOpcodeError{Op: inst.Opcode, PC: s.pc}
	}
}

// wordSize returns the byte width of a memory access's value lane.
func wordSize(op Opcode) uint64 {
	if Is64(op) {
		return 8
	}
	return 4
}

func execMemory(s *state, inst Instruction) (int, []int64, []MemOp, error) {
	switch inst.Opcode {
	case OpcodeI32Load, OpcodeI64Load:
		addr := uint64(inst.Operand)
		w := wordSize(inst.Opcode)
		if addr+w > uint64(len(s.memory)) {
			return 0, nil, nil, &trapError{kind: "MemoryOutOfBounds"}
		}
		raw := s.memory[addr : addr+w]
		var v uint64
		if w == 4 {
			v = uint64(binary.LittleEndian.Uint32(raw))
		} else {
			v = binary.LittleEndian.Uint64(raw)
		}
		op := MemOp{Address: addr, ValueBefore: curve.New(v), ValueAfter: curve.New(v), IsWrite: false}
		return 0, []int64{int64(v)}, []MemOp{op}, nil

	case OpcodeI32Store, OpcodeI64Store:
		val, err := s.pop()
		if err != nil {
			return 0, nil, nil, err
		}
		addr := uint64(inst.Operand)
		w := wordSize(inst.Opcode)
		if addr+w > uint64(len(s.memory)) {
			return 1, nil, nil, &trapError{kind: "MemoryOutOfBounds"}
		}
		raw := s.memory[addr : addr+w]
		var before uint64
		if w == 4 {
			before = uint64(binary.LittleEndian.Uint32(raw))
			binary.LittleEndian.PutUint32(raw, uint32(val))
		} else {
			before = binary.LittleEndian.Uint64(raw)
			binary.LittleEndian.PutUint64(raw, uint64(val))
		}
		op := MemOp{Address: addr, ValueBefore: curve.New(before), ValueAfter: curve.New(uint64(val)), IsWrite: true}
		return 1, nil, []MemOp{op}, nil

	case OpcodeMemorySize:
		return 0, []int64{int64(len(s.memory) / pageSize)}, nil, nil

	case OpcodeMemoryGrow:
		delta, err := s.pop()
		if err != nil {
			return 0, nil, nil, err
		}
		old := int64(len(s.memory) / pageSize)
		newPages := old + delta
		if delta < 0 || (s.module.MaxMemoryPages > 0 && uint32(newPages) > s.module.MaxMemoryPages) {
			return 1, []int64{-1}, nil, nil
		}
		s.memory = append(s.memory, make([]byte, delta*pageSize)...)
		return 1, []int64{old}, nil, nil

	default:
		return 0, nil, nil, &UnsupportedOpcodeError{Op: inst.Opcode, PC: s.pc}
	}
}

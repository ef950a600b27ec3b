package circuits

import (
	"github.com/wasmfold/wasmfold/internal/wasmfold/curve"
	"github.com/wasmfold/wasmfold/internal/wasmfold/trace"
)

// comparisonGadget constrains the i32/i64 eq/ne/lt/gt/le/ge family.
// Its witness is the sign bit (bit 31, or bit 63 for i64 opcodes) of
// the single pushed result. The compared operands are not part of a
// trace.Step, so their sign bits and the subtraction between them are
// not in the witness.
type comparisonGadget struct{}

func (comparisonGadget) Family() trace.Family { return trace.FamilyComparison }

func (comparisonGadget) Assign(tr *curve.Transcript, prevStack, prevMemOp curve.Element, step trace.Step) (Assignment, error) {
	var witness []curve.Element
	if len(step.Pushes) == 1 {
		witness = []curve.Element{signBit(step.Pushes[0].Value(), trace.Is64(step.Opcode))}
	}

	return Assignment{
		Public: Wires{
			PCBefore:   curve.New(uint64(step.PCBefore)),
			PCAfter:    curve.New(uint64(step.PCAfter)),
			StackHash:  hashPushes(tr, prevStack, step.PopCount, step.Pushes),
			MemOpHash:  prevMemOp,
			StepIndex:  curve.New(step.StepIndex),
			TrapSticky: boolElem(step.TrapSticky),
		},
		Witness: witness,
	}, nil
}

// signBit isolates the top bit of a lane value, widened or narrowed
// to the opcode's operating width.
func signBit(v uint64, wide bool) curve.Element {
	if wide {
		return curve.New((v >> 63) & 1)
	}
	return curve.New((v >> 31) & 1)
}

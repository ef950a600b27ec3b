package circuits

import (
	"github.com/wasmfold/wasmfold/internal/wasmfold/curve"
	"github.com/wasmfold/wasmfold/internal/wasmfold/trace"
)

// arithmeticGadget constrains i32/i64 add/sub/mul/div/rem/and/or/xor.
// Its witness carries the 32-bit limb decomposition of each pushed
// result so a downstream range-check can bound it to the claimed
// lane width without re-deriving the division (spec §4.C: "limb
// range-checks" for the arithmetic family).
type arithmeticGadget struct{}

func (arithmeticGadget) Family() trace.Family { return trace.FamilyArithmetic }

func (arithmeticGadget) Assign(tr *curve.Transcript, prevStack, prevMemOp curve.Element, step trace.Step) (Assignment, error) {
	witness := make([]curve.Element, 0, len(step.Pushes)*2)
	for _, p := range step.Pushes {
		lo, hi := splitLimbs(p.Value())
		witness = append(witness, curve.New(lo), curve.New(hi))
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

// splitLimbs decomposes a lane value into two 32-bit limbs, the
// range-check witness the arithmetic gadget commits to.
func splitLimbs(v uint64) (lo, hi uint64) {
	return v & 0xffffffff, v >> 32
}

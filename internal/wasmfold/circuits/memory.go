package circuits

import (
	"github.com/wasmfold/wasmfold/internal/wasmfold/curve"
	"github.com/wasmfold/wasmfold/internal/wasmfold/trace"
)

// memoryGadget constrains i32/i64 load/store and memory.size/grow.
// Its witness is the raw (address, value_before, value_after,
// is_write) tuples so the MCC step circuit can later re-absorb the
// exact same values into the address-sorted view (spec §4.E).
type memoryGadget struct{}

func (memoryGadget) Family() trace.Family { return trace.FamilyMemory }

func (memoryGadget) Assign(tr *curve.Transcript, prevStack, prevMemOp curve.Element, step trace.Step) (Assignment, error) {
	witness := make([]curve.Element, 0, len(step.MemOps)*4)
	for _, op := range step.MemOps {
		witness = append(witness, curve.New(op.Address), op.ValueBefore, op.ValueAfter, boolElem(op.IsWrite))
	}

	return Assignment{
		Public: Wires{
			PCBefore:   curve.New(uint64(step.PCBefore)),
			PCAfter:    curve.New(uint64(step.PCAfter)),
			StackHash:  hashPushes(tr, prevStack, step.PopCount, step.Pushes),
			MemOpHash:  hashMemOps(tr, prevMemOp, step.MemOps),
			StepIndex:  curve.New(step.StepIndex),
			TrapSticky: boolElem(step.TrapSticky),
		},
		Witness: witness,
	}, nil
}

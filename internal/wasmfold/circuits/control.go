package circuits

import (
	"github.com/wasmfold/wasmfold/internal/wasmfold/curve"
	"github.com/wasmfold/wasmfold/internal/wasmfold/trace"
)

// controlGadget constrains block/loop/if/else/end/br/br_if/br_table/
// call/return. Its witness is the claimed branch target, letting the
// folded relation assert pc_after equals the pre-resolved target
// rather than re-walking block structure (spec §4.B: branch targets
// are resolved ahead of time by an external pre-pass).
type controlGadget struct{}

func (controlGadget) Family() trace.Family { return trace.FamilyControl }

func (controlGadget) Assign(tr *curve.Transcript, prevStack, prevMemOp curve.Element, step trace.Step) (Assignment, error) {
	return Assignment{
		Public: Wires{
			PCBefore:   curve.New(uint64(step.PCBefore)),
			PCAfter:    curve.New(uint64(step.PCAfter)),
			StackHash:  hashPushes(tr, prevStack, step.PopCount, step.Pushes),
			MemOpHash:  prevMemOp,
			StepIndex:  curve.New(step.StepIndex),
			TrapSticky: boolElem(step.TrapSticky),
		},
		Witness: []curve.Element{curve.New(uint64(step.PCAfter))},
	}, nil
}

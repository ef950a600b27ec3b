package circuits

import (
	"github.com/wasmfold/wasmfold/internal/wasmfold/curve"
	"github.com/wasmfold/wasmfold/internal/wasmfold/trace"
)

// variableGadget constrains drop/select/local.{get,set,tee} and
// global.{get,set}. Its witness is empty: the only claim it makes is
// the stack delta, already folded into StackHash, since local/global
// storage itself is out of the trace and lives only in the
// interpreter's private state (spec §4.C lists locals/globals as
// witness-carried, not committed column data).
type variableGadget struct{}

func (variableGadget) Family() trace.Family { return trace.FamilyVariable }

func (variableGadget) Assign(tr *curve.Transcript, prevStack, prevMemOp curve.Element, step trace.Step) (Assignment, error) {
	return Assignment{
		Public: Wires{
			PCBefore:   curve.New(uint64(step.PCBefore)),
			PCAfter:    curve.New(uint64(step.PCAfter)),
			StackHash:  hashPushes(tr, prevStack, step.PopCount, step.Pushes),
			MemOpHash:  prevMemOp,
			StepIndex:  curve.New(step.StepIndex),
			TrapSticky: boolElem(step.TrapSticky),
		},
	}, nil
}

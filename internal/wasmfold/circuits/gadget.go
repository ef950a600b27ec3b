// Package circuits implements the opcode circuit library (spec
// component C) and the execution-step circuit (spec component D): a
// closed tagged variant over the opcode set, one gadget per family,
// assembled behind a one-hot selector into a single per-step relation
// the folding scheme accumulates.
package circuits

import (
	"fmt"

	"github.com/wasmfold/wasmfold/internal/wasmfold/curve"
	"github.com/wasmfold/wasmfold/internal/wasmfold/trace"
)

// Wires is a step's public interface: the values the NIVC driver
// threads between consecutive folded steps (spec §4.D: "input/output
// public wires pc, stack_hash, memop_hash, step_index").
type Wires struct {
	PCBefore     curve.Element
	PCAfter      curve.Element
	StackHash    curve.Element
	MemOpHash    curve.Element
	StepIndex    curve.Element
	TrapSticky   curve.Element
}

// Assignment is one gadget's contribution: the public wire delta it
// produces plus the private witness values backing it (operand
// values, range-check limbs, inverse hints). Folding absorbs Witness
// directly; it never appears in Wires.
type Assignment struct {
	Public  Wires
	Witness []curve.Element
}

// Gadget constrains one opcode family's step relation. Each
// implementation is pure: same Step and same transcript state always
// yield the same Assignment (spec §8 determinism property).
type Gadget interface {
	Family() trace.Family
	Assign(tr *curve.Transcript, prevStackHash, prevMemOpHash curve.Element, step trace.Step) (Assignment, error)
}

// registry is the closed tagged variant: exactly one gadget per
// family. An opcode in FamilyUnsupported is rejected by trace.Run
// when the tracer reaches it, so there is no gadget for it (spec §4.C).
var registry = map[trace.Family]Gadget{}

func register(g Gadget) {
	registry[g.Family()] = g
}

func init() {
	register(arithmeticGadget{})
	register(comparisonGadget{})
	register(controlGadget{})
	register(memoryGadget{})
	register(variableGadget{})
	register(constantGadget{})
}

// Select returns the gadget responsible for step's opcode family,
// the one-hot selector's resolved branch (spec §4.D: "a per-tag
// gadget table" dispatched "behind a one-hot selector").
func Select(step trace.Step) (Gadget, error) {
	family := trace.FamilyOf(step.Opcode)
	g, ok := registry[family]
	if !ok {
		return nil, fmt.Errorf("circuits: no gadget registered for family %d (opcode %s)", family, step.Opcode)
	}
	return g, nil
}

// hashPushes folds a step's pushed values into the running stack hash,
// the mechanism every gadget shares instead of committing to a whole
// stack snapshot (spec §4.B/§4.D).
func hashPushes(tr *curve.Transcript, prev curve.Element, popCount int, pushes []curve.Element) curve.Element {
	elems := make([]curve.Element, 0, len(pushes)+2)
	elems = append(elems, prev, curve.New(uint64(popCount)))
	elems = append(elems, pushes...)
	return tr.Hash(elems)
}

// hashMemOps folds a step's memory operations into the running
// memop-log hash carried in the step's MemOpHash wire. The MCC side
// does not recompute this hash; nivc.Driver.join compares
// mcc.ProgramOrderDigest values instead.
func hashMemOps(tr *curve.Transcript, prev curve.Element, ops []trace.MemOp) curve.Element {
	elems := make([]curve.Element, 0, 1+4*len(ops))
	elems = append(elems, prev)
	for _, op := range ops {
		elems = append(elems, curve.New(op.Address), op.ValueBefore, op.ValueAfter, boolElem(op.IsWrite))
	}
	return tr.Hash(elems)
}

func boolElem(b bool) curve.Element {
	if b {
		return curve.One
	}
	return curve.Zero
}

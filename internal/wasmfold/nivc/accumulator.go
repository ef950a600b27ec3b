package nivc

import "github.com/wasmfold/wasmfold/internal/wasmfold/curve"

// Accumulator wraps the folding-layer accumulator with the bookkeeping
// the driver needs between phases: which phase produced the current
// state.
type Accumulator struct {
	inner *curve.Accumulator
	Phase Phase
}

// Phase names the driver's state machine position (spec §4.F:
// "Init -> ExecFold(i) -> MccFold(j) -> Join -> Compress").
type Phase int

const (
	PhaseInit Phase = iota
	PhaseExecFold
	PhaseMccFold
	PhaseJoin
	PhaseCompress
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "Init"
	case PhaseExecFold:
		return "ExecFold"
	case PhaseMccFold:
		return "MccFold"
	case PhaseJoin:
		return "Join"
	case PhaseCompress:
		return "Compress"
	case PhaseDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// Inner exposes the wrapped folding accumulator for Folding.Fold/Finalize.
func (a *Accumulator) Inner() *curve.Accumulator { return a.inner }

// StepCount returns the number of folds applied so far.
func (a *Accumulator) StepCount() uint64 {
	if a.inner == nil {
		return 0
	}
	return a.inner.StepCount
}

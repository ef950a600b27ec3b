package trace

import "github.com/wasmfold/wasmfold/internal/wasmfold/curve"

// MaxOperandStack bounds the operand stack to keep the per-step
// arithmetization finite; exceeding it is a StackOverflow trap rather
// than an unsupported opcode (spec §4.B edge cases).
const MaxOperandStack = 1 << 20

// frame is one call-stack entry: the return pc, the caller's function
// index, and the caller's locals (mirrors the teacher's
// VMJumpStackEntry, generalized from (origin, destination) to a full
// activation record since WASM calls carry locals rather than just a
// return address).
type frame struct {
	returnPC      uint32
	returnFunc    int
	returnLocals  []int64
}

// state is the tracer's private interpreter state: the operand stack,
// linear memory, globals, locals and call frames. It is never exposed
// outside the trace package; only Step/Outcome cross the boundary to
// circuits (spec §4.B: "never a whole-stack snapshot").
type state struct {
	module *Module

	stack []int64

	memory []byte
	locals []int64

	frames []frame

	pc        uint32
	funcIndex int
	halted    bool

	host HostIO
}

func newState(m *Module, entry int, args []int64, host HostIO) *state {
	s := &state{
		module:    m,
		stack:     make([]int64, 0, 64),
		memory:    make([]byte, uint64(m.MemoryPages)*pageSize),
		locals:    append([]int64{}, args...),
		funcIndex: entry,
		host:      host,
	}
	fn := m.Functions[entry]
	for i := len(s.locals); i < len(args)+fn.Locals; i++ {
		s.locals = append(s.locals, 0)
	}
	return s
}

const pageSize = 1 << 16 // 64 KiB, spec §9 matches WASM's page granularity

func (s *state) push(v int64) error {
	if len(s.stack) >= MaxOperandStack {
		return &trapError{kind: "StackOverflow"}
	}
	s.stack = append(s.stack, v)
	return nil
}

func (s *state) pop() (int64, error) {
	if len(s.stack) == 0 {
		return 0, &trapError{kind: "StackUnderflow"}
	}
	v := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	return v, nil
}

func (s *state) popN(n int) ([]int64, error) {
	vals := make([]int64, n)
	for i := n - 1; i >= 0; i-- {
		v, err := s.pop()
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

// currentFunction returns the function body currently executing.
func (s *state) currentFunction() Function {
	return s.module.Functions[s.funcIndex]
}

// pushFrame enters callee with args as its first locals, recording
// where and with what caller-locals to resume once it returns
// (mirrors the teacher's VMJumpStackEntry, generalized to carry a
// full activation record since WASM calls bind fresh locals).
func (s *state) pushFrame(returnPC uint32, callee int, args []int64) {
	s.frames = append(s.frames, frame{
		returnPC:     returnPC,
		returnFunc:   s.funcIndex,
		returnLocals: s.locals,
	})

	fn := s.module.Functions[callee]
	locals := append([]int64{}, args...)
	for i := len(locals); i < fn.Type.Params+fn.Locals; i++ {
		locals = append(locals, 0)
	}

	s.funcIndex = callee
	s.locals = locals
	s.pc = 0
}

// popFrame unwinds to the caller and returns its resume pc.
func (s *state) popFrame() uint32 {
	top := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	s.funcIndex = top.returnFunc
	s.locals = top.returnLocals
	s.pc = top.returnPC
	return top.returnPC
}

// trapError is the sentinel the tracer raises to unwind into a sticky
// trapped step (spec §4.B: "post-state equals pre-state except this
// flag").
type trapError struct {
	kind string
}

func (e *trapError) Error() string { return "trace: trap: " + e.kind }

// toElements converts raw i64 lane values into field elements for the
// Step.Pushes slice, reducing modulo the proving field.
func toElements(vals []int64) []curve.Element {
	out := make([]curve.Element, len(vals))
	for i, v := range vals {
		out[i] = curve.New(uint64(v))
	}
	return out
}

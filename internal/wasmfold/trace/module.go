package trace

import (
	"fmt"

	"github.com/wasmfold/wasmfold/internal/wasmfold/curve"
)

// Instruction is one resolved instruction in a function body. Branch
// targets are pre-computed (spec §4.B: "the resolved target computed
// ahead of time by a pre-pass") so the tracer never re-walks block
// structure during execution.
type Instruction struct {
	Opcode       Opcode
	Operand      int64  // immediate: i32/i64 const, local/global index, call target, load/store address
	BranchTarget uint32 // resolved pc for else/br/br_if/br_table; ignored otherwise
	ElseTarget   uint32 // resolved pc for if's matching else/end
}

// FuncType is a WASM function signature: parameter and result arities
// (concrete value types are out of this engine's scope — it only
// proves i32/i64 lanes, spec §9).
type FuncType struct {
	Params  int
	Results int
}

// Function is one function body plus its resolved instruction stream.
type Function struct {
	Type         FuncType
	Locals       int // local slots beyond params, zero-initialized
	Instructions []Instruction
}

// Global is a single mutable or immutable global cell.
type Global struct {
	Value   int64
	Mutable bool
}

// Module is the validated, branch-resolved "engine module" the
// tracer consumes (spec §1: "After validation it is convertible into
// an engine module of branch-resolved instructions", spec §6's
// {imports, exports, functions, types, memories, globals, tables,
// entry_resolution(name) -> index}). Constructing one from raw WASM
// bytes is the out-of-scope binary-format parser's job; wasmfold only
// consumes the result.
type Module struct {
	Functions     []Function
	Globals       []Global
	MemoryPages   uint32 // initial page count (64 KiB each)
	MaxMemoryPages uint32
	exports       map[string]int
}

// NewModule constructs an engine module. Called by the (external,
// out-of-scope) WASM parser once validation has passed.
func NewModule(functions []Function, globals []Global, memoryPages, maxMemoryPages uint32, exports map[string]int) *Module {
	return &Module{
		Functions:      functions,
		Globals:        globals,
		MemoryPages:    memoryPages,
		MaxMemoryPages: maxMemoryPages,
		exports:        exports,
	}
}

// EntryResolution resolves an exported function name to its index,
// spec §6's entry_resolution(name) -> index.
func (m *Module) EntryResolution(name string) (int, error) {
	idx, ok := m.exports[name]
	if !ok {
		return 0, fmt.Errorf("trace: entry function %q not exported", name)
	}
	if idx < 0 || idx >= len(m.Functions) {
		return 0, fmt.Errorf("trace: entry function %q resolves to invalid index %d", name, idx)
	}
	return idx, nil
}

// Digest folds the module's structure into a single field element —
// the module_digest half of the public instance's identity a proof
// attests to (spec §3). Two modules differing in any function,
// instruction, or global fold to different digests.
func (m *Module) Digest(tr *curve.Transcript) curve.Element {
	elems := make([]curve.Element, 0, 8+4*len(m.Functions))
	elems = append(elems,
		curve.New(uint64(len(m.Functions))),
		curve.New(uint64(m.MemoryPages)),
		curve.New(uint64(m.MaxMemoryPages)),
	)
	for _, fn := range m.Functions {
		elems = append(elems,
			curve.New(uint64(fn.Type.Params)),
			curve.New(uint64(fn.Type.Results)),
			curve.New(uint64(fn.Locals)),
			curve.New(uint64(len(fn.Instructions))),
		)
		for _, inst := range fn.Instructions {
			elems = append(elems,
				curve.New(uint64(inst.Opcode)),
				curve.New(uint64(inst.Operand)),
				curve.New(uint64(inst.BranchTarget)),
				curve.New(uint64(inst.ElseTarget)),
			)
		}
	}
	for _, g := range m.Globals {
		elems = append(elems, curve.New(uint64(g.Value)), boolElem(g.Mutable))
	}
	return tr.Hash(elems)
}

// EntryDigest folds a resolved entry function index into a field
// element, the entry_digest half of spec §3's claim identity.
func EntryDigest(tr *curve.Transcript, entryIndex int) curve.Element {
	return tr.Hash([]curve.Element{curve.New(uint64(entryIndex))})
}

// ArgDigest folds an invocation's ordered argument list into a field
// element, the arg_digest half of spec §3's claim identity.
func ArgDigest(tr *curve.Transcript, args []int64) curve.Element {
	elems := make([]curve.Element, len(args))
	for i, a := range args {
		elems[i] = curve.New(uint64(a))
	}
	return tr.Hash(elems)
}

func boolElem(b bool) curve.Element {
	if b {
		return curve.One
	}
	return curve.Zero
}

// Invocation is spec §3's (entry function name, ordered argument
// values typed per the function signature, optional host-I/O
// channels) tuple.
type Invocation struct {
	EntryFunction string
	Args          []int64
	Host          HostIO
}

// UnsupportedOpcodeError reports an opcode outside the supported
// family set, returned by Run when the tracer reaches it (spec §7:
// UnsupportedOpcode).
type UnsupportedOpcodeError struct {
	Op Opcode
	PC uint32
}

func (e *UnsupportedOpcodeError) Error() string {
	return fmt.Sprintf("trace: unsupported opcode %s (0x%02x) at pc=%d", e.Op, byte(e.Op), e.PC)
}

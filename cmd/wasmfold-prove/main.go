// Command wasmfold-prove reads a module, invocation and prover config
// as JSON lines from stdin and writes the resulting proof — serialized
// with Proof.Serialize's self-describing blob format (spec §6), then
// base64-encoded — as a single line to stdout, the same line-oriented
// stdin/stdout contract the teacher's own prover binary uses, adapted
// to wasmfold's input shape. Parsing real WASM binaries is out of
// scope (spec §1/§6): the module line already carries pre-resolved
// instructions.
package main

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/wasmfold/wasmfold/internal/wasmfold/trace"
	"github.com/wasmfold/wasmfold/pkg/wasmfold"
)

// FunctionInput is one function body in line-oriented JSON form.
type FunctionInput struct {
	Params       int                `json:"params"`
	Results      int                `json:"results"`
	Locals       int                `json:"locals"`
	Instructions []InstructionInput `json:"instructions"`
}

// InstructionInput is one resolved instruction.
type InstructionInput struct {
	Opcode       byte   `json:"opcode"`
	Operand      int64  `json:"operand"`
	BranchTarget uint32 `json:"branch_target"`
	ElseTarget   uint32 `json:"else_target"`
}

// ModuleInput is the module line's shape.
type ModuleInput struct {
	Functions      []FunctionInput  `json:"functions"`
	Globals        []GlobalInput    `json:"globals"`
	MemoryPages    uint32           `json:"memory_pages"`
	MaxMemoryPages uint32           `json:"max_memory_pages"`
	Exports        map[string]int   `json:"exports"`
}

// GlobalInput is one global cell.
type GlobalInput struct {
	Value   int64 `json:"value"`
	Mutable bool  `json:"mutable"`
}

// InvocationInput is the invocation line's shape.
type InvocationInput struct {
	EntryFunction string  `json:"entry_function"`
	Args          []int64 `json:"args"`
}

// ConfigInput is the optional third line overriding prover defaults.
type ConfigInput struct {
	SExec  int  `json:"s_exec"`
	SMcc   int  `json:"s_mcc"`
	Hiding bool `json:"hiding"`
}

func main() {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<24)

	if !scanner.Scan() {
		fatal("failed to read module line")
	}
	var moduleInput ModuleInput
	if err := json.Unmarshal(scanner.Bytes(), &moduleInput); err != nil {
		fatal(fmt.Sprintf("failed to parse module: %v", err))
	}

	if !scanner.Scan() {
		fatal("failed to read invocation line")
	}
	var invInput InvocationInput
	if err := json.Unmarshal(scanner.Bytes(), &invInput); err != nil {
		fatal(fmt.Sprintf("failed to parse invocation: %v", err))
	}

	cfg := wasmfold.DefaultConfig()
	if scanner.Scan() {
		var cfgInput ConfigInput
		if err := json.Unmarshal(scanner.Bytes(), &cfgInput); err != nil {
			fatal(fmt.Sprintf("failed to parse config: %v", err))
		}
		if cfgInput.SExec > 0 {
			cfg.WithSExec(cfgInput.SExec)
		}
		if cfgInput.SMcc > 0 {
			cfg.WithSMcc(cfgInput.SMcc)
		}
		cfg.WithHiding(cfgInput.Hiding)
	}

	module := convertModule(moduleInput)

	logStderr("deriving public parameters...")
	pp, err := wasmfold.Setup(cfg)
	if err != nil {
		fatal(fmt.Sprintf("setup failed: %v", err))
	}

	logStderr("tracing and folding invocation...")
	proof, err := wasmfold.Prove(context.Background(), pp, module, wasmfold.Invocation{
		EntryFunction: invInput.EntryFunction,
		Args:          invInput.Args,
	})
	if err != nil {
		fatal(fmt.Sprintf("prove failed: %v", err))
	}

	logStderr(fmt.Sprintf("proof generated over %d steps (trapped=%v)", proof.Instance.StepCount, proof.Instance.TrapFlag))

	blob := proof.Serialize()
	os.Stdout.WriteString(base64.StdEncoding.EncodeToString(blob))
	os.Stdout.Write([]byte("\n"))
}

func convertModule(in ModuleInput) *wasmfold.Module {
	functions := make([]trace.Function, len(in.Functions))
	for i, f := range in.Functions {
		instructions := make([]trace.Instruction, len(f.Instructions))
		for j, inst := range f.Instructions {
			instructions[j] = trace.Instruction{
				Opcode:       trace.Opcode(inst.Opcode),
				Operand:      inst.Operand,
				BranchTarget: inst.BranchTarget,
				ElseTarget:   inst.ElseTarget,
			}
		}
		functions[i] = trace.Function{
			Type:         trace.FuncType{Params: f.Params, Results: f.Results},
			Locals:       f.Locals,
			Instructions: instructions,
		}
	}

	globals := make([]trace.Global, len(in.Globals))
	for i, g := range in.Globals {
		globals[i] = trace.Global{Value: g.Value, Mutable: g.Mutable}
	}

	return trace.NewModule(functions, globals, in.MemoryPages, in.MaxMemoryPages, in.Exports)
}

func logStderr(msg string) {
	fmt.Fprintln(os.Stderr, "wasmfold-prove:", msg)
}

func fatal(msg string) {
	logStderr("ERROR: " + msg)
	os.Exit(1)
}

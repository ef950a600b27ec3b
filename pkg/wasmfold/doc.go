// Package wasmfold proves correct execution of a branch-resolved WASM
// module via Non-uniform Incrementally Verifiable Computation
// (NIVC) folding over a primary/dual curve cycle. A structural
// interpreter traces one step per opcode; the opcode circuit library
// arithmetizes each step behind a one-hot family selector; a memory
// consistency check binds every load to its most recent write; and a
// black-box folding scheme accumulates both into a single compressed
// proof.
package wasmfold

// Package mcc implements the Memory Consistency Check (spec component
// E): proving every load returns the value of its most recent write,
// via an address-sorted view of the same memory log the trace
// recorded in program order, tied together by a grand-product
// permutation argument over Fiat-Shamir challenges.
package mcc

import (
	"github.com/wasmfold/wasmfold/internal/wasmfold/curve"
	"github.com/wasmfold/wasmfold/internal/wasmfold/trace"
)

// EntryKind distinguishes a real memory access from the synthetic
// passes that bookend it.
type EntryKind int

const (
	// KindAccess is a real load or store recorded by the tracer.
	KindAccess EntryKind = iota
	// KindInit is the synthetic "address starts at zero" row the MCC
	// table prepends for every address it first sees.
	KindInit
	// KindFinal is the synthetic "address ends at this value" row the
	// MCC table appends once per address, carrying the final_memory_digest.
	KindFinal
)

// Entry is one (address, timestamp, value, flag) tuple — spec §3's
// atomic unit of the memory consistency argument.
type Entry struct {
	Address   uint64
	Timestamp uint64
	Value     curve.Element
	IsWrite   bool
	Kind      EntryKind
}

// fingerprint folds an entry into a single field element the way the
// permutation argument needs it: addr + γ·value + γ²·ts + γ³·flag,
// using the shared challenge γ sampled once per proof.
func (e Entry) fingerprint(gamma curve.Element) curve.Element {
	flag := curve.Zero
	if e.IsWrite {
		flag = curve.One
	}
	gamma2 := gamma.Mul(gamma)
	gamma3 := gamma2.Mul(gamma)
	return curve.New(e.Address).
		Add(gamma.Mul(e.Value)).
		Add(gamma2.Mul(curve.New(e.Timestamp))).
		Add(gamma3.Mul(flag))
}

// row renders an entry as a commitment leaf: (address, value,
// timestamp, is_write) — the same four-field shape the teacher's RAM
// table row carries, so curve.NewCommitment can commit to either view
// without a bespoke encoding per caller.
func (e Entry) row() []curve.Element {
	flag := curve.Zero
	if e.IsWrite {
		flag = curve.One
	}
	return []curve.Element{curve.New(e.Address), e.Value, curve.New(e.Timestamp), flag}
}

// EntriesFromSteps flattens an execution trace's memory ops into the
// program-order log the MCC driver phase consumes, using each step's
// index as the timestamp (spec §3: clock ticks monotonically with
// step index). This is the single source both the MCC fold and the
// Join binding check (spec §4.F) derive their memory log from, so
// entries supplied out-of-band can never silently diverge from what
// the traced execution actually did.
func EntriesFromSteps(steps []trace.Step) []Entry {
	var entries []Entry
	for _, step := range steps {
		for _, op := range step.MemOps {
			entries = append(entries, Entry{
				Address:   op.Address,
				Timestamp: step.StepIndex,
				Value:     op.ValueAfter,
				IsWrite:   op.IsWrite,
				Kind:      KindAccess,
			})
		}
	}
	return entries
}

// ProgramOrderDigest folds a raw (KindAccess-only) entry log into a
// single field element in the order given — the memop_root_mcc spec
// §4.F's Join transition compares against the same digest recomputed
// from the traced steps before binding the two accumulators together.
func ProgramOrderDigest(tr *curve.Transcript, entries []Entry) curve.Element {
	elems := make([]curve.Element, 0, 4*len(entries))
	for _, e := range entries {
		elems = append(elems, e.row()...)
	}
	return tr.Hash(elems)
}

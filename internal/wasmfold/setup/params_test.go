package setup

import "testing"

func TestSetupDeterministic(t *testing.T) {
	pp1, err := Setup(4, 4)
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	pp2, err := Setup(4, 4)
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if pp1.FoldingKey.Digest != pp2.FoldingKey.Digest {
		t.Errorf("Setup is not deterministic for identical sizes")
	}
}

func TestSetupRejectsNonPositiveSizes(t *testing.T) {
	if _, err := Setup(0, 4); err == nil {
		t.Errorf("expected error for zero S_exec")
	}
	if _, err := Setup(4, -1); err == nil {
		t.Errorf("expected error for negative S_mcc")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	pp, err := DefaultPublicParameters()
	if err != nil {
		t.Fatalf("DefaultPublicParameters failed: %v", err)
	}
	blob := Serialize(pp)

	got, err := Deserialize(blob)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if got != pp {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, pp)
	}
}

func TestDeserializeRejectsBadMagic(t *testing.T) {
	if _, err := Deserialize([]byte("not a wasmfold blob at all")); err == nil {
		t.Errorf("expected error for bad magic")
	}
}

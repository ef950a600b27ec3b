package curve

import "testing"

func TestElementArithmetic(t *testing.T) {
	t.Run("AddCommutes", func(t *testing.T) {
		a := New(17)
		b := New(42)
		if !a.Add(b).Equal(b.Add(a)) {
			t.Errorf("addition is not commutative")
		}
	})

	t.Run("MulByZero", func(t *testing.T) {
		a := New(123456)
		if !a.Mul(Zero).Equal(Zero) {
			t.Errorf("a * 0 != 0")
		}
	})

	t.Run("Invert", func(t *testing.T) {
		a := New(7)
		inv, err := a.Invert()
		if err != nil {
			t.Fatalf("Invert failed: %v", err)
		}
		if !a.Mul(inv).Equal(One) {
			t.Errorf("a * a^-1 != 1")
		}
	})

	t.Run("InvertZero", func(t *testing.T) {
		if _, err := Zero.Invert(); err == nil {
			t.Errorf("expected error inverting zero")
		}
	})

	t.Run("BytesRoundTrip", func(t *testing.T) {
		a := New(9876543210 % GoldilocksSafeValue)
		got := ElementFromBytes(a.Bytes())
		if !got.Equal(a) {
			t.Errorf("round trip mismatch: got %v, want %v", got.Value(), a.Value())
		}
	})
}

// GoldilocksSafeValue keeps the round-trip test's fixture below the
// Goldilocks modulus so New()'s reduction doesn't obscure a bytes bug.
const GoldilocksSafeValue = uint64(1 << 63)

func TestTranscriptDeterminism(t *testing.T) {
	tr := NewTranscript()
	inputs := []Element{New(1), New(2), New(3)}

	h1 := tr.Hash(inputs)
	h2 := tr.Hash(inputs)
	if !h1.Equal(h2) {
		t.Errorf("Transcript.Hash is not deterministic")
	}

	other := tr.Hash([]Element{New(1), New(2), New(4)})
	if h1.Equal(other) {
		t.Errorf("different inputs hashed to the same digest")
	}
}

func TestFoldingNonHiding(t *testing.T) {
	f := NonHiding{}
	acc, err := f.New(FoldingKey{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	step := StepInstance{PublicInputs: []Element{New(1)}, Witness: []Element{New(2)}}
	acc, err = f.Fold(acc, step)
	if err != nil {
		t.Fatalf("Fold failed: %v", err)
	}
	if acc.StepCount != 1 {
		t.Errorf("StepCount = %d, want 1", acc.StepCount)
	}

	snark, err := f.Finalize(acc)
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if snark.Hiding {
		t.Errorf("NonHiding.Finalize produced a hiding SNARK")
	}
}

func TestFoldingHiding(t *testing.T) {
	f := Hiding{}
	acc, _ := f.New(FoldingKey{})
	acc, _ = f.Fold(acc, StepInstance{PublicInputs: []Element{New(5)}})

	s1, err := f.Finalize(acc)
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	s2, _ := f.Finalize(acc)

	if s1.BlindingCommit == s2.BlindingCommit {
		t.Errorf("hiding finalize should randomize the blinding commitment across calls")
	}
	if s1.AccumulatorDigest != s2.AccumulatorDigest {
		t.Errorf("hiding finalize must not change the underlying accumulator digest")
	}
}

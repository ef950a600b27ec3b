package trace

// execComparison implements the i32/i64 comparison family. Results
// are WASM's canonical i32 booleans (0 or 1), matching the values the
// comparison gadget's sign-bit extraction later constrains.
func execComparison(s *state, op Opcode) (int, []int64, error) {
	if op == OpcodeI32Eqz || op == OpcodeI64Eqz {
		a, err := s.pop()
		if err != nil {
			return 0, nil, err
		}
		return 1, []int64{boolToI64(maskFor(op == OpcodeI64Eqz, a) == 0)}, nil
	}

	b, err := s.pop()
	if err != nil {
		return 0, nil, err
	}
	a, err := s.pop()
	if err != nil {
		return 0, nil, err
	}

	wide := op >= OpcodeI64Eq && op <= OpcodeI64GeU
	ua, ub := maskFor(wide, a), maskFor(wide, b)

	var result bool
	switch op {
	case OpcodeI32Eq, OpcodeI64Eq:
		result = a == b
	case OpcodeI32Ne, OpcodeI64Ne:
		result = a != b
	case OpcodeI32LtS, OpcodeI64LtS:
		result = signedFor(wide, a) < signedFor(wide, b)
	case OpcodeI32LtU, OpcodeI64LtU:
		result = ua < ub
	case OpcodeI32GtS, OpcodeI64GtS:
		result = signedFor(wide, a) > signedFor(wide, b)
	case OpcodeI32GtU, OpcodeI64GtU:
		result = ua > ub
	case OpcodeI32LeS, OpcodeI64LeS:
		result = signedFor(wide, a) <= signedFor(wide, b)
	case OpcodeI32LeU, OpcodeI64LeU:
		result = ua <= ub
	case OpcodeI32GeS, OpcodeI64GeS:
		result = signedFor(wide, a) >= signedFor(wide, b)
	case OpcodeI32GeU, OpcodeI64GeU:
		result = ua >= ub
	default:
		return 0, nil, &UnsupportedOpcodeError{Op: op}
	}
	return 2, []int64{boolToI64(result)}, nil
}

// execArithmetic implements the i32/i64 arithmetic family. Division
// and remainder by zero trap (spec §4.B edge case), as does signed
// division overflow (MIN / -1).
func execArithmetic(s *state, op Opcode) (int, []int64, error) {
	b, err := s.pop()
	if err != nil {
		return 0, nil, err
	}
	a, err := s.pop()
	if err != nil {
		return 0, nil, err
	}

	wide := op >= OpcodeI64Add && op <= OpcodeI64Xor
	ua, ub := maskFor(wide, a), maskFor(wide, b)

	var r int64
	switch op {
	case OpcodeI32Add, OpcodeI64Add:
		r = wrapFor(wide, a+b)
	case OpcodeI32Sub, OpcodeI64Sub:
		r = wrapFor(wide, a-b)
	case OpcodeI32Mul, OpcodeI64Mul:
		r = wrapFor(wide, a*b)
	case OpcodeI32DivS, OpcodeI64DivS:
		sa, sb := signedFor(wide, a), signedFor(wide, b)
		if sb == 0 {
			return 2, nil, &trapError{kind: "DivideByZero"}
		}
		if sa == minSignedFor(wide) && sb == -1 {
			return 2, nil, &trapError{kind: "IntegerOverflow"}
		}
		r = wrapFor(wide, sa/sb)
	case OpcodeI32DivU, OpcodeI64DivU:
		if ub == 0 {
			return 2, nil, &trapError{kind: "DivideByZero"}
		}
		r = wrapFor(wide, int64(ua/ub))
	case OpcodeI32RemS, OpcodeI64RemS:
		sa, sb := signedFor(wide, a), signedFor(wide, b)
		if sb == 0 {
			return 2, nil, &trapError{kind: "DivideByZero"}
		}
		if sa == minSignedFor(wide) && sb == -1 {
			r = 0
		} else {
			r = wrapFor(wide, sa%sb)
		}
	case OpcodeI32RemU, OpcodeI64RemU:
		if ub == 0 {
			return 2, nil, &trapError{kind: "DivideByZero"}
		}
		r = wrapFor(wide, int64(ua%ub))
	case OpcodeI32And, OpcodeI64And:
		r = wrapFor(wide, int64(ua&ub))
	case OpcodeI32Or, OpcodeI64Or:
		r = wrapFor(wide, int64(ua|ub))
	case OpcodeI32Xor, OpcodeI64Xor:
		r = wrapFor(wide, int64(ua^ub))
	default:
		return 0, nil, &UnsupportedOpcodeError{Op: op}
	}
	return 2, []int64{r}, nil
}

func maskFor(wide bool, v int64) uint64 {
	if wide {
		return uint64(v)
	}
	return uint64(uint32(v))
}

func signedFor(wide bool, v int64) int64 {
	if wide {
		return v
	}
	return int64(int32(v))
}

func wrapFor(wide bool, v int64) int64 {
	if wide {
		return v
	}
	return int64(int32(v))
}

func minSignedFor(wide bool) int64 {
	if wide {
		return -1 << 63
	}
	return -1 << 31
}

func boolToI64(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

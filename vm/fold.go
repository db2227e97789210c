package vm

import "github.com/holiman/uint256"

// fold is the constant-folding oracle: given an opcode, the local index
// of the instruction, and its already-resolved argument operands (args[0]
// is the value popped first, i.e. the one that was on top of the abstract
// stack), it returns the instruction's result operands and whether the
// result is a compile-time constant. Unfolded opcodes get synthetic
// InstructionRef results, one per declared ret slot.
func fold(op OpCode, localIdx int, args []Operand) ([]Operand, bool) {
	ret := op.Ret()

	result := foldResult(op, localIdx, args)

	out := make([]Operand, 0, ret)
	isConstant := false
	if result != nil {
		out = append(out, *result)
		// An identity such as x+0 yields x itself, which is not a constant.
		isConstant = result.Kind == KindConstant
	}
	for i := len(out); i < ret; i++ {
		out = append(out, InstructionRef(localIdx, i))
		isConstant = false
	}
	return out, isConstant
}

func foldResult(op OpCode, localIdx int, args []Operand) *Operand {
	switch len(args) {
	case 1:
		return foldArity1(op, localIdx, args[0])
	case 2:
		return foldArity2(op, localIdx, args[0], args[1])
	case 3:
		return foldArity3(op, localIdx, args[0], args[1], args[2])
	default:
		return nil
	}
}

func asConst(o Operand) (*uint256.Int, bool) {
	if o.Kind == KindConstant {
		return o.Value, true
	}
	return nil, false
}

func isConstVal(o Operand, v uint64) bool {
	val, ok := asConst(o)
	if !ok {
		return false
	}
	return val.Eq(uint256.NewInt(v))
}

func constOp(localIdx int, v *uint256.Int) *Operand {
	o := Constant(localIdx, v)
	return &o
}

func boolConst(b bool) *uint256.Int {
	if b {
		return uint256.NewInt(1)
	}
	return uint256.NewInt(0)
}

func foldArity1(op OpCode, localIdx int, a Operand) *Operand {
	av, ok := asConst(a)
	if !ok {
		return nil
	}
	switch op {
	case ISZERO:
		return constOp(localIdx, boolConst(av.IsZero()))
	case NOT:
		return constOp(localIdx, new(uint256.Int).Not(av))
	default:
		return nil
	}
}

func foldArity2(op OpCode, localIdx int, a, b Operand) *Operand {
	av, aok := asConst(a)
	bv, bok := asConst(b)

	if aok && bok {
		switch op {
		case ADD:
			return constOp(localIdx, new(uint256.Int).Add(av, bv))
		case MUL:
			return constOp(localIdx, new(uint256.Int).Mul(av, bv))
		case SUB:
			return constOp(localIdx, new(uint256.Int).Sub(av, bv))
		case DIV:
			if bv.IsZero() {
				return constOp(localIdx, uint256.NewInt(0))
			}
			return constOp(localIdx, new(uint256.Int).Div(av, bv))
		case MOD:
			if bv.IsZero() {
				return constOp(localIdx, uint256.NewInt(0))
			}
			return constOp(localIdx, new(uint256.Int).Mod(av, bv))
		case EXP:
			return constOp(localIdx, expWrap(av, bv))
		case LT:
			return constOp(localIdx, boolConst(av.Lt(bv)))
		case GT:
			return constOp(localIdx, boolConst(av.Gt(bv)))
		case EQ:
			return constOp(localIdx, boolConst(av.Eq(bv)))
		case AND:
			return constOp(localIdx, new(uint256.Int).And(av, bv))
		case OR:
			return constOp(localIdx, new(uint256.Int).Or(av, bv))
		case XOR:
			return constOp(localIdx, new(uint256.Int).Xor(av, bv))
		case BYTE:
			return constOp(localIdx, byteOp(av, bv))
		case SHR:
			return constOp(localIdx, shiftOp(av, bv, false))
		case SHL:
			return constOp(localIdx, shiftOp(av, bv, true))
		default:
			return nil
		}
	}

	// At most one side is constant: only the algebraic identities apply.
	switch op {
	case ADD:
		if isConstVal(b, 0) {
			return &a
		}
		if isConstVal(a, 0) {
			return &b
		}
	case SUB:
		if isConstVal(b, 0) {
			return &a
		}
	case MUL:
		if isConstVal(b, 1) {
			return &a
		}
		if isConstVal(a, 1) {
			return &b
		}
		if isConstVal(b, 0) || isConstVal(a, 0) {
			return constOp(localIdx, uint256.NewInt(0))
		}
	case DIV:
		if isConstVal(b, 0) {
			return constOp(localIdx, uint256.NewInt(0))
		}
		if isConstVal(b, 1) {
			return &a
		}
		if isConstVal(a, 0) {
			return constOp(localIdx, uint256.NewInt(0))
		}
	case EXP:
		if isConstVal(b, 0) {
			return constOp(localIdx, uint256.NewInt(1))
		}
		if isConstVal(b, 1) {
			return &a
		}
		if isConstVal(a, 0) {
			return constOp(localIdx, uint256.NewInt(0))
		}
	case SHR, SHL:
		if isConstVal(a, 0) {
			return &b
		}
	}
	return nil
}

// foldArity3 handles ADDMOD/MULMOD. A non-zero modulus is not folded: doing
// so correctly would require a 512-bit intermediate product/sum, which the
// uint256 type does not provide.
func foldArity3(op OpCode, localIdx int, a, b, c Operand) *Operand {
	_, aok := asConst(a)
	_, bok := asConst(b)
	cv, cok := asConst(c)
	if !aok || !bok || !cok {
		return nil
	}
	if !cv.IsZero() {
		return nil
	}
	switch op {
	case ADDMOD, MULMOD:
		return constOp(localIdx, uint256.NewInt(0))
	default:
		return nil
	}
}

// expWrap computes base**exp with 256-bit wraparound via square-and-multiply,
// avoiding any dependency on a library-provided Exp method.
func expWrap(base, exp *uint256.Int) *uint256.Int {
	result := uint256.NewInt(1)
	b := new(uint256.Int).Set(base)
	e := new(uint256.Int).Set(exp)
	one := uint256.NewInt(1)
	bit := new(uint256.Int)
	for !e.IsZero() {
		bit.And(e, one)
		if !bit.IsZero() {
			result.Mul(result, b)
		}
		b.Mul(b, b)
		e.Rsh(e, 1)
	}
	return result
}

// byteOp extracts the idx-th byte (0 = most significant) of val's 32-byte
// big-endian representation; an out-of-range index folds to zero.
func byteOp(idx, val *uint256.Int) *uint256.Int {
	if idx.Cmp(uint256.NewInt(32)) >= 0 {
		return uint256.NewInt(0)
	}
	n := idx.Uint64()
	bz := val.Bytes32()
	return uint256.NewInt(uint64(bz[n]))
}

// shiftOp computes val<<shift or val>>shift with a 256-bit-wide shift: a
// shift count of 256 or more shifts every bit into oblivion, folding to zero.
func shiftOp(shift, val *uint256.Int, left bool) *uint256.Int {
	if shift.Cmp(uint256.NewInt(256)) >= 0 {
		return uint256.NewInt(0)
	}
	n := uint(shift.Uint64())
	r := new(uint256.Int)
	if left {
		r.Lsh(val, n)
	} else {
		r.Rsh(val, n)
	}
	return r
}

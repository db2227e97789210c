package vm

import (
	"testing"

	"github.com/holiman/uint256"
)

func c(v uint64) Operand { return Constant(0, uint256.NewInt(v)) }

func wantConst(t *testing.T, got []Operand, isConst bool, wantVal uint64, wantConstFlag bool) {
	t.Helper()
	if isConst != wantConstFlag {
		t.Fatalf("isConstant = %v, want %v", isConst, wantConstFlag)
	}
	if !wantConstFlag {
		return
	}
	if len(got) != 1 || got[0].Kind != KindConstant {
		t.Fatalf("result = %+v, want a single Constant", got)
	}
	if !got[0].Value.Eq(uint256.NewInt(wantVal)) {
		t.Fatalf("result value = %v, want %d", got[0].Value, wantVal)
	}
}

func TestFoldArity1(t *testing.T) {
	res, isConst := fold(ISZERO, 5, []Operand{c(0)})
	wantConst(t, res, isConst, 1, true)

	res, isConst = fold(ISZERO, 5, []Operand{c(9)})
	wantConst(t, res, isConst, 0, true)
}

func TestFoldArity2BothConstant(t *testing.T) {
	res, isConst := fold(ADD, 0, []Operand{c(1), c(2)})
	wantConst(t, res, isConst, 3, true)

	res, isConst = fold(DIV, 0, []Operand{c(10), c(0)})
	wantConst(t, res, isConst, 0, true)

	res, isConst = fold(EXP, 0, []Operand{c(2), c(10)})
	wantConst(t, res, isConst, 1024, true)

	res, isConst = fold(LT, 0, []Operand{c(1), c(2)})
	wantConst(t, res, isConst, 1, true)
}

func TestFoldAddmodMulmodZeroModulus(t *testing.T) {
	res, isConst := fold(ADDMOD, 0, []Operand{c(5), c(6), c(0)})
	wantConst(t, res, isConst, 0, true)
}

func TestFoldAddmodMulmodNonzeroModulusDeclined(t *testing.T) {
	res, isConst := fold(ADDMOD, 3, []Operand{c(5), c(6), c(4)})
	if isConst {
		t.Fatal("non-zero modulus ADDMOD must not be folded")
	}
	if len(res) != 1 || res[0].Kind != KindInstructionRef {
		t.Fatalf("unfolded ADDMOD should synthesize an InstructionRef, got %+v", res)
	}
}

func TestFoldIdentities(t *testing.T) {
	nonConst := InstructionRef(1, 0)

	res, isConst := fold(ADD, 0, []Operand{nonConst, c(0)})
	if isConst {
		t.Fatal("x+0 identity result is not itself a Constant, so is_constant must be false")
	}
	if len(res) != 1 || !res[0].Equal(nonConst) {
		t.Fatalf("ADD identity should return the non-constant operand unchanged, got %+v", res)
	}

	res, isConst = fold(MUL, 0, []Operand{nonConst, c(0)})
	wantConst(t, res, isConst, 0, true)

	res, isConst = fold(SUB, 0, []Operand{nonConst, c(0)})
	if isConst || len(res) != 1 || !res[0].Equal(nonConst) {
		t.Fatalf("x-0 should return x unchanged, got %+v isConst=%v", res, isConst)
	}
}

func TestFoldSignedOpcodesDeclined(t *testing.T) {
	res, isConst := fold(SDIV, 0, []Operand{c(10), c(3)})
	if isConst {
		t.Fatal("SDIV must not be folded")
	}
	if len(res) != 1 || res[0].Kind != KindInstructionRef {
		t.Fatalf("unfolded SDIV should synthesize an InstructionRef, got %+v", res)
	}
}

func TestFoldByteAndShift(t *testing.T) {
	val := uint256.NewInt(0xAABBCCDD)
	res, isConst := fold(BYTE, 0, []Operand{c(31), Constant(0, val)})
	wantConst(t, res, isConst, 0xDD, true)

	res, isConst = fold(BYTE, 0, []Operand{c(32), c(0xff)})
	wantConst(t, res, isConst, 0, true)

	res, isConst = fold(SHL, 0, []Operand{c(4), c(1)})
	wantConst(t, res, isConst, 16, true)

	res, isConst = fold(SHR, 0, []Operand{c(256), c(1)})
	wantConst(t, res, isConst, 0, true)
}

package vm

import "github.com/holiman/uint256"

// IInstruction is one decoded (or failed-to-decode) opcode, annotated with
// its position, its operands, and whatever the optimizer has determined
// about its constancy and observability.
type IInstruction struct {
	Address   int // byte offset of the opcode within the contract
	GlobalIdx int // monotonic index across the whole program

	Recognized bool   // false if Raw did not decode to a known opcode
	Op         OpCode // valid when Recognized
	Raw        byte   // the undecoded byte when !Recognized

	Operands []Operand // nil when the instruction consumes nothing

	IsConstant bool
	Ignoreable bool
	Value      []*uint256.Int // pushed literal / PC value / CODESIZE / folded result
}

// OpcodeString renders the instruction's opcode for diagnostics, whether or
// not it decoded.
func (ins *IInstruction) OpcodeString() string {
	if ins.Recognized {
		return ins.Op.String()
	}
	return OpCode(ins.Raw).String()
}

// Args returns the instruction's stack-argument arity, 0 for an undecoded byte.
func (ins *IInstruction) Args() int {
	if !ins.Recognized {
		return 0
	}
	return ins.Op.Args()
}

// Ret returns the instruction's stack-result arity, 0 for an undecoded byte.
func (ins *IInstruction) Ret() int {
	if !ins.Recognized {
		return 0
	}
	return ins.Op.Ret()
}

// Stops reports whether the instruction halts execution. An undecoded byte
// always halts, matching EVM semantics where any invalid opcode aborts.
func (ins *IInstruction) Stops() bool {
	if !ins.Recognized {
		return true
	}
	return ins.Op.Stops()
}

// IsJump reports whether the instruction is JUMP or JUMPI.
func (ins *IInstruction) IsJump() bool {
	return ins.Recognized && ins.Op.IsJump()
}

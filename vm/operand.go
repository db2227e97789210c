package vm

import "github.com/holiman/uint256"

// OperandKind tags which of the four Operand variants a value holds. Go has
// no native sum type, so the union is rendered as a struct with an explicit
// tag byte and a payload per variant, the same pattern used for OpCode's own
// byte-sized classification.
type OperandKind uint8

const (
	// KindStackRef references the abstract stack position Offset as it
	// existed at the start of the basic block (0 = top).
	KindStackRef OperandKind = iota
	// KindStackPop is a pre-optimization placeholder: "the Offset-th pop
	// at instruction IRef". Replaced during optimization; never present
	// in the output of a block that has been optimized.
	KindStackPop
	// KindConstant is a literal 256-bit value produced or propagated at IRef.
	KindConstant
	// KindInstructionRef is an opaque value produced as the ResultIndex-th
	// result of instruction IRef.
	KindInstructionRef
)

func (k OperandKind) String() string {
	switch k {
	case KindStackRef:
		return "StackRef"
	case KindStackPop:
		return "StackPop"
	case KindConstant:
		return "Constant"
	case KindInstructionRef:
		return "InstructionRef"
	default:
		return "Unknown"
	}
}

// Operand is the tagged union described by the Kind field: every variant
// carries IRef (the within-block index of the instruction that originated
// it), and Kind selects which of Offset, Value, or ResultIndex applies.
type Operand struct {
	Kind        OperandKind
	IRef        int
	Offset      int          // valid for KindStackRef, KindStackPop
	Value       *uint256.Int // valid for KindConstant
	ResultIndex int          // valid for KindInstructionRef
}

// StackRef builds a reference to stack position offset as it stood at block
// entry (offset 0 = top). iref is the instruction recording the reference.
func StackRef(iref, offset int) Operand {
	return Operand{Kind: KindStackRef, IRef: iref, Offset: offset}
}

// StackPop builds the pre-optimization placeholder for the offset-th value
// popped by instruction iref.
func StackPop(iref, offset int) Operand {
	return Operand{Kind: KindStackPop, IRef: iref, Offset: offset}
}

// Constant builds a literal operand; value is copied so later mutation of
// the caller's uint256.Int cannot alias this operand.
func Constant(iref int, value *uint256.Int) Operand {
	v := new(uint256.Int).Set(value)
	return Operand{Kind: KindConstant, IRef: iref, Value: v}
}

// InstructionRef builds an opaque reference to the resultIndex-th result of
// instruction iref.
func InstructionRef(iref, resultIndex int) Operand {
	return Operand{Kind: KindInstructionRef, IRef: iref, ResultIndex: resultIndex}
}

// IsSentinel reports whether o is the entry-slot sentinel StackRef(0, offset).
func (o Operand) IsSentinel() bool {
	return o.Kind == KindStackRef && o.IRef == 0
}

// Equal reports structural equality. Value is compared by magnitude, not
// pointer identity, since every constructor deep-copies its uint256.Int.
func (o Operand) Equal(other Operand) bool {
	if o.Kind != other.Kind || o.IRef != other.IRef {
		return false
	}
	switch o.Kind {
	case KindStackRef, KindStackPop:
		return o.Offset == other.Offset
	case KindConstant:
		if o.Value == nil || other.Value == nil {
			return o.Value == other.Value
		}
		return o.Value.Eq(other.Value)
	case KindInstructionRef:
		return o.ResultIndex == other.ResultIndex
	default:
		return false
	}
}

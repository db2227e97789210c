package vm

import "github.com/holiman/uint256"

// sentinelFloor is the number of unknown-value placeholders the abstract
// stack is pre-seeded with, representing real-stack slots that exist at
// block entry but whose contents this analysis never saw produced. A block
// that reaches deeper than this synthesizes entry references at offsets of
// sentinelFloor and above instead of crashing. It is a tuning parameter, not a hard limit: any larger value
// would work too, just seed more sentinels.
const sentinelFloor = 32

// Optimize runs the abstract-stack emulator on the block exactly once,
// lifting stack-machine operand references into explicit data-flow
// Operands and folding constants where the oracle allows it. Calling it
// again is a no-op.
func (b *BasicBlock) Optimize() {
	if b.Optimized {
		return
	}
	b.Optimized = true

	for _, ins := range b.Instructions {
		if !ins.Recognized {
			// Undecodable instruction: abort emulation for this block.
			// This is checked before any instruction is emulated, so
			// Optimized stays set and nothing else is mutated.
			return
		}
	}

	stack := make([]Operand, sentinelFloor)
	for i := 0; i < sentinelFloor; i++ {
		stack[i] = StackRef(0, i)
	}

	for idx := 0; idx < len(b.Instructions); idx++ {
		ins := b.Instructions[idx]
		op := ins.Op

		switch {
		case op.PushesConstant():
			ins.Ignoreable = true
			stack = prepend(stack, Constant(idx, ins.Value[0]))

		default:
			if pos, ok := op.DupPosition(); ok {
				emulateDup(b, ins, idx, pos, &stack)
			} else if pos, ok := op.SwapPosition(); ok {
				emulateSwap(b, ins, pos, &stack)
			} else if op == POP {
				ins.Ignoreable = true
				if len(stack) > 0 {
					stack = stack[1:]
				} else {
					b.PopsAtEnd++
				}
				ins.Operands = nil
			} else if op == JUMPDEST {
				ins.Ignoreable = true
			} else {
				emulateGeneral(b, ins, idx, &stack)
			}
		}
	}

	finalize(b, stack)
}

func prepend(stack []Operand, o Operand) []Operand {
	return append([]Operand{o}, stack...)
}

func emulateDup(b *BasicBlock, ins *IInstruction, idx int, pos int, stackp *[]Operand) {
	stack := *stackp
	ins.Ignoreable = true
	stackLen := len(stack)

	if pos < stackLen {
		x := stack[pos]
		if x.Kind == KindConstant {
			ins.IsConstant = true
			ins.Value = []*uint256.Int{new(uint256.Int).Set(x.Value)}
		}
		ins.Operands = []Operand{x}
		*stackp = prepend(stack, x)
		return
	}

	posAtStart := pos - stackLen + sentinelFloor + b.PopsAtEnd
	a := StackRef(0, posAtStart)
	ins.Operands = []Operand{a}
	*stackp = prepend(stack, a)
}

func emulateSwap(b *BasicBlock, ins *IInstruction, pos int, stackp *[]Operand) {
	stack := *stackp
	stackLen := len(stack)

	switch {
	case stackLen == 0:
		ins.Ignoreable = false
		ins.Operands = []Operand{
			StackRef(0, b.PopsAtEnd+sentinelFloor),
			StackRef(0, pos+b.PopsAtEnd+sentinelFloor),
		}

	case pos >= stackLen:
		ins.Ignoreable = false
		posAtStart := pos - stackLen + sentinelFloor + b.PopsAtEnd
		top := stack[0]
		synth := StackRef(0, posAtStart)
		ins.Operands = []Operand{top, synth}
		*stackp = prepend(stack[1:], synth)

	default:
		ins.Ignoreable = true
		ins.Operands = []Operand{stack[0], stack[pos]}
		stack[0], stack[pos] = stack[pos], stack[0]
	}
}

func emulateGeneral(b *BasicBlock, ins *IInstruction, idx int, stackp *[]Operand) {
	stack := *stackp
	op := ins.Op
	args := op.Args()

	curPops := b.PopsAtEnd
	curLen := len(stack)

	consumed := make([]Operand, 0, args)
	for a := 0; a < args; a++ {
		if len(stack) > 0 {
			consumed = append(consumed, stack[0])
			stack = stack[1:]
		} else {
			posAtStart := a + curPops - curLen + sentinelFloor
			consumed = append(consumed, StackRef(0, posAtStart))
			b.PopsAtEnd++
		}
	}

	results, isConstant := fold(op, idx, consumed)
	if isConstant {
		ins.IsConstant = true
		ins.Ignoreable = true
		values := make([]*uint256.Int, 0, len(results))
		for _, r := range results {
			if r.Kind == KindConstant {
				values = append(values, r.Value)
			}
		}
		ins.Value = values
	}

	for _, r := range results {
		stack = prepend(stack, r)
	}

	if len(consumed) > 0 {
		ins.Operands = consumed
	}

	*stackp = stack
}

// finalize reconciles the abstract stack against the sentinel floor: excess
// pushes become the block's returns (top-first, matching the index-0-is-top
// convention used throughout this package), excess pops add to pops_at_end,
// and any surviving entry that no longer matches its original sentinel is
// recorded as a write to a pre-existing stack slot.
func finalize(b *BasicBlock, stack []Operand) {
	offset := 0

	switch {
	case len(stack) > sentinelFloor:
		n := len(stack) - sentinelFloor
		b.Returns = append([]Operand{}, stack[:n]...)
		stack = stack[n:]
	case len(stack) < sentinelFloor:
		offset = sentinelFloor - len(stack)
		b.PopsAtEnd += offset
	}

	for i, item := range stack {
		pos := i + offset
		if item.Kind == KindStackRef && item.IRef == 0 && item.Offset == pos {
			continue
		}
		b.StackSets[pos] = item
	}
}

package vm

import "github.com/holiman/uint256"

// BasicBlock is a maximal run of instructions with a single entry and exit,
// delimited by a halt, a jump, or an incoming jump destination.
type BasicBlock struct {
	Address      int
	Instructions []*IInstruction

	Returns    []Operand     // pushed onto the real stack on exit, top first
	StackSets  map[int]Operand // final-stack-offset -> write to a pre-existing slot
	PopsAtEnd  int           // entry-existing slots discarded on exit
	EndsOnInvalid bool
	Optimized  bool
}

// SortedStackSetOffsets returns the keys of StackSets in ascending order,
// since Go map iteration order is random and output that varies run to run
// would make the CLI dump useless for diffing.
func (b *BasicBlock) SortedStackSetOffsets() []int {
	offsets := make([]int, 0, len(b.StackSets))
	for k := range b.StackSets {
		offsets = append(offsets, k)
	}
	for i := 1; i < len(offsets); i++ {
		for j := i; j > 0 && offsets[j-1] > offsets[j]; j-- {
			offsets[j-1], offsets[j] = offsets[j], offsets[j-1]
		}
	}
	return offsets
}

// parseBlock partitions one basic block starting at code[start], assigning
// global instruction indices beginning at globalIdx. It returns the block
// and the byte offset to resume partitioning from.
func parseBlock(code []byte, meta *CodeMeta, start int, globalIdx int) (*BasicBlock, int) {
	b := &BasicBlock{Address: start, StackSets: map[int]Operand{}}

	i := start
	localIdx := 0
	for i < len(code) {
		opByte := code[i]
		op := OpCode(opByte)
		recognized := Recognized(opByte)

		ins := &IInstruction{
			Address:    i,
			GlobalIdx:  globalIdx,
			Recognized: recognized,
			Op:         op,
			Raw:        opByte,
		}
		globalIdx++

		if !recognized {
			b.EndsOnInvalid = true
			b.Instructions = append(b.Instructions, ins)
			return b, i + 1
		}

		next := i + 1
		if width, ok := op.PushBytes(); ok {
			end := i + 1 + width
			if end > len(code) {
				end = len(code)
			}
			v := new(uint256.Int).SetBytes(code[i+1 : end])
			ins.Value = []*uint256.Int{v}
			ins.IsConstant = true
			next = i + 1 + width
		} else if op == PC {
			ins.Value = []*uint256.Int{uint256.NewInt(uint64(i))}
			ins.IsConstant = true
		} else if op == CODESIZE {
			ins.Value = []*uint256.Int{uint256.NewInt(uint64(len(code)))}
		}

		if k, ok := op.DupPosition(); ok {
			ins.Operands = []Operand{StackRef(localIdx, k)}
		} else if k, ok := op.SwapPosition(); ok {
			ins.Operands = []Operand{StackRef(localIdx, 0), StackRef(localIdx, k)}
		} else if a := op.Args(); a > 0 {
			ops := make([]Operand, a)
			for j := 0; j < a; j++ {
				ops[j] = StackPop(localIdx, j)
			}
			ins.Operands = ops
		}

		b.Instructions = append(b.Instructions, ins)
		localIdx++

		terminate := ins.Stops() || ins.IsJump()
		if !terminate && next < len(code) && meta.IsValidJumpdest(next) {
			terminate = true
		}
		if terminate {
			return b, next
		}
		i = next
	}
	return b, i
}

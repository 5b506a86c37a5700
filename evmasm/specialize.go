package evmasm

// HandlerShape tags the calling convention a lowered instruction maps to
// at emission time. The specializer only re-tags instructions into one of
// these shapes; it never reorders or drops them.
type HandlerShape int

const (
	// ShapeGeneric calls handler_<mnemonic>(ctx) with no specialization.
	ShapeGeneric HandlerShape = iota
	// ShapePushConst calls handler_push_const(ctx, limb0..limb3) with the
	// PUSH immediate folded in as a compile-time constant.
	ShapePushConst
	// ShapeDup calls handler_dup<k>(ctx).
	ShapeDup
	// ShapeSwap calls handler_swap<k>(ctx).
	ShapeSwap
	// ShapeLabel is a JUMPDEST, a no-op label marker carrying no handler
	// call of its own.
	ShapeLabel
	// ShapeElided marks an instruction whose runtime effect is already
	// captured by the block's terminator emission and so must not also
	// produce a handler call: the terminating opcode itself (JUMP,
	// JUMPI, STOP, RETURN, REVERT, INVALID, SELFDESTRUCT, or an
	// undecodable byte), and, for a statically-resolved JUMP/JUMPI, the
	// adjacent PUSH that supplied the now-compile-time-constant target
	// (push-then-immediately-pop is a net-zero stack effect, so the
	// runtime push is skipped entirely rather than folded into a call).
	ShapeElided
)

// LoweredInstr is one entry of a block's specialized instruction list: the
// source Instruction plus the handler shape the emitter should use for it.
type LoweredInstr struct {
	Source Instruction
	Shape  HandlerShape
	// Slot holds the DUP/SWAP operand index (k in DUPk/SWAPk) when Shape
	// is ShapeDup or ShapeSwap.
	Slot int
}

// LoweredBlock is a basic block after peephole specialization: its
// instruction list re-tagged with handler shapes, plus a static stack
// height estimate scoped to this block only. No stack reconstruction is
// attempted across block boundaries.
type LoweredBlock struct {
	Block  *BasicBlock
	Instrs []LoweredInstr

	// MinEntryDepth is the minimum stack depth this block's instructions
	// require the entry stack to already have, assuming no instruction
	// outside the block is known. It never underflows below 0 within the
	// block by construction; it is a diagnostic annotation surfaced as an
	// emitter comment, not used to elide handler calls.
	MinEntryDepth int
}

// Specialize runs the per-block peephole pass over an Analysis's blocks.
// It is total: every instruction in every block maps to exactly one
// LoweredInstr, in original order.
func Specialize(a *Analysis) []*LoweredBlock {
	out := make([]*LoweredBlock, 0, len(a.Blocks))
	for _, b := range a.Blocks {
		out = append(out, specializeBlock(b))
	}
	return out
}

func specializeBlock(b *BasicBlock) *LoweredBlock {
	lb := &LoweredBlock{Block: b, Instrs: make([]LoweredInstr, 0, len(b.Instrs))}

	n := len(b.Instrs)
	depth := 0
	minDepth := 0
	for i, instr := range b.Instrs {
		li := LoweredInstr{Source: instr}

		switch {
		case i == n-1 && isElidedTerminatorInstr(instr):
			li.Shape = ShapeElided
		case instr.Op == JUMPDEST:
			li.Shape = ShapeLabel
		case instr.Op.IsPush():
			li.Shape = ShapePushConst
		case instr.Op.IsDup():
			li.Shape = ShapeDup
			li.Slot = instr.Op.DupSlot()
		case instr.Op.IsSwap():
			li.Shape = ShapeSwap
			li.Slot = instr.Op.SwapSlot()
		default:
			li.Shape = ShapeGeneric
		}

		pops, pushes := instr.Op.StackEffect()
		// DUPk reads the k-th item and SWAPk the (k+1)-th without popping
		// them, so they need that many items present even though their
		// net effect pops nothing.
		need := pops
		switch {
		case instr.Op.IsDup():
			need = instr.Op.DupSlot()
		case instr.Op.IsSwap():
			need = instr.Op.SwapSlot() + 1
		}
		if depth-need < minDepth {
			minDepth = depth - need
		}
		depth += pushes - pops

		lb.Instrs = append(lb.Instrs, li)
	}

	// A statically-resolved JUMP/JUMPI target is always the PUSH
	// immediately preceding it (the adjacency rule in the Block
	// Analyzer); that PUSH's value is consumed entirely at translation
	// time, so it never needs to reach the runtime stack.
	if n >= 2 && (b.Terminator.Kind == TermStaticJump || b.Terminator.Kind == TermStaticJumpI) {
		lb.Instrs[n-2].Shape = ShapeElided
	}

	lb.MinEntryDepth = -minDepth
	return lb
}

// isElidedTerminatorInstr reports whether instr is the literal opcode that
// ends a block with an explicit terminator (as opposed to a synthetic
// Fallthrough, where the last instruction is an ordinary opcode that still
// needs its handler call). Such an instruction's runtime behavior is
// emitted once, by the terminator rule, and must not also produce a
// per-instruction handler call.
func isElidedTerminatorInstr(instr Instruction) bool {
	if instr.Invalid {
		return true
	}
	switch instr.Op {
	case STOP, RETURN, REVERT, INVALID, SELFDESTRUCT, JUMP, JUMPI:
		return true
	}
	return false
}

package cppgen

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/eth2030/evmcc/evmasm"
	"github.com/eth2030/evmcc/log"
)

// ErrHostContractMismatch is raised when a non-nil HostRegistry is
// supplied and a lowered instruction references a handler the registry
// does not list.
var ErrHostContractMismatch = errors.New("cppgen: host registry does not provide a handler for this opcode")

// ErrCapacity mirrors evmasm.ErrCapacity for the emission-time size check.
var ErrCapacity = errors.New("cppgen: program exceeds size cap")

// emitLog resolves the module logger at call time, so a logger installed
// via log.SetDefault after package init is still honored.
func emitLog() *log.Logger { return log.Default().Module("cppgen") }

// Options configures Emit.
type Options struct {
	// ContractName is used only in the banner comment.
	ContractName string
	// FunctionName is the emitted compiled function's name. Defaults to
	// "evmcc_run" when empty.
	FunctionName string
	// Registry validates handler references at emission time. Nil
	// disables validation, deferring any mismatch to C++ compilation.
	Registry *HostRegistry
	// ConstructorCode, if non-nil, is emitted as a named byte-array
	// constant for the host's generic interpreter. The constructor is
	// never translated, only passed through.
	ConstructorCode []byte
	// SizeCap overrides evmasm.DefaultSizeCap for the emission-time size
	// check. 0 selects the default.
	SizeCap int
}

// Emit produces the `.cpp` translation unit and the `.bb_list` sidecar
// for a translated program. It is total given a block-analyzer output
// that is valid by construction, except for the capacity check and, when
// a registry is supplied, the host-contract check.
func Emit(t *evmasm.Translated, opts Options) (cppOut []byte, bbList []byte, err error) {
	sizeCap := opts.SizeCap
	if sizeCap <= 0 {
		sizeCap = evmasm.DefaultSizeCap
	}
	if len(t.Program.Code) > sizeCap {
		return nil, nil, fmt.Errorf("%w: %d bytes exceeds cap of %d", ErrCapacity, len(t.Program.Code), sizeCap)
	}

	fnName := opts.FunctionName
	if fnName == "" {
		fnName = "evmcc_run"
	}

	var cpp bytes.Buffer
	cpp.WriteString(bannerTemplate(opts.ContractName, t.Program.Fingerprint))
	cpp.WriteString(includeBundle)
	if opts.ConstructorCode != nil {
		writeConstructorCode(&cpp, opts.ConstructorCode)
	}
	cpp.WriteString(signatureTemplate(fnName))
	cpp.WriteString(prologueTemplate)
	if len(t.Blocks) > 0 {
		cpp.WriteString(entryJump)
	}
	cpp.WriteString(dispatchHeader)
	writeDispatchCases(&cpp, t.Analysis.JumpDests)
	cpp.WriteString(dispatchDefault)

	var bb bytes.Buffer
	for _, lb := range t.Blocks {
		if err := writeBlock(&cpp, lb, opts.Registry); err != nil {
			return nil, nil, err
		}
		writeBBListLine(&bb, lb.Block)
	}

	cpp.WriteString(trailerTemplate)

	emitLog().Debug("emitted translation unit",
		"contract", opts.ContractName, "blocks", len(t.Blocks), "bytes", cpp.Len())

	return cpp.Bytes(), bb.Bytes(), nil
}

func writeConstructorCode(w *bytes.Buffer, code []byte) {
	fmt.Fprintf(w, "static constexpr unsigned char kConstructorCode[%d] = {", len(code))
	for i, b := range code {
		if i > 0 {
			w.WriteByte(',')
		}
		fmt.Fprintf(w, "0x%02x", b)
	}
	w.WriteString("};\n")
}

func writeDispatchCases(w *bytes.Buffer, jumpDests map[int]bool) {
	pcs := make([]int, 0, len(jumpDests))
	for pc := range jumpDests {
		pcs = append(pcs, pc)
	}
	sort.Ints(pcs)
	for _, pc := range pcs {
		fmt.Fprintf(w, "    case %d: goto L%d;\n", pc, pc)
	}
}

func writeBBListLine(w *bytes.Buffer, b *evmasm.BasicBlock) {
	fmt.Fprintf(w, "%d %d %s\n", b.Start, b.End, b.Terminator.Kind)
}

func writeBlock(w *bytes.Buffer, lb *evmasm.LoweredBlock, reg *HostRegistry) error {
	fmt.Fprintf(w, "L%d: { // min_entry_depth=%d\n", lb.Block.Start, lb.MinEntryDepth)
	for _, li := range lb.Instrs {
		if err := writeInstr(w, li, reg); err != nil {
			return err
		}
	}
	w.WriteString("}\n")
	if err := writeTerminator(w, lb.Block.Terminator, reg); err != nil {
		return err
	}
	w.WriteString("\n")
	return nil
}

func writeInstr(w *bytes.Buffer, li evmasm.LoweredInstr, reg *HostRegistry) error {
	switch li.Shape {
	case evmasm.ShapeLabel:
		fmt.Fprintf(w, "    // pc=%d JUMPDEST\n", li.Source.PC)
		return nil
	case evmasm.ShapeElided:
		fmt.Fprintf(w, "    // pc=%d %s folded into terminator\n", li.Source.PC, li.Source.Op)
		return nil
	case evmasm.ShapePushConst:
		if reg != nil && !reg.HasControl(ctrlPushConst) {
			return fmt.Errorf("%w: %s at pc=%d", ErrHostContractMismatch, ctrlPushConst, li.Source.PC)
		}
		limbs := pushLimbs(li.Source)
		fmt.Fprintf(w, "    handler_push_const(ctx, 0x%016xULL, 0x%016xULL, 0x%016xULL, 0x%016xULL); // pc=%d\n",
			limbs[0], limbs[1], limbs[2], limbs[3], li.Source.PC)
		return nil
	case evmasm.ShapeDup:
		if reg != nil && !reg.HasDup() {
			return fmt.Errorf("%w: handler_dup<%d> at pc=%d", ErrHostContractMismatch, li.Slot, li.Source.PC)
		}
		fmt.Fprintf(w, "    handler_dup<%d>(ctx); // pc=%d\n", li.Slot, li.Source.PC)
		return nil
	case evmasm.ShapeSwap:
		if reg != nil && !reg.HasSwap() {
			return fmt.Errorf("%w: handler_swap<%d> at pc=%d", ErrHostContractMismatch, li.Slot, li.Source.PC)
		}
		fmt.Fprintf(w, "    handler_swap<%d>(ctx); // pc=%d\n", li.Slot, li.Source.PC)
		return nil
	default:
		name := "handler_" + mnemonic(li.Source.Op)
		if reg != nil {
			got, ok := reg.HandlerFor(li.Source.Op)
			if !ok {
				return fmt.Errorf("%w: opcode %s at pc=%d", ErrHostContractMismatch, li.Source.Op, li.Source.PC)
			}
			name = got
		}
		fmt.Fprintf(w, "    %s(ctx); // pc=%d\n", name, li.Source.PC)
		return nil
	}
}

func writeTerminator(w *bytes.Buffer, term evmasm.Terminator, reg *HostRegistry) error {
	needControl := func(name string) error {
		if reg != nil && !reg.HasControl(name) {
			return fmt.Errorf("%w: %s", ErrHostContractMismatch, name)
		}
		return nil
	}

	switch term.Kind {
	case evmasm.TermStaticJump:
		fmt.Fprintf(w, "goto L%d;\n", term.Target)
	case evmasm.TermStaticJumpI:
		if err := needControl(ctrlPopNonzero); err != nil {
			return err
		}
		fmt.Fprintf(w, "if (handler_pop_nonzero(ctx)) goto L%d; else goto L%d;\n", term.Target, term.Fallthrough)
	case evmasm.TermDynamicJump:
		if err := needControl(ctrlPop); err != nil {
			return err
		}
		w.WriteString("pc = handler_pop(ctx); goto __dispatch;\n")
	case evmasm.TermDynamicJumpI:
		if err := needControl(ctrlPopCond); err != nil {
			return err
		}
		fmt.Fprintf(w, "if (handler_pop_cond(ctx, /*target=*/&pc)) goto __dispatch; else goto L%d;\n", term.Fallthrough)
	case evmasm.TermReturn:
		if err := needControl(ctrlReturn); err != nil {
			return err
		}
		w.WriteString("return handler_return(ctx);\n")
	case evmasm.TermRevert:
		if err := needControl(ctrlRevert); err != nil {
			return err
		}
		w.WriteString("return handler_revert(ctx);\n")
	case evmasm.TermStop:
		w.WriteString("return exit_stop;\n")
	case evmasm.TermSelfDestruct:
		if err := needControl(ctrlSelfdestruct); err != nil {
			return err
		}
		w.WriteString("return handler_selfdestruct(ctx);\n")
	case evmasm.TermInvalid:
		w.WriteString("return exit_invalid;\n")
	case evmasm.TermFallthrough:
		fmt.Fprintf(w, "goto L%d;\n", term.Fallthrough)
	}
	return nil
}

// pushLimbs splits a PUSH immediate into four big-endian 64-bit limbs for
// the handler_push_const call site.
func pushLimbs(instr evmasm.Instruction) [4]uint64 {
	var limbs [4]uint64
	if instr.Pushed == nil {
		return limbs
	}
	b := instr.Pushed.Bytes32()
	for i := 0; i < 4; i++ {
		var v uint64
		for j := 0; j < 8; j++ {
			v = v<<8 | uint64(b[i*8+j])
		}
		limbs[i] = v
	}
	return limbs
}

func mnemonic(op evmasm.OpCode) string {
	name := op.String()
	b := []byte(name)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c - 'A' + 'a'
		}
	}
	return string(b)
}

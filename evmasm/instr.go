package evmasm

import (
	"bytes"
	"io"

	"github.com/holiman/uint256"
)

// Instruction is a single decoded EVM instruction: an opcode at a given
// program counter, plus the immediate bytes that follow a PUSH opcode.
type Instruction struct {
	PC     int
	Op     OpCode
	Pushed *uint256.Int // non-nil only for PUSH1..PUSH32

	// Invalid marks a byte that does not correspond to a defined opcode.
	// Disassembly never aborts on such bytes; it records them as Invalid
	// so the Block Analyzer can place a trap terminator. A PUSH whose
	// immediate runs past the end of the program is not Invalid: its
	// missing bytes are zero-padded.
	Invalid bool
}

// Disassembly is the result of disassembling a Program: the linear
// instruction stream plus a PC-indexed lookup (InstrAt) of instruction
// boundaries.
type Disassembly struct {
	Instrs []Instruction

	// byPC maps a program counter to its index in Instrs, populated only
	// for PCs that begin an instruction (as opposed to falling inside a
	// PUSH immediate).
	byPC map[int]int
}

// InstrAt returns the instruction beginning at pc, and whether one exists.
// A pc that falls inside a PUSH immediate is not a valid instruction
// boundary and reports ok=false, mirroring the JUMPDEST validity rule.
func (d *Disassembly) InstrAt(pc int) (Instruction, bool) {
	idx, ok := d.byPC[pc]
	if !ok {
		return Instruction{}, false
	}
	return d.Instrs[idx], true
}

// Disassemble decodes code into a linear instruction stream. It never
// returns an error: undecodable bytes are recorded as Invalid
// instructions rather than aborting, since a Solidity-compiled contract
// may legitimately contain unreachable data bytes (e.g. after a
// terminating JUMP) that are never executed and so need not parse as
// valid opcodes.
func Disassemble(code []byte) *Disassembly {
	reader := bytes.NewReader(code)
	d := &Disassembly{byPC: make(map[int]int, len(code))}

	pc := 0
	for {
		b, err := reader.ReadByte()
		if err == io.EOF {
			break
		}

		op := OpCode(b)
		instr := Instruction{PC: pc, Op: op}

		if op.IsPush() {
			n := op.PushSize()
			buf := make([]byte, n)
			read, _ := reader.Read(buf)
			// A truncated PUSH immediate is zero-padded on the right, the
			// same rule the reference interpreter applies when a PUSH's
			// operand runs past the end of the code.
			for i := read; i < n; i++ {
				buf[i] = 0
			}
			instr.Pushed = new(uint256.Int).SetBytes(buf)
			d.recordInstr(pc, instr)
			pc += 1 + n
			continue
		}

		if _, known := opCodeNames[op]; !known {
			instr.Invalid = true
		}
		d.recordInstr(pc, instr)
		pc++
	}

	return d
}

func (d *Disassembly) recordInstr(pc int, instr Instruction) {
	d.byPC[pc] = len(d.Instrs)
	d.Instrs = append(d.Instrs, instr)
}

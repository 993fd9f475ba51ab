package vm

import (
	"fmt"
	"io"
	"strings"
)

// offsetDigits returns the number of hex digits used for the leading
// offset column: 8 on a 64-bit host, 4 otherwise.
func offsetDigits() int {
	if wordSize >= 8 {
		return 8
	}
	return 4
}

// disassembleInstruction reads one instruction from r and writes its
// disassembly line to w. Offset is the reader's position before the
// opcode byte is consumed.
func disassembleInstruction(w io.Writer, r *CodeBlockReader, digits int) {
	offset := r.Index()
	code := Opcode(r.Get())

	found, info := GetOpcodeInfo(code)
	if !found {
		fmt.Fprintf(w, "%0*X unknown (%02X)\n", digits, offset, byte(code))
		return
	}

	fmt.Fprintf(w, "%0*X %-8s ", digits, offset, info.Name)

	if operandWidth := info.Kind.Width() - 1; operandWidth > 0 {
		operand := make([]byte, operandWidth)
		if n := r.Read(operand); n < operandWidth {
			failBufferOverrun("buffer overrun")
		}
		parts := make([]string, operandWidth)
		for i, b := range operand {
			parts[i] = fmt.Sprintf("%02X", b)
		}
		fmt.Fprint(w, strings.Join(parts, " "))
	}

	fmt.Fprint(w, "\n")
}

// DisassembleInstruction reads and prints exactly one instruction from r,
// for callers that want to step through a CodeBlock one instruction at a
// time (e.g. an interactive disassembly stepper) rather than dump it all
// at once.
func DisassembleInstruction(w io.Writer, r *CodeBlockReader) {
	disassembleInstruction(w, r, offsetDigits())
}

// DisassembleCodeBlock walks block's bytes one instruction at a time,
// writing one deterministic disassembly line per instruction to w. A
// zero-length block produces no output.
func DisassembleCodeBlock(w io.Writer, block *CodeBlock) {
	r := block.NewReader()
	digits := offsetDigits()

	for !r.AtEnd() {
		disassembleInstruction(w, r, digits)
	}
}

// DisassembleCodeBlockToString is a convenience wrapper returning the
// disassembly as a string, for callers (and tests) that don't want to
// manage an io.Writer.
func DisassembleCodeBlockToString(block *CodeBlock) string {
	var sb strings.Builder
	DisassembleCodeBlock(&sb, block)
	return sb.String()
}

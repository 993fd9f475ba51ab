package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisassembleEmptyCodeBlock(t *testing.T) {
	c := NewCodeBlock(16)

	assert.Equal(t, "", DisassembleCodeBlockToString(c))
}

func TestDisassembleNop(t *testing.T) {
	require.Equal(t, 8, wordSize, "this scenario's literal expected string assumes a 64-bit host")

	c := NewCodeBlock(0)
	c.Write([]byte{0x00})

	assert.Equal(t, "00000000 nop      \n", DisassembleCodeBlockToString(c))
}

func TestDisassembleUnknownOpcode(t *testing.T) {
	c := NewCodeBlock(0)
	c.Write([]byte{0xFE})

	assert.Equal(t, "00000000 unknown (FE)\n", DisassembleCodeBlockToString(c))
}

func TestDisassembleOperandBytes(t *testing.T) {
	c := NewCodeBlock(0)
	c.EmitRegs(0x40, 0x01, 0x02, 0x03) // "addr"

	assert.Equal(t, "00000000 addr     01 02 03\n", DisassembleCodeBlockToString(c))
}

func TestDisassembleMultipleInstructions(t *testing.T) {
	c := NewCodeBlock(0)
	c.EmitByte(0x00)   // nop, offset 0, width 1
	c.EmitFast(0x10, 7) // pushb, offset 1, width 2

	out := DisassembleCodeBlockToString(c)
	assert.Equal(t, "00000000 nop      \n00000001 pushb    07\n", out)
}

func TestDisassembleOperandOverrunIsFatal(t *testing.T) {
	c := NewCodeBlock(0)
	// A Fast-kind opcode with its one required operand byte missing.
	c.Push(0x10)

	assertFault(t, ErrBufferOverrun, func() { DisassembleCodeBlockToString(c) })
}

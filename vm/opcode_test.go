package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetOpcodeInfoNop(t *testing.T) {
	found, info := GetOpcodeInfo(0x00)

	assert.True(t, found)
	assert.Equal(t, "nop", info.Name)
	assert.Equal(t, KindByte, info.Kind)
}

func TestGetOpcodeInfoNeverYieldsEmptyName(t *testing.T) {
	for code := 0; code < 256; code++ {
		_, info := GetOpcodeInfo(Opcode(code))
		assert.NotEmpty(t, info.Name, "code %#x", code)
	}
}

func TestGetOpcodeInfoUnknown(t *testing.T) {
	found, info := GetOpcodeInfo(0xFE)

	assert.False(t, found)
	assert.Equal(t, "unknown", info.Name)
	assert.Equal(t, KindByte, info.Kind)
	assert.Equal(t, Opcode(0xFE), info.Code)
}

func TestInstrKindWidth(t *testing.T) {
	cases := map[InstrKind]int{
		KindByte: 1,
		KindFast: 2,
		KindCtrl: 4,
		KindData: 4,
		KindRegs: 4,
		KindLong: 6,
		KindJump: 6,
		KindFull: 8,
	}
	for kind, width := range cases {
		assert.Equal(t, width, kind.Width(), "kind %s", kind)
	}
}

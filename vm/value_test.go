package vm

import (
	"strings"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dumpString(t *testing.T, v Value) string {
	t.Helper()
	var b strings.Builder
	n, err := Dump(&b, v)
	require.NoError(t, err)
	assert.Equal(t, b.Len(), n)
	return b.String()
}

func TestDumpVoid(t *testing.T) {
	assert.Equal(t, "void", dumpString(t, VoidValue()))
}

func TestDumpBool(t *testing.T) {
	assert.Equal(t, "true", dumpString(t, BoolValue(true)))
	assert.Equal(t, "false", dumpString(t, BoolValue(false)))
}

func TestDumpByte(t *testing.T) {
	assert.Equal(t, "FF", dumpString(t, ByteValue(0xFF)))
}

func TestDumpUIntSInt(t *testing.T) {
	assert.Equal(t, "42", dumpString(t, UIntValue(42)))
	assert.Equal(t, "-7", dumpString(t, SIntValue(-7)))
}

func TestDumpReal(t *testing.T) {
	assert.Equal(t, "3.5", dumpString(t, RealValue(3.5)))
}

func TestDumpVPtr(t *testing.T) {
	var x int
	v := VPtrValue(unsafe.Pointer(&x))
	out := dumpString(t, v)

	assert.True(t, strings.HasPrefix(out, "0x"))
	assert.Len(t, out, 2+int(vptrSize)*2)
}

func TestDumpUnknownKind(t *testing.T) {
	var b strings.Builder
	n, err := Dump(&b, Value{Kind: ValueKind(0xFFFF)})

	assert.Equal(t, -1, n)
	assert.Error(t, err)
}

func TestValueKindPredicates(t *testing.T) {
	assert.True(t, KindBool.IsLogical())
	assert.False(t, KindBool.IsNumeric())

	for _, k := range []ValueKind{KindByte, KindUInt, KindSInt, KindReal} {
		assert.True(t, k.IsNumeric(), k.String())
		assert.True(t, k.IsFormattable(), k.String())
	}

	assert.True(t, KindVPtr.IsPointer())
	assert.False(t, KindVoid.IsLogical())
	assert.False(t, KindVoid.IsNumeric())
	assert.False(t, KindVoid.IsPointer())
}

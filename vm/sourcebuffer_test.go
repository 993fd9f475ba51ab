package vm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceBufferFromTextGetCharASCII(t *testing.T) {
	b := NewSourceBufferFromText("ab")

	cp, width := b.GetChar(EncodingASCII, 0)
	assert.Equal(t, int32('a'), cp)
	assert.Equal(t, 1, width)

	cp, width = b.GetChar(EncodingASCII, 1)
	assert.Equal(t, int32('b'), cp)
	assert.Equal(t, 1, width)
}

func TestSourceBufferGetCharPastEndIsEOF(t *testing.T) {
	b := NewSourceBufferFromText("a")

	cp, width := b.GetChar(EncodingASCII, 1)
	assert.Equal(t, EOFCodepoint, cp)
	assert.Equal(t, 0, width)

	cp, width = b.GetChar(EncodingASCII, -1)
	assert.Equal(t, EOFCodepoint, cp)
	assert.Equal(t, 0, width)
}

func TestSourceBufferGetCharUTF8MultiByte(t *testing.T) {
	// U+4E2D encoded as E4 B8 AD.
	b := &SourceBuffer{data: []byte{0xE4, 0xB8, 0xAD, 0x00}, size: 3}

	cp, width := b.GetChar(EncodingUTF8, 0)
	assert.Equal(t, int32(0x4E2D), cp)
	assert.Equal(t, 3, width)

	cp, width = b.GetChar(EncodingUTF8, 3)
	assert.Equal(t, EOFCodepoint, cp)
	assert.Equal(t, 0, width)
}

func TestSourceBufferFromHandleDrainsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "src.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	b, err := NewSourceBufferFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, 5, b.Size())
	for i, want := range []byte("hello") {
		cp, _ := b.GetChar(EncodingASCII, i)
		assert.Equal(t, int32(want), cp)
	}
}

func TestSourceBufferShiftDownAndAppendTail(t *testing.T) {
	b := NewSourceBufferFromText("abcdef")

	b.shiftDown(3)
	assert.Equal(t, 3, b.Size())
	cp, _ := b.GetChar(EncodingASCII, 0)
	assert.Equal(t, int32('d'), cp)

	b.appendTail([]byte("XYZ"))
	assert.Equal(t, 6, b.Size())
	cp, _ = b.GetChar(EncodingASCII, 3)
	assert.Equal(t, int32('X'), cp)
}

package vm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceStreamLocationTracking(t *testing.T) {
	s := NewSourceStreamFromText("ab\ncd", EncodingASCII)

	cp := s.Read()
	require.Equal(t, int32('a'), cp)
	assert.Equal(t, Location{Ch: 1, Col: 1, Line: 0}, s.Stream())

	cp = s.Read()
	require.Equal(t, int32('b'), cp)
	assert.Equal(t, Location{Ch: 2, Col: 2, Line: 0}, s.Stream())

	cp = s.Read()
	require.Equal(t, int32('\n'), cp)
	assert.Equal(t, Location{Ch: 3, Col: 0, Line: 1}, s.Stream())

	cp = s.Read()
	require.Equal(t, int32('c'), cp)
	assert.Equal(t, Location{Ch: 4, Col: 1, Line: 1}, s.Stream())
}

func TestSourceStreamUTF8MultiByte(t *testing.T) {
	s := NewSourceStreamFromText(string([]byte{0xE4, 0xB8, 0xAD}), EncodingUTF8)

	cp := s.Read()
	assert.Equal(t, int32(0x4E2D), cp)

	cp = s.Read()
	assert.Equal(t, EOFCodepoint, cp)
}

func TestSourceStreamPeekDoesNotAdvance(t *testing.T) {
	s := NewSourceStreamFromText("ab", EncodingASCII)

	first := s.Peek()
	second := s.Peek()
	assert.Equal(t, first, second)
	assert.Equal(t, Location{Ch: 0, Col: 0, Line: 0}, s.Stream())

	s.Read()
	assert.Equal(t, int32('b'), s.Peek())
}

func TestSourceStreamForwardEqualsStream(t *testing.T) {
	s := NewSourceStreamFromText("xyz", EncodingASCII)

	s.Read()
	assert.Equal(t, s.Stream(), s.Forward())
}

func TestSourceStreamBeginLessOrEqualStream(t *testing.T) {
	s := NewSourceStreamFromText("abcdef", EncodingASCII)

	s.Read()
	s.Read()
	s.MarkLexemeStart()
	assert.Equal(t, s.Stream(), s.Begin())

	s.Read()
	begin, forward := s.Begin(), s.Forward()
	assert.LessOrEqual(t, begin.Ch, forward.Ch)
}

func TestSourceStreamPeekOffsetIsNonDestructive(t *testing.T) {
	s := NewSourceStreamFromText("abcd", EncodingASCII)

	before := s.Stream()
	cp := s.PeekOffset(3)
	assert.Equal(t, int32('c'), cp)
	assert.Equal(t, before, s.Stream())

	assert.Equal(t, int32('a'), s.Read())
}

func TestSourceStreamReadOffsetAdvances(t *testing.T) {
	s := NewSourceStreamFromText("abcd", EncodingASCII)

	cp := s.ReadOffset(2)
	assert.Equal(t, int32('b'), cp)
	assert.Equal(t, Location{Ch: 2, Col: 2, Line: 0}, s.Stream())
}

func TestSourceStreamCloseIsIdempotent(t *testing.T) {
	s := NewSourceStreamFromText("a", EncodingASCII)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}

func TestSourceStreamExhaustionReturnsEOF(t *testing.T) {
	s := NewSourceStreamFromText("a", EncodingASCII)

	s.Read()
	assert.Equal(t, EOFCodepoint, s.Read())
	assert.Equal(t, EOFCodepoint, s.Peek())
}

func TestSourceStreamFromHandleDoesNotOwnIt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "src.txt")
	require.NoError(t, os.WriteFile(path, []byte("ab"), 0o644))

	f, err := os.Open(path)
	require.NoError(t, err)

	s, err := NewSourceStreamFromHandle(f, path, EncodingASCII)
	require.NoError(t, err)

	assert.Equal(t, int32('a'), s.Read())
	require.NoError(t, s.Close())

	// The stream must not have closed the caller's handle: closing it
	// here must still succeed.
	assert.NoError(t, f.Close())
}

package vm

import (
	"io"
	"os"
	"unicode/utf8"
)

// pageSize is the recommended chunk size for draining a file or refilling
// a stream's tail.
const pageSize = 4096

// EOFCodepoint is the distinguished end-of-input return value. It is
// never itself a valid Unicode scalar value.
const EOFCodepoint int32 = -1

// Encoding selects how GetChar interprets the bytes of a SourceBuffer.
type Encoding int

const (
	EncodingASCII Encoding = iota
	EncodingUTF8
)

// SourceBuffer owns a contiguous window of source bytes with a known
// logical size. It is opaque to character encoding; GetChar is the only
// operation that interprets the bytes it holds.
type SourceBuffer struct {
	data []byte // capacity, always at least size+1 (trailing sentinel byte)
	size int    // logical content length, excludes the sentinel
}

// NewSourceBufferFromText copies text into a fresh buffer with a
// guaranteed trailing zero byte.
func NewSourceBufferFromText(text string) *SourceBuffer {
	data := make([]byte, len(text)+1)
	copy(data, text)
	return &SourceBuffer{data: data, size: len(text)}
}

func fileSize(f *os.File) (int64, error) {
	cur, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	end, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := f.Seek(cur, io.SeekStart); err != nil {
		return 0, err
	}
	return end - cur, nil
}

// NewSourceBufferFromHandle drains f in full, in page-sized reads, into a
// buffer sized exactly to the handle's remaining content plus a trailing
// sentinel byte. The caller retains ownership of f.
func NewSourceBufferFromHandle(f *os.File) (*SourceBuffer, error) {
	size, err := fileSize(f)
	if err != nil {
		return nil, ioFault("seek", err)
	}

	data := make([]byte, size+1)
	var read int64
	for read < size {
		end := read + pageSize
		if end > size {
			end = size
		}
		n, err := f.Read(data[read:end])
		read += int64(n)
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, ioFault("read", err)
		}
		if n == 0 {
			break
		}
	}

	return &SourceBuffer{data: data, size: int(read)}, nil
}

// NewSourceBufferFromPath opens path for binary read, drains it in full
// via NewSourceBufferFromHandle, and closes the handle before returning.
func NewSourceBufferFromPath(path string) (*SourceBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ioFault("open "+path, err)
	}
	defer f.Close()
	return NewSourceBufferFromHandle(f)
}

// Size returns the buffer's logical content length.
func (b *SourceBuffer) Size() int { return b.size }

// shiftDown discards the first `from` bytes of content, moving the
// remainder down to offset zero. Used by SourceStream's refill protocol
// to drop a consumed lexeme prefix before appending fresh bytes.
func (b *SourceBuffer) shiftDown(from int) {
	if from <= 0 {
		return
	}
	n := copy(b.data, b.data[from:b.size])
	b.size = n
}

// appendTail grows the buffer if necessary and appends chunk to the live
// content, extending size.
func (b *SourceBuffer) appendTail(chunk []byte) {
	needed := b.size + len(chunk)
	if needed+1 > len(b.data) {
		next := make([]byte, needed+1)
		copy(next, b.data[:b.size])
		b.data = next
	}
	copy(b.data[b.size:], chunk)
	b.size = needed
}

// GetChar decodes the codepoint at position under encoding enc, returning
// the codepoint and the number of bytes it occupies. At or past the end
// of content this returns (EOFCodepoint, 0). Malformed UTF-8 returns the
// Unicode replacement character with a width of 1, so a caller always
// makes progress.
func (b *SourceBuffer) GetChar(enc Encoding, position int) (int32, int) {
	if position < 0 || position >= b.size {
		return EOFCodepoint, 0
	}
	if enc == EncodingASCII {
		return int32(b.data[position]), 1
	}

	r, width := utf8.DecodeRune(b.data[position:b.size])
	return int32(r), width
}

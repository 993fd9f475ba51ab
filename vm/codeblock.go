package vm

import (
	"encoding/binary"

	"github.com/kallos-vm/corevm/internal/align"
)

// CodeBlock is the byte buffer specialized for bytecode: the same
// growable-vector contract as ByteBuffer, plus offset-relative peek,
// absolute-index get, and a bulk write that extends capacity in a single
// resize.
type CodeBlock struct {
	array []byte
	count int
}

// NewCodeBlock allocates a code block of align.RoundUp(capacity, wordSize)
// bytes, or an empty block when capacity is zero or negative.
func NewCodeBlock(capacity int) *CodeBlock {
	c := &CodeBlock{}
	if capacity > 0 {
		c.array = make([]byte, align.RoundUp(capacity, wordSize))
	}
	return c
}

// Capacity returns the block's current allocated size in bytes.
func (c *CodeBlock) Capacity() int { return len(c.array) }

// Count returns the number of bytes currently pushed or written.
func (c *CodeBlock) Count() int { return c.count }

func (c *CodeBlock) resize(newCapacity int) {
	if newCapacity <= 0 {
		c.array = nil
		c.count = 0
		return
	}

	newCapacity = align.RoundUp(newCapacity, wordSize)
	next := make([]byte, newCapacity)
	copy(next, c.array[:min(c.count, len(c.array))])
	c.array = next

	if c.count >= newCapacity {
		c.count = newCapacity - 1
	}
}

func (c *CodeBlock) grow() {
	if c.Capacity() == 0 {
		c.resize(wordSize)
		return
	}
	c.resize(c.Capacity() * 2)
}

// Push appends value, growing by doubling when full, and returns it.
func (c *CodeBlock) Push(value byte) byte {
	if c.count >= c.Capacity() {
		c.grow()
	}
	c.array[c.count] = value
	c.count++
	return value
}

// PeekAt returns the byte offset positions back from the top of the
// block — offset 0 is the last pushed byte, offset 1 the one before it,
// and so on — without removing anything. Fails with index-out-of-bounds
// when offset puts the target outside the block.
func (c *CodeBlock) PeekAt(offset int) byte {
	index := c.count - offset - 1
	if index < 0 || index >= c.count {
		failIndexOutOfBounds(index)
	}
	return c.array[index]
}

// Pop removes and returns the last pushed byte. Fails with buffer-underrun
// on an empty block.
func (c *CodeBlock) Pop() byte {
	if c.count == 0 {
		failBufferUnderrun("buffer underrun")
	}
	c.count--
	return c.array[c.count]
}

// Top returns the last pushed byte without removing it. Fails with
// buffer-underrun on an empty block.
func (c *CodeBlock) Top() byte {
	if c.count == 0 {
		failBufferUnderrun("buffer underrun")
	}
	return c.array[c.count-1]
}

// GetAt performs an absolute-index, bounds-checked read. Fails with
// index-out-of-bounds when index is outside [0, count).
func (c *CodeBlock) GetAt(index int) byte {
	if index < 0 || index >= c.count {
		failIndexOutOfBounds(index)
	}
	return c.array[index]
}

// Write appends bytes to the tail of the block, expanding capacity in a
// single resize when the incoming span would overflow it.
func (c *CodeBlock) Write(bytes []byte) {
	n := len(bytes)
	if room := c.Capacity() - c.count; n > room {
		c.resize(c.Capacity() + (n - room))
	}
	copy(c.array[c.count:], bytes)
	c.count += n
}

// Bytes returns the block's pushed/written content. The slice aliases the
// block's backing array and must not be retained across further writes.
func (c *CodeBlock) Bytes() []byte {
	return c.array[:c.count]
}

// Emit* encode one instruction of the matching kind directly onto the
// block, multi-byte fields in the host's native byte order. They are the
// write side of the bytecode format: there is no text assembler in this
// module, so these are how a caller (or a test) produces bytecode for the
// disassembler to read back.

// EmitByte appends a KindByte instruction (opcode only).
func (c *CodeBlock) EmitByte(op Opcode) {
	c.Write([]byte{byte(op)})
}

// EmitFast appends a KindFast instruction (opcode + one byte).
func (c *CodeBlock) EmitFast(op Opcode, reg byte) {
	c.Write([]byte{byte(op), reg})
}

// EmitCtrl appends a KindCtrl instruction (opcode + 16-bit index + flag).
func (c *CodeBlock) EmitCtrl(op Opcode, index uint16, flag byte) {
	buf := make([]byte, 4)
	buf[0] = byte(op)
	binary.NativeEndian.PutUint16(buf[1:3], index)
	buf[3] = flag
	c.Write(buf)
}

// EmitData appends a KindData instruction (opcode + 8-bit dst + 16-bit
// source index).
func (c *CodeBlock) EmitData(op Opcode, dst byte, srcIndex uint16) {
	buf := make([]byte, 4)
	buf[0] = byte(op)
	buf[1] = dst
	binary.NativeEndian.PutUint16(buf[2:4], srcIndex)
	c.Write(buf)
}

// EmitRegs appends a KindRegs instruction (opcode + three byte fields).
func (c *CodeBlock) EmitRegs(op Opcode, r1, r2, r3 byte) {
	c.Write([]byte{byte(op), r1, r2, r3})
}

// EmitLong appends a KindLong instruction (opcode + 8-bit dst + two
// 16-bit source indices).
func (c *CodeBlock) EmitLong(op Opcode, dst byte, src1, src2 uint16) {
	buf := make([]byte, 6)
	buf[0] = byte(op)
	buf[1] = dst
	binary.NativeEndian.PutUint16(buf[2:4], src1)
	binary.NativeEndian.PutUint16(buf[4:6], src2)
	c.Write(buf)
}

// EmitJump appends a KindJump instruction (opcode + 32-bit signed
// displacement + flag).
func (c *CodeBlock) EmitJump(op Opcode, displacement int32, flag byte) {
	buf := make([]byte, 6)
	buf[0] = byte(op)
	binary.NativeEndian.PutUint32(buf[1:5], uint32(displacement))
	buf[5] = flag
	c.Write(buf)
}

// EmitFull appends a KindFull instruction (opcode + three 16-bit fields +
// flag). The original descriptor's comment for this kind (OhZhXhYF) packs
// all three non-opcode, non-flag fields as halfwords, not as one 8-bit
// dst plus two 16-bit fields — that is the layout used here, see
// DESIGN.md for why.
func (c *CodeBlock) EmitFull(op Opcode, z, x, y uint16, flag byte) {
	buf := make([]byte, 8)
	buf[0] = byte(op)
	binary.NativeEndian.PutUint16(buf[1:3], z)
	binary.NativeEndian.PutUint16(buf[3:5], x)
	binary.NativeEndian.PutUint16(buf[5:7], y)
	buf[7] = flag
	c.Write(buf)
}

// DecodeUint16 and DecodeUint32 interpret a byte span in the host's
// native order, the inverse of the Emit* helpers' encoding.
func DecodeUint16(b []byte) uint16 { return binary.NativeEndian.Uint16(b) }
func DecodeUint32(b []byte) uint32 { return binary.NativeEndian.Uint32(b) }

// CodeBlockReader is a non-owning cursor over a CodeBlock snapshot,
// borrowed by value at construction time. It must not outlive the
// CodeBlock it was built from.
type CodeBlockReader struct {
	array []byte
	count int
	index int
}

// NewReader returns a reader snapshotting the block's current contents.
func (c *CodeBlock) NewReader() *CodeBlockReader {
	return &CodeBlockReader{array: c.array[:c.count:c.count], count: c.count}
}

// NewCodeBlockReaderFromBytes builds a reader directly over a raw byte
// slice, without requiring an owning CodeBlock.
func NewCodeBlockReaderFromBytes(buffer []byte) *CodeBlockReader {
	return &CodeBlockReader{array: buffer, count: len(buffer)}
}

// Index returns the reader's current cursor position.
func (r *CodeBlockReader) Index() int { return r.index }

// Top returns the next unread byte without advancing. Fails with
// buffer-overrun past the end.
func (r *CodeBlockReader) Top() byte {
	if r.index >= r.count {
		failBufferOverrun("buffer overrun")
	}
	return r.array[r.index]
}

// Get returns the next unread byte and advances past it. Fails with
// buffer-overrun past the end.
func (r *CodeBlockReader) Get() byte {
	if r.index >= r.count {
		failBufferOverrun("buffer overrun")
	}
	v := r.array[r.index]
	r.index++
	return v
}

// Read copies up to n bytes into out, starting at the cursor, and
// advances by the number of bytes actually copied. Unlike Get/Top, a
// short read here is not itself fatal — it returns the count actually
// read so a caller (the disassembler's operand-consumption logic, for
// one) can decide whether a short read is an error in its own context.
func (r *CodeBlockReader) Read(out []byte) int {
	n := copy(out, r.array[r.index:r.count])
	r.index += n
	return n
}

// Peek returns the byte at index+offset without advancing. Fails with
// index-out-of-bounds — not buffer-overrun — when the target is outside
// the block, matching the original source's own asymmetry between
// Peek and Get/Top.
func (r *CodeBlockReader) Peek(offset int) byte {
	target := r.index + offset
	if target < 0 || target >= r.count {
		failIndexOutOfBounds(target)
	}
	return r.array[target]
}

// AtEnd reports whether the cursor has reached the end of the snapshot.
func (r *CodeBlockReader) AtEnd() bool { return r.index >= r.count }

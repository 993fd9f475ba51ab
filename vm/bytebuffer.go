package vm

import (
	"math"
	"unsafe"

	"github.com/kallos-vm/corevm/internal/align"
)

// wordSize is the machine-pointer word width used to align every buffer
// capacity in this package.
var wordSize = int(unsafe.Sizeof(uintptr(0)))

// ByteBuffer is a growable byte vector with push/pop/peek/get and a
// separate reader view. Capacity is always zero or a multiple of
// wordSize; count never exceeds capacity.
type ByteBuffer struct {
	array []byte // len(array) is the current capacity
	count int
}

// NewByteBuffer allocates a buffer of align.RoundUp(capacity, wordSize)
// bytes, or an empty buffer when capacity is zero or negative.
func NewByteBuffer(capacity int) *ByteBuffer {
	b := &ByteBuffer{}
	if capacity > 0 {
		b.array = make([]byte, align.RoundUp(capacity, wordSize))
	}
	return b
}

// Capacity returns the buffer's current allocated size in bytes.
func (b *ByteBuffer) Capacity() int { return len(b.array) }

// Count returns the number of bytes currently pushed.
func (b *ByteBuffer) Count() int { return b.count }

// Resize reallocates the buffer to hold align.RoundUp(newCapacity, wordSize)
// bytes, preserving as many existing bytes as fit. A newCapacity of zero or
// less releases the backing array entirely. If count exceeds the new
// capacity it is truncated to newCapacity-1.
func (b *ByteBuffer) Resize(newCapacity int) {
	if newCapacity <= 0 {
		b.array = nil
		b.count = 0
		return
	}

	newCapacity = align.RoundUp(newCapacity, wordSize)
	next := make([]byte, newCapacity)
	copy(next, b.array[:min(b.count, len(b.array))])
	b.array = next

	if b.count > newCapacity {
		b.count = newCapacity - 1
	}
}

// Expand grows capacity by offset, failing with a buffer-overrun Fault if
// the arithmetic would overflow the representable range.
func (b *ByteBuffer) Expand(offset int) {
	if offset < 0 {
		offset = 0
	}
	capacity := b.Capacity()
	if offset > math.MaxInt-capacity {
		failBufferOverrun("buffer overflow")
	}
	b.Resize(capacity + offset)
}

// Shrink reduces capacity by offset, failing with a buffer-underrun Fault
// if offset exceeds the current capacity.
func (b *ByteBuffer) Shrink(offset int) {
	capacity := b.Capacity()
	if offset > capacity {
		failBufferUnderrun("buffer underflow")
	}
	b.Resize(capacity - offset)
}

func (b *ByteBuffer) grow() {
	if b.Capacity() == 0 {
		b.Resize(wordSize)
		return
	}
	b.Resize(b.Capacity() * 2)
}

// Push appends value, growing the buffer by doubling (starting from one
// machine word) when full, and returns the pushed value.
func (b *ByteBuffer) Push(value byte) byte {
	if b.count >= b.Capacity() {
		b.grow()
	}
	b.array[b.count] = value
	b.count++
	return value
}

// Top returns the last pushed byte without removing it. Fails with
// buffer-underrun on an empty buffer.
func (b *ByteBuffer) Top() byte {
	if b.count == 0 {
		failBufferUnderrun("buffer underflow")
	}
	return b.array[b.count-1]
}

// Pop removes and returns the last pushed byte. Fails with buffer-underrun
// on an empty buffer.
func (b *ByteBuffer) Pop() byte {
	if b.count == 0 {
		failBufferUnderrun("buffer underflow")
	}
	b.count--
	return b.array[b.count]
}

// Get performs a bounds-checked read at index, failing with
// index-out-of-bounds when index is outside [0, count).
func (b *ByteBuffer) Get(index int) byte {
	if index < 0 || index >= b.count {
		failIndexOutOfBounds(index)
	}
	return b.array[index]
}

// Write appends bytes to the buffer, expanding capacity in a single resize
// if necessary.
func (b *ByteBuffer) Write(bytes []byte) {
	n := len(bytes)
	if room := b.Capacity() - b.count; n > room {
		b.Expand(n - room)
	}
	copy(b.array[b.count:], bytes)
	b.count += n
}

// ByteBufferReader is a non-owning cursor over a ByteBuffer. It borrows
// (array, count) by value at construction time: later pushes onto the
// owning ByteBuffer are not visible through an existing reader. The
// reader shares the owner's backing array, so a byte overwritten in place
// within the first count bytes (a Pop followed by a Push) is visible.
type ByteBufferReader struct {
	array []byte
	count int
	index int
}

// NewReader returns a reader snapshotting the buffer's current contents.
func (b *ByteBuffer) NewReader() *ByteBufferReader {
	return &ByteBufferReader{array: b.array[:b.count:b.count], count: b.count}
}

// Peek returns the next unread byte without advancing.
func (r *ByteBufferReader) Peek() byte {
	if r.index >= r.count {
		failBufferOverrun("buffer overrun")
	}
	return r.array[r.index]
}

// Next returns the next unread byte and advances past it.
func (r *ByteBufferReader) Next() byte {
	if r.index >= r.count {
		failBufferOverrun("buffer overrun")
	}
	v := r.array[r.index]
	r.index++
	return v
}

// Back steps the cursor back by one and returns the byte it now points at.
func (r *ByteBufferReader) Back() byte {
	if r.index == 0 {
		failBufferUnderrun("buffer underrun")
	}
	r.index--
	return r.array[r.index]
}

// AtEnd reports whether the cursor has reached the end of the snapshot.
func (r *ByteBufferReader) AtEnd() bool { return r.index >= r.count }

package vm

import (
	"bufio"
	"os"

	"github.com/google/uuid"
)

// Location is a position within a source stream: the number of bytes
// consumed since the stream was opened, plus the column and line derived
// from codepoints and line terminators seen so far.
type Location struct {
	Ch   int
	Col  int
	Line int
}

// SourceStream presents a single logical cursor over a possibly
// unbounded source, refilling its SourceBuffer from a file handle when
// needed, while tracking per-line and per-column location.
//
// Three Locations coexist: Begin (start of the current lexeme), Forward
// (lookahead position) and Stream (the committed cursor). The operations
// this type exposes — Peek/Read/PeekOffset/ReadOffset — never advance
// Forward independently of Stream, so the two always coincide; they are
// kept as separate accessors because a future lexer stage built on top of
// this type is expected to advance Forward ahead of Stream while
// scanning, then commit by moving Begin up to Forward.
//
// Ch is reported as a byte count since the stream was opened and is
// never decreased, even though the refill protocol (see refill) discards
// already-consumed bytes from the live buffer window and resets the
// buffer-relative cursor to zero. A private `discarded` counter bridges
// the two: the buffer-relative cursor tracks array bounds for refill
// purposes, while discarded+cursor gives the monotonic Ch spec.md's data
// model actually wants exposed.
type SourceStream struct {
	id            uuid.UUID
	path          string
	file          *os.File
	ownsFile      bool
	lineReader    *bufio.Reader
	isInteractive bool
	isInitialized bool
	isOpen        bool
	encoding      Encoding
	buffer        *SourceBuffer

	discarded int
	bufBegin  int
	bufPos    int // shared by Forward and Stream, see type doc

	col, line           int
	beginCol, beginLine int
}

// NewSourceStreamFromText opens a stream over an in-memory text literal.
// There is no file handle, so once the text is exhausted the stream is
// permanently at end-of-input.
func NewSourceStreamFromText(text string, encoding Encoding) *SourceStream {
	return &SourceStream{
		id:       uuid.New(),
		path:     "<text>",
		encoding: encoding,
		buffer:   NewSourceBufferFromText(text),
	}
}

// NewSourceStreamFromPath opens path, drains it in full, and owns the
// resulting handle (Close/Delete will close it).
func NewSourceStreamFromPath(path string, encoding Encoding) (*SourceStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ioFault("open "+path, err)
	}
	buffer, err := NewSourceBufferFromHandle(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &SourceStream{
		id:            uuid.New(),
		path:          path,
		file:          f,
		ownsFile:      true,
		isOpen:        true,
		isInitialized: true,
		encoding:      encoding,
		buffer:        buffer,
	}, nil
}

// NewSourceStreamFromHandle opens a stream over an already-open file
// handle, draining it in full. The stream does not own the handle: Close
// leaves it open to the caller.
func NewSourceStreamFromHandle(f *os.File, path string, encoding Encoding) (*SourceStream, error) {
	buffer, err := NewSourceBufferFromHandle(f)
	if err != nil {
		return nil, err
	}
	return &SourceStream{
		id:            uuid.New(),
		path:          path,
		file:          f,
		ownsFile:      false,
		isOpen:        true,
		isInitialized: true,
		encoding:      encoding,
		buffer:        buffer,
	}, nil
}

// NewSourceStreamFromStdin opens an interactive, line-buffered stream
// over standard input.
func NewSourceStreamFromStdin(encoding Encoding) *SourceStream {
	return &SourceStream{
		id:            uuid.New(),
		path:          "<stdin>",
		file:          os.Stdin,
		ownsFile:      false,
		lineReader:    bufio.NewReader(os.Stdin),
		isOpen:        true,
		isInteractive: true,
		encoding:      encoding,
		buffer:        NewSourceBufferFromText(""),
	}
}

// ID returns the stream's session identifier, stable for its lifetime.
// Holding many concurrently-open streams, a caller can use this to
// correlate a refill diagnostic back to the stream that produced it
// without relying on pointer identity.
func (s *SourceStream) ID() uuid.UUID { return s.id }

// Path returns the stream's display path.
func (s *SourceStream) Path() string { return s.path }

// Stream returns the committed cursor's current location.
func (s *SourceStream) Stream() Location {
	return Location{Ch: s.discarded + s.bufPos, Col: s.col, Line: s.line}
}

// Forward returns the lookahead cursor's current location. It always
// equals Stream() for the operations this type implements; see the type
// doc comment.
func (s *SourceStream) Forward() Location { return s.Stream() }

// Begin returns the start-of-lexeme location.
func (s *SourceStream) Begin() Location {
	return Location{Ch: s.discarded + s.bufBegin, Col: s.beginCol, Line: s.beginLine}
}

// MarkLexemeStart snaps Begin up to the current Stream position, the way
// a lexer commits the end of one lexeme as the start of the next.
func (s *SourceStream) MarkLexemeStart() {
	s.bufBegin = s.bufPos
	s.beginCol, s.beginLine = s.col, s.line
}

func (s *SourceStream) needsRefill(offset int) bool {
	return s.bufPos+offset >= s.buffer.Size()
}

// refill implements the five-step protocol: bail out if the stream isn't
// open or has no handle (1), read a fresh chunk (4) and fail without
// touching the buffer when the read returns zero bytes (2), then shift
// out the already-consumed lexeme prefix (3), append the chunk to the
// freed tail, fold the shift into the discarded counter and reset the
// buffer-relative begin (5).
func (s *SourceStream) refill() bool {
	if !s.isOpen || s.file == nil {
		return false
	}

	var chunk []byte
	if s.isInteractive {
		line, err := s.lineReader.ReadBytes('\n')
		if len(line) == 0 {
			if err != nil {
				s.isOpen = false
			}
			return false
		}
		chunk = line
	} else {
		buf := make([]byte, pageSize)
		n, _ := s.file.Read(buf)
		if n == 0 {
			s.isOpen = false
			return false
		}
		chunk = buf[:n]
	}

	moved := s.bufBegin
	if moved > 0 {
		s.buffer.shiftDown(moved)
	}

	s.buffer.appendTail(chunk)
	s.discarded += moved
	s.bufPos -= moved
	s.bufBegin = 0
	s.isInitialized = true

	return true
}

func (s *SourceStream) ensureReady(offset int) {
	for s.needsRefill(offset) {
		if !s.refill() {
			return
		}
	}
}

// Peek refills if necessary, then decodes and returns the codepoint at
// the forward location without advancing.
func (s *SourceStream) Peek() int32 {
	s.ensureReady(0)
	cp, _ := s.buffer.GetChar(s.encoding, s.bufPos)
	return cp
}

// Read refills if necessary, decodes the codepoint at the forward
// location, advances stream and forward by its byte width, and updates
// column/line: a newline resets column to zero and increments line; EOF
// and NUL make no positional change; anything else advances column by
// the codepoint's byte width.
func (s *SourceStream) Read() int32 {
	s.ensureReady(0)
	cp, width := s.buffer.GetChar(s.encoding, s.bufPos)
	s.bufPos += width

	switch cp {
	case '\n':
		s.col = 0
		s.line++
	case EOFCodepoint, 0:
		// no positional change
	default:
		s.col += width
	}

	return cp
}

// PeekOffset performs n consecutive reads and returns the last
// codepoint, leaving the stream's observable state unchanged. When the
// lookahead stays within bytes already buffered, this is exact; crossing
// a refill boundary on a non-seekable handle (e.g. a pipe on stdin)
// cannot be perfectly undone since those bytes are gone from the
// operating system's point of view once read, a limitation shared with
// the C `fgets`/`fread` primitives this protocol is modeled on.
func (s *SourceStream) PeekOffset(n int) int32 {
	savedData := append([]byte(nil), s.buffer.data...)
	savedSize := s.buffer.size
	savedPos, savedBegin, savedDiscarded := s.bufPos, s.bufBegin, s.discarded
	savedCol, savedLine := s.col, s.line
	savedInit, savedOpen := s.isInitialized, s.isOpen

	var cp int32
	for i := 0; i < n; i++ {
		cp = s.Read()
	}

	s.buffer.data = savedData
	s.buffer.size = savedSize
	s.bufPos, s.bufBegin, s.discarded = savedPos, savedBegin, savedDiscarded
	s.col, s.line = savedCol, savedLine
	s.isInitialized, s.isOpen = savedInit, savedOpen

	return cp
}

// ReadOffset performs n consecutive reads, advancing the stream each
// time, and returns the last codepoint read.
func (s *SourceStream) ReadOffset(n int) int32 {
	var cp int32
	for i := 0; i < n; i++ {
		cp = s.Read()
	}
	return cp
}

// Close marks the stream closed so that no further refill happens, closing
// the underlying file handle only if the stream itself opened it. Bytes
// already in the buffer can still be read afterwards. Idempotent. A stream
// built from a text literal or from NewSourceStreamFromStdin never owns
// a handle; one built from NewSourceStreamFromHandle is explicitly
// documented not to, leaving the handle open for the caller to manage.
func (s *SourceStream) Close() error {
	if !s.isOpen {
		return nil
	}
	s.isOpen = false
	if s.file != nil && s.ownsFile {
		f := s.file
		s.file = nil
		if err := f.Close(); err != nil {
			return ioFault("close", err)
		}
	}
	return nil
}

// Clear zeroes the buffer's content bytes without changing its size.
func (s *SourceStream) Clear() {
	for i := 0; i < s.buffer.size; i++ {
		s.buffer.data[i] = 0
	}
}

// Delete closes the stream and releases its buffer.
func (s *SourceStream) Delete() error {
	err := s.Close()
	s.buffer = nil
	return err
}

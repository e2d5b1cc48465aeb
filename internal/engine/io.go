package engine

import (
	"errors"
	"fmt"
	"io"

	"github.com/objcore/s3c/internal/pool"
)

// errSinkLimit stops the response copy once a capped sink is full. It is not
// a failure: the transaction finishes with the bytes accepted so far.
var errSinkLimit = errors.New("engine: sink size limit reached")

// BodySource streams a request body from either a positional reader (with a
// base offset and a byte limit) or an in-memory slice. It tracks the total
// bytes handed to the HTTP stack and records the first local read failure so
// it can be told apart from transport errors.
type BodySource struct {
	ra    io.ReaderAt
	base  int64
	limit int64 // > 0: hard cap on bytes produced

	mem []byte

	total int64
	err   error
}

// NewReaderAtSource streams limit bytes from ra starting at base. The
// reader's positional contract means the kernel file offset is never
// touched when ra is an *os.File.
func NewReaderAtSource(ra io.ReaderAt, base, limit int64) *BodySource {
	return &BodySource{ra: ra, base: base, limit: limit}
}

// NewMemSource streams the given bytes.
func NewMemSource(data []byte) *BodySource {
	return &BodySource{mem: data, limit: int64(len(data))}
}

// Read implements io.Reader for the HTTP stack.
func (s *BodySource) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	max := int64(len(p))
	if s.limit > 0 {
		left := s.limit - s.total
		if left <= 0 {
			return 0, io.EOF
		}
		if left < max {
			max = left
		}
	}

	if s.ra != nil {
		n, err := s.ra.ReadAt(p[:max], s.base+s.total)
		s.total += int64(n)
		if err != nil && err != io.EOF {
			s.err = fmt.Errorf("read source: %w", err)
			return n, s.err
		}
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	}

	if s.total >= int64(len(s.mem)) {
		return 0, io.EOF
	}
	n := copy(p[:max], s.mem[s.total:])
	s.total += int64(n)
	return n, nil
}

// Total returns the bytes produced so far.
func (s *BodySource) Total() int64 { return s.total }

// Err returns the first local read failure, if any.
func (s *BodySource) Err() error { return s.err }

type sinkKind int

const (
	sinkDiscard sinkKind = iota
	sinkWriterAt
	sinkMem
)

// BodySink receives a response body. The discard variant counts and drops
// bytes; the positional variant writes at base+total; the mem variant grows
// an owned buffer. A non-zero limit caps accepted bytes, after which the
// copy stops cleanly.
type BodySink struct {
	kind  sinkKind
	wa    io.WriterAt
	base  int64
	buf   *pool.Buffer
	limit int64

	total int64
	err   error
}

// NewDiscardSink drops the body while counting it.
func NewDiscardSink() *BodySink {
	return &BodySink{kind: sinkDiscard}
}

// NewWriterAtSink writes the body to wa at base+offset. A non-zero limit
// caps the bytes written.
func NewWriterAtSink(wa io.WriterAt, base, limit int64) *BodySink {
	return &BodySink{kind: sinkWriterAt, wa: wa, base: base, limit: limit}
}

// NewMemSink appends the body to buf, uncapped.
func NewMemSink(buf *pool.Buffer) *BodySink {
	return &BodySink{kind: sinkMem, buf: buf}
}

// Write implements io.Writer for the HTTP stack.
func (s *BodySink) Write(p []byte) (int, error) {
	if s.kind == sinkDiscard {
		s.total += int64(len(p))
		return len(p), nil
	}

	toWrite := int64(len(p))
	if s.limit > 0 {
		left := s.limit - s.total
		if left <= 0 {
			return 0, errSinkLimit
		}
		if left < toWrite {
			toWrite = left
		}
	}

	var n int
	var err error
	switch s.kind {
	case sinkWriterAt:
		n, err = s.wa.WriteAt(p[:toWrite], s.base+s.total)
		if err != nil {
			s.total += int64(n)
			s.err = fmt.Errorf("write sink: %w", err)
			return n, s.err
		}
	case sinkMem:
		n, _ = s.buf.Write(p[:toWrite])
	}
	s.total += int64(n)

	if int64(n) < int64(len(p)) {
		// Short only because the limit clipped the chunk.
		return n, errSinkLimit
	}
	return n, nil
}

// Total returns the bytes accepted so far.
func (s *BodySink) Total() int64 { return s.total }

// Err returns the first local write failure, if any.
func (s *BodySink) Err() error { return s.err }

package engine

import (
	"bytes"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objcore/s3c/internal/pool"
)

// memWriterAt collects positional writes into a growable slice.
type memWriterAt struct {
	data []byte
}

func (m *memWriterAt) WriteAt(p []byte, off int64) (int, error) {
	need := off + int64(len(p))
	if int64(len(m.data)) < need {
		grown := make([]byte, need)
		copy(grown, m.data)
		m.data = grown
	}
	copy(m.data[off:], p)
	return len(p), nil
}

type failingWriterAt struct{}

func (failingWriterAt) WriteAt([]byte, int64) (int, error) {
	return 0, errors.New("disk full")
}

type failingReaderAt struct{}

func (failingReaderAt) ReadAt([]byte, int64) (int, error) {
	return 0, errors.New("bad descriptor")
}

func TestReaderAtSourceStreamsWithinLimit(t *testing.T) {
	data := []byte("0123456789")
	src := NewReaderAtSource(bytes.NewReader(data), 2, 5)

	out, err := io.ReadAll(src)
	require.NoError(t, err)
	assert.Equal(t, "23456", string(out))
	assert.Equal(t, int64(5), src.Total())
}

func TestReaderAtSourceShortFile(t *testing.T) {
	data := []byte("abc")
	src := NewReaderAtSource(bytes.NewReader(data), 0, 10)

	out, err := io.ReadAll(src)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(out))
	assert.Equal(t, int64(3), src.Total())
}

func TestReaderAtSourceRecordsLocalError(t *testing.T) {
	src := NewReaderAtSource(failingReaderAt{}, 0, 4)
	_, err := io.ReadAll(src)
	require.Error(t, err)
	assert.ErrorContains(t, src.Err(), "bad descriptor")
}

func TestReaderAtSourceDoesNotPerturbFileOffset(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "src")
	require.NoError(t, err)
	defer f.Close()
	_, err = f.WriteString("Hello S3 stress test! ")
	require.NoError(t, err)
	_, err = f.Seek(7, io.SeekStart)
	require.NoError(t, err)

	src := NewReaderAtSource(f, 0, 22)
	out, err := io.ReadAll(src)
	require.NoError(t, err)
	assert.Equal(t, "Hello S3 stress test! ", string(out))

	pos, err := f.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(7), pos, "kernel file offset moved")
}

func TestMemSource(t *testing.T) {
	src := NewMemSource([]byte("payload"))
	out, err := io.ReadAll(src)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(out))
	assert.Equal(t, int64(7), src.Total())
}

func TestDiscardSinkCounts(t *testing.T) {
	sink := NewDiscardSink()
	n, err := sink.Write(make([]byte, 1000))
	require.NoError(t, err)
	assert.Equal(t, 1000, n)
	assert.Equal(t, int64(1000), sink.Total())
}

func TestWriterAtSinkWritesAtOffset(t *testing.T) {
	dst := &memWriterAt{}
	sink := NewWriterAtSink(dst, 4, 0)

	_, err := sink.Write([]byte("abcd"))
	require.NoError(t, err)
	_, err = sink.Write([]byte("efgh"))
	require.NoError(t, err)

	assert.Equal(t, "\x00\x00\x00\x00abcdefgh", string(dst.data))
	assert.Equal(t, int64(8), sink.Total())
}

func TestWriterAtSinkLimitStopsCleanly(t *testing.T) {
	dst := &memWriterAt{}
	sink := NewWriterAtSink(dst, 0, 5)

	n, err := sink.Write([]byte("0123456789"))
	assert.Equal(t, 5, n)
	assert.ErrorIs(t, err, errSinkLimit)
	assert.Nil(t, sink.Err(), "limit is not a failure")
	assert.Equal(t, int64(5), sink.Total())

	_, err = sink.Write([]byte("x"))
	assert.ErrorIs(t, err, errSinkLimit)
	assert.Equal(t, int64(5), sink.Total())
}

func TestWriterAtSinkRecordsLocalError(t *testing.T) {
	sink := NewWriterAtSink(failingWriterAt{}, 0, 0)
	_, err := sink.Write([]byte("x"))
	require.Error(t, err)
	assert.ErrorContains(t, sink.Err(), "disk full")
}

func TestMemSinkAppends(t *testing.T) {
	buf := &pool.Buffer{}
	sink := NewMemSink(buf)

	_, err := sink.Write([]byte("<xml>"))
	require.NoError(t, err)
	_, err = sink.Write([]byte("</xml>"))
	require.NoError(t, err)

	assert.Equal(t, "<xml></xml>", buf.String())
	assert.Equal(t, int64(11), sink.Total())
}

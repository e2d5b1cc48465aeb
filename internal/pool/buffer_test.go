package pool

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferGrowth(t *testing.T) {
	var b Buffer
	assert.Equal(t, 0, b.Cap())

	b.WriteString("x")
	assert.Equal(t, 8192, b.Cap(), "first growth starts at 8192")

	big := bytes.Repeat([]byte("a"), 8192)
	_, err := b.Write(big)
	require.NoError(t, err)
	assert.Equal(t, 16384, b.Cap(), "capacity doubles")
	assert.Equal(t, 8193, b.Len())
}

func TestBufferReserveDoublesUntilNeed(t *testing.T) {
	var b Buffer
	b.Reserve(100000)
	// 8192 -> 16384 -> 32768 -> 65536 -> 131072
	assert.Equal(t, 131072, b.Cap())
	assert.Equal(t, 0, b.Len())
}

func TestBufferContentPreserved(t *testing.T) {
	var b Buffer
	b.WriteString("hello ")
	b.WriteString("world")
	b.Reserve(1 << 20)
	assert.Equal(t, "hello world", b.String())
}

func TestBufferReset(t *testing.T) {
	var b Buffer
	b.WriteString("payload")
	capBefore := b.Cap()
	b.Reset()
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, capBefore, b.Cap(), "reset keeps capacity")
}

func TestBufferSizeNeverExceedsCap(t *testing.T) {
	var b Buffer
	for i := 0; i < 1000; i++ {
		b.WriteString("0123456789abcdef")
		assert.LessOrEqual(t, b.Len(), b.Cap())
	}
}

func TestBufferPoolRoundTrip(t *testing.T) {
	bp := NewBufferPool()
	buf := bp.Get()
	require.Len(t, buf, CopyBufferSize)
	bp.Put(buf)

	again := bp.Get()
	assert.Len(t, again, CopyBufferSize)
}

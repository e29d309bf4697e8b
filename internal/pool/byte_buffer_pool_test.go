package pool

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(1024)

	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, 1024, cap(bb.B))
}

func TestByteBuffer_WriteAndClone(t *testing.T) {
	bb := NewByteBuffer(16)
	_, _ = bb.Write([]byte("col"))
	require.NoError(t, bb.WriteByte('!'))

	clone := bb.Clone()
	require.Equal(t, []byte("col!"), clone)

	bb.Reset()
	_, _ = bb.Write([]byte("xxxx"))
	require.Equal(t, []byte("col!"), clone, "clone must not alias the buffer")
}

func TestByteBuffer_Grow(t *testing.T) {
	t.Run("sufficient capacity is a no-op", func(t *testing.T) {
		bb := NewByteBuffer(64)
		before := cap(bb.B)
		bb.Grow(32)
		require.Equal(t, before, cap(bb.B))
	})

	t.Run("small buffer grows by default size", func(t *testing.T) {
		bb := NewByteBuffer(8)
		_, _ = bb.Write([]byte("12345678"))
		bb.Grow(1)
		require.GreaterOrEqual(t, cap(bb.B), 8+PayloadBufferDefaultSize)
		require.Equal(t, []byte("12345678"), bb.Bytes())
	})

	t.Run("large request wins", func(t *testing.T) {
		bb := NewByteBuffer(0)
		bb.Grow(PayloadBufferDefaultSize * 3)
		require.GreaterOrEqual(t, cap(bb.B), PayloadBufferDefaultSize*3)
	})
}

func TestByteBuffer_ExtendOrGrow(t *testing.T) {
	bb := NewByteBuffer(2)
	bb.ExtendOrGrow(10)
	require.Equal(t, 10, bb.Len())

	copy(bb.Slice(6, 10), []byte{1, 2, 3, 4})
	require.Equal(t, []byte{1, 2, 3, 4}, bb.Bytes()[6:10])
}

func TestByteBuffer_SliceInvalid(t *testing.T) {
	bb := NewByteBuffer(4)
	require.Panics(t, func() { bb.Slice(3, 2) })
	require.Panics(t, func() { bb.Slice(0, 5) })
}

func TestByteBuffer_WriteTo(t *testing.T) {
	bb := NewByteBuffer(4)
	_, _ = bb.Write([]byte("rows"))

	var out bytes.Buffer
	n, err := bb.WriteTo(&out)
	require.NoError(t, err)
	require.Equal(t, int64(4), n)
	require.Equal(t, "rows", out.String())
}

func TestByteBufferPool_PutResets(t *testing.T) {
	p := NewByteBufferPool(32, 1024)
	bb := p.Get()
	_, _ = bb.Write([]byte("payload"))
	p.Put(bb)

	got := p.Get()
	require.Equal(t, 0, got.Len())
}

func TestByteBufferPool_DropsOversized(t *testing.T) {
	p := NewByteBufferPool(32, 64)
	bb := NewByteBuffer(128)
	p.Put(bb)
	p.Put(nil)

	got := p.Get()
	require.NotNil(t, got)
	require.LessOrEqual(t, cap(got.B), 64)
}

func TestDefaultPools(t *testing.T) {
	payload := GetPayloadBuffer()
	require.NotNil(t, payload)
	require.Equal(t, 0, payload.Len())
	PutPayloadBuffer(payload)

	group := GetGroupBuffer()
	require.NotNil(t, group)
	require.Equal(t, 0, group.Len())
	PutGroupBuffer(group)
}

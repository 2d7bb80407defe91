package allocator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHeap(t *testing.T) {
	h, err := NewHeap(0x1000, 0x1000)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1000), h.Start())
	assert.Equal(t, uint64(0x2000), h.End())
	assert.Equal(t, uint64(0x1000), h.Size())
}

func TestNewHeapRejectsBadRegions(t *testing.T) {
	_, err := NewHeap(0x1000, 0)
	assert.Error(t, err)

	_, err = NewHeap(0, 0x1000)
	assert.Error(t, err)

	_, err = NewHeap(math.MaxInt64, 0x1000)
	assert.Error(t, err)

	_, err = NewHeap(0x1000, math.MaxUint64-0x1000)
	assert.Error(t, err)
}

func TestHeapBytes(t *testing.T) {
	h, err := NewHeap(0x1000, 0x100)
	require.NoError(t, err)

	b := h.Bytes(0x1010, 16)
	require.Len(t, b, 16)
	for i := range b {
		b[i] = byte(i)
	}

	// The same range reads back through a second aliasing slice.
	b2 := h.Bytes(0x1010, 16)
	assert.Equal(t, b, b2)

	assert.Panics(t, func() { h.Bytes(0xfff, 1) })
	assert.Panics(t, func() { h.Bytes(0x1000, 0x101) })
	assert.Panics(t, func() { h.Bytes(0x10f8, 16) })
}

func TestHeapNodeRoundTrip(t *testing.T) {
	h, err := NewHeap(0x1000, 0x100)
	require.NoError(t, err)

	h.writeNode(0x1040, listNode{size: 0x40, next: 0x1080})
	got := h.readNode(0x1040)
	assert.Equal(t, listNode{size: 0x40, next: 0x1080}, got)
}

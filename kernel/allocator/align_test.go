package allocator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlignUp(t *testing.T) {
	tests := []struct {
		addr, align uint64
		exp         uint64
	}{
		{0x1000, 1, 0x1000},
		{0x1000, 8, 0x1000},
		{0x1001, 8, 0x1008},
		{0x1007, 8, 0x1008},
		{0x1008, 8, 0x1008},
		{0x1001, 1, 0x1001},
		{0x1234, 0x1000, 0x2000},
		{0, 64, 0},
		{1, 64, 64},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("a%#x_al%d", test.addr, test.align), func(t *testing.T) {
			assert.Equal(t, test.exp, AlignUp(test.addr, test.align))
		})
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	tests := []struct {
		v   uint64
		exp bool
	}{
		{0, false},
		{1, true},
		{2, true},
		{3, false},
		{64, true},
		{96, false},
		{1 << 40, true},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%d_%t", test.v, test.exp), func(t *testing.T) {
			assert.Equal(t, test.exp, isPowerOfTwo(test.v))
		})
	}
}

func TestIsAligned(t *testing.T) {
	assert.True(t, isAligned(0x1000, 8))
	assert.True(t, isAligned(0x1008, 8))
	assert.False(t, isAligned(0x1004, 8))
	assert.True(t, isAligned(0x1004, 4))
}

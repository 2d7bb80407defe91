package allocator

import (
	"math"

	"github.com/pkg/errors"
)

// Heap is the fixed physical region all allocations are carved from. The
// bounds never change after construction and the region is never handed
// back to anything below it. Addresses are modeled as 64-bit values below
// 2^63 so overflow checks can be done in signed arithmetic, mirroring the
// address range the boot code actually reserves.
type Heap struct {
	start uint64
	end   uint64
	mem   []byte
}

// NewHeap reserves a region of the given size starting at start.
func NewHeap(start, size uint64) (*Heap, error) {
	if start == 0 {
		return nil, errors.New("heap region must not start at the null address")
	}
	if size == 0 {
		return nil, errors.New("heap size must be non-zero")
	}
	if start > math.MaxInt64 || size > math.MaxInt64-start {
		return nil, errors.Errorf("heap region [%#x, %#x+%#x) exceeds the addressable range", start, start, size)
	}
	return &Heap{start: start, end: start + size, mem: make([]byte, size)}, nil
}

// Start returns the first address of the region.
func (h *Heap) Start() uint64 { return h.start }

// End returns the first address past the region.
func (h *Heap) End() uint64 { return h.end }

// Size returns the region size in bytes.
func (h *Heap) Size() uint64 { return h.end - h.start }

// Bytes returns the backing memory of the range [addr, addr+size), which
// must lie entirely inside the region. The slice aliases the heap: callers
// own the bytes of blocks they were handed and nothing else.
func (h *Heap) Bytes(addr, size uint64) []byte {
	if addr < h.start || addr > h.end || h.end-addr < size {
		panic("allocator: address range outside heap region")
	}
	off := addr - h.start
	return h.mem[off : off+size : off+size]
}

package allocator

import (
	"fmt"
	"io"
	"math"

	"github.com/JohnCGriffin/overflow"
	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/Xeadriel/hhuTOS/kernel/internal/debug"
)

// BumpAllocator hands out ever-increasing addresses by advancing a single
// cursor through the heap region. Released memory is never reclaimed, so
// the heap is exhausted once total demand over the process lifetime reaches
// its size. It exists as the simplest possible correct allocator, for
// allocate-and-never-free workloads and for teaching.
type BumpAllocator struct {
	heap   *Heap
	next   uint64
	allocs uint64
	logger log.Logger
}

// NewBumpAllocator creates a bump allocator over the whole heap region.
// logger may be nil.
func NewBumpAllocator(heap *Heap, logger log.Logger) *BumpAllocator {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &BumpAllocator{heap: heap, next: heap.Start(), logger: logger}
}

// Init is a no-op; the bump allocator needs no setup beyond construction.
func (b *BumpAllocator) Init() {}

// Alloc advances the cursor past an aligned block of layout.Size bytes and
// returns the block's start address. The consumed range is gone for good.
func (b *BumpAllocator) Alloc(layout Layout) (uint64, error) {
	debug.Assert(isPowerOfTwo(layout.Align), "allocator: alignment is not a power of two")
	// Sizes past the modeled address range would go negative in the
	// signed overflow check below; no heap can hold them anyway.
	if layout.Size > math.MaxInt64 {
		return NullAddr, ErrOutOfMemory
	}
	start := AlignUp(b.next, layout.Align)
	if start < b.next {
		return NullAddr, ErrOutOfMemory
	}
	end, ok := overflow.Add64(int64(start), int64(layout.Size))
	if !ok || uint64(end) > b.heap.End() {
		return NullAddr, ErrOutOfMemory
	}
	b.next = uint64(end)
	b.allocs++
	return start, nil
}

// Dealloc reports that reclamation is unsupported and otherwise does
// nothing. From the caller's perspective the release still succeeds; the
// bytes simply stay consumed.
func (b *BumpAllocator) Dealloc(addr uint64, layout Layout) {
	level.Debug(b.logger).Log("msg", "bump allocator does not support deallocation",
		"addr", fmt.Sprintf("%#x", addr), "size", layout.Size)
}

// Dump writes the cursor position and occupancy counters to w.
func (b *BumpAllocator) Dump(w io.Writer) {
	used := b.next - b.heap.Start()
	free := b.heap.End() - b.next
	fmt.Fprintf(w, "bump allocator over [%#x, %#x), next=%#x\n", b.heap.Start(), b.heap.End(), b.next)
	fmt.Fprintf(w, "  used:        %d bytes (%s)\n", used, humanize.IBytes(used))
	fmt.Fprintf(w, "  free:        %d bytes (%s)\n", free, humanize.IBytes(free))
	fmt.Fprintf(w, "  total:       %d bytes (%s)\n", b.heap.Size(), humanize.IBytes(b.heap.Size()))
	fmt.Fprintf(w, "  allocations: %d\n", b.allocs)
}

// Allocations returns the number of successful allocations so far.
func (b *BumpAllocator) Allocations() uint64 { return b.allocs }

// FreeBytes returns the bytes remaining between the cursor and the region
// end.
func (b *BumpAllocator) FreeBytes() uint64 { return b.heap.End() - b.next }

var _ Allocator = (*BumpAllocator)(nil)

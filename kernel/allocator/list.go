package allocator

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/JohnCGriffin/overflow"
	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/Xeadriel/hhuTOS/kernel/internal/debug"
)

// A free block is described by a node header written into its first bytes:
// the block's total size followed by the address of the next free block,
// both little-endian uint64. A next address of 0 terminates the chain. The
// header's storage is reused as payload when the block is allocated.
const (
	nodeSize  = 16
	nodeAlign = 8
)

type listNode struct {
	size uint64
	next uint64
}

func (h *Heap) readNode(addr uint64) listNode {
	b := h.Bytes(addr, nodeSize)
	return listNode{
		size: binary.LittleEndian.Uint64(b[0:8]),
		next: binary.LittleEndian.Uint64(b[8:16]),
	}
}

func (h *Heap) writeNode(addr uint64, n listNode) {
	b := h.Bytes(addr, nodeSize)
	binary.LittleEndian.PutUint64(b[0:8], n.size)
	binary.LittleEndian.PutUint64(b[8:16], n.next)
}

// ListAllocator manages the heap as an intrusive singly linked list of free
// blocks threaded through the free memory itself. Allocation is first-fit
// with block splitting; released blocks are pushed onto the front of the
// list. Adjacent free blocks are never coalesced, so repeated alloc/release
// cycles can fragment the heap into nodes whose union would satisfy a
// request that each individually cannot.
type ListAllocator struct {
	heap *Heap
	// head is a sentinel kept outside the arena; head.next is the address
	// of the first free node, 0 when the list is empty.
	head   listNode
	logger log.Logger
}

// NewListAllocator creates a free-list allocator over the whole heap
// region. Init must be called before the first Alloc. logger may be nil.
func NewListAllocator(heap *Heap, logger log.Logger) *ListAllocator {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &ListAllocator{heap: heap, head: listNode{size: heap.Size()}, logger: logger}
}

// Init writes the initial free node spanning the whole heap region.
func (a *ListAllocator) Init() {
	a.head.next = 0
	a.addFreeBlock(a.heap.Start(), a.heap.Size())
}

// addFreeBlock writes a node header into the freed bytes at addr and pushes
// the node onto the front of the free list.
func (a *ListAllocator) addFreeBlock(addr, size uint64) {
	debug.Assert(isAligned(addr, nodeAlign), "allocator: freed block is not node-aligned")
	debug.Assert(size >= nodeSize, "allocator: freed block cannot hold a node header")
	a.heap.writeNode(addr, listNode{size: size, next: a.head.next})
	a.head.next = addr
}

// findFreeBlock scans the list head to tail for the first block that can
// hold an allocation of the given widened size and alignment, unlinks it
// and returns its address and header.
func (a *ListAllocator) findFreeBlock(size, align uint64) (uint64, listNode, bool) {
	prev := uint64(0)
	cur := a.head.next
	for cur != 0 {
		node := a.heap.readNode(cur)
		if _, ok := checkBlock(cur, node.size, size, align); ok {
			if prev == 0 {
				a.head.next = node.next
			} else {
				p := a.heap.readNode(prev)
				p.next = node.next
				a.heap.writeNode(prev, p)
			}
			return cur, node, true
		}
		prev, cur = cur, node.next
	}
	return 0, listNode{}, false
}

// checkBlock reports whether the free block [addr, addr+blockSize) can hold
// an allocation of size bytes at the given alignment, and the aligned start
// address if so. A block is rejected outright rather than partially reused
// when either leftover piece, the alignment gap before the allocation or
// the remainder after it, would be too small to hold a node header.
func checkBlock(addr, blockSize, size, align uint64) (uint64, bool) {
	allocStart := AlignUp(addr, align)
	if allocStart < addr {
		return 0, false
	}
	if gap := allocStart - addr; gap > 0 && gap < nodeSize {
		return 0, false
	}
	allocEnd, ok := overflow.Add64(int64(allocStart), int64(size))
	if !ok {
		return 0, false
	}
	blockEnd := addr + blockSize
	if uint64(allocEnd) > blockEnd {
		return 0, false
	}
	excess := blockEnd - uint64(allocEnd)
	if excess > 0 && excess < nodeSize {
		return 0, false
	}
	return allocStart, true
}

// sizeAlign widens a layout so the resulting block can hold a node header
// when it is later released: alignment at least the node's, size padded to
// a multiple of the alignment and at least one header. Sizes past the
// modeled address range cannot be padded without wrapping and are reported
// as invalid.
func sizeAlign(layout Layout) (size, align uint64, ok bool) {
	align = layout.Align
	if align < nodeAlign {
		align = nodeAlign
	}
	if layout.Size > math.MaxInt64 {
		return 0, align, false
	}
	size = AlignUp(layout.Size, align)
	if size < nodeSize {
		size = nodeSize
	}
	return size, align, true
}

// Alloc finds the first free block that fits the widened layout, splits off
// any leftover as new free nodes, and returns the aligned start address.
// Both the alignment gap before the allocation and the remainder after it
// go back on the list, so releasing an allocation always restores the free
// byte total.
func (a *ListAllocator) Alloc(layout Layout) (uint64, error) {
	debug.Assert(isPowerOfTwo(layout.Align), "allocator: alignment is not a power of two")
	size, align, ok := sizeAlign(layout)
	if !ok {
		return NullAddr, ErrOutOfMemory
	}

	addr, node, ok := a.findFreeBlock(size, align)
	if !ok {
		return NullAddr, ErrOutOfMemory
	}

	allocStart := AlignUp(addr, align)
	allocEnd := allocStart + size
	if gap := allocStart - addr; gap > 0 {
		a.addFreeBlock(addr, gap)
	}
	if excess := addr + node.size - allocEnd; excess > 0 {
		a.addFreeBlock(allocEnd, excess)
	}
	level.Debug(a.logger).Log("msg", "list alloc",
		"addr", fmt.Sprintf("%#x", allocStart), "size", size, "align", align)
	return allocStart, nil
}

// Dealloc writes a fresh node covering the widened block size back into the
// freed bytes and pushes it onto the front of the list. The most recently
// freed block is therefore found first by the next matching Alloc.
func (a *ListAllocator) Dealloc(addr uint64, layout Layout) {
	size, _, ok := sizeAlign(layout)
	if !ok {
		// No allocation with this layout can exist; nothing to release.
		return
	}
	a.addFreeBlock(addr, size)
}

// Dump writes every free node's address range and size to w. The list is
// traversed without being touched.
func (a *ListAllocator) Dump(w io.Writer) {
	fmt.Fprintf(w, "free list over [%#x, %#x):\n", a.heap.Start(), a.heap.End())
	var count int
	var total uint64
	for cur := a.head.next; cur != 0; {
		node := a.heap.readNode(cur)
		fmt.Fprintf(w, "  block at %#x: [%#x, %#x), %d bytes (%s)\n",
			cur, cur, cur+node.size, node.size, humanize.IBytes(node.size))
		count++
		total += node.size
		cur = node.next
	}
	fmt.Fprintf(w, "  %d free blocks, %d bytes free of %d total\n", count, total, a.heap.Size())
}

// FreeBlock is the (address, size) description of one node on the free
// list, as reported by FreeBlocks.
type FreeBlock struct {
	Addr uint64
	Size uint64
}

// FreeBlocks returns the free list contents in list order without mutating
// the list.
func (a *ListAllocator) FreeBlocks() []FreeBlock {
	var blocks []FreeBlock
	for cur := a.head.next; cur != 0; {
		node := a.heap.readNode(cur)
		blocks = append(blocks, FreeBlock{Addr: cur, Size: node.size})
		cur = node.next
	}
	return blocks
}

// FreeBytes returns the total number of bytes on the free list.
func (a *ListAllocator) FreeBytes() uint64 {
	var total uint64
	for cur := a.head.next; cur != 0; {
		node := a.heap.readNode(cur)
		total += node.size
		cur = node.next
	}
	return total
}

var _ Allocator = (*ListAllocator)(nil)

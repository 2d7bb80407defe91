// Package allocator implements the kernel heap: every dynamic allocation in
// the kernel is carved out of one fixed physical region by one of two
// interchangeable strategies, a monotonic bump allocator and a free-list
// allocator with block splitting. The selected strategy is wrapped in a
// spinning mutual-exclusion primitive and installed as the process-wide
// allocation backend by Init, which must complete before any other
// subsystem allocates.
package allocator

import (
	"io"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

// NullAddr is the invalid-address sentinel returned together with
// ErrOutOfMemory. No valid allocation ever starts at address zero because
// heap regions may not begin there.
const NullAddr uint64 = 0

var (
	// ErrOutOfMemory is returned when a request cannot be satisfied within
	// the heap region, or the address arithmetic would overflow.
	ErrOutOfMemory = errors.New("allocator: out of memory")

	// ErrNotInitialized is returned by the package-level entry points
	// before Init has installed an allocator.
	ErrNotInitialized = errors.New("allocator: not initialized")

	// ErrAlreadyInitialized is returned when Init is invoked a second time.
	ErrAlreadyInitialized = errors.New("allocator: already initialized")
)

// Layout describes the shape of an allocation request: its size in bytes
// and its alignment, which must be a power of two.
type Layout struct {
	Size  uint64
	Align uint64
}

// Allocator is the strategy interface shared by the bump and free-list
// allocators.
//
// Alloc returns the start address of a block satisfying the layout, or
// (NullAddr, ErrOutOfMemory). Dealloc hands a block back; the layout must
// be the one the block was allocated with, and each block may be released
// at most once. Neither precondition is validated outside assert builds.
// Init performs one-time setup and must run before the first Alloc.
// Dump writes a human-readable occupancy summary without mutating state.
type Allocator interface {
	Init()
	Alloc(layout Layout) (uint64, error)
	Dealloc(addr uint64, layout Layout)
	Dump(w io.Writer)
}

// The process-wide allocation backend, set once by Init and never torn
// down. Mutation of allocator state happens only behind the Locked
// wrapper's spin lock.
var (
	kernelHeap   *Locked
	kernelRegion *Heap
)

// Init constructs the heap region and the configured strategy, and installs
// it behind the exclusive-access wrapper as the process-wide allocation
// backend. It must be called exactly once, before any other subsystem
// allocates. logger may be nil.
func Init(cfg Config, logger log.Logger) error {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if kernelHeap != nil {
		return ErrAlreadyInitialized
	}

	heap, err := NewHeap(cfg.HeapStart, cfg.HeapSize)
	if err != nil {
		return errors.Wrap(err, "creating heap region")
	}

	var strategy Allocator
	switch cfg.Strategy {
	case StrategyBump:
		strategy = NewBumpAllocator(heap, logger)
	case StrategyList:
		strategy = NewListAllocator(heap, logger)
	default:
		return errors.Errorf("unknown allocation strategy %q", cfg.Strategy)
	}

	locked := NewLocked(Instrument(cfg.Strategy, strategy))
	locked.Init()

	kernelHeap = locked
	kernelRegion = heap
	level.Info(logger).Log("msg", "heap allocator initialized",
		"strategy", cfg.Strategy, "start", cfg.HeapStart, "size", cfg.HeapSize)
	return nil
}

// Allocate requests a block from the process-wide allocator.
func Allocate(layout Layout) (uint64, error) {
	if kernelHeap == nil {
		return NullAddr, ErrNotInitialized
	}
	return kernelHeap.Alloc(layout)
}

// Release returns a block to the process-wide allocator. The layout must
// match the one passed to Allocate.
func Release(addr uint64, layout Layout) {
	if kernelHeap == nil {
		return
	}
	kernelHeap.Dealloc(addr, layout)
}

// Dump writes an occupancy summary of the process-wide allocator to w.
func Dump(w io.Writer) {
	if kernelHeap == nil {
		return
	}
	kernelHeap.Dump(w)
}

// Region returns the heap region backing the process-wide allocator, or nil
// before Init.
func Region() *Heap {
	return kernelRegion
}

package allocator

import "flag"

// Allocation strategies selectable at initialization.
const (
	StrategyBump = "bump"
	StrategyList = "list"
)

// Defaults mirror the reserved range the boot code hands the kernel from
// its linker symbols: one mebibyte of heap starting at the one-mebibyte
// mark.
const (
	DefaultHeapStart uint64 = 0x100000
	DefaultHeapSize  uint64 = 0x100000
)

// Config configures the kernel heap.
type Config struct {
	HeapStart uint64
	HeapSize  uint64
	Strategy  string
}

// RegisterFlags adds the flags required to config this to the given FlagSet.
func (cfg *Config) RegisterFlags(f *flag.FlagSet) {
	f.Uint64Var(&cfg.HeapStart, "heap.start", DefaultHeapStart, "Start address of the reserved heap region.")
	f.Uint64Var(&cfg.HeapSize, "heap.size", DefaultHeapSize, "Size of the heap region in bytes.")
	f.StringVar(&cfg.Strategy, "heap.strategy", StrategyList, "Allocation strategy, bump or list.")
}

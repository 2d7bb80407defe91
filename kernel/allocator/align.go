package allocator

// AlignUp rounds addr up to the next multiple of align. align must be a
// power of two; this is not re-validated on the hot path. Callers must
// guard against wraparound for addresses near the top of the range.
func AlignUp(addr, align uint64) uint64 {
	forceCarry := align - 1
	truncateMask := ^forceCarry
	return (addr + forceCarry) & truncateMask
}

func isPowerOfTwo(v uint64) bool {
	return v != 0 && v&(v-1) == 0
}

func isAligned(addr, align uint64) bool {
	return addr&(align-1) == 0
}

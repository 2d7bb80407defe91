// Package debug provides conditional runtime assertions and debug logging
// for the kernel.
//
// Assertions guard preconditions the allocator otherwise trusts its callers
// to uphold, such as the alignment of a released block. Build with the
// assert tag to enable them; without the tag the checks are compiled out
// entirely.
//
// Debug logging is enabled with the debug tag and is likewise free when the
// tag is omitted.
package debug

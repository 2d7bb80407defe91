package allocator

import (
	"io"
	"runtime"
	"sync/atomic"
)

// SpinLock is a busy-waiting mutual exclusion primitive. A caller that
// finds the lock held spins until it is released; there is no blocking, no
// timeout and no fairness policy. It must not be acquired reentrantly: an
// execution context that interrupts the lock holder and allocates will spin
// forever, so allocation is forbidden in such contexts.
type SpinLock struct {
	state uint32
}

// Lock spins until the lock is acquired.
func (l *SpinLock) Lock() {
	for !atomic.CompareAndSwapUint32(&l.state, 0, 1) {
		runtime.Gosched()
	}
}

// Unlock releases the lock.
func (l *SpinLock) Unlock() {
	atomic.StoreUint32(&l.state, 0)
}

// Locked wraps exactly one allocator instance behind a SpinLock so the
// process-wide allocation entry point can be invoked from multiple
// execution contexts. The lock is held for the full duration of the
// underlying call and released on every exit path, including failure.
type Locked struct {
	mu    SpinLock
	inner Allocator
}

// NewLocked wraps inner in a SpinLock.
func NewLocked(inner Allocator) *Locked {
	return &Locked{inner: inner}
}

func (l *Locked) Init() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.inner.Init()
}

func (l *Locked) Alloc(layout Layout) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.Alloc(layout)
}

func (l *Locked) Dealloc(addr uint64, layout Layout) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.inner.Dealloc(addr, layout)
}

func (l *Locked) Dump(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.inner.Dump(w)
}

var _ Allocator = (*Locked)(nil)

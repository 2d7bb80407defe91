package allocator

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentedAllocator(t *testing.T) {
	h, err := NewHeap(0x1000, 0x1000)
	require.NoError(t, err)
	inner := NewListAllocator(h, nil)
	a := Instrument("test", inner)
	a.Init()

	allocs := testutil.ToFloat64(allocationsTotal.WithLabelValues("test"))
	failures := testutil.ToFloat64(allocationFailuresTotal.WithLabelValues("test"))
	released := testutil.ToFloat64(releasesTotal.WithLabelValues("test"))
	live := testutil.ToFloat64(liveBytes.WithLabelValues("test"))

	addr, err := a.Alloc(Layout{Size: 32, Align: 8})
	require.NoError(t, err)
	assert.Equal(t, allocs+1, testutil.ToFloat64(allocationsTotal.WithLabelValues("test")))
	assert.Equal(t, live+32, testutil.ToFloat64(liveBytes.WithLabelValues("test")))

	_, err = a.Alloc(Layout{Size: 0x10000, Align: 8})
	require.ErrorIs(t, err, ErrOutOfMemory)
	assert.Equal(t, failures+1, testutil.ToFloat64(allocationFailuresTotal.WithLabelValues("test")))

	a.Dealloc(addr, Layout{Size: 32, Align: 8})
	assert.Equal(t, released+1, testutil.ToFloat64(releasesTotal.WithLabelValues("test")))
	assert.Equal(t, live, testutil.ToFloat64(liveBytes.WithLabelValues("test")))

	// The wrapper delegates, it does not reimplement: the block really
	// went back to the list.
	assert.Equal(t, uint64(0x1000), inner.FreeBytes())
}

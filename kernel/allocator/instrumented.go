package allocator

import "github.com/prometheus/client_golang/prometheus"

var (
	allocationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hhutos",
		Name:      "heap_allocations_total",
		Help:      "Total count of successful heap allocations.",
	}, []string{"strategy"})

	allocationFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hhutos",
		Name:      "heap_allocation_failures_total",
		Help:      "Total count of heap allocations that failed with out of memory.",
	}, []string{"strategy"})

	releasesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hhutos",
		Name:      "heap_releases_total",
		Help:      "Total count of blocks released back to the heap.",
	}, []string{"strategy"})

	liveBytes = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "hhutos",
		Name:      "heap_live_bytes",
		Help:      "Bytes handed out and not yet released, as seen by callers.",
	}, []string{"strategy"})
)

func init() {
	prometheus.MustRegister(allocationsTotal, allocationFailuresTotal, releasesTotal, liveBytes)
}

// Instrument returns an allocator that exports allocation metrics labeled
// with the given strategy name. The live-bytes gauge tracks the caller's
// view of requested sizes; for the bump strategy released bytes are still
// gone from the heap even though the gauge goes down.
func Instrument(name string, alloc Allocator) Allocator {
	return &instrumentedAllocator{
		Allocator: alloc,
		allocs:    allocationsTotal.WithLabelValues(name),
		failures:  allocationFailuresTotal.WithLabelValues(name),
		releases:  releasesTotal.WithLabelValues(name),
		live:      liveBytes.WithLabelValues(name),
	}
}

type instrumentedAllocator struct {
	Allocator

	allocs, failures, releases prometheus.Counter
	live                       prometheus.Gauge
}

func (i *instrumentedAllocator) Alloc(layout Layout) (uint64, error) {
	addr, err := i.Allocator.Alloc(layout)
	if err != nil {
		i.failures.Inc()
		return addr, err
	}
	i.allocs.Inc()
	i.live.Add(float64(layout.Size))
	return addr, nil
}

func (i *instrumentedAllocator) Dealloc(addr uint64, layout Layout) {
	i.Allocator.Dealloc(addr, layout)
	i.releases.Inc()
	i.live.Sub(float64(layout.Size))
}

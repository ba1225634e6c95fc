package slotgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting container metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Callbacks run synchronously on the mutating call that triggered them, so
// implementations should be cheap.
type MetricsCollector interface {
	// RecordGrow is called after every attempt to enlarge a block.
	// from and to are entry capacities; err is nil if successful.
	RecordGrow(kind ContainerKind, from, to int, duration time.Duration, err error)

	// RecordRehash is called after a slot table rebuilt its bucket array.
	// dropped is the number of tombstones compacted away.
	RecordRehash(from, to, dropped int, duration time.Duration)

	// RecordBurn is called after a slot map's freelist was burned.
	RecordBurn(kind ContainerKind, cleared int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordGrow(ContainerKind, int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordRehash(int, int, int, time.Duration)                {}
func (NoopMetricsCollector) RecordBurn(ContainerKind, int)                            {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	GrowCount        atomic.Int64
	GrowErrors       atomic.Int64
	GrowTotalNanos   atomic.Int64
	RehashCount      atomic.Int64
	RehashDropped    atomic.Int64
	RehashTotalNanos atomic.Int64
	BurnCount        atomic.Int64
	BurnCleared      atomic.Int64
}

// RecordGrow implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGrow(_ ContainerKind, _, _ int, duration time.Duration, err error) {
	b.GrowCount.Add(1)
	b.GrowTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.GrowErrors.Add(1)
	}
}

// RecordRehash implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRehash(_, _, dropped int, duration time.Duration) {
	b.RehashCount.Add(1)
	b.RehashDropped.Add(int64(dropped))
	b.RehashTotalNanos.Add(duration.Nanoseconds())
}

// RecordBurn implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBurn(_ ContainerKind, cleared int) {
	b.BurnCount.Add(1)
	b.BurnCleared.Add(int64(cleared))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() MetricsStats {
	grows := b.GrowCount.Load()
	var avgGrow int64
	if grows > 0 {
		avgGrow = b.GrowTotalNanos.Load() / grows
	}
	return MetricsStats{
		GrowCount:     grows,
		GrowErrors:    b.GrowErrors.Load(),
		AvgGrowNanos:  avgGrow,
		RehashCount:   b.RehashCount.Load(),
		RehashDropped: b.RehashDropped.Load(),
		BurnCount:     b.BurnCount.Load(),
		BurnCleared:   b.BurnCleared.Load(),
	}
}

// MetricsStats is a point-in-time snapshot of BasicMetricsCollector.
type MetricsStats struct {
	GrowCount     int64
	GrowErrors    int64
	AvgGrowNanos  int64
	RehashCount   int64
	RehashDropped int64
	BurnCount     int64
	BurnCleared   int64
}

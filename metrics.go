package neighborhood

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordNeighbors is called after each neighbors query.
	// n is the requested count, results the returned count.
	RecordNeighbors(n, results int, duration time.Duration, err error)

	// RecordLocation is called after each location lookup.
	RecordLocation(found bool, duration time.Duration)

	// RecordAddTarget is called after each growth attempt. added is false
	// when a precondition rejected the identifier or the append failed.
	RecordAddTarget(added bool, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordNeighbors(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordLocation(bool, time.Duration)             {}
func (NoopMetricsCollector) RecordAddTarget(bool, time.Duration, error)     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	NeighborsCount      atomic.Int64
	NeighborsErrors     atomic.Int64
	NeighborsEmpty      atomic.Int64
	NeighborsTotalNanos atomic.Int64
	LocationCount       atomic.Int64
	LocationMisses      atomic.Int64
	AddTargetCount      atomic.Int64
	AddTargetAdded      atomic.Int64
	AddTargetErrors     atomic.Int64
	AddTargetTotalNanos atomic.Int64
}

// RecordNeighbors implements MetricsCollector.
func (b *BasicMetricsCollector) RecordNeighbors(_, results int, duration time.Duration, err error) {
	b.NeighborsCount.Add(1)
	b.NeighborsTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.NeighborsErrors.Add(1)
	} else if results == 0 {
		b.NeighborsEmpty.Add(1)
	}
}

// RecordLocation implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLocation(found bool, _ time.Duration) {
	b.LocationCount.Add(1)
	if !found {
		b.LocationMisses.Add(1)
	}
}

// RecordAddTarget implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAddTarget(added bool, duration time.Duration, err error) {
	b.AddTargetCount.Add(1)
	b.AddTargetTotalNanos.Add(duration.Nanoseconds())
	if added {
		b.AddTargetAdded.Add(1)
	}
	if err != nil {
		b.AddTargetErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		NeighborsCount:    b.NeighborsCount.Load(),
		NeighborsErrors:   b.NeighborsErrors.Load(),
		NeighborsEmpty:    b.NeighborsEmpty.Load(),
		NeighborsAvgNanos: avg(b.NeighborsTotalNanos.Load(), b.NeighborsCount.Load()),
		LocationCount:     b.LocationCount.Load(),
		LocationMisses:    b.LocationMisses.Load(),
		AddTargetCount:    b.AddTargetCount.Load(),
		AddTargetAdded:    b.AddTargetAdded.Load(),
		AddTargetErrors:   b.AddTargetErrors.Load(),
		AddTargetAvgNanos: avg(b.AddTargetTotalNanos.Load(), b.AddTargetCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	NeighborsCount    int64
	NeighborsErrors   int64
	NeighborsEmpty    int64
	NeighborsAvgNanos int64
	LocationCount     int64
	LocationMisses    int64
	AddTargetCount    int64
	AddTargetAdded    int64
	AddTargetErrors   int64
	AddTargetAvgNanos int64
}

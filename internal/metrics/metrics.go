// Package metrics is the process-wide, mutex-guarded counters and
// running-average registry, snapshot on demand.
package metrics

import (
	"math"
	"sync"
	"time"
)

type sourceBucket struct {
	successCount int
	failureCount int
	avgLatencyMs float64
}

type symbolBucket struct {
	aggregateCount int
	avgLatencyMs   float64
	lastSources    int
}

// Registry is the metrics registry. Zero value is not usable;
// construct with New.
type Registry struct {
	mu sync.Mutex

	startTime time.Time
	sources   map[string]*sourceBucket
	symbols   map[string]*symbolBucket

	totalSourceSuccess   int
	totalSourceFailure   int
	totalAggregateSuccess int
}

// New constructs an empty Registry with startTime set to now.
func New() *Registry {
	return &Registry{
		startTime: time.Now(),
		sources:   make(map[string]*sourceBucket),
		symbols:   make(map[string]*symbolBucket),
	}
}

func runningAverage(prevAvg float64, count int, newValue float64) float64 {
	if count <= 0 {
		return round2(newValue)
	}
	return round2(((prevAvg * float64(count-1)) + newValue) / float64(count))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// RecordSourceSuccess records a successful poll for source with the
// given latency in milliseconds.
func (r *Registry) RecordSourceSuccess(source string, latencyMs float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.sources[source]
	if !ok {
		b = &sourceBucket{}
		r.sources[source] = b
	}
	b.successCount++
	b.avgLatencyMs = runningAverage(b.avgLatencyMs, b.successCount, latencyMs)
	r.totalSourceSuccess++
}

// RecordSourceFailure records a failed poll for source.
func (r *Registry) RecordSourceFailure(source string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.sources[source]
	if !ok {
		b = &sourceBucket{}
		r.sources[source] = b
	}
	b.failureCount++
	r.totalSourceFailure++
}

// RecordAggregate records one aggregation tick's outcome for symbol.
func (r *Registry) RecordAggregate(symbol string, sourcesCount int, avgLatencyMs float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.symbols[symbol]
	if !ok {
		b = &symbolBucket{}
		r.symbols[symbol] = b
	}
	b.aggregateCount++
	b.avgLatencyMs = runningAverage(b.avgLatencyMs, b.aggregateCount, avgLatencyMs)
	b.lastSources = sourcesCount
	r.totalAggregateSuccess++
}

// SourceSnapshot is a read-only view of one source's metrics.
type SourceSnapshot struct {
	SuccessCount int
	FailureCount int
	AvgLatencyMs float64
}

// SymbolSnapshot is a read-only view of one symbol's aggregate metrics.
type SymbolSnapshot struct {
	AggregateCount int
	AvgLatencyMs   float64
	LastSources    int
}

// Snapshot is the full point-in-time metrics view.
type Snapshot struct {
	Sources               map[string]SourceSnapshot
	Symbols               map[string]SymbolSnapshot
	TotalSourceSuccess    int
	TotalSourceFailure    int
	TotalAggregateSuccess int
	UptimeSeconds         float64
}

// Snapshot returns a point-in-time copy of the registry.
func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		Sources:               make(map[string]SourceSnapshot, len(r.sources)),
		Symbols:               make(map[string]SymbolSnapshot, len(r.symbols)),
		TotalSourceSuccess:    r.totalSourceSuccess,
		TotalSourceFailure:    r.totalSourceFailure,
		TotalAggregateSuccess: r.totalAggregateSuccess,
		UptimeSeconds:         round2(time.Since(r.startTime).Seconds()),
	}
	for name, b := range r.sources {
		out.Sources[name] = SourceSnapshot{
			SuccessCount: b.successCount,
			FailureCount: b.failureCount,
			AvgLatencyMs: b.avgLatencyMs,
		}
	}
	for name, b := range r.symbols {
		out.Symbols[name] = SymbolSnapshot{
			AggregateCount: b.aggregateCount,
			AvgLatencyMs:   b.avgLatencyMs,
			LastSources:    b.lastSources,
		}
	}
	return out
}

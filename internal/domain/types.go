// Package domain holds the shared value types that flow between the
// scheduler, the circuit breaker, and the aggregator.
package domain

import "github.com/shopspring/decimal"

// Symbol is an opaque, uppercase-canonical price catalog identifier,
// e.g. "XAU-USD".
type Symbol string

// SourceReading is produced by a single successful (or explicitly
// rejected) poll of one source for one symbol.
type SourceReading struct {
	Source    string
	Symbol    Symbol
	Price     decimal.Decimal
	Weight    float64 // the adapter's static SourceMeta.Weight, copied in by the scheduler
	LatencyMs float64
	Timestamp float64 // wall clock seconds at fetch completion
	MaxAge    float64 // freshness budget in seconds, injected by the scheduler
}

// Valid reports whether the reading passes the aggregator's entry
// filter: a positive price. The timestamp is not checked.
func (r SourceReading) Valid() bool {
	return r.Price.IsPositive()
}

// SourceMeta is the static, per-adapter metadata registered at startup.
type SourceMeta struct {
	SourceName       string
	Weight           float64             // (0, 1], default 0.5
	SupportedSymbols map[Symbol]struct{} // empty means "all"
	Priority         int
}

// Supports reports whether this adapter should be polled for symbol.
func (m SourceMeta) Supports(sym Symbol) bool {
	if len(m.SupportedSymbols) == 0 {
		return true
	}
	_, ok := m.SupportedSymbols[sym]
	return ok
}

// SourceConfig is the scheduler-side cadence configuration for one
// source.
type SourceConfig struct {
	SourceName string
	IntervalS  float64
	OffsetS    float64
	MaxAgeS    float64
}

// AggregateQuote is the published output of one aggregation tick for
// one symbol.
type AggregateQuote struct {
	Symbol         Symbol
	Price          decimal.Decimal
	Timestamp      float64
	Sources        int
	Details        []string
	Fastest        string
	FastestLatency float64
	AvgLatency     float64
	IsMarketOpen   bool
}

// Package aggregator implements the seven-step fuse-and-publish
// pipeline: entry filter, freshness weighting, MAD-based outlier
// filtering, weighted mean, latency summary, output shaping, and
// publication.
package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/evetabi/marketagg/internal/breaker"
	"github.com/evetabi/marketagg/internal/domain"
	"github.com/evetabi/marketagg/internal/kvstore"
	"github.com/evetabi/marketagg/internal/marketcalendar"
	"github.com/evetabi/marketagg/internal/metrics"
)

// Clock abstracts wall-clock seconds so freshness math is testable
// without real sleeps.
type Clock func() float64

// entry is an internal working record for one reading through the
// pipeline; effWeight and freshness are computed once in step 2 and
// reused through steps 3-5.
type entry struct {
	reading   domain.SourceReading
	freshness float64
	effWeight float64
}

// Aggregator runs the seven-step pipeline and publishes results.
type Aggregator struct {
	breaker *breaker.Breaker
	store   kvstore.Store
	metrics *metrics.Registry
	clock   Clock
	logger  *slog.Logger
}

// New constructs an Aggregator. A nil clock defaults to wall-clock
// seconds.
func New(b *breaker.Breaker, store kvstore.Store, reg *metrics.Registry, clock Clock, logger *slog.Logger) *Aggregator {
	if clock == nil {
		clock = breaker.WallClock
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{breaker: b, store: store, metrics: reg, clock: clock, logger: logger}
}

// Aggregate runs one tick for symbol over readings (arbitrary order,
// at most one per source) and publishes the result, returning
// ErrNoFreshData if nothing survived the freshness filter.
func (a *Aggregator) Aggregate(ctx context.Context, symbol domain.Symbol, readings []domain.SourceReading) (*domain.AggregateQuote, error) {
	tickID := uuid.NewString()
	now := a.clock()

	// Step 1 — entry filter.
	entries := make([]entry, 0, len(readings))
	for _, r := range readings {
		if !r.Valid() {
			continue
		}
		a.breaker.RecordSuccess(r.Source)
		entries = append(entries, entry{reading: r})
	}

	// Step 2 — freshness filter.
	fresh := make([]entry, 0, len(entries))
	for _, e := range entries {
		freshness := 1.0
		if e.reading.Timestamp > 0 && e.reading.MaxAge > 0 {
			age := math.Max(0, now-e.reading.Timestamp)
			if age > e.reading.MaxAge {
				continue
			}
			if age >= 2.0 {
				freshness = math.Exp(-(age - 2) / math.Max(1.0, e.reading.MaxAge/2))
			}
		}
		e.freshness = freshness
		e.effWeight = readingWeight(e.reading) * freshness
		if e.effWeight <= 0 {
			continue
		}
		fresh = append(fresh, e)
	}

	if len(fresh) == 0 {
		a.logger.Warn("no fresh data for symbol", slog.String("symbol", string(symbol)), slog.String("tick", tickID))
		return nil, fmt.Errorf("%w: %s", domain.ErrNoFreshData, symbol)
	}

	// Step 3 — outlier filter (MAD), only when >= 3 survivors.
	filtered := fresh
	if len(fresh) >= 3 {
		filtered = madFilter(fresh)
	}

	// Step 4 — weighted mean price.
	finalPrice := weightedMean(filtered)

	// Step 5 — latency summary.
	fastestSource, fastestLatency := fastest(fresh)
	avgLatency := weightedLatencyTop5(fresh)

	// Step 6 — output shaping.
	details := make([]string, 0, len(filtered))
	var maxTs float64
	for _, e := range filtered {
		details = append(details, e.reading.Source)
		if e.reading.Timestamp > maxTs {
			maxTs = e.reading.Timestamp
		}
	}
	if maxTs == 0 {
		maxTs = now
	}

	quote := &domain.AggregateQuote{
		Symbol:         symbol,
		Price:          finalPrice.Round(2),
		Timestamp:      maxTs,
		Sources:        len(fresh),
		Details:        details,
		Fastest:        fastestSource,
		FastestLatency: fastestLatency,
		AvgLatency:     avgLatency,
		IsMarketOpen:   marketcalendar.IsMarketOpen(symbol, time.Now()),
	}

	// Step 7 — publish.
	if err := a.publish(ctx, quote); err != nil {
		a.logger.Error("publish failed", slog.String("symbol", string(symbol)), slog.Any("err", err))
		return nil, err
	}
	a.metrics.RecordAggregate(string(symbol), len(fresh), avgLatency)

	return quote, nil
}

// readingWeight returns the reading's source weight, falling back to
// the default of 0.5 when the scheduler left it unset.
func readingWeight(r domain.SourceReading) float64 {
	if r.Weight <= 0 {
		return 0.5
	}
	return r.Weight
}

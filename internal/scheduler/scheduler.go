// Package scheduler manages the background goroutines that drive the
// ingestion pipeline:
//  1. one polling loop per (source, symbol) pair — adaptive cadence,
//     market-hours modulation, circuit-breaker gating.
//  2. one aggregation loop (1 Hz) that snapshots the result cache and
//     invokes the aggregator for every symbol.
//  3. one optional analytics loop that logs spot/futures spreads.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/evetabi/marketagg/internal/aggregator"
	"github.com/evetabi/marketagg/internal/breaker"
	"github.com/evetabi/marketagg/internal/cache"
	"github.com/evetabi/marketagg/internal/config"
	"github.com/evetabi/marketagg/internal/domain"
	"github.com/evetabi/marketagg/internal/marketcalendar"
	"github.com/evetabi/marketagg/internal/metrics"
	"github.com/evetabi/marketagg/internal/source"
)

// Scheduler wires together the result cache, breaker, metrics,
// source registry, and aggregator, and runs the polling + aggregation
// goroutines. Call Start(ctx) once from main(); cancel the context to
// shut it down gracefully.
type Scheduler struct {
	cfg     *config.Config
	cache   *cache.ResultCache
	breaker *breaker.Breaker
	metrics *metrics.Registry
	sources *source.Registry
	agg     *aggregator.Aggregator
	logger  *slog.Logger

	wg sync.WaitGroup
}

// New creates a Scheduler.
func New(
	cfg *config.Config,
	resultCache *cache.ResultCache,
	b *breaker.Breaker,
	reg *metrics.Registry,
	sources *source.Registry,
	agg *aggregator.Aggregator,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		cfg:     cfg,
		cache:   resultCache,
		breaker: b,
		metrics: reg,
		sources: sources,
		agg:     agg,
		logger:  logger,
	}
}

// Start launches one polling goroutine per (source, symbol), the
// aggregation loop, and the analytics loop. It returns immediately;
// all loops run until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	scheduleByName := make(map[string]config.SourceSchedule, len(s.cfg.Sources))
	for _, sch := range s.cfg.Sources {
		scheduleByName[sch.Name] = sch
	}

	for _, src := range s.sources.All() {
		meta := src.Meta()
		sch, ok := scheduleByName[meta.SourceName]
		if !ok {
			s.logger.Warn("no schedule configured for source, skipping", slog.String("source", meta.SourceName))
			continue
		}
		for _, symbol := range s.cfg.Runtime.Symbols {
			if !meta.Supports(symbol) {
				continue
			}
			s.wg.Add(1)
			go func(src source.Source, symbol domain.Symbol, sch config.SourceSchedule) {
				defer s.wg.Done()
				s.pollLoop(ctx, src, symbol, sch)
			}(src, symbol, sch)
		}
	}

	s.wg.Add(2)
	go func() { defer s.wg.Done(); s.aggregationLoop(ctx) }()
	go func() { defer s.wg.Done(); s.analyticsLoop(ctx) }()

	s.logger.Info("scheduler started")
}

// Wait blocks until every polling loop, the aggregation loop, and the
// analytics loop have exited, or until ctx is done, whichever comes
// first. Callers typically pass a context with a shutdown deadline
// after cancelling the context given to Start.
func (s *Scheduler) Wait(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// pollLoop — one per (source, symbol)
// ──────────────────────────────────────────────────────────────────────────────

func (s *Scheduler) pollLoop(ctx context.Context, src source.Source, symbol domain.Symbol, sch config.SourceSchedule) {
	defer s.recoverAndLog("pollLoop:" + sch.Name + ":" + string(symbol))

	select {
	case <-ctx.Done():
		return
	case <-time.After(time.Duration(sch.OffsetS * float64(time.Second))):
	}

	scale := 1.0
	meta := src.Meta()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		effectiveMaxAge := sch.MaxAgeS
		marketOpen := marketcalendar.IsMarketOpen(symbol, time.Now())

		if s.breaker.IsAvailable(meta.SourceName) {
			fetchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			reading, ok := source.GetData(fetchCtx, src, symbol)
			cancel()

			if ok {
				reading.Weight = meta.Weight
				reading.MaxAge = effectiveMaxAge
				if !marketOpen && !sch.IsCrypto {
					reading.MaxAge = maxFloat(effectiveMaxAge, 60)
				}
				s.cache.Put(reading)
				s.sources.MarkSuccess(meta.SourceName, time.Now())
				s.metrics.RecordSourceSuccess(meta.SourceName, reading.LatencyMs)
				scale = maxFloat(1.0, scale*0.9)
			} else {
				s.breaker.RecordFailure(meta.SourceName)
				s.metrics.RecordSourceFailure(meta.SourceName)
				scale = minFloat(4.0, scale*1.5)
			}
		}

		wait := time.Duration(sch.IntervalS * scale * float64(time.Second))
		if !marketOpen && !sch.IsCrypto {
			wait = 30 * time.Second
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// ──────────────────────────────────────────────────────────────────────────────
// aggregationLoop — 1 Hz across all symbols
// ──────────────────────────────────────────────────────────────────────────────

func (s *Scheduler) aggregationLoop(ctx context.Context) {
	defer s.recoverAndLog("aggregationLoop")

	interval := s.cfg.Runtime.TickInterval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("aggregationLoop: shutting down")
			return
		case <-ticker.C:
			s.runTick(ctx)
		}
	}
}

// runTick aggregates every configured symbol once. It is not
// re-entrant with itself: the ticker above only fires the next tick
// after this call returns, so a slow tick simply delays the next one
// rather than running concurrently.
func (s *Scheduler) runTick(ctx context.Context) {
	for _, symbol := range s.cfg.Runtime.Symbols {
		readings := s.cache.Snapshot(symbol)
		if _, err := s.agg.Aggregate(ctx, symbol, readings); err != nil {
			if !domain.IsTransient(err) {
				s.logger.Warn("aggregation produced no result", slog.String("symbol", string(symbol)), slog.Any("err", err))
			}
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// analyticsLoop — optional spot/futures spread logger
// ──────────────────────────────────────────────────────────────────────────────

// spreadPair names a spot/futures symbol pair to compare every minute.
type spreadPair struct {
	spot   domain.Symbol
	future domain.Symbol
}

var defaultSpreadPairs = []spreadPair{
	{spot: "XAU-USD", future: "XAU-USDT"},
	{spot: "XAG-USD", future: "XAG-USDT"},
}

func (s *Scheduler) analyticsLoop(ctx context.Context) {
	defer s.recoverAndLog("analyticsLoop")

	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("analyticsLoop: shutting down")
			return
		case <-ticker.C:
			s.logSpreads()
		}
	}
}

func (s *Scheduler) logSpreads() {
	for _, pair := range defaultSpreadPairs {
		spotReadings := s.cache.Snapshot(pair.spot)
		futureReadings := s.cache.Snapshot(pair.future)
		if len(spotReadings) == 0 || len(futureReadings) == 0 {
			continue
		}
		spot := latestPrice(spotReadings)
		future := latestPrice(futureReadings)
		if spot.IsZero() {
			continue
		}
		spread := future.Sub(spot).Div(spot)
		s.logger.Info("spot/futures spread",
			slog.String("spot", string(pair.spot)),
			slog.String("future", string(pair.future)),
			slog.String("spread", spread.StringFixed(6)))
	}
}

func latestPrice(readings []domain.SourceReading) decimal.Decimal {
	var latest domain.SourceReading
	for _, r := range readings {
		if r.Timestamp > latest.Timestamp {
			latest = r
		}
	}
	return latest.Price
}

// ──────────────────────────────────────────────────────────────────────────────
// Panic recovery
// ──────────────────────────────────────────────────────────────────────────────

// recoverAndLog is deferred inside each goroutine to catch unexpected panics,
// log them, and allow the scheduler to continue running.
func (s *Scheduler) recoverAndLog(loop string) {
	if r := recover(); r != nil {
		s.logger.Error("PANIC recovered in scheduler loop",
			"loop", loop, "panic", r)
	}
}

// Package main is the entry point for the market-price aggregator. It
// wires together the result cache, circuit breaker, metrics registry,
// source adapters, aggregator, and scheduler, then runs until an
// interrupt or terminate signal arrives.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evetabi/marketagg/internal/aggregator"
	"github.com/evetabi/marketagg/internal/breaker"
	"github.com/evetabi/marketagg/internal/cache"
	"github.com/evetabi/marketagg/internal/config"
	"github.com/evetabi/marketagg/internal/domain"
	"github.com/evetabi/marketagg/internal/kvstore"
	"github.com/evetabi/marketagg/internal/marketcalendar"
	"github.com/evetabi/marketagg/internal/metrics"
	"github.com/evetabi/marketagg/internal/scheduler"
	"github.com/evetabi/marketagg/internal/source"
)

func main() {
	// ── 1. Config + logger ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	var logHandler slog.Handler
	if cfg.IsProd() {
		logHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		logHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	logger.Info("starting market price aggregator", "env", cfg.Runtime.Env, "symbols", cfg.Runtime.Symbols)

	// ── 2. Root context + signal handling ─────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 3. KV/PubSub backend ──────────────────────────────────────────────────
	store := kvstore.Connect(ctx, kvstore.RedisConfig{
		Addr:     cfg.KV.RedisAddr,
		Password: cfg.KV.RedisPassword,
		DB:       cfg.KV.RedisDB,
	}, logger)

	// ── 4. Core singletons ────────────────────────────────────────────────────
	resultCache := cache.New()
	circuitBreaker := breaker.New(cfg.Breaker.FailureThreshold, cfg.Breaker.RecoveryTimeoutS, nil)
	metricsReg := metrics.New()

	// ── 5. Sources ─────────────────────────────────────────────────────────────
	httpClient := source.NewClient(10*time.Second, 5, 10)
	isOpen := func(sym domain.Symbol) bool { return marketcalendar.IsMarketOpen(sym, time.Now()) }
	registry := source.NewRegistry(
		source.NewBinance(httpClient),
		source.NewGoldAPI(httpClient),
		source.NewExchangeRateHost(httpClient),
		source.NewMock(isOpen),
	)

	// ── 6. Aggregator + scheduler ──────────────────────────────────────────────
	agg := aggregator.New(circuitBreaker, store, metricsReg, nil, logger)
	sched := scheduler.New(cfg, resultCache, circuitBreaker, metricsReg, registry, agg, logger)
	sched.Start(ctx)

	// ── 7. Wait for shutdown signal ────────────────────────────────────────────
	<-ctx.Done()
	logger.Info("shutdown signal received, waiting for loops to exit…")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Runtime.ShutdownWait)
	defer cancel()
	sched.Wait(shutdownCtx)

	if err := store.Close(); err != nil {
		logger.Error("kvstore close error", "err", err)
	}
	logger.Info("aggregator stopped cleanly")
}

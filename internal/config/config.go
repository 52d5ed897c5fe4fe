// Package config provides application configuration loaded from environment variables.
// Use the package-level Get() function to obtain the singleton Config instance.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"github.com/evetabi/marketagg/internal/domain"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sub-config structs
// ──────────────────────────────────────────────────────────────────────────────

// RuntimeConfig holds process-wide runtime settings.
type RuntimeConfig struct {
	Env          string        // "development" | "production"
	Symbols      []domain.Symbol
	TickInterval time.Duration // aggregation loop cadence, default 1s
	ShutdownWait time.Duration // graceful shutdown deadline, default 10s
}

// BreakerConfig holds circuit breaker thresholds.
type BreakerConfig struct {
	FailureThreshold int     // default 5
	RecoveryTimeoutS float64 // default 300
}

// KVConfig holds KV/PubSub backend connection settings.
type KVConfig struct {
	RedisAddr     string // default "localhost:6379"
	RedisPassword string
	RedisDB       int
}

// SourceSchedule is the scheduler-side cadence configuration for one
// named source: base poll interval, phase offset, and freshness
// budget, mirroring the original system's per-source SOURCE_CONFIG
// table.
type SourceSchedule struct {
	Name      string
	IntervalS float64
	OffsetS   float64
	MaxAgeS   float64
	IsCrypto  bool
}

// ──────────────────────────────────────────────────────────────────────────────
// Top-level Config
// ──────────────────────────────────────────────────────────────────────────────

// Config is the root configuration object for the entire application.
type Config struct {
	Runtime RuntimeConfig
	Breaker BreakerConfig
	KV      KVConfig
	Sources []SourceSchedule
}

// IsProd returns true when running in the production environment.
func (c *Config) IsProd() bool {
	return c.Runtime.Env == "production"
}

// Validate checks that all required configuration values are present and valid.
// Returns every validation error encountered, joined via errors.Join.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Runtime.Symbols) == 0 {
		errs = append(errs, errors.New("SYMBOLS must list at least one symbol"))
	}
	if c.Breaker.FailureThreshold <= 0 {
		errs = append(errs, errors.New("FAILURE_THRESHOLD must be positive"))
	}
	if c.Breaker.RecoveryTimeoutS <= 0 {
		errs = append(errs, errors.New("RECOVERY_TIMEOUT must be positive"))
	}
	if len(c.Sources) == 0 {
		errs = append(errs, errors.New("no source schedules configured"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Singleton
// ──────────────────────────────────────────────────────────────────────────────

var (
	instance *Config
	once     sync.Once
	loadErr  error
)

// Get returns the singleton Config, loading it once from environment variables.
// Panics if loading fails — call this early in main() to catch misconfigurations
// at startup.
func Get() *Config {
	once.Do(func() {
		_ = godotenv.Load() // dev convenience; absence of .env is not an error
		instance, loadErr = load()
	})
	if loadErr != nil {
		panic(fmt.Sprintf("config: failed to load: %v", loadErr))
	}
	return instance
}

// MustLoad loads and validates configuration. Intended for use in main().
// Panics on any error so misconfiguration is caught immediately at boot.
func MustLoad() *Config {
	cfg := Get()
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("config: validation failed: %v", err))
	}
	return cfg
}

// ──────────────────────────────────────────────────────────────────────────────
// Internal loader
// ──────────────────────────────────────────────────────────────────────────────

func load() (*Config, error) {
	cfg := &Config{}

	// ── Runtime ───────────────────────────────────────────────────────────────
	cfg.Runtime = RuntimeConfig{
		Env:          getEnv("ENVIRONMENT", "development"),
		Symbols:      getSymbols("SYMBOLS", defaultSymbols),
		TickInterval: getDuration("TICK_INTERVAL", time.Second),
		ShutdownWait: getDuration("SHUTDOWN_WAIT", 10*time.Second),
	}

	// ── Breaker ───────────────────────────────────────────────────────────────
	threshold, err := getInt("FAILURE_THRESHOLD", 5)
	if err != nil {
		return nil, fmt.Errorf("FAILURE_THRESHOLD: %w", err)
	}
	recovery, err := getFloat("RECOVERY_TIMEOUT", 300)
	if err != nil {
		return nil, fmt.Errorf("RECOVERY_TIMEOUT: %w", err)
	}
	cfg.Breaker = BreakerConfig{
		FailureThreshold: threshold,
		RecoveryTimeoutS: recovery,
	}

	// ── KV/PubSub ─────────────────────────────────────────────────────────────
	kvDB, err := getInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("REDIS_DB: %w", err)
	}
	cfg.KV = KVConfig{
		RedisAddr:     fmt.Sprintf("%s:%s", getEnv("REDIS_HOST", "localhost"), getEnv("REDIS_PORT", "6379")),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       kvDB,
	}

	// ── Source schedules ──────────────────────────────────────────────────────
	cfg.Sources = defaultSourceSchedules

	return cfg, nil
}

var defaultSymbols = []domain.Symbol{"XAU-USD", "XAG-USD", "USD-TWD"}

// defaultSourceSchedules mirrors the original system's module-level
// SOURCE_CONFIG table: one entry per named source with its base poll
// interval, phase offset, and freshness budget, all in seconds.
var defaultSourceSchedules = []SourceSchedule{
	{Name: "Binance", IntervalS: 2, OffsetS: 0, MaxAgeS: 6, IsCrypto: true},
	{Name: "GoldPrice.org", IntervalS: 15, OffsetS: 1, MaxAgeS: 45},
	{Name: "Sina Finance", IntervalS: 5, OffsetS: 0.5, MaxAgeS: 15},
	{Name: "BullionVault", IntervalS: 10, OffsetS: 2, MaxAgeS: 30},
	{Name: "Yahoo Finance", IntervalS: 60, OffsetS: 5, MaxAgeS: 180},
	{Name: "Kitco", IntervalS: 60, OffsetS: 10, MaxAgeS: 180},
	{Name: "Investing.com", IntervalS: 120, OffsetS: 15, MaxAgeS: 360},
	{Name: "OANDA", IntervalS: 5, OffsetS: 3, MaxAgeS: 15},
	{Name: "Taiwan Bank", IntervalS: 60, OffsetS: 20, MaxAgeS: 180},
	{Name: "Mock", IntervalS: 2, OffsetS: 0, MaxAgeS: 6, IsCrypto: true},
	{Name: "exchangerate.host", IntervalS: 30, OffsetS: 12, MaxAgeS: 90},
	{Name: "open.er-api.com", IntervalS: 60, OffsetS: 25, MaxAgeS: 180},
	{Name: "Fawaz API", IntervalS: 3600, OffsetS: 30, MaxAgeS: 10800},
	{Name: "FloatRates", IntervalS: 3600, OffsetS: 45, MaxAgeS: 10800},
	{Name: "Gold-API", IntervalS: 30, OffsetS: 40, MaxAgeS: 90},
	{Name: "APMEX", IntervalS: 60, OffsetS: 50, MaxAgeS: 180},
}

// ──────────────────────────────────────────────────────────────────────────────
// Helper functions
// ──────────────────────────────────────────────────────────────────────────────

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", v)
	}
	return n, nil
}

func getFloat(key string, defaultVal float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float %q", v)
	}
	return f, nil
}

// getDuration parses an env var as a Go duration string (e.g. "15m", "2s").
// Falls back to defaultVal if the variable is unset, empty, or unparsable.
func getDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		// Fall back to default silently; do not crash on parse error
		return defaultVal
	}
	return d
}

// getSymbols parses a comma-separated env var into a symbol list.
func getSymbols(key string, defaultVal []domain.Symbol) []domain.Symbol {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	parts := strings.Split(v, ",")
	out := make([]domain.Symbol, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			out = append(out, domain.Symbol(p))
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}

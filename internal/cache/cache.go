// Package cache holds the result cache: the latest reading per
// (symbol, source), written by the scheduler and read by the
// aggregator.
package cache

import (
	"sync"

	"github.com/evetabi/marketagg/internal/domain"
)

// ResultCache maps symbol -> source name -> latest reading. Entries are
// created on first successful poll and overwritten thereafter; they are
// never deleted, matching the scheduler's latest-wins contract.
type ResultCache struct {
	mu   sync.RWMutex
	data map[domain.Symbol]map[string]domain.SourceReading
}

// New constructs an empty ResultCache.
func New() *ResultCache {
	return &ResultCache{
		data: make(map[domain.Symbol]map[string]domain.SourceReading),
	}
}

// Put stores reading as the latest value for its (symbol, source)
// cell. Only the poller for that (source, symbol) pair should ever
// call Put for that cell (single-writer discipline enforced by the
// scheduler, not by this type).
func (c *ResultCache) Put(reading domain.SourceReading) {
	c.mu.Lock()
	defer c.mu.Unlock()

	bySource, ok := c.data[reading.Symbol]
	if !ok {
		bySource = make(map[string]domain.SourceReading)
		c.data[reading.Symbol] = bySource
	}
	bySource[reading.Source] = reading
}

// Snapshot returns a shallow copy of all current readings for symbol,
// safe to iterate without holding the cache lock. Taking this copy
// before aggregation avoids races with concurrent poller writes
// mid-tick.
func (c *ResultCache) Snapshot(symbol domain.Symbol) []domain.SourceReading {
	c.mu.RLock()
	defer c.mu.RUnlock()

	bySource := c.data[symbol]
	out := make([]domain.SourceReading, 0, len(bySource))
	for _, r := range bySource {
		out = append(out, r)
	}
	return out
}

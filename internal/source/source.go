// Package source defines the adapter contract each external price
// feed implements, plus the shared HTTP plumbing (rate limiting,
// retry/backoff) adapters use to talk to their upstream APIs.
package source

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/evetabi/marketagg/internal/domain"
)

// Source is the uniform polling interface every adapter implements.
// fetch_price must never raise to the caller: any failure is signaled
// by a zero price and a non-nil error, both consumed only by GetData.
type Source interface {
	Meta() domain.SourceMeta
	FetchPrice(ctx context.Context, symbol domain.Symbol) (decimal.Decimal, error)
}

// Supports reports whether src should be polled for symbol.
func Supports(src Source, symbol domain.Symbol) bool {
	return src.Meta().Supports(symbol)
}

// GetData wraps FetchPrice: it measures latency, invokes the fetch,
// and returns a SourceReading (ok=false on any failure). It
// concentrates timing and error swallowing so individual adapters can
// focus on protocol/parsing.
func GetData(ctx context.Context, src Source, symbol domain.Symbol) (domain.SourceReading, bool) {
	start := time.Now()
	price, err := src.FetchPrice(ctx, symbol)
	latency := time.Since(start).Seconds() * 1000

	if err != nil || !price.IsPositive() {
		return domain.SourceReading{}, false
	}

	return domain.SourceReading{
		Source:    src.Meta().SourceName,
		Symbol:    symbol,
		Price:     price,
		LatencyMs: latency,
		Timestamp: float64(time.Now().UnixNano()) / 1e9,
	}, true
}

package source

import (
	"context"
	"math/rand"

	"github.com/shopspring/decimal"

	"github.com/evetabi/marketagg/internal/domain"
)

// Mock is a synthetic adapter that cmd/aggregator registers alongside
// the network adapters. It never makes a network call: it
// returns a jittered base price for known symbols, pinned flat when
// the market is closed, mirroring original_source's mock source.
type Mock struct {
	isOpen func(domain.Symbol) bool
}

// NewMock constructs a Mock adapter. isOpen is injected so tests can
// control market-hours behavior without depending on wall-clock time.
func NewMock(isOpen func(domain.Symbol) bool) *Mock {
	return &Mock{isOpen: isOpen}
}

func (m *Mock) Meta() domain.SourceMeta {
	return domain.SourceMeta{
		SourceName: "Mock",
		Weight:     0.3,
		Priority:   9,
	}
}

func basePrice(symbol domain.Symbol) float64 {
	switch symbol {
	case "XAU-USD":
		return 2650.0
	case "XAG-USD":
		return 31.0
	default:
		return 31.8
	}
}

func (m *Mock) FetchPrice(_ context.Context, symbol domain.Symbol) (decimal.Decimal, error) {
	base := basePrice(symbol)
	if m.isOpen != nil && !m.isOpen(symbol) {
		return decimal.NewFromFloat(base), nil
	}
	jitter := (rand.Float64() - 0.5) * 1.0 // +/- 0.5
	return decimal.NewFromFloat(base + jitter).Round(2), nil
}

package source

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/evetabi/marketagg/internal/domain"
)

// Binance polls Binance's spot ticker for PAXG/USDT as a gold-price
// proxy, exactly as the original price feed does.
type Binance struct {
	client  *Client
	baseURL string
}

// NewBinance constructs a Binance adapter sharing client.
func NewBinance(client *Client) *Binance {
	return &Binance{client: client, baseURL: "https://api.binance.com/api/v3/ticker/price"}
}

func (b *Binance) Meta() domain.SourceMeta {
	return domain.SourceMeta{
		SourceName: "Binance",
		Weight:     0.8,
		SupportedSymbols: map[domain.Symbol]struct{}{
			"XAU-USD": {},
		},
		Priority: 1,
	}
}

type binanceTicker struct {
	Price string `json:"price"`
}

func (b *Binance) FetchPrice(ctx context.Context, symbol domain.Symbol) (decimal.Decimal, error) {
	if symbol != "XAU-USD" {
		return decimal.Zero, fmt.Errorf("%w: binance does not support %s", domain.ErrFetchFailed, symbol)
	}

	body, err := b.client.Get(ctx, b.baseURL+"?symbol=PAXGUSDT", nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrFetchFailed, err)
	}

	var t binanceTicker
	if err := json.Unmarshal(body, &t); err != nil {
		return decimal.Zero, fmt.Errorf("%w: decode binance response: %s", domain.ErrFetchFailed, err)
	}

	price, err := decimal.NewFromString(t.Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: parse binance price: %s", domain.ErrFetchFailed, err)
	}
	return price, nil
}

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/evetabi/marketagg/internal/domain"
)

// ExchangeRateHost polls exchangerate.host for fiat cross rates such
// as USD-TWD.
type ExchangeRateHost struct {
	client  *Client
	baseURL string
}

// NewExchangeRateHost constructs an ExchangeRateHost adapter sharing
// client.
func NewExchangeRateHost(client *Client) *ExchangeRateHost {
	return &ExchangeRateHost{client: client, baseURL: "https://api.exchangerate.host/latest"}
}

func (e *ExchangeRateHost) Meta() domain.SourceMeta {
	return domain.SourceMeta{
		SourceName: "exchangerate.host",
		Weight:     0.5,
		SupportedSymbols: map[domain.Symbol]struct{}{
			"USD-TWD": {},
		},
		Priority: 3,
	}
}

type exchangeRateResponse struct {
	Rates map[string]float64 `json:"rates"`
}

func (e *ExchangeRateHost) FetchPrice(ctx context.Context, symbol domain.Symbol) (decimal.Decimal, error) {
	parts := strings.SplitN(string(symbol), "-", 2)
	if len(parts) != 2 {
		return decimal.Zero, fmt.Errorf("%w: malformed symbol %s", domain.ErrFetchFailed, symbol)
	}
	base, quote := parts[0], parts[1]

	url := fmt.Sprintf("%s?base=%s&symbols=%s", e.baseURL, base, quote)
	body, err := e.client.Get(ctx, url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrFetchFailed, err)
	}

	var resp exchangeRateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return decimal.Zero, fmt.Errorf("%w: decode exchangerate.host response: %s", domain.ErrFetchFailed, err)
	}

	rate, ok := resp.Rates[quote]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: exchangerate.host response missing %s", domain.ErrFetchFailed, quote)
	}
	return decimal.NewFromFloat(rate), nil
}

package source

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/evetabi/marketagg/internal/domain"
)

// GoldAPI polls gold-api.com's spot price endpoint for XAU-USD and
// XAG-USD.
type GoldAPI struct {
	client  *Client
	baseURL string
}

// NewGoldAPI constructs a GoldAPI adapter sharing client.
func NewGoldAPI(client *Client) *GoldAPI {
	return &GoldAPI{client: client, baseURL: "https://api.gold-api.com/price"}
}

func (g *GoldAPI) Meta() domain.SourceMeta {
	return domain.SourceMeta{
		SourceName: "Gold-API",
		Weight:     0.6,
		SupportedSymbols: map[domain.Symbol]struct{}{
			"XAU-USD": {},
			"XAG-USD": {},
		},
		Priority: 2,
	}
}

type goldAPIResponse struct {
	Price float64 `json:"price"`
}

func (g *GoldAPI) symbolPath(symbol domain.Symbol) (string, error) {
	switch symbol {
	case "XAU-USD":
		return "XAU", nil
	case "XAG-USD":
		return "XAG", nil
	default:
		return "", fmt.Errorf("%w: gold-api does not support %s", domain.ErrFetchFailed, symbol)
	}
}

func (g *GoldAPI) FetchPrice(ctx context.Context, symbol domain.Symbol) (decimal.Decimal, error) {
	path, err := g.symbolPath(symbol)
	if err != nil {
		return decimal.Zero, err
	}

	body, err := g.client.Get(ctx, fmt.Sprintf("%s/%s", g.baseURL, path), nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrFetchFailed, err)
	}

	var resp goldAPIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return decimal.Zero, fmt.Errorf("%w: decode gold-api response: %s", domain.ErrFetchFailed, err)
	}
	return decimal.NewFromFloat(resp.Price), nil
}

package aggregator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/evetabi/marketagg/internal/domain"
)

// payload is the wire shape published to both the stream channel and
// the last-value key; field names and ordering match the documented
// JSON schema.
type payload struct {
	Symbol         string   `json:"symbol"`
	Price          float64  `json:"price"`
	Timestamp      float64  `json:"timestamp"`
	Sources        int      `json:"sources"`
	Details        []string `json:"details"`
	Fastest        string   `json:"fastest"`
	FastestLatency float64  `json:"fastestLatency"`
	AvgLatency     float64  `json:"avgLatency"`
	IsMarketOpen   bool     `json:"is_market_open"`
}

func toPayload(q *domain.AggregateQuote) payload {
	price, _ := q.Price.Float64()
	return payload{
		Symbol:         string(q.Symbol),
		Price:          price,
		Timestamp:      q.Timestamp,
		Sources:        q.Sources,
		Details:        q.Details,
		Fastest:        q.Fastest,
		FastestLatency: q.FastestLatency,
		AvgLatency:     q.AvgLatency,
		IsMarketOpen:   q.IsMarketOpen,
	}
}

// publish serializes quote once and writes identical bytes to both
// the stream channel and the last-value key, satisfying the publish
// invariant (property 7): one stream message, one last-value write,
// same bytes.
func (a *Aggregator) publish(ctx context.Context, quote *domain.AggregateQuote) error {
	body, err := json.Marshal(toPayload(quote))
	if err != nil {
		return fmt.Errorf("%w: marshal payload: %s", domain.ErrPublishFailed, err)
	}

	channel := fmt.Sprintf("market:stream:%s", quote.Symbol)
	key := fmt.Sprintf("market:latest:%s", quote.Symbol)

	if err := a.store.Publish(ctx, channel, body); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrPublishFailed, err)
	}
	if err := a.store.Set(ctx, key, body); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrPublishFailed, err)
	}
	return nil
}

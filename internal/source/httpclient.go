package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// Client is the one shared, reusable HTTP session every adapter uses:
// adapters share a single connection pool rather than each dialing
// their own. One rate.Limiter paces the requests of every adapter
// sharing the Client, and failed requests on retryable status codes are
// retried with bounded exponential backoff.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient builds a Client that issues at most ratePerSecond requests
// per second (bursting up to burst), sharing one underlying
// http.Transport connection pool.
func NewClient(timeout time.Duration, ratePerSecond float64, burst int) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
	}
}

var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Get performs a GET against url, applying rate limiting and up to 2
// retries with exponential backoff (base 500ms) on the retryable
// status codes: 429, 500, 502, 503, 504.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	policy := backoff.WithContext(retryPolicy(), ctx)

	var body []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		if _, ok := headers["User-Agent"]; !ok {
			req.Header.Set("User-Agent", "marketagg/1.0")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if retryableStatus[resp.StatusCode] {
			return fmt.Errorf("retryable status %d from %s", resp.StatusCode, url)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url))
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		body = data
		return nil
	}

	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return body, nil
}

func retryPolicy() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	return backoff.WithMaxRetries(b, 2)
}

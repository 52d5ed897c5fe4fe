package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestExchangeRateHost_FetchPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("base") != "USD" || q.Get("symbols") != "TWD" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"rates":{"TWD":31.456}}`))
	}))
	defer srv.Close()

	e := NewExchangeRateHost(NewClient(5*time.Second, 100, 10))
	e.baseURL = srv.URL

	price, err := e.FetchPrice(context.Background(), "USD-TWD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !price.Equal(mustDecimal("31.456")) {
		t.Errorf("price = %s, want 31.456", price)
	}
}

func TestExchangeRateHost_FetchPrice_MissingRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rates":{}}`))
	}))
	defer srv.Close()

	e := NewExchangeRateHost(NewClient(5*time.Second, 100, 10))
	e.baseURL = srv.URL

	if _, err := e.FetchPrice(context.Background(), "USD-TWD"); err == nil {
		t.Fatal("expected error when response is missing the requested rate")
	}
}

func TestExchangeRateHost_FetchPrice_MalformedSymbol(t *testing.T) {
	e := NewExchangeRateHost(NewClient(5*time.Second, 100, 10))
	if _, err := e.FetchPrice(context.Background(), "USDTWD"); err == nil {
		t.Fatal("expected error for a symbol missing the base-quote separator")
	}
}

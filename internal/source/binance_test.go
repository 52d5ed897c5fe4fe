package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestBinance_FetchPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") != "PAXGUSDT" {
			t.Errorf("unexpected symbol query param: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"price":"2651.32000000"}`))
	}))
	defer srv.Close()

	b := NewBinance(NewClient(5*time.Second, 100, 10))
	b.baseURL = srv.URL

	price, err := b.FetchPrice(context.Background(), "XAU-USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !price.Equal(mustDecimal("2651.32")) {
		t.Errorf("price = %s, want 2651.32", price)
	}
}

func TestBinance_FetchPrice_UnsupportedSymbol(t *testing.T) {
	b := NewBinance(NewClient(5*time.Second, 100, 10))
	if _, err := b.FetchPrice(context.Background(), "USD-TWD"); err == nil {
		t.Fatal("expected error for unsupported symbol")
	}
}

func TestBinance_FetchPrice_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	b := NewBinance(NewClient(2*time.Second, 100, 10))
	b.baseURL = srv.URL

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if _, err := b.FetchPrice(ctx, "XAU-USD"); err == nil {
		t.Fatal("expected error after retries exhausted against a failing server")
	}
}

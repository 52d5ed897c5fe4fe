package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGoldAPI_FetchPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/XAU") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"price": 2649.87}`))
	}))
	defer srv.Close()

	g := NewGoldAPI(NewClient(5*time.Second, 100, 10))
	g.baseURL = srv.URL

	price, err := g.FetchPrice(context.Background(), "XAU-USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !price.Equal(mustDecimal("2649.87")) {
		t.Errorf("price = %s, want 2649.87", price)
	}
}

func TestGoldAPI_FetchPrice_Silver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/XAG") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"price": 31.22}`))
	}))
	defer srv.Close()

	g := NewGoldAPI(NewClient(5*time.Second, 100, 10))
	g.baseURL = srv.URL

	price, err := g.FetchPrice(context.Background(), "XAG-USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !price.Equal(mustDecimal("31.22")) {
		t.Errorf("price = %s, want 31.22", price)
	}
}

func TestGoldAPI_FetchPrice_UnsupportedSymbol(t *testing.T) {
	g := NewGoldAPI(NewClient(5*time.Second, 100, 10))
	if _, err := g.FetchPrice(context.Background(), "USD-TWD"); err == nil {
		t.Fatal("expected error for unsupported symbol")
	}
}

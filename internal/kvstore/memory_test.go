package kvstore

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_GetSetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.Set(ctx, "market:latest:XAU-USD", []byte(`{"price":2650}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, err := s.Get(ctx, "market:latest:XAU-USD")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(v) != `{"price":2650}` {
		t.Errorf("Get = %s, want the stored payload", v)
	}
}

func TestMemoryStore_GetMissingKeyReturnsNil(t *testing.T) {
	v, err := NewMemoryStore().Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != nil {
		t.Errorf("expected nil for missing key, got %v", v)
	}
}

func TestMemoryStore_PublishDeliversToSubscriber(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	ch := s.Subscribe("market:stream:XAU-USD")

	if err := s.Publish(ctx, "market:stream:XAU-USD", []byte("tick")); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case msg := <-ch:
		if string(msg) != "tick" {
			t.Errorf("received %s, want tick", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive published message")
	}
}

func TestMemoryStore_PublishWithNoSubscriberIsNoop(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Publish(context.Background(), "nobody-listening", []byte("x")); err != nil {
		t.Fatalf("unexpected error publishing with no subscribers: %v", err)
	}
}

func TestMemoryStore_SetOperations(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.SAdd(ctx, "sources:active", "Binance"); err != nil {
		t.Fatalf("SAdd: %v", err)
	}
	if err := s.SAdd(ctx, "sources:active", "Gold-API"); err != nil {
		t.Fatalf("SAdd: %v", err)
	}

	ok, err := s.SIsMember(ctx, "sources:active", "Binance")
	if err != nil || !ok {
		t.Fatalf("SIsMember(Binance) = %v, %v; want true, nil", ok, err)
	}

	members, err := s.SMembers(ctx, "sources:active")
	if err != nil || len(members) != 2 {
		t.Fatalf("SMembers = %v, %v; want 2 members", members, err)
	}

	if err := s.SRem(ctx, "sources:active", "Binance"); err != nil {
		t.Fatalf("SRem: %v", err)
	}
	ok, _ = s.SIsMember(ctx, "sources:active", "Binance")
	if ok {
		t.Error("expected Binance removed from set")
	}
}

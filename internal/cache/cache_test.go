package cache

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/evetabi/marketagg/internal/domain"
)

func TestResultCache_PutAndSnapshot(t *testing.T) {
	c := New()
	c.Put(domain.SourceReading{Symbol: "XAU-USD", Source: "A", Price: decimal.NewFromInt(2650)})
	c.Put(domain.SourceReading{Symbol: "XAU-USD", Source: "B", Price: decimal.NewFromInt(2651)})

	got := c.Snapshot("XAU-USD")
	if len(got) != 2 {
		t.Fatalf("Snapshot returned %d entries, want 2", len(got))
	}
}

func TestResultCache_PutOverwritesSameSource(t *testing.T) {
	c := New()
	c.Put(domain.SourceReading{Symbol: "XAU-USD", Source: "A", Price: decimal.NewFromInt(2650)})
	c.Put(domain.SourceReading{Symbol: "XAU-USD", Source: "A", Price: decimal.NewFromInt(2700)})

	got := c.Snapshot("XAU-USD")
	if len(got) != 1 {
		t.Fatalf("expected one entry per source, got %d", len(got))
	}
	if !got[0].Price.Equal(decimal.NewFromInt(2700)) {
		t.Errorf("expected latest price 2700, got %s", got[0].Price)
	}
}

func TestResultCache_SnapshotOfUnknownSymbolIsEmpty(t *testing.T) {
	c := New()
	got := c.Snapshot("USD-TWD")
	if len(got) != 0 {
		t.Errorf("expected empty snapshot, got %d entries", len(got))
	}
}

func TestResultCache_ConcurrentPutAndSnapshot(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			c.Put(domain.SourceReading{Symbol: "XAU-USD", Source: "worker", Price: decimal.NewFromInt(int64(i))})
		}(i)
		go func() {
			defer wg.Done()
			c.Snapshot("XAU-USD")
		}()
	}
	wg.Wait()
}

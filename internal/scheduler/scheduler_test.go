package scheduler

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/evetabi/marketagg/internal/domain"
)

func TestMaxFloatMinFloat(t *testing.T) {
	if got := maxFloat(1.0, 2.0); got != 2.0 {
		t.Errorf("maxFloat(1,2) = %v, want 2", got)
	}
	if got := minFloat(1.0, 2.0); got != 1.0 {
		t.Errorf("minFloat(1,2) = %v, want 1", got)
	}
}

func TestAdaptiveBackoffScale_SuccessNarrowsToFloor(t *testing.T) {
	scale := 4.0
	for i := 0; i < 50; i++ {
		scale = maxFloat(1.0, scale*0.9)
	}
	if scale != 1.0 {
		t.Errorf("expected scale to settle at floor 1.0 after repeated success, got %v", scale)
	}
}

func TestAdaptiveBackoffScale_FailureGrowsToCeiling(t *testing.T) {
	scale := 1.0
	for i := 0; i < 50; i++ {
		scale = minFloat(4.0, scale*1.5)
	}
	if scale != 4.0 {
		t.Errorf("expected scale to settle at ceiling 4.0 after repeated failure, got %v", scale)
	}
}

func TestLatestPrice_PicksHighestTimestamp(t *testing.T) {
	readings := []domain.SourceReading{
		{Source: "A", Price: decimal.NewFromInt(100), Timestamp: 10},
		{Source: "B", Price: decimal.NewFromInt(200), Timestamp: 30},
		{Source: "C", Price: decimal.NewFromInt(150), Timestamp: 20},
	}
	got := latestPrice(readings)
	if !got.Equal(decimal.NewFromInt(200)) {
		t.Errorf("latestPrice = %s, want 200", got)
	}
}

func TestLatestPrice_EmptyReturnsZero(t *testing.T) {
	got := latestPrice(nil)
	if !got.IsZero() {
		t.Errorf("latestPrice(nil) = %s, want zero", got)
	}
}

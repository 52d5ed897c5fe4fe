package aggregator

import (
	"sort"

	"github.com/shopspring/decimal"
)

// median returns the median of a float64 slice; on even-sized sets it
// is the arithmetic mean of the two central values. values is left
// unchanged; a sorted copy is used.
func median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// madFilter applies the MAD-based outlier filter of spec step 3. If
// the filter would remove every entry, the unfiltered input is
// returned instead.
func madFilter(entries []entry) []entry {
	prices := make([]float64, len(entries))
	for i, e := range entries {
		prices[i], _ = e.reading.Price.Float64()
	}
	m := median(prices)

	deviations := make([]float64, len(prices))
	for i, p := range prices {
		deviations[i] = absFloat(p - m)
	}
	mad := median(deviations)

	threshold := clamp(3*mad, m*0.0005, m*0.01)

	kept := make([]entry, 0, len(entries))
	for i, e := range entries {
		if absFloat(prices[i]-m) <= threshold {
			kept = append(kept, e)
		}
	}
	if len(kept) == 0 {
		return entries
	}
	return kept
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// weightedMean computes the mean price of entries weighted by each
// entry's effWeight, falling
// back to the arithmetic mean if total weight is zero.
func weightedMean(entries []entry) decimal.Decimal {
	if len(entries) == 0 {
		return decimal.Zero
	}

	totalWeight := 0.0
	weightedSum := 0.0
	sum := decimal.Zero
	for _, e := range entries {
		p, _ := e.reading.Price.Float64()
		weightedSum += p * e.effWeight
		totalWeight += e.effWeight
		sum = sum.Add(e.reading.Price)
	}
	if totalWeight <= 0 {
		return sum.DivRound(decimal.NewFromInt(int64(len(entries))), 8)
	}
	return decimal.NewFromFloat(weightedSum / totalWeight)
}

// fastest returns the source name and latency of the entry with the
// minimum latency among pre-outlier fresh entries.
func fastest(entries []entry) (string, float64) {
	if len(entries) == 0 {
		return "", 0
	}
	best := entries[0]
	for _, e := range entries[1:] {
		if e.reading.LatencyMs < best.reading.LatencyMs {
			best = e
		}
	}
	return best.reading.Source, best.reading.LatencyMs
}

// weightedLatencyTop5 returns the effWeight-weighted mean latency
// across the 5 fastest pre-outlier fresh entries, rounded to 1
// decimal, guarding against zero total weight.
func weightedLatencyTop5(entries []entry) float64 {
	if len(entries) == 0 {
		return 0
	}
	sorted := append([]entry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].reading.LatencyMs < sorted[j].reading.LatencyMs
	})
	top := sorted
	if len(top) > 5 {
		top = top[:5]
	}

	totalWeight := 0.0
	weightedSum := 0.0
	for _, e := range top {
		weightedSum += e.reading.LatencyMs * e.effWeight
		totalWeight += e.effWeight
	}
	if totalWeight <= 0 {
		sum := 0.0
		for _, e := range top {
			sum += e.reading.LatencyMs
		}
		return round1(sum / float64(len(top)))
	}
	return round1(weightedSum / totalWeight)
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

// Package pricing normalizes cash fares into comparison buckets and resolves
// a cash comparable for award fares through an ordered matcher chain.
package pricing

import (
	"sort"

	"github.com/aristath/voyager/internal/domain"
	"gonum.org/v1/gonum/stat"
)

// BucketKey partitions the cash pool. Nonstop and connecting prices are never
// averaged together: a nonstop premium is signal, not noise.
type BucketKey struct {
	Cabin domain.Cabin
	Stops domain.StopBucket
}

// Bucket holds the price statistics for one (cabin, stops) cell.
type Bucket struct {
	Min     float64
	Max     float64
	Mean    float64
	Median  float64
	Samples int

	// prices stays sorted ascending; carriers indexes which airlines priced
	// into this cell, for exact-match filtering.
	prices   []float64
	carriers map[string][]carrierFare
}

// carrierFare keeps the itinerary's exact stop count next to its price: the
// bucket pools nonstop with nonstop and connecting with connecting, but an
// exact match must not equate one stop with two.
type carrierFare struct {
	Price float64
	Stops int
}

// BuildBuckets groups cash fares into (cabin, stops) cells. Award fares are
// ignored: points never contaminate the cash statistics.
func BuildBuckets(flights []domain.FlightRecord) map[BucketKey]*Bucket {
	buckets := make(map[BucketKey]*Bucket)

	for _, f := range flights {
		if f.Kind != domain.KindCash || f.CashPrice <= 0 {
			continue
		}
		key := BucketKey{Cabin: f.Cabin, Stops: domain.BucketForStops(f.Stops)}
		b, ok := buckets[key]
		if !ok {
			b = &Bucket{carriers: make(map[string][]carrierFare)}
			buckets[key] = b
		}
		b.prices = append(b.prices, f.CashPrice)
		for _, carrier := range f.Carriers {
			b.carriers[carrier] = append(b.carriers[carrier], carrierFare{Price: f.CashPrice, Stops: f.Stops})
		}
	}

	for _, b := range buckets {
		sort.Float64s(b.prices)
		b.Samples = len(b.prices)
		b.Min = b.prices[0]
		b.Max = b.prices[len(b.prices)-1]
		b.Mean = stat.Mean(b.prices, nil)
		b.Median = median(b.prices)
	}

	return buckets
}

// CarrierMedian returns the median price across the given carriers' fares at
// exactly the given stop count, or false when none of them priced one.
func (b *Bucket) CarrierMedian(carriers []string, stops int) (float64, bool) {
	var pool []float64
	for _, c := range carriers {
		for _, cf := range b.carriers[c] {
			if cf.Stops == stops {
				pool = append(pool, cf.Price)
			}
		}
	}
	if len(pool) == 0 {
		return 0, false
	}
	sort.Float64s(pool)
	return median(pool), true
}

// median of a sorted slice; even lengths average the middle pair.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

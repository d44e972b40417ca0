package pricing

import (
	"sort"

	"github.com/aristath/voyager/internal/domain"
	"gonum.org/v1/gonum/stat"
)

// CabinSummary is the per-cabin price spread surfaced in search responses.
type CabinSummary struct {
	Cabin   domain.Cabin `json:"cabin"`
	Min     float64      `json:"min"`
	Max     float64      `json:"max"`
	Mean    float64      `json:"mean"`
	Median  float64      `json:"median"`
	StdDev  float64      `json:"std_dev"`
	Samples int          `json:"samples"`
}

// Analyze summarizes the cash price spread per cabin, both stop buckets
// pooled. Cabins are returned in ascending-mean order.
func Analyze(flights []domain.FlightRecord) []CabinSummary {
	byCabin := make(map[domain.Cabin][]float64)
	for _, f := range flights {
		if f.Kind != domain.KindCash || f.CashPrice <= 0 {
			continue
		}
		byCabin[f.Cabin] = append(byCabin[f.Cabin], f.CashPrice)
	}

	summaries := make([]CabinSummary, 0, len(byCabin))
	for cabin, prices := range byCabin {
		sort.Float64s(prices)
		s := CabinSummary{
			Cabin:   cabin,
			Min:     prices[0],
			Max:     prices[len(prices)-1],
			Mean:    stat.Mean(prices, nil),
			Median:  median(prices),
			Samples: len(prices),
		}
		if len(prices) > 1 {
			s.StdDev = stat.StdDev(prices, nil)
		}
		summaries = append(summaries, s)
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Mean < summaries[j].Mean })
	return summaries
}

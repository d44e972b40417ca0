package pricing

import (
	"testing"

	"github.com/aristath/voyager/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cash(cabin domain.Cabin, stops int, price float64, carriers ...string) domain.FlightRecord {
	if len(carriers) == 0 {
		carriers = []string{"UA"}
	}
	return domain.FlightRecord{
		Kind: domain.KindCash, Cabin: cabin, Stops: stops,
		CashPrice: price, Carriers: carriers, Currency: "USD",
	}
}

func award(cabin domain.Cabin, stops int, carriers ...string) domain.FlightRecord {
	return domain.FlightRecord{
		Kind: domain.KindAward, Cabin: cabin, Stops: stops,
		Points: 50000, Program: "aeroplan", Carriers: carriers, Currency: "USD",
	}
}

func TestBuildBucketsPartitionsByCabinAndStops(t *testing.T) {
	flights := []domain.FlightRecord{
		cash(domain.CabinEconomy, 0, 400),
		cash(domain.CabinEconomy, 0, 600),
		cash(domain.CabinEconomy, 1, 300),
		cash(domain.CabinBusiness, 0, 2500),
		award(domain.CabinEconomy, 0, "UA"), // awards never enter the cash pool
	}

	buckets := BuildBuckets(flights)
	require.Len(t, buckets, 3)

	yNonstop := buckets[BucketKey{Cabin: domain.CabinEconomy, Stops: domain.StopsNonstop}]
	require.NotNil(t, yNonstop)
	assert.Equal(t, 2, yNonstop.Samples)
	assert.Equal(t, 400.0, yNonstop.Min)
	assert.Equal(t, 600.0, yNonstop.Max)
	assert.Equal(t, 500.0, yNonstop.Mean)
	assert.Equal(t, 500.0, yNonstop.Median)

	yConnecting := buckets[BucketKey{Cabin: domain.CabinEconomy, Stops: domain.StopsConnecting}]
	require.NotNil(t, yConnecting)
	assert.Equal(t, 1, yConnecting.Samples)
}

func TestCarrierMedian(t *testing.T) {
	buckets := BuildBuckets([]domain.FlightRecord{
		cash(domain.CabinBusiness, 0, 3000, "NH"),
		cash(domain.CabinBusiness, 0, 4000, "NH"),
		cash(domain.CabinBusiness, 0, 5000, "NH"),
		cash(domain.CabinBusiness, 0, 9000, "UA"),
	})
	b := buckets[BucketKey{Cabin: domain.CabinBusiness, Stops: domain.StopsNonstop}]
	require.NotNil(t, b)

	med, ok := b.CarrierMedian([]string{"NH"}, 0)
	require.True(t, ok)
	assert.Equal(t, 4000.0, med)

	_, ok = b.CarrierMedian([]string{"DL"}, 0)
	assert.False(t, ok)
}

func TestResolveExactMatch(t *testing.T) {
	buckets := BuildBuckets([]domain.FlightRecord{
		cash(domain.CabinBusiness, 0, 3800, "NH"),
		cash(domain.CabinBusiness, 0, 4200, "NH"),
		cash(domain.CabinBusiness, 0, 9000, "UA"),
	})

	c := Resolve(award(domain.CabinBusiness, 0, "NH"), buckets, DefaultMatchers())
	assert.Equal(t, domain.TierExactMatch, c.Tier)
	assert.Equal(t, 4000.0, c.Price, "median over the overlapping carrier only")
}

func TestResolveSameCabinFallback(t *testing.T) {
	// No carrier overlap: fall back to the whole same-cabin bucket average.
	buckets := BuildBuckets([]domain.FlightRecord{
		cash(domain.CabinBusiness, 0, 3000, "UA"),
		cash(domain.CabinBusiness, 0, 5000, "UA"),
	})

	c := Resolve(award(domain.CabinBusiness, 0, "NH"), buckets, DefaultMatchers())
	assert.Equal(t, domain.TierSameCabin, c.Tier)
	assert.Equal(t, 4000.0, c.Price)
}

func TestResolveExactMatchRequiresSameStopCount(t *testing.T) {
	// Shared carrier, but its only fare has a different stop count within
	// the same connecting bucket: that is bucket data, not an exact match.
	buckets := BuildBuckets([]domain.FlightRecord{
		cash(domain.CabinBusiness, 2, 2500, "NH"),
	})

	c := Resolve(award(domain.CabinBusiness, 1, "NH"), buckets, DefaultMatchers())
	assert.Equal(t, domain.TierSameCabin, c.Tier)
	assert.Equal(t, 2500.0, c.Price)
}

func TestResolveOtherStopBucketIsEstimated(t *testing.T) {
	// A nonstop award priced off connecting-only cash data is a guess and
	// must carry the estimated tier.
	buckets := BuildBuckets([]domain.FlightRecord{
		cash(domain.CabinBusiness, 1, 3000, "UA"),
		cash(domain.CabinBusiness, 1, 5000, "UA"),
	})

	c := Resolve(award(domain.CabinBusiness, 0, "NH"), buckets, DefaultMatchers())
	assert.Equal(t, domain.TierEstimated, c.Tier)
	assert.Equal(t, 4000.0, c.Price, "the other bucket's mean, honestly labeled")
}

func TestResolveCrossBucketScalesFromEconomy(t *testing.T) {
	// Only economy data exists: scale it up for the business award.
	buckets := BuildBuckets([]domain.FlightRecord{
		cash(domain.CabinEconomy, 0, 1000, "UA"),
	})

	c := Resolve(award(domain.CabinBusiness, 0, "NH"), buckets, DefaultMatchers())
	assert.Equal(t, domain.TierEstimated, c.Tier)
	assert.Equal(t, 3500.0, c.Price)
}

func TestResolveConstantWhenNoData(t *testing.T) {
	c := Resolve(award(domain.CabinFirst, 0, "NH"), map[BucketKey]*Bucket{}, DefaultMatchers())
	assert.Equal(t, domain.TierEstimated, c.Tier)
	assert.Equal(t, cabinEstimates[domain.CabinFirst], c.Price)
}

func TestAnalyzeSummarizesPerCabin(t *testing.T) {
	summaries := Analyze([]domain.FlightRecord{
		cash(domain.CabinEconomy, 0, 400),
		cash(domain.CabinEconomy, 1, 600),
		cash(domain.CabinBusiness, 0, 2500),
	})

	require.Len(t, summaries, 2)
	assert.Equal(t, domain.CabinEconomy, summaries[0].Cabin, "sorted by ascending mean")
	assert.Equal(t, 500.0, summaries[0].Mean)
	assert.Equal(t, 2, summaries[0].Samples)
	assert.Equal(t, 1, summaries[1].Samples)
	assert.Zero(t, summaries[1].StdDev, "single sample has no spread")
}

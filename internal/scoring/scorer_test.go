package scoring

import (
	"testing"

	"github.com/aristath/voyager/internal/domain"
	"github.com/aristath/voyager/internal/pricing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealYield(t *testing.T) {
	tests := []struct {
		name       string
		comparable float64
		taxes      float64
		points     int
		want       float64
	}{
		{"business long-haul", 4000, 120, 45000, 8.622222222222222},
		{"simple economy", 500, 0, 25000, 2.0},
		{"taxes exceed comparable", 300, 450, 30000, -0.5},
		{"zero points guards division", 1000, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RealYield(tt.comparable, tt.taxes, tt.points), 1e-9)
		})
	}
}

func TestRealYieldMonotonicity(t *testing.T) {
	base := RealYield(2000, 100, 50000)
	assert.Greater(t, RealYield(2500, 100, 50000), base, "higher comparable, higher yield")
	assert.Greater(t, base, RealYield(2000, 100, 60000), "more points, lower yield")
}

func TestRateYield(t *testing.T) {
	tests := []struct {
		name  string
		yield float64
		cabin domain.Cabin
		tier  domain.ComparableTier
		want  domain.YieldRating
	}{
		{"business exceptional", 8.62, domain.CabinBusiness, domain.TierExactMatch, domain.RatingExceptional},
		{"business great", 4.0, domain.CabinBusiness, domain.TierExactMatch, domain.RatingGreat},
		{"economy good", 1.5, domain.CabinEconomy, domain.TierExactMatch, domain.RatingGood},
		{"economy fair", 1.1, domain.CabinEconomy, domain.TierExactMatch, domain.RatingFair},
		{"first poor", 1.9, domain.CabinFirst, domain.TierExactMatch, domain.RatingPoor},
		{"premium boundary is inclusive", 3.5, domain.CabinPremium, domain.TierExactMatch, domain.RatingExceptional},
		{"estimated tier capped at great", 9.0, domain.CabinBusiness, domain.TierEstimated, domain.RatingGreat},
		{"negative yield is poor", -0.5, domain.CabinEconomy, domain.TierExactMatch, domain.RatingPoor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RateYield(tt.yield, tt.cabin, tt.tier))
		})
	}
}

func awardFare(id string, cabin domain.Cabin, points int, taxes float64, stops int) domain.FlightRecord {
	return domain.FlightRecord{
		ID: id, Kind: domain.KindAward, Origin: "LAX", Destination: "NRT",
		Carriers: []string{"NH"}, Cabin: cabin, Stops: stops,
		Points: points, Program: "virgin-atlantic", TaxesFees: taxes, Currency: "USD",
	}
}

func cashFare(id string, cabin domain.Cabin, price float64) domain.FlightRecord {
	return domain.FlightRecord{
		ID: id, Kind: domain.KindCash, Origin: "LAX", Destination: "NRT",
		Carriers: []string{"NH"}, Cabin: cabin, CashPrice: price, Currency: "USD",
	}
}

func TestScoreBounds(t *testing.T) {
	affordable := func(program string, points int) *domain.Affordability {
		return &domain.Affordability{Kind: domain.AffordDirect}
	}
	perfectSpot := func(f domain.FlightRecord, yield *float64) *domain.SweetSpotMatch {
		return &domain.SweetSpotMatch{RuleID: "r", Score: 100}
	}

	flights := []domain.FlightRecord{
		awardFare("a1", domain.CabinBusiness, 45000, 120, 0),
		awardFare("a2", domain.CabinEconomy, 200000, 900, 3), // terrible value
		cashFare("c1", domain.CabinBusiness, 4000),
	}
	buckets := pricing.BuildBuckets(flights)

	scored := NewScorer(perfectSpot, affordable, zerolog.Nop()).Score(flights, buckets)
	for _, f := range scored {
		assert.GreaterOrEqual(t, f.ValueScore, 0.0, f.ID)
		assert.LessOrEqual(t, f.ValueScore, 100.0, f.ID)
	}
}

func TestScoreAwardComposite(t *testing.T) {
	flights := []domain.FlightRecord{
		awardFare("a1", domain.CabinBusiness, 45000, 120, 0),
		cashFare("c1", domain.CabinBusiness, 4000),
	}
	buckets := pricing.BuildBuckets(flights)

	affordable := func(program string, points int) *domain.Affordability {
		return &domain.Affordability{Kind: domain.AffordTransfer}
	}
	scorer := NewScorer(nil, affordable, zerolog.Nop())
	scored := scorer.Score(flights, buckets)

	var a *domain.ScoredFlight
	for i := range scored {
		if scored[i].ID == "a1" {
			a = &scored[i]
		}
	}
	require.NotNil(t, a)

	require.NotNil(t, a.RealYield)
	assert.InDelta(t, 8.62, *a.RealYield, 0.01)
	assert.Equal(t, domain.RatingExceptional, a.YieldRating)
	assert.Equal(t, domain.TierExactMatch, a.ComparableTier)

	// 40 rating + 0 sweet spot + 15 affordable + 12.75 quality (business
	// default 85) + 10 nonstop = 77.75
	assert.InDelta(t, 77.75, a.ValueScore, 0.01)
}

func TestScoreCashCappedAndRanked(t *testing.T) {
	flights := []domain.FlightRecord{
		cashFare("cheap", domain.CabinEconomy, 400),
		cashFare("mid", domain.CabinEconomy, 600),
		cashFare("dear", domain.CabinEconomy, 900),
	}
	buckets := pricing.BuildBuckets(flights)

	scored := NewScorer(nil, nil, zerolog.Nop()).Score(flights, buckets)

	byID := map[string]float64{}
	for _, f := range scored {
		byID[f.ID] = f.ValueScore
	}
	assert.Equal(t, 50.0, byID["cheap"], "best cash fare hits the cap exactly")
	assert.Greater(t, byID["cheap"], byID["mid"])
	assert.Greater(t, byID["mid"], byID["dear"])
	for id, score := range byID {
		assert.LessOrEqual(t, score, 50.0, id)
	}
}

func TestScoreOrderingIsStable(t *testing.T) {
	flights := []domain.FlightRecord{
		cashFare("b", domain.CabinEconomy, 500),
		cashFare("a", domain.CabinPremium, 900),
	}
	buckets := pricing.BuildBuckets(flights)

	scored := NewScorer(nil, nil, zerolog.Nop()).Score(flights, buckets)
	// Both are the sole fare in their cabin (score 50); ties break by ID.
	require.Len(t, scored, 2)
	assert.Equal(t, "a", scored[0].ID)
	assert.Equal(t, "b", scored[1].ID)
}

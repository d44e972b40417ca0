package pricing

import (
	"github.com/aristath/voyager/internal/domain"
)

// cabinEstimates are the last-resort per-cabin comparables, used only when
// the search produced no cash data at all. Scaled from a typical economy
// long-haul fare the same way estimated cross-cabin pricing scales.
var cabinEstimates = map[domain.Cabin]float64{
	domain.CabinEconomy:  600,
	domain.CabinPremium:  1200,
	domain.CabinBusiness: 2100,
	domain.CabinFirst:    3300,
}

// cabinScale converts an economy price into another cabin's estimate.
var cabinScale = map[domain.Cabin]float64{
	domain.CabinEconomy:  1,
	domain.CabinPremium:  2,
	domain.CabinBusiness: 3.5,
	domain.CabinFirst:    5.5,
}

// Comparable is a resolved cash baseline with its provenance tier.
type Comparable struct {
	Price float64
	Tier  domain.ComparableTier
}

// ComparableMatcher attempts one resolution strategy. ok=false passes the
// fare to the next matcher in the chain.
type ComparableMatcher func(award domain.FlightRecord, buckets map[BucketKey]*Bucket) (Comparable, bool)

// DefaultMatchers is the production chain, highest fidelity first.
func DefaultMatchers() []ComparableMatcher {
	return []ComparableMatcher{
		matchExact,
		matchSameCabin,
		matchEstimate,
	}
}

// Resolve runs the award through the matcher chain. The chain always
// terminates: the estimate matcher never declines.
func Resolve(award domain.FlightRecord, buckets map[BucketKey]*Bucket, matchers []ComparableMatcher) Comparable {
	for _, m := range matchers {
		if c, ok := m(award, buckets); ok {
			return c
		}
	}
	return Comparable{Price: cabinEstimates[award.Cabin], Tier: domain.TierEstimated}
}

// matchExact wants the same cabin, the same stop count and at least one
// shared carrier; the comparable is the median over those carriers' fares.
// A shared carrier at a different stop count is not an exact match.
func matchExact(award domain.FlightRecord, buckets map[BucketKey]*Bucket) (Comparable, bool) {
	key := BucketKey{Cabin: award.Cabin, Stops: domain.BucketForStops(award.Stops)}
	b, ok := buckets[key]
	if !ok {
		return Comparable{}, false
	}
	price, ok := b.CarrierMedian(award.Carriers, award.Stops)
	if !ok {
		return Comparable{}, false
	}
	return Comparable{Price: price, Tier: domain.TierExactMatch}, true
}

// matchSameCabin averages the award's own (cabin, stop-bucket) cell.
// Crossing into the other stop bucket is a guess, so it belongs to the
// estimate tier, not here.
func matchSameCabin(award domain.FlightRecord, buckets map[BucketKey]*Bucket) (Comparable, bool) {
	key := BucketKey{Cabin: award.Cabin, Stops: domain.BucketForStops(award.Stops)}
	if b, ok := buckets[key]; ok {
		return Comparable{Price: b.Mean, Tier: domain.TierSameCabin}, true
	}
	return Comparable{}, false
}

// matchEstimate covers everything the data-backed tiers declined: the same
// cabin's other stop bucket, then a scale-up from whatever economy data
// exists, then the per-cabin constants. Always succeeds, and always tags as
// estimated.
func matchEstimate(award domain.FlightRecord, buckets map[BucketKey]*Bucket) (Comparable, bool) {
	own := domain.BucketForStops(award.Stops)

	if b, ok := buckets[BucketKey{Cabin: award.Cabin, Stops: otherBucket(own)}]; ok {
		return Comparable{Price: b.Mean, Tier: domain.TierEstimated}, true
	}
	for _, stops := range []domain.StopBucket{own, otherBucket(own)} {
		if b, ok := buckets[BucketKey{Cabin: domain.CabinEconomy, Stops: stops}]; ok {
			return Comparable{Price: b.Mean * cabinScale[award.Cabin], Tier: domain.TierEstimated}, true
		}
	}
	return Comparable{Price: cabinEstimates[award.Cabin], Tier: domain.TierEstimated}, true
}

func otherBucket(s domain.StopBucket) domain.StopBucket {
	if s == domain.StopsNonstop {
		return domain.StopsConnecting
	}
	return domain.StopsNonstop
}

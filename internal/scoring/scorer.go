// Package scoring computes real yield, yield ratings and the composite
// 0-100 value score for every fare in a search.
package scoring

import (
	"math"
	"sort"

	"github.com/aristath/voyager/internal/domain"
	"github.com/aristath/voyager/internal/pricing"
	"github.com/rs/zerolog"
)

// ratingThresholds per cabin: minimum cents-per-point for exceptional, great,
// good, fair. Below fair is poor. Premium cabins demand more because their
// cash comparables are inflated retail prices nobody actually pays.
var ratingThresholds = map[domain.Cabin][4]float64{
	domain.CabinEconomy:  {2.5, 1.8, 1.4, 1.0},
	domain.CabinPremium:  {3.5, 2.5, 1.8, 1.2},
	domain.CabinBusiness: {5.0, 3.5, 2.5, 1.5},
	domain.CabinFirst:    {8.0, 5.0, 3.5, 2.0},
}

// ratingPoints maps a rating to its slice of the composite score.
var ratingPoints = map[domain.YieldRating]float64{
	domain.RatingExceptional: 40,
	domain.RatingGreat:       32,
	domain.RatingGood:        24,
	domain.RatingFair:        16,
	domain.RatingPoor:        8,
}

// cabinQualityDefault stands in when the provider supplied no quality signal.
var cabinQualityDefault = map[domain.Cabin]float64{
	domain.CabinEconomy:  60,
	domain.CabinPremium:  70,
	domain.CabinBusiness: 85,
	domain.CabinFirst:    95,
}

// cashScoreCeiling caps cash fares below top award scores: when comparable
// award availability exists, points almost always out-value cash.
const cashScoreCeiling = 50

// SweetSpotFunc finds the best curated-rule match for an award fare, nil when
// none applies. yield may be nil for fares whose yield could not be computed.
type SweetSpotFunc func(f domain.FlightRecord, yield *float64) *domain.SweetSpotMatch

// FundingFunc resolves how points in the given program could be funded.
type FundingFunc func(program string, points int) *domain.Affordability

// Scorer enriches canonical records into scored fares.
type Scorer struct {
	matchers  []pricing.ComparableMatcher
	sweetSpot SweetSpotFunc
	funding   FundingFunc
	log       zerolog.Logger
}

// NewScorer wires the value scorer. sweetSpot and funding may be nil, which
// disables those components of the score.
func NewScorer(sweetSpot SweetSpotFunc, funding FundingFunc, log zerolog.Logger) *Scorer {
	return &Scorer{
		matchers:  pricing.DefaultMatchers(),
		sweetSpot: sweetSpot,
		funding:   funding,
		log:       log.With().Str("component", "scorer").Logger(),
	}
}

// RealYield computes cents per point. Negative yield is surfaced as-is: taxes
// exceeding the comparable is a real signal the redemption destroys value.
func RealYield(cashComparable, taxes float64, points int) float64 {
	if points <= 0 {
		return 0
	}
	return (cashComparable - taxes) / (float64(points) / 100)
}

// RateYield buckets a yield against the cabin's thresholds. An estimated-tier
// comparable caps the rating at great: a guessed baseline never gets to claim
// an exceptional redemption.
func RateYield(yield float64, cabin domain.Cabin, tier domain.ComparableTier) domain.YieldRating {
	t, ok := ratingThresholds[cabin]
	if !ok {
		t = ratingThresholds[domain.CabinEconomy]
	}

	var rating domain.YieldRating
	switch {
	case yield >= t[0]:
		rating = domain.RatingExceptional
	case yield >= t[1]:
		rating = domain.RatingGreat
	case yield >= t[2]:
		rating = domain.RatingGood
	case yield >= t[3]:
		rating = domain.RatingFair
	default:
		rating = domain.RatingPoor
	}

	if tier == domain.TierEstimated && rating == domain.RatingExceptional {
		rating = domain.RatingGreat
	}
	return rating
}

// Score resolves value for the whole merged set. Award fares get the full
// composite; cash fares are ranked by price within their cabin on a capped
// scale. Output order is stable by value score descending, then ID.
func (s *Scorer) Score(flights []domain.FlightRecord, buckets map[pricing.BucketKey]*pricing.Bucket) []domain.ScoredFlight {
	scored := make([]domain.ScoredFlight, 0, len(flights))
	for _, f := range flights {
		if f.Kind == domain.KindAward {
			scored = append(scored, s.scoreAward(f, buckets))
		} else {
			scored = append(scored, domain.ScoredFlight{FlightRecord: f})
		}
	}

	s.scoreCash(scored)

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].ValueScore != scored[j].ValueScore {
			return scored[i].ValueScore > scored[j].ValueScore
		}
		return scored[i].ID < scored[j].ID
	})
	return scored
}

func (s *Scorer) scoreAward(f domain.FlightRecord, buckets map[pricing.BucketKey]*pricing.Bucket) domain.ScoredFlight {
	comparable := pricing.Resolve(f, buckets, s.matchers)
	yield := RealYield(comparable.Price, f.TaxesFees, f.Points)
	rating := RateYield(yield, f.Cabin, comparable.Tier)

	sf := domain.ScoredFlight{
		FlightRecord:   f,
		RealYield:      &yield,
		YieldRating:    rating,
		CashComparable: comparable.Price,
		ComparableTier: comparable.Tier,
	}

	if s.sweetSpot != nil {
		sf.SweetSpot = s.sweetSpot(f, &yield)
	}
	if s.funding != nil {
		sf.Funding = s.funding(f.Program, f.Points)
	}

	score := ratingPoints[rating]
	if sf.SweetSpot != nil {
		score += sf.SweetSpot.Score / 100 * 20
	}
	if sf.Funding != nil && sf.Funding.Affordable() {
		score += 15
	} else {
		score += 5
	}
	quality := f.QualityScore
	if quality <= 0 {
		quality = cabinQualityDefault[f.Cabin]
	}
	score += math.Min(quality, 100) / 100 * 15
	score += convenience(f.Stops)

	sf.ValueScore = clamp(score, 0, 100)
	return sf
}

// scoreCash ranks cash fares within their cabin by price: the cheapest maps
// to the ceiling, the rest fall off linearly.
func (s *Scorer) scoreCash(scored []domain.ScoredFlight) {
	byCabin := make(map[domain.Cabin][]int)
	for i := range scored {
		if scored[i].Kind == domain.KindCash {
			byCabin[scored[i].Cabin] = append(byCabin[scored[i].Cabin], i)
		}
	}

	for _, idxs := range byCabin {
		sort.SliceStable(idxs, func(a, b int) bool {
			return scored[idxs[a]].CashPrice < scored[idxs[b]].CashPrice
		})
		n := float64(len(idxs))
		for rank, i := range idxs {
			scored[i].ValueScore = clamp(cashScoreCeiling*(n-float64(rank))/n, 0, cashScoreCeiling)
		}
	}
}

func convenience(stops int) float64 {
	switch stops {
	case 0:
		return 10
	case 1:
		return 6
	default:
		return 2
	}
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

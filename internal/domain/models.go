// Package domain contains the core types shared across the search engine.
// The domain layer is pure: no clients, no storage, no transport.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Cabin identifies a cabin class on a fare.
type Cabin string

const (
	CabinEconomy  Cabin = "economy"
	CabinPremium  Cabin = "premium_economy"
	CabinBusiness Cabin = "business"
	CabinFirst    Cabin = "first"
)

// ParseCabin normalizes free-form cabin strings from external providers.
// Unknown values default to economy, the most conservative comparison base.
func ParseCabin(s string) Cabin {
	switch strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, " ", "_"))) {
	case "premium_economy", "premium", "comfort+", "comfort_plus":
		return CabinPremium
	case "business", "upper", "upper_class", "polaris":
		return CabinBusiness
	case "first", "suites", "la_premiere":
		return CabinFirst
	default:
		return CabinEconomy
	}
}

// StopBucket partitions fares into nonstop and connecting for price comparison.
type StopBucket string

const (
	StopsNonstop    StopBucket = "nonstop"
	StopsConnecting StopBucket = "connecting"
)

// BucketForStops maps a stop count to its bucket.
func BucketForStops(stops int) StopBucket {
	if stops == 0 {
		return StopsNonstop
	}
	return StopsConnecting
}

// FareKind distinguishes award fares (points) from cash fares.
type FareKind string

const (
	KindAward FareKind = "award"
	KindCash  FareKind = "cash"
)

// ProgramBalance is a user's balance in one point currency. Balances are an
// external input, never core state.
type ProgramBalance struct {
	Program string `json:"program"`
	Balance int    `json:"balance"`
}

// SearchQuery describes one route-and-date search.
type SearchQuery struct {
	Origin        string           `json:"origin"`
	Destination   string           `json:"destination"`
	DepartDate    string           `json:"depart_date"` // YYYY-MM-DD
	ReturnDate    string           `json:"return_date,omitempty"`
	Cabin         Cabin            `json:"cabin,omitempty"`
	ProgramFilter string           `json:"program_filter,omitempty"`
	Balances      []ProgramBalance `json:"balances,omitempty"`
}

// RoundTrip reports whether the query includes a return leg.
func (q SearchQuery) RoundTrip() bool {
	return q.ReturnDate != ""
}

// Validate checks the minimum fields a query needs before any adapter runs.
func (q SearchQuery) Validate() error {
	if len(q.Origin) != 3 || len(q.Destination) != 3 {
		return fmt.Errorf("origin and destination must be 3-letter airport codes, got %q -> %q", q.Origin, q.Destination)
	}
	if _, err := time.Parse("2006-01-02", q.DepartDate); err != nil {
		return fmt.Errorf("invalid depart date %q: %w", q.DepartDate, err)
	}
	if q.ReturnDate != "" {
		if _, err := time.Parse("2006-01-02", q.ReturnDate); err != nil {
			return fmt.Errorf("invalid return date %q: %w", q.ReturnDate, err)
		}
	}
	return nil
}

// FlightRecord is the canonical representation every search strategy emits,
// regardless of source transport. Created once per search by an adapter and
// immutable afterward; records are never persisted across searches.
type FlightRecord struct {
	ID            string   `json:"id"`
	Source        string   `json:"source"`
	Kind          FareKind `json:"kind"`
	Origin        string   `json:"origin"`
	Destination   string   `json:"destination"`
	Carriers      []string `json:"carriers"`
	FlightNumbers []string `json:"flight_numbers"`
	Stops         int      `json:"stops"`
	DurationMin   int      `json:"duration_minutes"`
	DepartureTime string   `json:"departure_time"`
	ArrivalTime   string   `json:"arrival_time"`
	Cabin         Cabin    `json:"cabin"`
	Equipment     string   `json:"equipment,omitempty"`

	// Award pricing: populated iff Kind == KindAward.
	Points  int    `json:"points,omitempty"`
	Program string `json:"program,omitempty"`

	// Cash pricing: populated iff Kind == KindCash.
	CashPrice float64 `json:"cash_price,omitempty"`

	TaxesFees  float64 `json:"taxes_fees"`
	Currency   string  `json:"currency"`
	BookingURL string  `json:"booking_url,omitempty"`
	FareClass  string  `json:"fare_class,omitempty"`
	SeatsLeft  int     `json:"seats_available,omitempty"`

	// QualityScore is a provider-assigned product quality signal, 0 when absent.
	QualityScore float64 `json:"quality_score,omitempty"`
}

// Validate enforces the pricing invariant: exactly one of points+program /
// cash price is populated, and it matches the declared kind.
func (f FlightRecord) Validate() error {
	switch f.Kind {
	case KindAward:
		if f.Points <= 0 || f.Program == "" {
			return fmt.Errorf("award record %s missing points or program", f.ID)
		}
		if f.CashPrice != 0 {
			return fmt.Errorf("award record %s carries a cash price", f.ID)
		}
	case KindCash:
		if f.CashPrice <= 0 {
			return fmt.Errorf("cash record %s missing cash price", f.ID)
		}
		if f.Points != 0 || f.Program != "" {
			return fmt.Errorf("cash record %s carries award pricing", f.ID)
		}
	default:
		return fmt.Errorf("record %s has unknown kind %q", f.ID, f.Kind)
	}
	return nil
}

// DedupKey identifies physically-identical itineraries across sources.
// Used only by the post-merge quality pass, never by the orchestrator.
func (f FlightRecord) DedupKey() string {
	return strings.Join([]string{
		strings.Join(f.Carriers, "/"),
		strings.Join(f.FlightNumbers, "/"),
		f.Origin, f.Destination,
		f.DepartureTime,
		string(f.Kind),
	}, "|")
}

// TransferLatency classifies how long a point transfer takes to post.
type TransferLatency string

const (
	LatencyInstant TransferLatency = "instant"
	LatencyHours   TransferLatency = "hours"
	LatencyDays    TransferLatency = "days"
)

// TransferEdge is one directed transfer relationship between point currencies.
// Ratios are rational: RatioNum points received per RatioDen points sent.
// Bonused transfers can exceed 1:1.
type TransferEdge struct {
	From     string          `json:"from"`
	To       string          `json:"to"`
	RatioNum int             `json:"ratio_num"`
	RatioDen int             `json:"ratio_den"`
	Latency  TransferLatency `json:"latency"`
}

// Ratio returns the edge ratio as a float for ranking purposes only.
// Path math uses the integer numerator/denominator to avoid drift.
func (e TransferEdge) Ratio() float64 {
	if e.RatioDen == 0 {
		return 0
	}
	return float64(e.RatioNum) / float64(e.RatioDen)
}

// FundingPath is one way to fund an award's point cost.
type FundingPath struct {
	SourceProgram    string          `json:"source_program"`
	Direct           bool            `json:"direct"`
	Balance          int             `json:"balance"`
	PointsToTransfer int             `json:"points_to_transfer,omitempty"`
	MilesReceived    int             `json:"miles_received"`
	TransferRatio    float64         `json:"transfer_ratio,omitempty"`
	Latency          TransferLatency `json:"latency,omitempty"`
	Covers           bool            `json:"covers"`
	Action           string          `json:"action"`
}

// AffordabilityKind collapses a set of funding paths into one verdict.
type AffordabilityKind string

const (
	AffordDirect       AffordabilityKind = "direct-covers"
	AffordTransfer     AffordabilityKind = "single-transfer-covers"
	AffordCombination  AffordabilityKind = "combination-covers"
	AffordInsufficient AffordabilityKind = "insufficient"
)

// Affordability summarizes how (or whether) a fare can be funded.
type Affordability struct {
	Kind  AffordabilityKind `json:"kind"`
	Paths []FundingPath     `json:"paths"`
	Note  string            `json:"note"`
}

// Affordable reports whether any funding arrangement covers the cost.
func (a Affordability) Affordable() bool {
	return a.Kind != AffordInsufficient
}

// ComparableTier records which fallback tier produced a cash comparable.
// Surfaced on every scored award fare, never hidden.
type ComparableTier string

const (
	TierExactMatch ComparableTier = "exact-match"
	TierSameCabin  ComparableTier = "same-cabin"
	TierEstimated  ComparableTier = "estimated"
)

// YieldRating buckets realized cents-per-point against cabin thresholds.
type YieldRating string

const (
	RatingExceptional YieldRating = "exceptional"
	RatingGreat       YieldRating = "great"
	RatingGood        YieldRating = "good"
	RatingFair        YieldRating = "fair"
	RatingPoor        YieldRating = "poor"
)

// SweetSpotMatch is a scored hit against one curated redemption rule.
type SweetSpotMatch struct {
	RuleID      string  `json:"rule_id"`
	Program     string  `json:"program"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// ScoredFlight is a FlightRecord enriched with value resolution. Derived per
// search and discarded after the response is returned.
type ScoredFlight struct {
	FlightRecord

	RealYield      *float64        `json:"real_yield,omitempty"` // cents per point
	YieldRating    YieldRating     `json:"yield_rating,omitempty"`
	CashComparable float64         `json:"cash_comparable,omitempty"`
	ComparableTier ComparableTier  `json:"comparable_tier,omitempty"`
	SweetSpot      *SweetSpotMatch `json:"sweet_spot,omitempty"`
	Funding        *Affordability  `json:"funding,omitempty"`
	ValueScore     float64         `json:"value_score"`
}

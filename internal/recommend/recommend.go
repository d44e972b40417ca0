// Package recommend derives the ranked picks and proactive insights from a
// fully scored result set.
package recommend

import (
	"fmt"
	"sort"

	"github.com/aristath/voyager/internal/domain"
	"github.com/aristath/voyager/internal/sweetspots"
	"github.com/rs/zerolog"
)

// cashWinsYield is the decision line for the cash-vs-points flag: when the
// best award yields under 1.5 cents per point, paying cash wins.
const cashWinsYield = 1.5

// Pick is one ranked recommendation.
type Pick struct {
	Rank   int                 `json:"rank"`
	Reason string              `json:"reason"`
	Flight domain.ScoredFlight `json:"flight"`
}

// Priority orders insights in the report.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

var priorityOrder = map[Priority]int{PriorityHigh: 0, PriorityMedium: 1, PriorityLow: 2}

// Insight is one proactive observation about the scored set.
type Insight struct {
	Priority Priority `json:"priority"`
	Kind     string   `json:"kind"`
	Message  string   `json:"message"`
}

// Report is the recommender's output.
type Report struct {
	Picks    []Pick    `json:"picks"`
	Insights []Insight `json:"insights"`
}

// Generator derives reports. The matcher is consulted for route-level hints
// about rules no current fare satisfied.
type Generator struct {
	matcher *sweetspots.Matcher
	log     zerolog.Logger
}

// NewGenerator creates a recommender. matcher may be nil; route hints are
// then skipped.
func NewGenerator(matcher *sweetspots.Matcher, log zerolog.Logger) *Generator {
	return &Generator{
		matcher: matcher,
		log:     log.With().Str("component", "recommend").Logger(),
	}
}

// Generate builds the picks and insights. scored must already be sorted by
// value score descending, which the scorer guarantees.
func (g *Generator) Generate(query domain.SearchQuery, scored []domain.ScoredFlight) Report {
	var report Report

	best := bestAffordableAward(scored, nil)
	if best != nil {
		report.Picks = append(report.Picks, Pick{
			Rank:   1,
			Reason: fmt.Sprintf("best affordable award: %s at %d %s points", best.YieldRating, best.Points, best.Program),
			Flight: *best,
		})
	}

	premium := bestAffordableAward(scored, func(f domain.ScoredFlight) bool {
		return f.Cabin != domain.CabinEconomy && (best == nil || f.ID != best.ID)
	})
	if premium != nil {
		report.Picks = append(report.Picks, Pick{
			Rank:   2,
			Reason: fmt.Sprintf("best premium-cabin award: %s in %s", premium.YieldRating, premium.Cabin),
			Flight: *premium,
		})
	}

	if cash := cheapestCash(scored); cash != nil {
		reason := fmt.Sprintf("cheapest cash fare at %.0f %s", cash.CashPrice, cash.Currency)
		if best != nil && best.RealYield != nil && *best.RealYield < cashWinsYield {
			reason += "; cash beats points on this route"
		}
		report.Picks = append(report.Picks, Pick{Rank: 3, Reason: reason, Flight: *cash})
	}

	report.Insights = g.insights(query, scored, best)
	return report
}

func (g *Generator) insights(query domain.SearchQuery, scored []domain.ScoredFlight, best *domain.ScoredFlight) []Insight {
	var insights []Insight
	matchedRules := make(map[string]bool)

	for i := range scored {
		f := &scored[i]
		if f.SweetSpot != nil {
			matchedRules[f.SweetSpot.RuleID] = true
			insights = append(insights, Insight{
				Priority: PriorityHigh,
				Kind:     "sweet-spot",
				Message:  fmt.Sprintf("sweet spot available: %s", f.SweetSpot.Description),
			})
		}
		if f.YieldRating == domain.RatingExceptional && f.Funding != nil && f.Funding.Affordable() {
			insights = append(insights, Insight{
				Priority: PriorityHigh,
				Kind:     "exceptional-value",
				Message:  fmt.Sprintf("exceptional value: %.1f cents per point on %d %s points", deref(f.RealYield), f.Points, f.Program),
			})
		}
	}

	if best != nil && best.RealYield != nil && *best.RealYield < cashWinsYield {
		insights = append(insights, Insight{
			Priority: PriorityMedium,
			Kind:     "cash-wins",
			Message:  fmt.Sprintf("best award yields only %.1f cents per point; pay cash on this route", *best.RealYield),
		})
	}

	if g.matcher != nil {
		for _, r := range g.matcher.RelevantRules(query.Origin, query.Destination) {
			if matchedRules[r.ID] {
				continue
			}
			insights = append(insights, Insight{
				Priority: PriorityLow,
				Kind:     "route-hint",
				Message:  fmt.Sprintf("watch for: %s (up to %d points)", r.Description, r.MaxPoints),
			})
		}
	}

	sort.SliceStable(insights, func(i, j int) bool {
		return priorityOrder[insights[i].Priority] < priorityOrder[insights[j].Priority]
	})
	return insights
}

func bestAffordableAward(scored []domain.ScoredFlight, extra func(domain.ScoredFlight) bool) *domain.ScoredFlight {
	for i := range scored {
		f := scored[i]
		if f.Kind != domain.KindAward {
			continue
		}
		if f.Funding == nil || !f.Funding.Affordable() {
			continue
		}
		if extra != nil && !extra(f) {
			continue
		}
		return &scored[i]
	}
	return nil
}

func cheapestCash(scored []domain.ScoredFlight) *domain.ScoredFlight {
	var cheapest *domain.ScoredFlight
	for i := range scored {
		f := &scored[i]
		if f.Kind != domain.KindCash {
			continue
		}
		if cheapest == nil || f.CashPrice < cheapest.CashPrice {
			cheapest = f
		}
	}
	return cheapest
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

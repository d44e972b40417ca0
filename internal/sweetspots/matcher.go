package sweetspots

import (
	"sort"

	"github.com/aristath/voyager/internal/domain"
	"github.com/rs/zerolog"
)

// Matcher evaluates award fares against the rule table.
type Matcher struct {
	rules []Rule
	log   zerolog.Logger
}

// NewMatcher creates a matcher over a static rule table.
func NewMatcher(rules []Rule, log zerolog.Logger) *Matcher {
	return &Matcher{
		rules: rules,
		log:   log.With().Str("component", "sweetspots").Logger(),
	}
}

// Match returns every rule the fare satisfies, scored and sorted descending.
// A fare matches iff program and cabin are equal, the route predicate holds,
// and points are at or under the rule's ceiling.
func (m *Matcher) Match(f domain.FlightRecord, yield *float64) []domain.SweetSpotMatch {
	if f.Kind != domain.KindAward {
		return nil
	}

	var matches []domain.SweetSpotMatch
	for _, r := range m.rules {
		if r.Program != f.Program || r.Cabin != f.Cabin {
			continue
		}
		if f.Points > r.MaxPoints {
			continue
		}
		if !r.MatchesRoute(f.Origin, f.Destination) {
			continue
		}
		matches = append(matches, domain.SweetSpotMatch{
			RuleID:      r.ID,
			Program:     r.Program,
			Description: r.Description,
			Score:       scoreMatch(r, f.Points, yield),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	return matches
}

// Best returns the top match or nil. This is the scorer's entry point.
func (m *Matcher) Best(f domain.FlightRecord, yield *float64) *domain.SweetSpotMatch {
	matches := m.Match(f, yield)
	if len(matches) == 0 {
		return nil
	}
	return &matches[0]
}

// RelevantRules returns the rules whose route predicate covers this route,
// regardless of any current fare. Used for forward-looking route hints.
func (m *Matcher) RelevantRules(origin, destination string) []Rule {
	var relevant []Rule
	for _, r := range m.rules {
		if r.MatchesRoute(origin, destination) {
			relevant = append(relevant, r)
		}
	}
	return relevant
}

// scoreMatch: 70 base, up to 20 for headroom under the point ceiling, 10 when
// the realized yield meets the rule's expectation.
func scoreMatch(r Rule, points int, yield *float64) float64 {
	score := 70.0
	if r.MaxPoints > 0 {
		score += float64(r.MaxPoints-points) / float64(r.MaxPoints) * 20
	}
	if yield != nil && *yield >= r.ExpectedYield {
		score += 10
	}
	return score
}

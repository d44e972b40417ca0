package sweetspots

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aristath/voyager/internal/domain"
)

// Rule is one curated redemption pattern. The route predicate takes one of
// three shapes: explicit airport pairs, an origin-region x dest-region
// constraint, or an origin-region-only constraint for short-haul rules.
type Rule struct {
	ID            string       `json:"id"`
	Program       string       `json:"program"`
	Cabin         domain.Cabin `json:"cabin"`
	Pairs         [][2]string  `json:"pairs,omitempty"`
	OriginRegion  string       `json:"origin_region,omitempty"`
	DestRegion    string       `json:"dest_region,omitempty"`
	MaxPoints     int          `json:"max_points"`
	ExpectedYield float64      `json:"expected_yield"`
	Description   string       `json:"description"`
}

// Validate rejects rules that could never match or would divide by zero.
func (r Rule) Validate() error {
	if r.ID == "" || r.Program == "" {
		return fmt.Errorf("rule missing id or program")
	}
	if r.MaxPoints <= 0 {
		return fmt.Errorf("rule %s: max_points must be positive", r.ID)
	}
	if len(r.Pairs) == 0 && r.OriginRegion == "" {
		return fmt.Errorf("rule %s: no route predicate", r.ID)
	}
	return nil
}

// MatchesRoute checks the route predicate. Routes match in either direction:
// a US-Japan rule covers NRT-LAX as well as LAX-NRT.
func (r Rule) MatchesRoute(origin, destination string) bool {
	if len(r.Pairs) > 0 {
		for _, p := range r.Pairs {
			if (p[0] == origin && p[1] == destination) || (p[0] == destination && p[1] == origin) {
				return true
			}
		}
		return false
	}

	o := AirportRegion(origin)
	d := AirportRegion(destination)

	if r.DestRegion == "" {
		// Origin-region-only: either endpoint in the region qualifies.
		return o == r.OriginRegion || d == r.OriginRegion
	}
	return (o == r.OriginRegion && d == r.DestRegion) || (o == r.DestRegion && d == r.OriginRegion)
}

// LoadRules reads a rule table from a JSON file, validating every entry.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sweet spot rules: %w", err)
	}

	var rules []Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse sweet spot rules: %w", err)
	}
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}
	return rules, nil
}

// DefaultRules is the compiled-in table, used when no rule file is configured.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID: "va-ana-us-japan-j", Program: "virgin-atlantic", Cabin: domain.CabinBusiness,
			OriginRegion: "US", DestRegion: "Japan", MaxPoints: 47500, ExpectedYield: 5.5,
			Description: "ANA business between the US and Japan via Virgin Atlantic Flying Club",
		},
		{
			ID: "va-ana-us-japan-f", Program: "virgin-atlantic", Cabin: domain.CabinFirst,
			OriginRegion: "US", DestRegion: "Japan", MaxPoints: 72500, ExpectedYield: 8.0,
			Description: "ANA first between the US and Japan via Virgin Atlantic Flying Club",
		},
		{
			ID: "afklm-us-europe-j", Program: "air-france-klm", Cabin: domain.CabinBusiness,
			OriginRegion: "US", DestRegion: "Europe", MaxPoints: 55000, ExpectedYield: 3.5,
			Description: "Flying Blue promo-level business between the US and Europe",
		},
		{
			ID: "aeroplan-us-europe-j", Program: "aeroplan", Cabin: domain.CabinBusiness,
			OriginRegion: "US", DestRegion: "Europe", MaxPoints: 60000, ExpectedYield: 3.0,
			Description: "Aeroplan Star Alliance business between North America and Europe",
		},
		{
			ID: "ba-shorthaul-us-y", Program: "british-airways-avios", Cabin: domain.CabinEconomy,
			OriginRegion: "US", MaxPoints: 9000, ExpectedYield: 2.0,
			Description: "Avios short-haul economy on US partner routes",
		},
		{
			ID: "turkish-domestic-y", Program: "turkish-miles-smiles", Cabin: domain.CabinEconomy,
			OriginRegion: "US", MaxPoints: 10000, ExpectedYield: 2.5,
			Description: "Miles&Smiles economy on United domestic routes, including Hawaii",
		},
		{
			ID: "alaska-cx-us-asia-j", Program: "alaska-mileage-plan", Cabin: domain.CabinBusiness,
			OriginRegion: "US", DestRegion: "Asia", MaxPoints: 85000, ExpectedYield: 5.0,
			Description: "Mileage Plan partner business between the US and Asia",
		},
		{
			ID: "emirates-jfk-dxb-f", Program: "emirates-skywards", Cabin: domain.CabinFirst,
			Pairs:        [][2]string{{"JFK", "DXB"}, {"SFO", "DXB"}, {"LAX", "DXB"}},
			MaxPoints:    136250, ExpectedYield: 6.0,
			Description: "Emirates first to Dubai from US gateways",
		},
	}
}

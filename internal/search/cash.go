package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/aristath/voyager/internal/domain"
	"github.com/aristath/voyager/internal/quota"
	"github.com/rs/zerolog"
)

// PriceFetcher is the cash-price transport the adapter depends on.
// Implemented by the serpapi client.
type PriceFetcher interface {
	Search(ctx context.Context, query domain.SearchQuery, cabin domain.Cabin) ([]domain.FlightRecord, error)
}

// CashAdapter fetches cash fares per cabin. An exhausted monthly quota skips
// the remaining cabins with a diagnostic; awards still get scored against
// whatever price data already landed.
type CashAdapter struct {
	fetcher PriceFetcher
	log     zerolog.Logger
}

// NewCashAdapter creates the cash search strategy.
func NewCashAdapter(fetcher PriceFetcher, log zerolog.Logger) *CashAdapter {
	return &CashAdapter{
		fetcher: fetcher,
		log:     log.With().Str("component", "cash_adapter").Logger(),
	}
}

// Name implements Adapter.
func (a *CashAdapter) Name() string { return "cash" }

// cabinsFor picks which cabins to price. A cabin-filtered query fetches that
// cabin only; an open query fetches economy and business, enough to anchor
// comparables for every tier without burning the quota on four calls.
func cabinsFor(query domain.SearchQuery) []domain.Cabin {
	if query.Cabin != "" {
		return []domain.Cabin{query.Cabin}
	}
	return []domain.Cabin{domain.CabinEconomy, domain.CabinBusiness}
}

// Search implements Adapter.
func (a *CashAdapter) Search(ctx context.Context, query domain.SearchQuery, progress ProgressFunc) Result {
	cabins := cabinsFor(query)

	var res Result
	succeeded := 0
	for i, cabin := range cabins {
		records, err := a.fetcher.Search(ctx, query, cabin)
		if err != nil {
			if errors.Is(err, quota.ErrExhausted) {
				a.log.Warn().Str("cabin", string(cabin)).Msg("Monthly quota exhausted, skipping cash prices")
				res.Diagnostics = append(res.Diagnostics, "monthly price quota exhausted, cash prices skipped")
				break
			}
			a.log.Warn().Err(err).Str("cabin", string(cabin)).Msg("Cash price fetch failed")
			res.Diagnostics = append(res.Diagnostics, fmt.Sprintf("cash prices unavailable for %s: %v", cabin, err))
			continue
		}
		res.Flights = append(res.Flights, records...)
		succeeded++
		if progress != nil {
			progress(float64(i+1)/float64(len(cabins))*100, len(res.Flights))
		}
	}

	if succeeded > 0 {
		res.Completion = float64(succeeded) / float64(len(cabins)) * 100
	}
	return res
}

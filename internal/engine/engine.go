// Package engine runs one search end to end: orchestrate the adapters,
// normalize prices, score every fare, and derive recommendations. Each search
// is a stateless, independent computation; nothing here survives the response.
package engine

import (
	"context"
	"time"

	"github.com/aristath/voyager/internal/domain"
	"github.com/aristath/voyager/internal/events"
	"github.com/aristath/voyager/internal/pricing"
	"github.com/aristath/voyager/internal/recommend"
	"github.com/aristath/voyager/internal/scoring"
	"github.com/aristath/voyager/internal/search"
	"github.com/aristath/voyager/internal/sweetspots"
	"github.com/aristath/voyager/internal/transfers"
	"github.com/rs/zerolog"
)

// BalanceSource supplies program balances when the query carries none.
// Implemented by the balances client.
type BalanceSource interface {
	Fetch(ctx context.Context) ([]domain.ProgramBalance, error)
}

// Response is the complete result of one search.
type Response struct {
	Query         domain.SearchQuery     `json:"query"`
	Flights       []domain.ScoredFlight  `json:"flights"`
	Completion    map[string]float64     `json:"completion"`
	Diagnostics   map[string][]string    `json:"diagnostics,omitempty"`
	PriceAnalysis []pricing.CabinSummary `json:"price_analysis,omitempty"`
	Report        recommend.Report       `json:"report"`
	ElapsedMS     int64                  `json:"elapsed_ms"`
}

// Engine wires the pipeline stages together.
type Engine struct {
	orch        *search.Orchestrator
	matcher     *sweetspots.Matcher
	resolver    *transfers.Resolver
	recommender *recommend.Generator
	balances    BalanceSource
	bus         *events.Bus
	log         zerolog.Logger
}

// New creates the search engine. balances may be nil; funding resolution then
// runs only on balances supplied in the query itself.
func New(orch *search.Orchestrator, matcher *sweetspots.Matcher, resolver *transfers.Resolver, balances BalanceSource, bus *events.Bus, log zerolog.Logger) *Engine {
	return &Engine{
		orch:        orch,
		matcher:     matcher,
		resolver:    resolver,
		recommender: recommend.NewGenerator(matcher, log),
		balances:    balances,
		bus:         bus,
		log:         log.With().Str("component", "engine").Logger(),
	}
}

// Search runs the full pipeline. The only error path is an invalid query:
// adapter failures degrade to diagnostics and completion percentages, never
// to a failed search.
func (e *Engine) Search(ctx context.Context, query domain.SearchQuery) (*Response, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	balances := query.Balances
	if len(balances) == 0 && e.balances != nil {
		fetched, err := e.balances.Fetch(ctx)
		if err != nil {
			e.log.Warn().Err(err).Msg("Balances unavailable, scoring without funding paths")
		} else {
			balances = fetched
		}
	}

	merged := e.orch.Run(ctx, query)
	flights := search.Deduplicate(merged.Flights)

	buckets := pricing.BuildBuckets(flights)

	var funding scoring.FundingFunc
	if e.resolver != nil && len(balances) > 0 {
		funding = func(program string, points int) *domain.Affordability {
			a := e.resolver.Resolve(program, points, balances)
			return &a
		}
	}
	scorer := scoring.NewScorer(e.matcher.Best, funding, e.log)
	scored := scorer.Score(flights, buckets)

	resp := &Response{
		Query:         query,
		Flights:       scored,
		Completion:    merged.Completion,
		Diagnostics:   merged.Diagnostics,
		PriceAnalysis: pricing.Analyze(flights),
		Report:        e.recommender.Generate(query, scored),
		ElapsedMS:     time.Since(start).Milliseconds(),
	}

	if e.bus != nil {
		e.bus.Emit(events.SearchCompleted, "engine", events.SearchCompletedData{
			TotalFlights: len(scored),
			Completion:   merged.Completion,
		})
	}

	e.log.Info().
		Str("origin", query.Origin).
		Str("destination", query.Destination).
		Int("flights", len(scored)).
		Int64("elapsed_ms", resp.ElapsedMS).
		Msg("Search completed")

	return resp, nil
}

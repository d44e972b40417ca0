package search

import (
	"context"
	"fmt"

	"github.com/aristath/voyager/internal/domain"
	"github.com/rs/zerolog"
)

// ConnectFunc builds a job client for one search. Credential loading happens
// here, per search, so an expired session fails this search and only this
// search.
type ConnectFunc func() (JobClient, error)

// AwardAdapter drives the submit-and-poll award provider. Auth failures,
// stalls and deadline expiries all settle as results, never as errors.
type AwardAdapter struct {
	connect ConnectFunc
	cfg     PollerConfig
	log     zerolog.Logger
}

// NewAwardAdapter creates the award search strategy.
func NewAwardAdapter(connect ConnectFunc, cfg PollerConfig, log zerolog.Logger) *AwardAdapter {
	return &AwardAdapter{
		connect: connect,
		cfg:     cfg,
		log:     log.With().Str("component", "award_adapter").Logger(),
	}
}

// Name implements Adapter.
func (a *AwardAdapter) Name() string { return "awardhub" }

// Search implements Adapter. Partial results from a stalled or timed-out job
// are kept; completion reports the last percentage the job claimed.
func (a *AwardAdapter) Search(ctx context.Context, query domain.SearchQuery, progress ProgressFunc) Result {
	client, err := a.connect()
	if err != nil {
		// Fail closed: no speculative request without valid credentials.
		a.log.Warn().Err(err).Msg("Award source unavailable")
		return Failed(fmt.Sprintf("award source unavailable: %v", err))
	}

	poller := NewPoller(client, a.cfg, a.log)
	outcome, err := poller.Run(ctx, query, progress)
	if err != nil {
		return Failed(fmt.Sprintf("award search failed: %v", err))
	}

	res := Result{Flights: outcome.Fares, Completion: outcome.PercentCompleted}
	switch outcome.State {
	case JobCompleted:
		res.Completion = 100
	case JobStalled:
		res.Diagnostics = append(res.Diagnostics,
			fmt.Sprintf("job stalled after %d polls at %.0f%%, partial results kept", outcome.Polls, outcome.PercentCompleted))
	case JobTimedOut:
		res.Diagnostics = append(res.Diagnostics,
			fmt.Sprintf("job deadline reached at %.0f%%, partial results kept", outcome.PercentCompleted))
	}
	return res
}

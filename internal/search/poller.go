package search

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/voyager/internal/domain"
	"github.com/rs/zerolog"
)

// JobState is the lifecycle state of one server-side search job.
type JobState string

const (
	JobPending   JobState = "pending"
	JobRunning   JobState = "running"
	JobCompleted JobState = "completed"
	JobStalled   JobState = "stalled"
	JobTimedOut  JobState = "timed_out"
)

// JobStatus is one observation of a server-side job.
type JobStatus struct {
	PercentCompleted float64
	Fares            []domain.FlightRecord
}

// JobClient is the transport behind the poller: submit a query, then poll
// the returned job until it settles.
type JobClient interface {
	Submit(ctx context.Context, query domain.SearchQuery) (jobID string, err error)
	Poll(ctx context.Context, jobID string) (JobStatus, error)
}

// PollerConfig tunes the poll loop.
type PollerConfig struct {
	// Interval between status polls.
	Interval time.Duration
	// Deadline bounds the whole loop; checked between polls only, so an
	// in-flight poll is always awaited to completion.
	Deadline time.Duration
	// StalenessThreshold is how many consecutive no-progress polls end the
	// loop early. A plateaued job is settled output, not an error.
	StalenessThreshold int
}

// DefaultPollerConfig returns the production defaults.
func DefaultPollerConfig() PollerConfig {
	return PollerConfig{
		Interval:           3 * time.Second,
		Deadline:           90 * time.Second,
		StalenessThreshold: 4,
	}
}

// PollOutcome is the settled result of one poll loop.
type PollOutcome struct {
	State            JobState
	Fares            []domain.FlightRecord
	PercentCompleted float64
	Polls            int
}

// Poller drives a server-side search job to settlement: submit, poll,
// detect staleness, enforce a deadline.
type Poller struct {
	client JobClient
	cfg    PollerConfig
	log    zerolog.Logger
	sleep  func(context.Context, time.Duration) // injected for tests
}

// NewPoller creates a poller over the given job client.
func NewPoller(client JobClient, cfg PollerConfig, log zerolog.Logger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollerConfig().Interval
	}
	if cfg.Deadline <= 0 {
		cfg.Deadline = DefaultPollerConfig().Deadline
	}
	if cfg.StalenessThreshold <= 0 {
		cfg.StalenessThreshold = DefaultPollerConfig().StalenessThreshold
	}
	return &Poller{
		client: client,
		cfg:    cfg,
		log:    log.With().Str("component", "poller").Logger(),
		sleep:  sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Run submits the query and polls until the job completes, stalls, or the
// deadline passes. Stalled and timed-out outcomes carry whatever fares had
// accumulated; only Submit failures return an error.
func (p *Poller) Run(ctx context.Context, query domain.SearchQuery, progress ProgressFunc) (PollOutcome, error) {
	jobID, err := p.client.Submit(ctx, query)
	if err != nil {
		return PollOutcome{State: JobPending}, fmt.Errorf("job submit failed: %w", err)
	}

	p.log.Debug().Str("job_id", jobID).Msg("Job submitted, polling")

	start := time.Now()
	outcome := PollOutcome{State: JobRunning}

	var (
		lastPercent float64 = -1
		lastFares   int     = -1
		staleCount  int
	)

	for {
		status, err := p.client.Poll(ctx, jobID)
		outcome.Polls++
		if err != nil {
			// A failed poll counts as no progress; the job may still be
			// running server-side, so keep going until staleness or deadline.
			p.log.Warn().Err(err).Str("job_id", jobID).Int("poll", outcome.Polls).Msg("Poll failed")
			staleCount++
		} else {
			outcome.Fares = status.Fares
			outcome.PercentCompleted = status.PercentCompleted

			if progress != nil {
				progress(status.PercentCompleted, len(status.Fares))
			}

			if status.PercentCompleted >= 100 {
				outcome.State = JobCompleted
				p.log.Debug().
					Str("job_id", jobID).
					Int("fares", len(outcome.Fares)).
					Int("polls", outcome.Polls).
					Msg("Job completed")
				return outcome, nil
			}

			if status.PercentCompleted == lastPercent && len(status.Fares) == lastFares {
				staleCount++
			} else {
				staleCount = 0
			}
			lastPercent = status.PercentCompleted
			lastFares = len(status.Fares)
		}

		// A plateaued job (e.g. an exhausted rate-limited sub-search) will
		// never reach 100; cut it off instead of burning the full deadline.
		if staleCount >= p.cfg.StalenessThreshold {
			outcome.State = JobStalled
			p.log.Info().
				Str("job_id", jobID).
				Float64("percent", outcome.PercentCompleted).
				Int("fares", len(outcome.Fares)).
				Msg("Job stalled, returning partial results")
			return outcome, nil
		}

		// Deadline guards against a job that inches forward forever.
		if time.Since(start)+p.cfg.Interval > p.cfg.Deadline {
			outcome.State = JobTimedOut
			p.log.Info().
				Str("job_id", jobID).
				Float64("percent", outcome.PercentCompleted).
				Int("fares", len(outcome.Fares)).
				Msg("Job deadline reached, returning partial results")
			return outcome, nil
		}

		p.sleep(ctx, p.cfg.Interval)
		if ctx.Err() != nil {
			outcome.State = JobTimedOut
			return outcome, nil
		}
	}
}

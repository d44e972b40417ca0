// Package search defines the source adapter contract and runs all configured
// search strategies concurrently, merging their results under settle-all
// semantics.
package search

import (
	"context"

	"github.com/aristath/voyager/internal/domain"
)

// Result is what every adapter settles with, success or failure. Completion
// is in [0,100]: 100 means the source fully settled, 0 means it failed or
// was skipped. Diagnostics carry side-channel messages (auth failures,
// quota skips, parse degradations) that never become errors.
type Result struct {
	Flights     []domain.FlightRecord
	Completion  float64
	Diagnostics []string
}

// Failed builds the canonical failure result: no flights, completion 0,
// one diagnostic. Adapters use this for every internal error.
func Failed(msg string) Result {
	return Result{Completion: 0, Diagnostics: []string{msg}}
}

// ProgressFunc receives progress updates from adapters that can report them
// (the job poller). percent is in [0,100]; fares is the count observed so far.
type ProgressFunc func(percent float64, fares int)

// Adapter is the contract every search strategy implements, regardless of
// underlying transport (request/response, submit-and-poll, subprocess).
// Search must never panic or return an error past its boundary: any failure
// is converted to a Result with Completion 0 and a diagnostic message.
type Adapter interface {
	// Name returns the source tag stamped on every record this adapter emits.
	Name() string

	// Search runs the strategy to settlement. The context carries the
	// adapter's own deadline; the orchestrator imposes no additional one.
	Search(ctx context.Context, query domain.SearchQuery, progress ProgressFunc) Result
}

package search

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aristath/voyager/internal/domain"
	"github.com/aristath/voyager/internal/events"
	"github.com/rs/zerolog"
)

// MergedResults is everything the orchestrator hands downstream: the flat
// flight list plus per-source completion percentages and diagnostics.
type MergedResults struct {
	Flights     []domain.FlightRecord
	Completion  map[string]float64
	Diagnostics map[string][]string
}

// Orchestrator launches all configured adapters concurrently with settle-all
// semantics: every adapter's outcome is observed independently, none can
// cancel or block its peers, and the merge happens only after each settles.
type Orchestrator struct {
	adapters []Adapter
	bus      *events.Bus
	log      zerolog.Logger
}

// NewOrchestrator creates an orchestrator over the given adapters.
// The event bus is optional; pass nil to disable progress events.
func NewOrchestrator(adapters []Adapter, bus *events.Bus, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		adapters: adapters,
		bus:      bus,
		log:      log.With().Str("component", "orchestrator").Logger(),
	}
}

// Run executes every adapter and merges whatever each produced. It never
// returns an error: a search always completes structurally, with failures
// visible only in completion percentages and diagnostics.
func (o *Orchestrator) Run(ctx context.Context, query domain.SearchQuery) MergedResults {
	merged := MergedResults{
		Completion:  make(map[string]float64, len(o.adapters)),
		Diagnostics: make(map[string][]string, len(o.adapters)),
	}

	if o.bus != nil {
		o.bus.Emit(events.SearchStarted, "orchestrator", query)
	}

	// Each adapter writes only its own local result; the merge below runs
	// under the mutex after the adapter settles, so the shared slice never
	// has concurrent writers.
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, adapter := range o.adapters {
		wg.Add(1)
		go func(a Adapter) {
			defer wg.Done()

			result := o.runOne(ctx, a, query)

			mu.Lock()
			merged.Flights = append(merged.Flights, result.Flights...)
			merged.Completion[a.Name()] = result.Completion
			if len(result.Diagnostics) > 0 {
				merged.Diagnostics[a.Name()] = result.Diagnostics
			}
			mu.Unlock()

			if o.bus != nil {
				o.bus.Emit(events.SourceSettled, a.Name(), &events.SourceSettledData{
					SourceName: a.Name(),
					Flights:    len(result.Flights),
					Completion: result.Completion,
					Failed:     result.Completion == 0,
				})
			}
		}(adapter)
	}

	wg.Wait()

	o.log.Info().
		Int("flights", len(merged.Flights)).
		Int("sources", len(o.adapters)).
		Msg("All sources settled")

	return merged
}

// runOne executes a single adapter with panic isolation. A panicking adapter
// settles as a failure; it never takes the search down.
func (o *Orchestrator) runOne(ctx context.Context, a Adapter, query domain.SearchQuery) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error().
				Str("adapter", a.Name()).
				Interface("panic", r).
				Msg("Adapter panicked, settling as failure")
			result = Failed(fmt.Sprintf("adapter panicked: %v", r))
		}
	}()

	var progress ProgressFunc
	if o.bus != nil {
		name := a.Name()
		progress = func(percent float64, fares int) {
			o.bus.Emit(events.PollProgress, name, &events.PollProgressData{
				PercentCompleted: percent,
				FaresSoFar:       fares,
				State:            string(JobRunning),
			})
		}
	}

	result = a.Search(ctx, query, progress)

	// Tag every record with its source and drop records that violate the
	// pricing invariant; a malformed record degrades to "skip", never upward.
	valid := result.Flights[:0]
	for _, f := range result.Flights {
		if f.Source == "" {
			f.Source = a.Name()
		}
		if err := f.Validate(); err != nil {
			o.log.Warn().Err(err).Str("adapter", a.Name()).Msg("Dropping invalid record")
			result.Diagnostics = append(result.Diagnostics, err.Error())
			continue
		}
		valid = append(valid, f)
	}
	result.Flights = valid

	return result
}

// Deduplicate collapses physically identical itineraries reported by more
// than one source, keeping the cheaper record. This is a quality pass over
// the merged list, applied after orchestration; it is not part of the merge
// contract.
func Deduplicate(flights []domain.FlightRecord) []domain.FlightRecord {
	byKey := make(map[string]int, len(flights))
	out := make([]domain.FlightRecord, 0, len(flights))

	for _, f := range flights {
		key := f.DedupKey()
		idx, seen := byKey[key]
		if !seen {
			byKey[key] = len(out)
			out = append(out, f)
			continue
		}
		if effectivePrice(f) < effectivePrice(out[idx]) {
			out[idx] = f
		}
	}

	// Stable order for deterministic downstream ranking.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})

	return out
}

func effectivePrice(f domain.FlightRecord) float64 {
	if f.Kind == domain.KindCash {
		return f.CashPrice
	}
	// Points compared at a flat cent per point plus surcharges; only used
	// to pick between duplicates of the same fare kind shape.
	return float64(f.Points)/100 + f.TaxesFees
}

package transfers

import (
	"fmt"
	"sort"

	"github.com/aristath/voyager/internal/domain"
	"github.com/rs/zerolog"
)

// Resolver answers funding questions over a static edge table. Balances are
// passed per call: they are an external input, never resolver state.
type Resolver struct {
	// incoming indexes edges by destination program.
	incoming map[string][]domain.TransferEdge
	log      zerolog.Logger
}

// NewResolver builds the reverse index over the edge table.
func NewResolver(edges []domain.TransferEdge, log zerolog.Logger) *Resolver {
	incoming := make(map[string][]domain.TransferEdge)
	for _, e := range edges {
		incoming[e.To] = append(incoming[e.To], e)
	}
	return &Resolver{
		incoming: incoming,
		log:      log.With().Str("component", "transfers").Logger(),
	}
}

// Resolve computes every way to fund `needed` points in `target` from the
// given balances: the direct balance always ranks first when present, then
// covering transfers, then the rest by descending miles receivable.
func (r *Resolver) Resolve(target string, needed int, balances []domain.ProgramBalance) domain.Affordability {
	byProgram := make(map[string]int, len(balances))
	for _, b := range balances {
		if b.Balance > 0 {
			byProgram[b.Program] = b.Balance
		}
	}

	var paths []domain.FundingPath
	direct := byProgram[target]
	if direct > 0 {
		p := domain.FundingPath{
			SourceProgram: target,
			Direct:        true,
			Balance:       direct,
			MilesReceived: direct,
			Covers:        direct >= needed,
		}
		if p.Covers {
			p.Action = fmt.Sprintf("book directly with %s balance", target)
		} else {
			p.Action = fmt.Sprintf("apply %d %s points, %d short", direct, target, needed-direct)
		}
		paths = append(paths, p)
	}

	remaining := needed - direct
	if remaining < 0 {
		remaining = 0
	}

	for _, e := range r.incoming[target] {
		balance := byProgram[e.From]
		if balance <= 0 || e.RatioNum <= 0 || e.RatioDen <= 0 {
			continue
		}

		// Integer ratio math: received = floor(balance * num/den),
		// source needed = ceil(needed * den/num).
		received := balance * e.RatioNum / e.RatioDen
		covers := direct+received >= needed

		toTransfer := balance
		if covers && remaining > 0 {
			toTransfer = (remaining*e.RatioDen + e.RatioNum - 1) / e.RatioNum
		} else if remaining == 0 {
			toTransfer = 0
		}

		p := domain.FundingPath{
			SourceProgram:    e.From,
			Balance:          balance,
			PointsToTransfer: toTransfer,
			MilesReceived:    received,
			TransferRatio:    e.Ratio(),
			Latency:          e.Latency,
			Covers:           covers,
		}
		if covers {
			p.Action = fmt.Sprintf("transfer %d from %s to %s (%s)", toTransfer, e.From, target, e.Latency)
		} else {
			p.Action = fmt.Sprintf("transfer all %d from %s for %d miles", balance, e.From, received)
		}
		paths = append(paths, p)
	}

	sort.SliceStable(paths, func(i, j int) bool {
		if paths[i].Direct != paths[j].Direct {
			return paths[i].Direct
		}
		if paths[i].Covers != paths[j].Covers {
			return paths[i].Covers
		}
		return paths[i].MilesReceived > paths[j].MilesReceived
	})

	return summarize(target, needed, direct, paths)
}

func summarize(target string, needed, direct int, paths []domain.FundingPath) domain.Affordability {
	a := domain.Affordability{Paths: paths}

	if direct >= needed {
		a.Kind = domain.AffordDirect
		a.Note = fmt.Sprintf("%s balance covers %d points outright", target, needed)
		return a
	}

	for _, p := range paths {
		if !p.Direct && p.Covers {
			a.Kind = domain.AffordTransfer
			a.Note = fmt.Sprintf("one transfer from %s covers the %d points", p.SourceProgram, needed)
			return a
		}
	}

	total := direct
	for _, p := range paths {
		if !p.Direct {
			total += p.MilesReceived
		}
	}
	if total >= needed {
		a.Kind = domain.AffordCombination
		a.Note = fmt.Sprintf("combining balances reaches %d of %d points", total, needed)
		return a
	}

	a.Kind = domain.AffordInsufficient
	a.Note = fmt.Sprintf("all balances combined reach only %d of %d points", total, needed)
	return a
}

package search

import (
	"context"
	"errors"
	"testing"

	"github.com/aristath/voyager/internal/domain"
	"github.com/aristath/voyager/internal/quota"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	calls   int
	results map[domain.Cabin][]domain.FlightRecord
	errs    map[domain.Cabin]error
}

func (f *stubFetcher) Search(ctx context.Context, q domain.SearchQuery, cabin domain.Cabin) ([]domain.FlightRecord, error) {
	f.calls++
	if err := f.errs[cabin]; err != nil {
		return nil, err
	}
	return f.results[cabin], nil
}

func TestCashAdapterFetchesBothAnchorCabins(t *testing.T) {
	fetcher := &stubFetcher{results: map[domain.Cabin][]domain.FlightRecord{
		domain.CabinEconomy:  {cashRecord("y1", 500)},
		domain.CabinBusiness: {cashRecord("j1", 2400)},
	}}

	res := NewCashAdapter(fetcher, zerolog.Nop()).Search(context.Background(), testQuery(), nil)

	assert.Equal(t, 2, fetcher.calls)
	assert.Len(t, res.Flights, 2)
	assert.Equal(t, float64(100), res.Completion)
}

func TestCashAdapterRespectsCabinFilter(t *testing.T) {
	fetcher := &stubFetcher{results: map[domain.Cabin][]domain.FlightRecord{
		domain.CabinFirst: {cashRecord("f1", 6000)},
	}}

	q := testQuery()
	q.Cabin = domain.CabinFirst
	res := NewCashAdapter(fetcher, zerolog.Nop()).Search(context.Background(), q, nil)

	assert.Equal(t, 1, fetcher.calls)
	assert.Len(t, res.Flights, 1)
}

func TestCashAdapterQuotaExhaustedIsSkipNotFailure(t *testing.T) {
	fetcher := &stubFetcher{errs: map[domain.Cabin]error{
		domain.CabinEconomy: quota.ErrExhausted,
	}}

	res := NewCashAdapter(fetcher, zerolog.Nop()).Search(context.Background(), testQuery(), nil)

	// One attempt, then the adapter stops touching the provider entirely.
	assert.Equal(t, 1, fetcher.calls)
	assert.Empty(t, res.Flights)
	assert.Equal(t, float64(0), res.Completion)
	require.NotEmpty(t, res.Diagnostics)
	assert.Contains(t, res.Diagnostics[0], "quota exhausted")
}

func TestCashAdapterPartialFailure(t *testing.T) {
	fetcher := &stubFetcher{
		results: map[domain.Cabin][]domain.FlightRecord{
			domain.CabinEconomy: {cashRecord("y1", 500)},
		},
		errs: map[domain.Cabin]error{
			domain.CabinBusiness: errors.New("upstream 500"),
		},
	}

	res := NewCashAdapter(fetcher, zerolog.Nop()).Search(context.Background(), testQuery(), nil)

	assert.Len(t, res.Flights, 1)
	assert.Equal(t, float64(50), res.Completion)
	assert.NotEmpty(t, res.Diagnostics)
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCabin(t *testing.T) {
	tests := []struct {
		in   string
		want Cabin
	}{
		{"Business", CabinBusiness},
		{"premium economy", CabinPremium},
		{"FIRST", CabinFirst},
		{"economy", CabinEconomy},
		{"coach", CabinEconomy},
		{"", CabinEconomy},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseCabin(tt.in), tt.in)
	}
}

func TestBucketForStops(t *testing.T) {
	assert.Equal(t, StopsNonstop, BucketForStops(0))
	assert.Equal(t, StopsConnecting, BucketForStops(1))
	assert.Equal(t, StopsConnecting, BucketForStops(3))
}

func TestSearchQueryValidate(t *testing.T) {
	valid := SearchQuery{Origin: "LAX", Destination: "NRT", DepartDate: "2026-10-01"}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*SearchQuery)
	}{
		{"bad origin", func(q *SearchQuery) { q.Origin = "LOSANGELES" }},
		{"bad destination", func(q *SearchQuery) { q.Destination = "" }},
		{"bad depart date", func(q *SearchQuery) { q.DepartDate = "10/01/2026" }},
		{"bad return date", func(q *SearchQuery) { q.ReturnDate = "soon" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := valid
			tt.mutate(&q)
			assert.Error(t, q.Validate())
		})
	}
}

func TestFlightRecordPricingInvariant(t *testing.T) {
	award := FlightRecord{ID: "a", Kind: KindAward, Points: 45000, Program: "aeroplan"}
	assert.NoError(t, award.Validate())

	cash := FlightRecord{ID: "c", Kind: KindCash, CashPrice: 420}
	assert.NoError(t, cash.Validate())

	tests := []struct {
		name string
		rec  FlightRecord
	}{
		{"award without points", FlightRecord{ID: "x", Kind: KindAward, Program: "aeroplan"}},
		{"award without program", FlightRecord{ID: "x", Kind: KindAward, Points: 45000}},
		{"award with cash price", FlightRecord{ID: "x", Kind: KindAward, Points: 45000, Program: "aeroplan", CashPrice: 100}},
		{"cash without price", FlightRecord{ID: "x", Kind: KindCash}},
		{"cash with points", FlightRecord{ID: "x", Kind: KindCash, CashPrice: 400, Points: 1000}},
		{"unknown kind", FlightRecord{ID: "x", Kind: "charter"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.rec.Validate())
		})
	}
}

func TestDedupKeyIgnoresPriceAndSource(t *testing.T) {
	a := FlightRecord{
		Source: "awards", Kind: KindCash, Origin: "LAX", Destination: "NRT",
		Carriers: []string{"NH"}, FlightNumbers: []string{"NH105"},
		DepartureTime: "2026-10-01T11:00", CashPrice: 900,
	}
	b := a
	b.Source = "hidden-city"
	b.CashPrice = 700

	assert.Equal(t, a.DedupKey(), b.DedupKey())

	c := a
	c.Kind = KindAward
	assert.NotEqual(t, a.DedupKey(), c.DedupKey(), "award and cash never merge")
}

func TestTransferEdgeRatio(t *testing.T) {
	assert.Equal(t, 1.0, TransferEdge{RatioNum: 1, RatioDen: 1}.Ratio())
	assert.Equal(t, 0.5, TransferEdge{RatioNum: 1, RatioDen: 2}.Ratio())
	assert.Equal(t, 1.3, TransferEdge{RatioNum: 13, RatioDen: 10}.Ratio())
	assert.Equal(t, 0.0, TransferEdge{RatioNum: 1, RatioDen: 0}.Ratio())
}

func TestAffordable(t *testing.T) {
	assert.True(t, Affordability{Kind: AffordDirect}.Affordable())
	assert.True(t, Affordability{Kind: AffordCombination}.Affordable())
	assert.False(t, Affordability{Kind: AffordInsufficient}.Affordable())
}

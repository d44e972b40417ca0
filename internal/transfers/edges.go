// Package transfers resolves how an award's point cost can be funded from
// the user's balances over the transfer-partner graph.
package transfers

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aristath/voyager/internal/domain"
)

// LoadEdges reads a transfer-edge table from a JSON file.
func LoadEdges(path string) ([]domain.TransferEdge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transfer edges: %w", err)
	}

	var edges []domain.TransferEdge
	if err := json.Unmarshal(data, &edges); err != nil {
		return nil, fmt.Errorf("failed to parse transfer edges: %w", err)
	}
	for _, e := range edges {
		if e.From == "" || e.To == "" || e.RatioNum <= 0 || e.RatioDen <= 0 {
			return nil, fmt.Errorf("invalid transfer edge %s -> %s", e.From, e.To)
		}
	}
	return edges, nil
}

// DefaultEdges is the compiled-in transfer-partner graph of the major
// flexible currencies, used when no edge file is configured.
func DefaultEdges() []domain.TransferEdge {
	edges := []domain.TransferEdge{
		{From: "chase-ur", To: "singapore-krisflyer", RatioNum: 1, RatioDen: 1, Latency: domain.LatencyDays},
		{From: "amex-mr", To: "singapore-krisflyer", RatioNum: 1, RatioDen: 1, Latency: domain.LatencyDays},
		{From: "amex-mr", To: "ana-mileage-club", RatioNum: 1, RatioDen: 1, Latency: domain.LatencyDays},
		{From: "capital-one", To: "singapore-krisflyer", RatioNum: 1, RatioDen: 1, Latency: domain.LatencyDays},
		{From: "capital-one", To: "turkish-miles-smiles", RatioNum: 1, RatioDen: 1, Latency: domain.LatencyHours},
		{From: "citi-typ", To: "singapore-krisflyer", RatioNum: 1, RatioDen: 1, Latency: domain.LatencyDays},
		{From: "citi-typ", To: "turkish-miles-smiles", RatioNum: 1, RatioDen: 1, Latency: domain.LatencyHours},
		{From: "bilt", To: "turkish-miles-smiles", RatioNum: 1, RatioDen: 1, Latency: domain.LatencyHours},
	}

	instant := map[string][]string{
		"chase-ur": {"united-mileageplus", "british-airways-avios", "virgin-atlantic",
			"aeroplan", "southwest-rapid-rewards", "air-france-klm", "iberia-avios", "emirates-skywards"},
		"amex-mr": {"delta-skymiles", "british-airways-avios", "virgin-atlantic",
			"aeroplan", "air-france-klm", "emirates-skywards"},
		"capital-one": {"british-airways-avios", "virgin-atlantic", "air-france-klm", "emirates-skywards"},
		"citi-typ":    {"virgin-atlantic", "air-france-klm", "emirates-skywards"},
		"bilt": {"american-aadvantage", "united-mileageplus", "alaska-mileage-plan",
			"aeroplan", "british-airways-avios", "virgin-atlantic", "air-france-klm", "emirates-skywards"},
	}
	for from, targets := range instant {
		for _, to := range targets {
			edges = append(edges, domain.TransferEdge{From: from, To: to, RatioNum: 1, RatioDen: 1, Latency: domain.LatencyInstant})
		}
	}
	return edges
}

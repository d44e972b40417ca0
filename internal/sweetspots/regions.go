// Package sweetspots matches award fares against a curated table of known
// excellent redemptions and classifies routes by world region.
package sweetspots

// regionAirports maps a region name to the major airports inside it. An
// airport can appear in more than one region (NRT is both Japan and Asia);
// the specific region wins during lookup.
var regionAirports = map[string][]string{
	"US": {"LAX", "SFO", "JFK", "ORD", "DFW", "ATL", "DEN", "SEA", "BOS",
		"MIA", "PHX", "LAS", "MCO", "BWI", "DCA", "IAD", "CLT", "PHL",
		"EWR", "IAH", "MSP", "DTW", "SAN", "TPA", "SLC", "HNL", "AUS",
		"RDU", "BNA", "PDX", "STL", "SMF", "SJC", "OAK", "FLL", "PIT"},
	"Europe": {"LHR", "CDG", "FRA", "AMS", "FCO", "MAD", "BCN", "MUC",
		"ZRH", "VIE", "CPH", "OSL", "ARN", "HEL", "LIS", "DUB",
		"BRU", "MXP", "ATH", "WAW", "PRG", "BUD"},
	"Japan": {"NRT", "HND", "ITM", "KIX", "CTS", "FUK", "NGO"},
	"Asia": {"NRT", "HND", "ICN", "PVG", "PEK", "BKK", "SIN", "HKG",
		"KUL", "MNL", "DEL", "BOM", "TPE", "SGN", "HAN"},
	"UK":              {"LHR", "LGW", "STN", "LTN", "MAN", "EDI"},
	"Middle East":     {"DXB", "DOH", "AUH", "KWI", "JED", "RUH", "AMM", "TLV"},
	"Oceania":         {"SYD", "MEL", "BNE", "AKL", "PER"},
	"South America":   {"GRU", "EZE", "BOG", "LIM", "SCL", "GIG"},
	"Central America": {"CUN", "MEX", "SJO", "PTY"},
	"Africa":          {"JNB", "CPT", "NBO", "ADD", "CAI", "CMN"},
}

// specificRegions are checked before the broad ones: Japan beats Asia,
// UK beats Europe.
var specificRegions = []string{"Japan", "UK", "Middle East", "Central America"}

var broadRegions = []string{"US", "Europe", "Asia", "Oceania", "South America", "Africa"}

// AirportRegion classifies an airport code, "Other" when unknown.
func AirportRegion(code string) string {
	for _, region := range specificRegions {
		if containsCode(regionAirports[region], code) {
			return region
		}
	}
	for _, region := range broadRegions {
		if containsCode(regionAirports[region], code) {
			return region
		}
	}
	return "Other"
}

// RouteType names a route by its endpoint regions: "US-Japan", "US-Europe",
// "Domestic" for US-internal, "Europe-Europe" for other intra-region routes.
func RouteType(origin, destination string) string {
	o := AirportRegion(origin)
	d := AirportRegion(destination)
	if o == "US" && d == "US" {
		return "Domestic"
	}
	return o + "-" + d
}

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

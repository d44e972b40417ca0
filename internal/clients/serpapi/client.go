// Package serpapi provides the client for the quota-limited cash-price
// provider (Google Flights data via SerpAPI). Every outbound call is counted
// against a persisted monthly cap before it is issued; cache hits are free.
package serpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/voyager/internal/clientdata"
	"github.com/aristath/voyager/internal/domain"
	"github.com/aristath/voyager/internal/quota"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// travelClass maps cabins to the provider's numeric travel_class parameter.
var travelClass = map[domain.Cabin]int{
	domain.CabinEconomy:  1,
	domain.CabinPremium:  2,
	domain.CabinBusiness: 3,
	domain.CabinFirst:    4,
}

// Client for the SerpAPI Google Flights engine.
type Client struct {
	baseURL   string
	apiKey    string
	client    *http.Client
	cacheRepo *clientdata.Repository
	tracker   *quota.Tracker
	log       zerolog.Logger
}

// NewClient creates a new SerpAPI client.
// cacheRepo is optional - if nil, caching is disabled.
func NewClient(baseURL, apiKey string, cacheRepo *clientdata.Repository, tracker *quota.Tracker, log zerolog.Logger) *Client {
	return &Client{
		baseURL:   baseURL,
		apiKey:    apiKey,
		client:    &http.Client{Timeout: 20 * time.Second},
		cacheRepo: cacheRepo,
		tracker:   tracker,
		log:       log.With().Str("client", "serpapi").Logger(),
	}
}

// apiResponse is the provider's wire shape: itineraries grouped into a
// "best" and an "other" tier.
type apiResponse struct {
	BestFlights  []flightGroup `json:"best_flights"`
	OtherFlights []flightGroup `json:"other_flights"`
}

type flightGroup struct {
	Price         float64     `json:"price"`
	TotalDuration int         `json:"total_duration"`
	Flights       []legDetail `json:"flights"`
	Layovers      []layover   `json:"layovers"`
	BookingToken  string      `json:"booking_token"`
}

type legDetail struct {
	DepartureAirport airportTime `json:"departure_airport"`
	ArrivalAirport   airportTime `json:"arrival_airport"`
	Airline          string      `json:"airline"`
	FlightNumber     string      `json:"flight_number"`
	TravelClass      string      `json:"travel_class"`
	Airplane         string      `json:"airplane"`
}

type airportTime struct {
	ID   string `json:"id"`
	Time string `json:"time"`
}

type layover struct {
	ID       string `json:"id"`
	Duration int    `json:"duration"`
}

// cacheKey identifies one query+cabin combination in the response cache.
func cacheKey(q domain.SearchQuery, cabin domain.Cabin) string {
	return strings.Join([]string{q.Origin, q.Destination, q.DepartDate, q.ReturnDate, string(cabin)}, ":")
}

// Search fetches cash prices for one cabin. Fresh cached responses are
// served without consuming quota; otherwise one quota unit is acquired
// atomically before the request goes out. quota.ErrExhausted propagates so
// the adapter can skip with a warning instead of failing.
func (c *Client) Search(ctx context.Context, q domain.SearchQuery, cabin domain.Cabin) ([]domain.FlightRecord, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("SERP_API_KEY not configured")
	}

	key := cacheKey(q, cabin)

	// Check persistent cache for fresh data: a hit costs nothing.
	if c.cacheRepo != nil {
		data, err := c.cacheRepo.GetIfFresh("serpapi_prices", key)
		if err == nil && data != nil {
			var cached apiResponse
			if err := json.Unmarshal(data, &cached); err == nil {
				c.log.Debug().Str("key", key).Msg("Cache hit")
				return c.parse(cached, q, cabin), nil
			}
		}
	}

	// Count the call before issuing it. The tracker's conditional UPDATE is
	// the atomic check-then-increment; at the cap we never touch the network.
	if err := c.tracker.TryAcquire(); err != nil {
		if errors.Is(err, quota.ErrExhausted) {
			return nil, err
		}
		return nil, fmt.Errorf("quota check failed: %w", err)
	}

	params := url.Values{}
	params.Set("engine", "google_flights")
	params.Set("departure_id", q.Origin)
	params.Set("arrival_id", q.Destination)
	params.Set("outbound_date", q.DepartDate)
	params.Set("currency", "USD")
	params.Set("hl", "en")
	params.Set("travel_class", strconv.Itoa(travelClass[cabin]))
	params.Set("api_key", c.apiKey)
	if q.RoundTrip() {
		params.Set("return_date", q.ReturnDate)
		params.Set("type", "1")
	} else {
		params.Set("type", "2")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		_ = c.tracker.Release() // nothing went over the wire
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.log.Debug().
		Str("origin", q.Origin).
		Str("destination", q.Destination).
		Str("cabin", string(cabin)).
		Msg("Fetching cash prices")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store("serpapi_prices", key, result, clientdata.TTLCashPrices); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("Failed to cache price response")
		}
	}

	records := c.parse(result, q, cabin)
	c.log.Info().
		Int("best", len(result.BestFlights)).
		Int("other", len(result.OtherFlights)).
		Int("records", len(records)).
		Msg("Fetched cash prices")

	return records, nil
}

// parse converts both tiers into canonical cash records. A group without a
// price or legs is skipped, never an error.
func (c *Client) parse(resp apiResponse, q domain.SearchQuery, cabin domain.Cabin) []domain.FlightRecord {
	groups := make([]flightGroup, 0, len(resp.BestFlights)+len(resp.OtherFlights))
	groups = append(groups, resp.BestFlights...)
	groups = append(groups, resp.OtherFlights...)

	records := make([]domain.FlightRecord, 0, len(groups))
	for _, g := range groups {
		if g.Price <= 0 || len(g.Flights) == 0 {
			continue
		}

		first := g.Flights[0]
		last := g.Flights[len(g.Flights)-1]

		carriers := make([]string, 0, len(g.Flights))
		numbers := make([]string, 0, len(g.Flights))
		for _, leg := range g.Flights {
			if leg.Airline != "" && !contains(carriers, leg.Airline) {
				carriers = append(carriers, leg.Airline)
			}
			if leg.FlightNumber != "" {
				numbers = append(numbers, leg.FlightNumber)
			}
		}

		recordCabin := cabin
		if first.TravelClass != "" {
			recordCabin = domain.ParseCabin(first.TravelClass)
		}

		records = append(records, domain.FlightRecord{
			ID:            uuid.NewString(),
			Kind:          domain.KindCash,
			Origin:        q.Origin,
			Destination:   q.Destination,
			Carriers:      carriers,
			FlightNumbers: numbers,
			Stops:         len(g.Flights) - 1,
			DurationMin:   g.TotalDuration,
			DepartureTime: first.DepartureAirport.Time,
			ArrivalTime:   last.ArrivalAirport.Time,
			Cabin:         recordCabin,
			Equipment:     first.Airplane,
			CashPrice:     g.Price,
			Currency:      "USD",
			BookingURL:    bookingURL(q, g.BookingToken),
		})
	}

	return records
}

func bookingURL(q domain.SearchQuery, token string) string {
	base := fmt.Sprintf("https://www.google.com/travel/flights?q=%s+to+%s", q.Origin, q.Destination)
	if token == "" {
		return base
	}
	return base + "&booking_token=" + url.QueryEscape(token)
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// Package awardhub provides the client for the AwardHub award-inventory
// provider. Searches run as server-side jobs: a GraphQL mutation submits the
// query and returns a job identifier, then a query polls the job for
// percent-completed and the fares found so far.
package awardhub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aristath/voyager/internal/domain"
	"github.com/aristath/voyager/internal/search"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	submitMutation = `mutation SubmitSearch($input: AwardSearchInput!) { submitSearch(input: $input) { jobId } }`
	statusQuery    = `query SearchStatus($jobId: ID!) { searchStatus(jobId: $jobId) { percentCompleted fares { id departTime arriveTime carriers flightNumbers durationMinutes equipment originAirport destinationAirport stops mileageProgram premiumPercent cabinClass awardPoints surcharge qualityScore remainingSeats bookingUrl fareClass } } }`
)

// Client for the AwardHub GraphQL API. Implements search.JobClient.
type Client struct {
	baseURL string
	client  *http.Client
	creds   *Credentials
	log     zerolog.Logger
}

// NewClient creates an AwardHub client from an already-validated credential
// pair. Use LoadCredentials first; construction never makes a network call.
func NewClient(baseURL string, creds *Credentials, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 20 * time.Second},
		creds:   creds,
		log:     log.With().Str("client", "awardhub").Logger(),
	}
}

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type graphqlError struct {
	Message string `json:"message"`
}

// providerFare is the provider's wire shape for one award fare.
type providerFare struct {
	ID                 string   `json:"id"`
	DepartTime         string   `json:"departTime"`
	ArriveTime         string   `json:"arriveTime"`
	Carriers           []string `json:"carriers"`
	FlightNumbers      []string `json:"flightNumbers"`
	DurationMinutes    int      `json:"durationMinutes"`
	Equipment          string   `json:"equipment"`
	OriginAirport      string   `json:"originAirport"`
	DestinationAirport string   `json:"destinationAirport"`
	Stops              int      `json:"stops"`
	MileageProgram     string   `json:"mileageProgram"`
	PremiumPercent     float64  `json:"premiumPercent"`
	CabinClass         string   `json:"cabinClass"`
	AwardPoints        int      `json:"awardPoints"`
	Surcharge          float64  `json:"surcharge"`
	QualityScore       float64  `json:"qualityScore"`
	RemainingSeats     int      `json:"remainingSeats"`
	BookingURL         string   `json:"bookingUrl"`
	FareClass          string   `json:"fareClass"`
}

// post executes one GraphQL request and decodes the data payload into out.
func (c *Client) post(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cookie", c.creds.CookieHeader())
	req.Header.Set("X-Anti-Forgery", c.creds.AntiForgeryCookie)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphqlError  `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if len(envelope.Errors) > 0 {
		msgs := make([]string, len(envelope.Errors))
		for i, e := range envelope.Errors {
			msgs[i] = e.Message
		}
		return fmt.Errorf("graphql errors: %s", strings.Join(msgs, "; "))
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to parse data payload: %w", err)
	}

	return nil
}

// Submit starts a server-side award search and returns its job identifier.
func (c *Client) Submit(ctx context.Context, query domain.SearchQuery) (string, error) {
	input := map[string]interface{}{
		"origin":      query.Origin,
		"destination": query.Destination,
		"date":        query.DepartDate,
	}
	if query.Cabin != "" {
		input["cabinClass"] = string(query.Cabin)
	}
	if query.ProgramFilter != "" {
		input["programFilter"] = query.ProgramFilter
	}

	var data struct {
		SubmitSearch struct {
			JobID string `json:"jobId"`
		} `json:"submitSearch"`
	}
	if err := c.post(ctx, submitMutation, map[string]interface{}{"input": input}, &data); err != nil {
		return "", err
	}

	if data.SubmitSearch.JobID == "" {
		return "", fmt.Errorf("provider returned empty job id")
	}

	c.log.Debug().Str("job_id", data.SubmitSearch.JobID).Msg("Search job submitted")
	return data.SubmitSearch.JobID, nil
}

// Poll fetches the job's current percent-completed and accumulated fares.
// Individual malformed fares are skipped; they never fail the poll.
func (c *Client) Poll(ctx context.Context, jobID string) (search.JobStatus, error) {
	var data struct {
		SearchStatus struct {
			PercentCompleted float64        `json:"percentCompleted"`
			Fares            []providerFare `json:"fares"`
		} `json:"searchStatus"`
	}
	if err := c.post(ctx, statusQuery, map[string]interface{}{"jobId": jobID}, &data); err != nil {
		return search.JobStatus{}, err
	}

	status := search.JobStatus{
		PercentCompleted: data.SearchStatus.PercentCompleted,
		Fares:            make([]domain.FlightRecord, 0, len(data.SearchStatus.Fares)),
	}

	for _, pf := range data.SearchStatus.Fares {
		record, err := pf.toRecord()
		if err != nil {
			c.log.Warn().Err(err).Str("fare_id", pf.ID).Msg("Skipping malformed fare")
			continue
		}
		status.Fares = append(status.Fares, record)
	}

	return status, nil
}

// toRecord converts a provider fare into the canonical schema, validating at
// the parse boundary.
func (pf providerFare) toRecord() (domain.FlightRecord, error) {
	if pf.AwardPoints <= 0 {
		return domain.FlightRecord{}, fmt.Errorf("fare has no award points")
	}
	if pf.MileageProgram == "" {
		return domain.FlightRecord{}, fmt.Errorf("fare has no mileage program")
	}
	if pf.OriginAirport == "" || pf.DestinationAirport == "" {
		return domain.FlightRecord{}, fmt.Errorf("fare missing airports")
	}

	id := pf.ID
	if id == "" {
		id = uuid.NewString()
	}

	return domain.FlightRecord{
		ID:            id,
		Kind:          domain.KindAward,
		Origin:        pf.OriginAirport,
		Destination:   pf.DestinationAirport,
		Carriers:      pf.Carriers,
		FlightNumbers: pf.FlightNumbers,
		Stops:         pf.Stops,
		DurationMin:   pf.DurationMinutes,
		DepartureTime: pf.DepartTime,
		ArrivalTime:   pf.ArriveTime,
		Cabin:         domain.ParseCabin(pf.CabinClass),
		Equipment:     pf.Equipment,
		Points:        pf.AwardPoints,
		Program:       pf.MileageProgram,
		TaxesFees:     pf.Surcharge,
		Currency:      "USD",
		BookingURL:    pf.BookingURL,
		FareClass:     pf.FareClass,
		SeatsLeft:     pf.RemainingSeats,
		QualityScore:  pf.QualityScore,
	}, nil
}

package events

// SourceSettledData contains data for SourceSettled events.
type SourceSettledData struct {
	SourceName string  `json:"source_name"`
	Flights    int     `json:"flights"`
	Completion float64 `json:"completion"`
	Failed     bool    `json:"failed"`
}

// PollProgressData contains data for PollProgress events.
type PollProgressData struct {
	JobID            string  `json:"job_id"`
	PercentCompleted float64 `json:"percent_completed"`
	FaresSoFar       int     `json:"fares_so_far"`
	State            string  `json:"state"`
}

// SearchCompletedData contains data for SearchCompleted events.
type SearchCompletedData struct {
	SearchID     string             `json:"search_id"`
	TotalFlights int                `json:"total_flights"`
	Completion   map[string]float64 `json:"completion"`
}

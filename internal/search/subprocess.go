package search

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/aristath/voyager/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// subprocessTimeout bounds one script run. Generous: the script does its own
// network work and has no progress channel to report through.
const subprocessTimeout = 120 * time.Second

// SubprocessAdapter runs an external hidden-city fare script and parses its
// stdout. Contract: the script may print anything it likes, but its LAST
// stdout line must be a JSON array of fares. Stderr is captured as
// diagnostics, never treated as failure on its own.
type SubprocessAdapter struct {
	scriptPath string
	log        zerolog.Logger
}

// NewSubprocessAdapter creates the hidden-city search strategy.
func NewSubprocessAdapter(scriptPath string, log zerolog.Logger) *SubprocessAdapter {
	return &SubprocessAdapter{
		scriptPath: scriptPath,
		log:        log.With().Str("component", "subprocess_adapter").Logger(),
	}
}

// Name implements Adapter.
func (a *SubprocessAdapter) Name() string { return "hidden-city" }

// scriptFare is the line format the script emits.
type scriptFare struct {
	Origin        string  `json:"origin"`
	Destination   string  `json:"destination"`
	Carrier       string  `json:"carrier"`
	FlightNumber  string  `json:"flight_number"`
	Stops         int     `json:"stops"`
	DurationMin   int     `json:"duration_minutes"`
	DepartureTime string  `json:"departure_time"`
	ArrivalTime   string  `json:"arrival_time"`
	Cabin         string  `json:"cabin"`
	Price         float64 `json:"price"`
	Currency      string  `json:"currency"`
	BookingURL    string  `json:"booking_url"`
}

func (f scriptFare) toRecord() (domain.FlightRecord, error) {
	rec := domain.FlightRecord{
		ID:            uuid.NewString(),
		Kind:          domain.KindCash,
		Origin:        strings.ToUpper(f.Origin),
		Destination:   strings.ToUpper(f.Destination),
		Carriers:      []string{f.Carrier},
		FlightNumbers: []string{f.FlightNumber},
		Stops:         f.Stops,
		DurationMin:   f.DurationMin,
		DepartureTime: f.DepartureTime,
		ArrivalTime:   f.ArrivalTime,
		Cabin:         domain.ParseCabin(f.Cabin),
		CashPrice:     f.Price,
		Currency:      f.Currency,
		BookingURL:    f.BookingURL,
	}
	if rec.Currency == "" {
		rec.Currency = "USD"
	}
	if err := rec.Validate(); err != nil {
		return domain.FlightRecord{}, err
	}
	return rec, nil
}

// Search implements Adapter. A non-zero exit, missing script or unparseable
// output all settle as a failed result for this source only.
func (a *SubprocessAdapter) Search(ctx context.Context, query domain.SearchQuery, progress ProgressFunc) Result {
	if a.scriptPath == "" {
		return Failed("hidden-city script not configured")
	}

	runCtx, cancel := context.WithTimeout(ctx, subprocessTimeout)
	defer cancel()

	args := []string{query.Origin, query.Destination, query.DepartDate}
	if query.RoundTrip() {
		args = append(args, query.ReturnDate)
	}

	cmd := exec.CommandContext(runCtx, a.scriptPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	a.log.Debug().Str("script", a.scriptPath).Strs("args", args).Msg("Running hidden-city script")

	runErr := cmd.Run()

	// stderr gathered after the run so late lines are not lost.
	var res Result
	for _, line := range splitLines(stderr.String()) {
		res.Diagnostics = append(res.Diagnostics, "script: "+line)
	}

	if runErr != nil {
		res.Diagnostics = append(res.Diagnostics, fmt.Sprintf("hidden-city script failed: %v", runErr))
		a.log.Warn().Err(runErr).Msg("Hidden-city script failed")
		return res
	}

	last := lastNonEmptyLine(stdout.String())
	if last == "" {
		res.Diagnostics = append(res.Diagnostics, "hidden-city script produced no output")
		return res
	}

	var fares []scriptFare
	if err := json.Unmarshal([]byte(last), &fares); err != nil {
		res.Diagnostics = append(res.Diagnostics, fmt.Sprintf("hidden-city output not parseable: %v", err))
		return res
	}

	skipped := 0
	for _, f := range fares {
		rec, err := f.toRecord()
		if err != nil {
			skipped++
			continue
		}
		res.Flights = append(res.Flights, rec)
	}
	if skipped > 0 {
		res.Diagnostics = append(res.Diagnostics, fmt.Sprintf("%d malformed fares skipped", skipped))
	}

	res.Completion = 100
	if progress != nil {
		progress(100, len(res.Flights))
	}
	return res
}

func splitLines(s string) []string {
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(s))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// lastNonEmptyLine returns the final non-blank stdout line; the script is
// allowed to log human-readable progress above its JSON payload.
func lastNonEmptyLine(s string) string {
	lines := splitLines(s)
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}

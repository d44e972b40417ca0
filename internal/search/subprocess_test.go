package search

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLastNonEmptyLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"single line", `[{"a":1}]`, `[{"a":1}]`},
		{"diagnostics above payload", "scanning LAX...\nfound 3 fares\n[]", "[]"},
		{"trailing newline", "[]\n", "[]"},
		{"blank lines ignored", "noise\n\n[]\n\n", "[]"},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lastNonEmptyLine(tt.input))
		})
	}
}

func TestScriptFareToRecord(t *testing.T) {
	valid := scriptFare{
		Origin: "lax", Destination: "sea", Carrier: "AS", FlightNumber: "AS12",
		Stops: 0, DurationMin: 165, DepartureTime: "2026-10-01T08:00",
		ArrivalTime: "2026-10-01T10:45", Cabin: "economy", Price: 129,
	}

	rec, err := valid.toRecord()
	require.NoError(t, err)
	assert.Equal(t, "LAX", rec.Origin)
	assert.Equal(t, "USD", rec.Currency, "currency defaults when the script omits it")
	assert.NotEmpty(t, rec.ID)

	invalid := valid
	invalid.Price = 0
	_, err = invalid.toRecord()
	assert.Error(t, err, "a fare without a price is rejected at the parse boundary")
}

func TestSubprocessAdapterNotConfigured(t *testing.T) {
	res := NewSubprocessAdapter("", zerolog.Nop()).Search(context.Background(), testQuery(), nil)
	assert.Empty(t, res.Flights)
	assert.Equal(t, float64(0), res.Completion)
	assert.NotEmpty(t, res.Diagnostics)
}

func TestSubprocessAdapterParsesLastLine(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture")
	}

	script := filepath.Join(t.TempDir(), "hidden-city.sh")
	payload := `[{"origin":"LAX","destination":"SEA","carrier":"AS","flight_number":"AS12","stops":0,"duration_minutes":165,"departure_time":"2026-10-01T08:00","arrival_time":"2026-10-01T10:45","cabin":"economy","price":129,"currency":"USD"}]`
	content := "#!/bin/sh\necho checking route \"$1-$2\" >&2\necho scanning...\necho '" + payload + "'\n"
	require.NoError(t, os.WriteFile(script, []byte(content), 0o755))

	res := NewSubprocessAdapter(script, zerolog.Nop()).Search(context.Background(), testQuery(), nil)

	require.Len(t, res.Flights, 1)
	assert.Equal(t, "LAX", res.Flights[0].Origin)
	assert.Equal(t, float64(100), res.Completion)
	assert.NotEmpty(t, res.Diagnostics, "stderr lines are carried as diagnostics")
}

func TestSubprocessAdapterScriptFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture")
	}

	script := filepath.Join(t.TempDir(), "broken.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho dying >&2\nexit 3\n"), 0o755))

	res := NewSubprocessAdapter(script, zerolog.Nop()).Search(context.Background(), testQuery(), nil)

	assert.Empty(t, res.Flights)
	assert.Equal(t, float64(0), res.Completion)
	require.Len(t, res.Diagnostics, 2, "stderr line plus the failure itself")
	assert.Equal(t, "script: dying", res.Diagnostics[0])
	assert.Contains(t, res.Diagnostics[1], "hidden-city script failed")
}

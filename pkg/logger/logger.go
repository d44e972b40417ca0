// Package logger builds the process-wide zerolog instance. Voyager emits one
// JSON line per event; dev mode swaps in the human-readable console writer.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New constructs the root logger, sets the global level and installs the
// result as zerolog's package logger. Unknown level strings fall back to
// info rather than failing startup.
func New(level string, pretty bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = os.Stdout
	if pretty {
		out = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		}
	}

	l := zerolog.New(out).With().Timestamp().Logger()
	log.Logger = l
	return l
}

package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger. If w is nil, os.Stderr is used.
// Format must be "text" or "json"; unknown levels fall back to info.
func Init(level, format string, w ...io.Writer) {
	var writer io.Writer = os.Stderr
	if len(w) > 0 && w[0] != nil {
		writer = w[0]
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if format != "json" {
		writer = zerolog.ConsoleWriter{Out: writer, NoColor: true, TimeFormat: "2006-01-02 15:04:05"}
	}
	log.Logger = zerolog.New(writer).With().Timestamp().Logger()
}

// New returns a logger with a "component" field for module-scoped logging.
func New(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}

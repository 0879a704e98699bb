package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger. format "console" switches to
// a human readable writer; anything else logs JSON.
func Init(service, level, format string) {
	InitWithWriter(os.Stdout, service, level, format)
}

// InitWithWriter is Init with an explicit output.
func InitWithWriter(out io.Writer, service, level, format string) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if strings.EqualFold(strings.TrimSpace(format), "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	log.Logger = zerolog.New(out).
		With().
		Timestamp().
		Str("service", service).
		Logger().
		Level(ParseLevel(level))
}

// ParseLevel parses a level name, falling back to info.
func ParseLevel(value string) zerolog.Level {
	levelString := strings.ToLower(strings.TrimSpace(value))
	if levelString == "" {
		return zerolog.InfoLevel
	}
	if lvl, err := zerolog.ParseLevel(levelString); err == nil {
		return lvl
	}
	return zerolog.InfoLevel
}

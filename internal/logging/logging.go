package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger. DEV gets a human readable console writer,
// every other environment gets JSON lines on stdout.
func Setup(env string) {
	Configure(env, os.Stdout)
}

func Configure(env string, w io.Writer) {
	zerolog.TimeFieldFormat = time.RFC3339
	level := zerolog.InfoLevel
	if env == "DEV" {
		level = zerolog.DebugLevel
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

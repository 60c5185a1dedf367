// Package telemetry configure les journaux structurés et les métriques Prometheus
package telemetry

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger construit le logger de l'application.
// pretty active la sortie console lisible; sinon une ligne JSON par événement.
func NewLogger(level string, pretty bool) zerolog.Logger {
	return NewLoggerTo(os.Stderr, level, pretty)
}

// NewLoggerTo construit un logger écrivant vers w
func NewLoggerTo(w io.Writer, level string, pretty bool) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	out := w
	if pretty {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Str("service", "materialroi").Logger()
}

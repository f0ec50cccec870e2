// Package logging configures the zerolog logger shared by the SoGraph client,
// the exporter and the CLI.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty switches to the human-readable console writer instead of JSON.
	Pretty bool

	// Output defaults to os.Stderr so stdout stays free for command results.
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger and returns it.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(ParseLevel(string(cfg.Level)))

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	logger := zerolog.New(out).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// ParseLevel converts a level name to zerolog.Level. Unknown names map to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a child of the global logger tagged with a component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: request flow detail
//   - Outgoing requests (endpoint, method, query page)
//   - Cache hit/miss and stored TTL
//   - Worker start/stop in the page fetcher
//
// Info: one line per logical operation
//   - Campaign total and page count
//   - Fetch summary (pages ok/failed, records)
//   - Export written (path, sheets, rows)
//   - Check-in result code
//
// Warn: failures that are absorbed
//   - Count request failed (treated as zero campaigns)
//   - Page request failed (page contributes no records)
//   - Check-in request failed (mapped to "404")
//   - Cache read/write errors
//
// Error: failures surfaced to the caller
//   - Export file could not be written
//   - Configuration errors in the CLI
//
// Context Fields:
//   - component: package emitting the log line
//   - run_id: id of one export run
//   - endpoint: API path
//   - page: page number
//   - status_code: HTTP status code
//   - error_class: network, client, server, decode
//   - duration: elapsed time

// Package logger owns the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// serviceName is attached to every log line as "service".
const serviceName = "stockcast"

var (
	base zerolog.Logger

	// output is where Init writes; tests swap it to capture lines.
	output io.Writer = os.Stdout
)

// Init configures the global JSON logger.
//
// Environment variables (optional):
//   - LOG_LEVEL: debug|info|warn|error (default: info)
//   - LOG_PRETTY: true|false (default: false)
//
// Debug level also records the caller.
func Init() {
	level := parseLevel(getenv("LOG_LEVEL", "info"))
	pretty := strings.EqualFold(getenv("LOG_PRETTY", "false"), "true")

	zerolog.TimeFieldFormat = time.RFC3339Nano
	w := output
	if pretty {
		w = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(w).With().Timestamp().Str("service", serviceName)
	if level == zerolog.DebugLevel {
		ctx = ctx.Caller()
	}
	base = ctx.Logger().Level(level)
}

// L returns the global logger. Call Init() once on startup.
func L() *zerolog.Logger {
	if base.GetLevel() == zerolog.NoLevel {
		Init()
	}
	return &base
}

// With returns a child of the global logger that carries a "component" field.
//
// Example:
//
//	log := logger.With("registry")
//	log.Warn().Str("ticker", t).Msg("using anchor model")
func With(component string) zerolog.Logger {
	return L().With().Str("component", component).Logger()
}

// SetOutput redirects subsequent Init calls to w and reinitializes the logger.
// It returns a function restoring the previous writer.
func SetOutput(w io.Writer) (restore func()) {
	prev := output
	output = w
	Init()
	return func() {
		output = prev
		Init()
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error", "err":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Package logging builds the structured JSON loggers shared by the search
// daemon and the one-shot CLI. Every line carries a service attribute so
// pipeline stages can be correlated across the two processes.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

const defaultService = "reading-assistant"

// NewJSONLogger returns a JSON slog logger tagged with the service name.
// An unknown level falls back to info so a misconfigured process still logs.
func NewJSONLogger(service, level string) *slog.Logger {
	if strings.TrimSpace(service) == "" {
		service = defaultService
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler).With("service", service)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the application logger. Production deployments set
// LOG_FORMAT=json for ingestion; the default text handler reads better
// during local development.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

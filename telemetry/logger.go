package telemetry

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger builds a JSON slog logger tagged with service, pipeline and worker instance.
func NewLogger(w io.Writer, level, service, pipelineName, instanceID string) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})

	return slog.New(h).With(
		"service", service,
		"pipeline", pipelineName,
		"worker_id", instanceID,
	)
}

// ParseLevel maps debug|info|warn|error to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
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

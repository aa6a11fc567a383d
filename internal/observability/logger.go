package observability

import (
	"io"
	"log/slog"
	"strings"

	"github.com/duckpipe/duckpipe/internal/config"
)

func NewLogger(cfg config.Config, writer io.Writer) *slog.Logger {
	if writer == nil {
		writer = io.Discard
	}
	var handler slog.Handler
	if cfg.Observability.LogJSON {
		handler = slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: cfg.Observability.LogLevel})
	} else {
		handler = slog.NewTextHandler(writer, &slog.HandlerOptions{Level: cfg.Observability.LogLevel})
	}
	return slog.New(handler).With(
		slog.String("service", cfg.Service.Name),
		slog.String("profile", string(cfg.Profile)),
	)
}

// LogHeader emits the banner block that opens a pipeline run.
func LogHeader(logger *slog.Logger, title string) {
	rule := strings.Repeat("=", 52)
	logger.Info(rule)
	logger.Info(title)
	logger.Info(rule)
}

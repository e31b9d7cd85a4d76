package observability

import (
	"log/slog"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/psychrometer-service/internal/config"
)

// NewLogger builds the service logger from LOG_LEVEL and LOG_FORMAT, tags it
// with the service name and installs it as the slog default.
func NewLogger(cfg *config.Config) *slog.Logger {
	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat).With("service", "psychrometer")
	slog.SetDefault(logger)
	return logger
}

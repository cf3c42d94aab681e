package shared

import (
	"context"
	"log/slog"

	"spoolman/internal/platform/middleware"
	dErrors "spoolman/pkg/domain-errors"
)

// LogError logs a failed request. Client errors are warnings, everything
// else is an error.
func LogError(ctx context.Context, logger *slog.Logger, msg string, err error) {
	level := slog.LevelWarn
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	logger.Log(ctx, level, msg,
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	)
}

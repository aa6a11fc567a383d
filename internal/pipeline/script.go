package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
)

// RunScript reads the full script text and submits it to the connection as
// one execution unit. Ordering between scripts is the caller's concern.
func RunScript(ctx context.Context, db *sql.DB, scriptPath string, logger *slog.Logger) error {
	logger.Info("RUN SQL script", slog.String("path", scriptPath))

	text, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("read script %q: %w", scriptPath, err)
	}
	if _, err := db.ExecContext(ctx, string(text)); err != nil {
		return &ExecutionError{File: scriptPath, Err: err}
	}
	return nil
}

package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const reportRule = "===================================="

// Report is the fully materialized result of a query step. Column and row
// order are exactly as the engine returned them.
type Report struct {
	Path     string
	Columns  []string
	Rows     [][]string
	Duration time.Duration
}

func (r Report) HeaderLine() string {
	return strings.Join(r.Columns, ", ")
}

func (r Report) RowLines() []string {
	lines := make([]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		lines = append(lines, strings.Join(row, ", "))
	}
	return lines
}

// RunQuery executes the query stored at queryPath, collects the result set
// eagerly, and emits the titled report block to the logger.
func RunQuery(ctx context.Context, db *sql.DB, queryPath string, logger *slog.Logger) (Report, error) {
	logger.Info("")
	logger.Info("RUN SQL query", slog.String("path", queryPath))

	text, err := os.ReadFile(queryPath)
	if err != nil {
		return Report{}, fmt.Errorf("read query %q: %w", queryPath, err)
	}

	start := time.Now()
	rows, err := db.QueryContext(ctx, string(text))
	if err != nil {
		return Report{}, &ExecutionError{File: queryPath, Err: err}
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return Report{}, &ExecutionError{File: queryPath, Err: err}
	}

	rendered := make([][]string, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return Report{}, &ExecutionError{File: queryPath, Err: err}
		}
		rendered = append(rendered, renderValues(values))
	}
	if err := rows.Err(); err != nil {
		return Report{}, &ExecutionError{File: queryPath, Err: err}
	}

	report := Report{
		Path:     queryPath,
		Columns:  columns,
		Rows:     rendered,
		Duration: time.Since(start),
	}

	logger.Info(reportRule)
	logger.Info(filepath.Base(queryPath))
	logger.Info(reportRule)
	logger.Info(report.HeaderLine())
	for _, line := range report.RowLines() {
		logger.Info(line)
	}
	return report, nil
}

func renderValues(values []any) []string {
	rendered := make([]string, len(values))
	for i, value := range values {
		rendered[i] = renderValue(value)
	}
	return rendered
}

func renderValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(typed)
	case time.Time:
		return typed.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", typed)
	}
}

// Package summary records what each pipeline step did and encodes the run
// summary as a parquet artifact next to the database file.
package summary

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
)

type StepRecord struct {
	Step              string `parquet:"step"`
	Kind              string `parquet:"kind"`
	File              string `parquet:"file"`
	Rows              int64  `parquet:"rows"`
	DurationMs        int64  `parquet:"duration_ms"`
	CompletedAtUnixMs int64  `parquet:"completed_at_unix_ms"`
}

func NewStepRecord(step, kind, file string, rows int, duration time.Duration, completedAt time.Time) StepRecord {
	return StepRecord{
		Step:              step,
		Kind:              kind,
		File:              file,
		Rows:              int64(rows),
		DurationMs:        duration.Milliseconds(),
		CompletedAtUnixMs: completedAt.UTC().UnixMilli(),
	}
}

func Encode(records []StepRecord) ([]byte, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("records are required")
	}

	buf := bytes.NewBuffer(nil)
	writer := parquet.NewGenericWriter[StepRecord](buf)
	if _, err := writer.Write(records); err != nil {
		return nil, fmt.Errorf("write summary rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close summary writer: %w", err)
	}
	return buf.Bytes(), nil
}

func Write(path string, records []StepRecord) error {
	data, err := Encode(records)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write summary file %q: %w", path, err)
	}
	return nil
}

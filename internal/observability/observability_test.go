package observability

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/duckpipe/duckpipe/internal/config"
)

func TestNewLoggerTextHandlerCarriesServiceAttrs(t *testing.T) {
	cfg, err := config.Load("duckpipe", func(string) (string, bool) { return "", false })
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}

	buf := &bytes.Buffer{}
	logger := NewLogger(cfg, buf)
	logger.Info("hello")

	line := buf.String()
	if !strings.Contains(line, "service=duckpipe") {
		t.Fatalf("missing service attr in %q", line)
	}
	if !strings.Contains(line, "profile=dev") {
		t.Fatalf("missing profile attr in %q", line)
	}
}

func TestLogHeaderEmitsTitleBetweenRules(t *testing.T) {
	cfg, err := config.Load("duckpipe", func(string) (string, bool) { return "", false })
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}

	buf := &bytes.Buffer{}
	logger := NewLogger(cfg, buf)
	LogHeader(logger, "duckpipe run")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	if !strings.Contains(lines[1], "duckpipe run") {
		t.Fatalf("title line = %q", lines[1])
	}
}

func TestWriteMetricsTextfile(t *testing.T) {
	ObserveStep("script", "ok")
	AddReportRows("query_library_counts.sql", 2)
	ObservePipelineDuration(125 * time.Millisecond)

	path := filepath.Join(t.TempDir(), "duckpipe_metrics.prom")
	if err := WriteMetricsTextfile(path); err != nil {
		t.Fatalf("WriteMetricsTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "duckpipe_pipeline_steps_total") {
		t.Fatalf("missing step counter in %q", text)
	}
	if !strings.Contains(text, "duckpipe_report_rows_total") {
		t.Fatalf("missing report rows counter in %q", text)
	}
	if !strings.Contains(text, "duckpipe_pipeline_duration_seconds") {
		t.Fatal("missing duration histogram")
	}
}

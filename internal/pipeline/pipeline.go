package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/duckpipe/duckpipe/internal/manifest"
	"github.com/duckpipe/duckpipe/internal/observability"
	"github.com/duckpipe/duckpipe/internal/project"
	"github.com/duckpipe/duckpipe/internal/storage"
	"github.com/duckpipe/duckpipe/internal/summary"
)

type StepKind string

const (
	StepScript StepKind = "script"
	StepQuery  StepKind = "query"
)

// Step is one sequenced unit of work: a script executed for effect or a
// query reported to the log.
type Step struct {
	Name string
	Kind StepKind
	Path string
}

// DefaultSteps is the built-in plan: create tables, load data, then the two
// reports. The schema script must run before the load script.
func DefaultSteps(layout project.Layout) []Step {
	return []Step{
		{Name: "create tables", Kind: StepScript, Path: layout.CreateTablesSQL},
		{Name: "load data", Kind: StepScript, Path: layout.LoadDataSQL},
		{Name: "table counts", Kind: StepQuery, Path: layout.CountsSQL},
		{Name: "branch KPIs", Kind: StepQuery, Path: layout.KPISQL},
	}
}

// StepsFromPlan maps a manifest plan onto executable steps, resolving files
// against the SQL directory.
func StepsFromPlan(plan manifest.Plan, sqlDir string) []Step {
	steps := make([]Step, 0, len(plan.Steps))
	for _, item := range plan.Steps {
		kind := StepScript
		if item.Kind == manifest.KindQuery {
			kind = StepQuery
		}
		file := item.File
		if !filepath.IsAbs(file) {
			file = filepath.Join(sqlDir, file)
		}
		steps = append(steps, Step{Name: item.Name, Kind: kind, Path: file})
	}
	return steps
}

type Config struct {
	// RootDir, when set, becomes the engine's file search path so scripts
	// can reference data files relative to the project root.
	RootDir      string
	DatabasePath string
	// SummaryPath and MetricsPath are artifact outputs; empty disables them.
	SummaryPath string
	MetricsPath string
}

// Service runs the configured steps over a single connection that is opened
// at the start of Run and closed exactly once on every exit path.
type Service struct {
	Config Config
	Steps  []Step
	Logger *slog.Logger
	// Store, when set, receives the run artifacts after a successful run.
	Store storage.ArtifactStore
	// Opener overrides database opening in tests; nil means Open.
	Opener func(ctx context.Context, path string) (*sql.DB, error)
}

func (s *Service) Run(ctx context.Context) (err error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("no steps configured")
	}

	opener := s.Opener
	if opener == nil {
		opener = Open
	}

	start := time.Now()
	db, err := opener(ctx, s.Config.DatabasePath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close database: %w", cerr)
		}
	}()

	if s.Config.RootDir != "" {
		searchPath := fmt.Sprintf("SET file_search_path = '%s'", strings.ReplaceAll(s.Config.RootDir, "'", "''"))
		if _, err := db.ExecContext(ctx, searchPath); err != nil {
			return fmt.Errorf("set file search path: %w", err)
		}
	}

	records := make([]summary.StepRecord, 0, len(s.Steps))
	for _, step := range s.Steps {
		stepStart := time.Now()
		switch step.Kind {
		case StepScript:
			if err := RunScript(ctx, db, step.Path, logger); err != nil {
				observability.ObserveStep(string(StepScript), "error")
				return err
			}
			observability.ObserveStep(string(StepScript), "ok")
			records = append(records, summary.NewStepRecord(step.Name, string(StepScript), filepath.Base(step.Path), 0, time.Since(stepStart), time.Now()))
		case StepQuery:
			report, qerr := RunQuery(ctx, db, step.Path, logger)
			if qerr != nil {
				observability.ObserveStep(string(StepQuery), "error")
				return qerr
			}
			observability.ObserveStep(string(StepQuery), "ok")
			observability.AddReportRows(filepath.Base(step.Path), len(report.Rows))
			records = append(records, summary.NewStepRecord(step.Name, string(StepQuery), filepath.Base(step.Path), len(report.Rows), time.Since(stepStart), time.Now()))
		default:
			return fmt.Errorf("unknown step kind %q", step.Kind)
		}
	}
	observability.ObservePipelineDuration(time.Since(start))

	if s.Config.SummaryPath != "" {
		if err := summary.Write(s.Config.SummaryPath, records); err != nil {
			return err
		}
		logger.Info("wrote run summary", slog.String("path", s.Config.SummaryPath))
	}
	if s.Config.MetricsPath != "" {
		if err := observability.WriteMetricsTextfile(s.Config.MetricsPath); err != nil {
			return err
		}
		logger.Info("wrote metrics textfile", slog.String("path", s.Config.MetricsPath))
	}
	if s.Store != nil {
		if err := s.publishArtifacts(ctx, logger); err != nil {
			return err
		}
	}
	return nil
}

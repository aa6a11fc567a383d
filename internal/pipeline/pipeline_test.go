package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/duckpipe/duckpipe/internal/manifest"
	"github.com/duckpipe/duckpipe/internal/project"
	"github.com/duckpipe/duckpipe/internal/storage"
)

func TestDefaultStepsSequenceSchemaBeforeLoad(t *testing.T) {
	layout := project.ResolveLayout("/repo", "sql/duckdb", "data/library", "artifacts/duckdb", "library.duckdb")
	steps := DefaultSteps(layout)
	if len(steps) != 4 {
		t.Fatalf("steps = %d, want 4", len(steps))
	}
	if steps[0].Path != layout.CreateTablesSQL || steps[0].Kind != StepScript {
		t.Fatalf("steps[0] = %+v", steps[0])
	}
	if steps[1].Path != layout.LoadDataSQL || steps[1].Kind != StepScript {
		t.Fatalf("steps[1] = %+v", steps[1])
	}
	if steps[2].Kind != StepQuery || steps[3].Kind != StepQuery {
		t.Fatalf("reporting steps = %+v, %+v", steps[2], steps[3])
	}
}

func TestStepsFromPlanResolvesRelativeFiles(t *testing.T) {
	plan := manifest.Plan{Steps: []manifest.Step{
		{Name: "create", Kind: manifest.KindScript, File: "create.sql"},
		{Name: "counts", Kind: manifest.KindQuery, File: "/abs/counts.sql"},
	}}
	steps := StepsFromPlan(plan, "/repo/sql/duckdb")
	if steps[0].Path != filepath.Join("/repo/sql/duckdb", "create.sql") {
		t.Fatalf("steps[0].Path = %q", steps[0].Path)
	}
	if steps[0].Kind != StepScript {
		t.Fatalf("steps[0].Kind = %q", steps[0].Kind)
	}
	if steps[1].Path != "/abs/counts.sql" {
		t.Fatalf("steps[1].Path = %q", steps[1].Path)
	}
	if steps[1].Kind != StepQuery {
		t.Fatalf("steps[1].Kind = %q", steps[1].Kind)
	}
}

func TestRunClosesConnectionWhenScriptFails(t *testing.T) {
	db, mock := newSQLMock(t)

	scriptPath := writeTempFile(t, "bad.sql", "BROKEN;")
	engineErr := errors.New("Parser Error: syntax error")
	mock.ExpectExec(regexp.QuoteMeta("BROKEN;")).WillReturnError(engineErr)
	mock.ExpectClose()

	svc := &Service{
		Config: Config{DatabasePath: "unused.duckdb"},
		Steps:  []Step{{Name: "bad", Kind: StepScript, Path: scriptPath}},
		Logger: discardLogger(),
		Opener: func(context.Context, string) (*sql.DB, error) { return db, nil },
	}

	err := svc.Run(context.Background())
	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("Run() error = %v, want *ExecutionError", err)
	}
	assertSQLMock(t, mock)
}

func TestRunClosesConnectionWhenFileIsMissing(t *testing.T) {
	db, mock := newSQLMock(t)
	mock.ExpectClose()

	svc := &Service{
		Config: Config{DatabasePath: "unused.duckdb"},
		Steps:  []Step{{Name: "absent", Kind: StepScript, Path: filepath.Join(t.TempDir(), "absent.sql")}},
		Logger: discardLogger(),
		Opener: func(context.Context, string) (*sql.DB, error) { return db, nil },
	}

	if err := svc.Run(context.Background()); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Run() error = %v, want fs.ErrNotExist in chain", err)
	}
	assertSQLMock(t, mock)
}

func TestRunPropagatesOpenFailure(t *testing.T) {
	openErr := &ConnectionError{Path: "artifacts/library.duckdb", Err: errors.New("permission denied")}
	svc := &Service{
		Config: Config{DatabasePath: "artifacts/library.duckdb"},
		Steps:  []Step{{Name: "create", Kind: StepScript, Path: "create.sql"}},
		Logger: discardLogger(),
		Opener: func(context.Context, string) (*sql.DB, error) { return nil, openErr },
	}

	err := svc.Run(context.Background())
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("Run() error = %v, want *ConnectionError", err)
	}
}

func TestRunRejectsEmptyPlan(t *testing.T) {
	svc := &Service{Logger: discardLogger()}
	if err := svc.Run(context.Background()); err == nil {
		t.Fatal("expected error for empty plan")
	}
}

func TestRunWritesSummaryAndPublishesArtifacts(t *testing.T) {
	db, mock := newSQLMock(t)

	scriptText := "CREATE TABLE IF NOT EXISTS branch (branch_id INTEGER);"
	queryText := "SELECT COUNT(*) AS row_count FROM branch;"
	scriptPath := writeTempFile(t, "create.sql", scriptText)
	queryPath := writeTempFile(t, "counts.sql", queryText)

	mock.ExpectExec(regexp.QuoteMeta(scriptText)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(queryText)).WillReturnRows(
		sqlmock.NewRows([]string{"row_count"}).AddRow(int64(0)),
	)
	mock.ExpectClose()

	artifacts := t.TempDir()
	databasePath := filepath.Join(artifacts, "library.duckdb")
	if err := os.WriteFile(databasePath, []byte("duckdb"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	store := &fakeStore{}
	svc := &Service{
		Config: Config{
			DatabasePath: databasePath,
			SummaryPath:  filepath.Join(artifacts, "run_summary.parquet"),
		},
		Steps: []Step{
			{Name: "create", Kind: StepScript, Path: scriptPath},
			{Name: "counts", Kind: StepQuery, Path: queryPath},
		},
		Logger: discardLogger(),
		Store:  store,
		Opener: func(context.Context, string) (*sql.DB, error) { return db, nil },
	}

	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, err := os.Stat(svc.Config.SummaryPath); err != nil {
		t.Fatalf("summary file missing: %v", err)
	}
	if len(store.keys) != 2 {
		t.Fatalf("published artifacts = %d, want 2", len(store.keys))
	}
	if filepath.Base(store.keys[0]) != "library.duckdb" {
		t.Fatalf("keys[0] = %q", store.keys[0])
	}
	if filepath.Base(store.keys[1]) != "run_summary.parquet" {
		t.Fatalf("keys[1] = %q", store.keys[1])
	}
	assertSQLMock(t, mock)
}

type fakeStore struct {
	keys []string
}

func (f *fakeStore) Put(_ context.Context, key string, body io.Reader, size int64, _ storage.PutOptions) (storage.ArtifactInfo, error) {
	_, _ = io.Copy(io.Discard, body)
	f.keys = append(f.keys, key)
	return storage.ArtifactInfo{Key: key, Size: size}, nil
}

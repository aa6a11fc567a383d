package pipeline

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb/v2"
)

// Open opens the file-backed database, creating parent directories if absent.
// The caller owns the returned handle and must close it exactly once.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &ConnectionError{Path: path, Err: err}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, &ConnectionError{Path: path, Err: err}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &ConnectionError{Path: path, Err: err}
	}
	return db, nil
}

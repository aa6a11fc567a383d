package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/duckpipe/duckpipe/internal/storage"
)

// publishArtifacts pushes the database file and, when present, the run
// summary to the configured artifact store under a date-partitioned key.
func (s *Service) publishArtifacts(ctx context.Context, logger *slog.Logger) error {
	day := time.Now().UTC().Format("2006-01-02")

	paths := []string{s.Config.DatabasePath}
	if s.Config.SummaryPath != "" {
		paths = append(paths, s.Config.SummaryPath)
	}

	for _, localPath := range paths {
		info, err := publishFile(ctx, s.Store, day, localPath)
		if err != nil {
			return err
		}
		logger.Info("published artifact",
			slog.String("key", info.Key),
			slog.Int64("size", info.Size),
		)
	}
	return nil
}

func publishFile(ctx context.Context, store storage.ArtifactStore, day, localPath string) (storage.ArtifactInfo, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return storage.ArtifactInfo{}, fmt.Errorf("open artifact %q: %w", localPath, err)
	}
	defer func() { _ = file.Close() }()

	stat, err := file.Stat()
	if err != nil {
		return storage.ArtifactInfo{}, fmt.Errorf("stat artifact %q: %w", localPath, err)
	}

	key := path.Join("date="+day, filepath.Base(localPath))
	info, err := store.Put(ctx, key, file, stat.Size(), storage.PutOptions{ContentType: contentTypeFor(localPath)})
	if err != nil {
		return storage.ArtifactInfo{}, err
	}
	return info, nil
}

func contentTypeFor(localPath string) string {
	if filepath.Ext(localPath) == ".parquet" {
		return "application/vnd.apache.parquet"
	}
	return "application/octet-stream"
}

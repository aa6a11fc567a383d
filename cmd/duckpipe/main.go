package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/duckpipe/duckpipe/internal/config"
	"github.com/duckpipe/duckpipe/internal/manifest"
	"github.com/duckpipe/duckpipe/internal/observability"
	"github.com/duckpipe/duckpipe/internal/pipeline"
	"github.com/duckpipe/duckpipe/internal/project"
	s3store "github.com/duckpipe/duckpipe/internal/storage/s3"
)

func main() {
	cfg, err := config.LoadFromEnv("duckpipe")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)
	observability.LogHeader(logger, "duckpipe — library domain")

	startDir := cfg.Paths.StartDir
	if startDir == "" {
		startDir, err = os.Getwd()
		if err != nil {
			logger.Error("failed to determine working directory", slog.Any("error", err))
			os.Exit(1)
		}
	}

	root, found := project.FindRoot(startDir, cfg.Paths.RootMarker)
	if !found {
		logger.Warn("root marker not found, using start directory",
			slog.String("marker", cfg.Paths.RootMarker),
			slog.String("dir", root),
		)
	}
	layout := project.ResolveLayout(root, cfg.Paths.SQLDir, cfg.Paths.DataDir, cfg.Paths.ArtifactsDir, cfg.Paths.DatabaseFile)

	steps := pipeline.DefaultSteps(layout)
	if cfg.Pipeline.ManifestFile != "" {
		manifestPath := cfg.Pipeline.ManifestFile
		if !filepath.IsAbs(manifestPath) {
			manifestPath = filepath.Join(root, manifestPath)
		}
		plan, err := manifest.Load(manifestPath)
		if err != nil {
			logger.Error("failed to load manifest", slog.Any("error", err))
			os.Exit(1)
		}
		steps = pipeline.StepsFromPlan(plan, layout.SQLDir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := &pipeline.Service{
		Config: pipeline.Config{
			RootDir:      root,
			DatabasePath: layout.DatabasePath,
			SummaryPath:  artifactPath(layout, cfg.Pipeline.SummaryFile),
			MetricsPath:  artifactPath(layout, cfg.Pipeline.MetricsFile),
		},
		Steps:  steps,
		Logger: logger,
	}

	if cfg.ObjectStore.PublishEnabled {
		store, err := s3store.New(ctx, s3store.Config{
			Endpoint:         cfg.ObjectStore.Endpoint,
			Region:           cfg.ObjectStore.Region,
			Bucket:           cfg.ObjectStore.Bucket,
			AccessKeyID:      cfg.ObjectStore.AccessKeyID,
			SecretAccessKey:  cfg.ObjectStore.SecretAccessKey,
			UseSSL:           cfg.ObjectStore.UseSSL,
			Prefix:           cfg.ObjectStore.Prefix,
			AutoCreateBucket: cfg.ObjectStore.AutoCreateBucket,
		})
		if err != nil {
			logger.Error("failed to initialize object store", slog.Any("error", err))
			os.Exit(1)
		}
		svc.Store = store
	}

	if err := svc.Run(ctx); err != nil {
		logger.Error("pipeline failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("pipeline completed", slog.String("database", layout.DatabasePath))
}

func artifactPath(layout project.Layout, name string) string {
	if name == "" {
		return ""
	}
	return filepath.Join(layout.ArtifactsDir, name)
}

package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

type LookupFunc func(string) (string, bool)

type Profile string

const (
	ProfileDev  Profile = "dev"
	ProfileTest Profile = "test"
	ProfileProd Profile = "prod"
)

type Config struct {
	Profile       Profile
	Service       ServiceConfig
	Paths         PathsConfig
	Pipeline      PipelineConfig
	ObjectStore   ObjectStoreConfig
	Observability ObservabilityConfig
}

type ServiceConfig struct {
	Name string
}

// PathsConfig describes where the pipeline's resources live. StartDir is the
// directory the root-marker walk begins from (empty means the working
// directory); the remaining directories are relative to the resolved root.
type PathsConfig struct {
	StartDir     string
	RootMarker   string
	SQLDir       string
	DataDir      string
	ArtifactsDir string
	DatabaseFile string
}

type PipelineConfig struct {
	// ManifestFile optionally names a YAML step plan relative to the root.
	// Empty means the built-in create/load/counts/KPI sequence.
	ManifestFile string
	// SummaryFile names the per-run parquet summary inside the artifacts
	// directory; empty disables the summary.
	SummaryFile string
	// MetricsFile names the prometheus textfile inside the artifacts
	// directory; empty disables the export.
	MetricsFile string
}

type ObjectStoreConfig struct {
	PublishEnabled   bool
	Endpoint         string
	Region           string
	Bucket           string
	AccessKeyID      string
	SecretAccessKey  string
	UseSSL           bool
	Prefix           string
	AutoCreateBucket bool
}

type ObservabilityConfig struct {
	LogLevel slog.Level
	LogJSON  bool
}

func LoadFromEnv(serviceName string) (Config, error) {
	return Load(serviceName, os.LookupEnv)
}

func Load(serviceName string, lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	profile := ProfileDev
	if raw, ok := lookup("DUCKPIPE_PROFILE"); ok {
		profile = Profile(strings.ToLower(strings.TrimSpace(raw)))
	}
	if !isValidProfile(profile) {
		return Config{}, fmt.Errorf("invalid DUCKPIPE_PROFILE: %q", profile)
	}

	cfg := defaultsForProfile(profile)
	if serviceName != "" {
		cfg.Service.Name = serviceName
	}

	if err := applyString(lookup, "DUCKPIPE_SERVICE_NAME", &cfg.Service.Name); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "DUCKPIPE_START_DIR", &cfg.Paths.StartDir); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "DUCKPIPE_ROOT_MARKER", &cfg.Paths.RootMarker); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "DUCKPIPE_SQL_DIR", &cfg.Paths.SQLDir); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "DUCKPIPE_DATA_DIR", &cfg.Paths.DataDir); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "DUCKPIPE_ARTIFACTS_DIR", &cfg.Paths.ArtifactsDir); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "DUCKPIPE_DATABASE_FILE", &cfg.Paths.DatabaseFile); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "DUCKPIPE_MANIFEST", &cfg.Pipeline.ManifestFile); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "DUCKPIPE_SUMMARY_FILE", &cfg.Pipeline.SummaryFile); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "DUCKPIPE_METRICS_FILE", &cfg.Pipeline.MetricsFile); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "DUCKPIPE_PUBLISH_ENABLED", &cfg.ObjectStore.PublishEnabled); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "DUCKPIPE_OBJECTSTORE_ENDPOINT", &cfg.ObjectStore.Endpoint); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "DUCKPIPE_OBJECTSTORE_REGION", &cfg.ObjectStore.Region); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "DUCKPIPE_OBJECTSTORE_BUCKET", &cfg.ObjectStore.Bucket); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "DUCKPIPE_OBJECTSTORE_ACCESS_KEY", &cfg.ObjectStore.AccessKeyID); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "DUCKPIPE_OBJECTSTORE_SECRET_KEY", &cfg.ObjectStore.SecretAccessKey); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "DUCKPIPE_OBJECTSTORE_USE_SSL", &cfg.ObjectStore.UseSSL); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "DUCKPIPE_OBJECTSTORE_PREFIX", &cfg.ObjectStore.Prefix); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "DUCKPIPE_OBJECTSTORE_AUTO_CREATE_BUCKET", &cfg.ObjectStore.AutoCreateBucket); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "DUCKPIPE_LOG_JSON", &cfg.Observability.LogJSON); err != nil {
		return Config{}, err
	}
	if err := applyLogLevel(lookup, "DUCKPIPE_LOG_LEVEL", &cfg.Observability.LogLevel); err != nil {
		return Config{}, err
	}

	if cfg.Service.Name == "" {
		return Config{}, fmt.Errorf("service name is required")
	}
	if cfg.Paths.RootMarker == "" {
		return Config{}, fmt.Errorf("root marker is required")
	}
	if cfg.Paths.DatabaseFile == "" {
		return Config{}, fmt.Errorf("database file name is required")
	}
	if cfg.ObjectStore.PublishEnabled {
		if cfg.ObjectStore.Endpoint == "" {
			return Config{}, fmt.Errorf("object store endpoint is required when publishing is enabled")
		}
		if cfg.ObjectStore.Bucket == "" {
			return Config{}, fmt.Errorf("object store bucket is required when publishing is enabled")
		}
	}
	return cfg, nil
}

func defaultsForProfile(profile Profile) Config {
	cfg := Config{
		Profile: profile,
		Service: ServiceConfig{Name: "duckpipe"},
		Paths: PathsConfig{
			StartDir:     "",
			RootMarker:   "go.mod",
			SQLDir:       "sql/duckdb",
			DataDir:      "data/library",
			ArtifactsDir: "artifacts/duckdb",
			DatabaseFile: "library.duckdb",
		},
		Pipeline: PipelineConfig{
			ManifestFile: "",
			SummaryFile:  "run_summary.parquet",
			MetricsFile:  "duckpipe_metrics.prom",
		},
		ObjectStore: ObjectStoreConfig{
			PublishEnabled:   false,
			Endpoint:         "localhost:9000",
			Region:           "us-east-1",
			Bucket:           "duckpipe",
			AccessKeyID:      "minio",
			SecretAccessKey:  "miniostorage",
			UseSSL:           false,
			Prefix:           "",
			AutoCreateBucket: true,
		},
		Observability: ObservabilityConfig{
			LogLevel: slog.LevelDebug,
			LogJSON:  false,
		},
	}

	switch profile {
	case ProfileTest:
		cfg.Observability.LogLevel = slog.LevelWarn
		cfg.Pipeline.SummaryFile = ""
		cfg.Pipeline.MetricsFile = ""
	case ProfileProd:
		cfg.Observability.LogLevel = slog.LevelInfo
		cfg.Observability.LogJSON = true
		cfg.ObjectStore.UseSSL = true
		cfg.ObjectStore.AutoCreateBucket = false
	}

	return cfg
}

func isValidProfile(profile Profile) bool {
	switch profile {
	case ProfileDev, ProfileTest, ProfileProd:
		return true
	default:
		return false
	}
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyLogLevel(lookup LookupFunc, key string, dst *slog.Level) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	level := strings.ToLower(strings.TrimSpace(raw))
	switch level {
	case "debug":
		*dst = slog.LevelDebug
	case "info":
		*dst = slog.LevelInfo
	case "warn", "warning":
		*dst = slog.LevelWarn
	case "error":
		*dst = slog.LevelError
	default:
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}

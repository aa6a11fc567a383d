package project

import "path/filepath"

// Script and query file names shipped under the SQL directory.
const (
	CreateTablesFile = "create_library_tables.sql"
	LoadDataFile     = "load_library_data.sql"
	CountsFile       = "query_library_counts.sql"
	KPIFile          = "query_library_kpi.sql"
)

// Layout holds the absolute paths of every resource the pipeline touches.
type Layout struct {
	Root         string
	SQLDir       string
	DataDir      string
	ArtifactsDir string
	DatabasePath string

	CreateTablesSQL string
	LoadDataSQL     string
	CountsSQL       string
	KPISQL          string
}

// ResolveLayout computes the resource layout for a resolved project root.
// The directory arguments are interpreted relative to root unless absolute;
// databaseFile is a file name inside the artifacts directory.
func ResolveLayout(root, sqlDir, dataDir, artifactsDir, databaseFile string) Layout {
	sqlAbs := joinRoot(root, sqlDir)
	artifactsAbs := joinRoot(root, artifactsDir)
	return Layout{
		Root:         root,
		SQLDir:       sqlAbs,
		DataDir:      joinRoot(root, dataDir),
		ArtifactsDir: artifactsAbs,
		DatabasePath: filepath.Join(artifactsAbs, databaseFile),

		CreateTablesSQL: filepath.Join(sqlAbs, CreateTablesFile),
		LoadDataSQL:     filepath.Join(sqlAbs, LoadDataFile),
		CountsSQL:       filepath.Join(sqlAbs, CountsFile),
		KPISQL:          filepath.Join(sqlAbs, KPIFile),
	}
}

func joinRoot(root, dir string) string {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(root, dir)
}

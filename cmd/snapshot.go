package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/internal/iocache"
	"github.com/huangsam/repometrics/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// snapshotSetup loads minimal configuration needed for snapshot operations.
func snapshotSetup() error {
	backend, connStr, err := storeSettings("snapshot-backend", "snapshot-db-connect")
	if err != nil {
		return err
	}
	contract.SetupLogging(viper.GetString("log-level"))

	// No history cache for snapshot commands
	if err := iocache.InitStores("", "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize snapshots: %w", err)
	}

	cfg.SnapshotBackend = backend
	cfg.SnapshotDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// snapshotSetupWrapper wraps snapshotSetup to provide PreRunE for snapshot commands.
func snapshotSetupWrapper(_ *cobra.Command, _ []string) error {
	return snapshotSetup()
}

// snapshotMigrateSetup resolves the snapshot backend without opening the
// store, so migrations can run against any schema version.
func snapshotMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := storeSettings("snapshot-backend", "snapshot-db-connect")
	if err != nil {
		return err
	}
	contract.SetupLogging(viper.GetString("log-level"))

	if backend == schema.SQLiteBackend {
		connStr = sqliteFile(connStr, contract.GetSnapshotDBFilePath())
	}
	cfg.SnapshotBackend = backend
	cfg.SnapshotDBConnect = connStr
	return nil
}

// snapshotCmd focused on snapshot history management.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage recorded scan snapshots and exports",
	Long: `Manage the snapshot history written by 'repometrics scan --save'.

Every saved scan stores:
- A sync run (root, since window, status, timing)
- One row per project with size, churn, commits and coverage
- One row per project author with additions, deletions and commits

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show snapshot statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all snapshot data
  migrate - Run database schema migrations

Examples:
  # Check snapshot status
  repometrics snapshot status

  # Export for analysis in pandas/DuckDB
  repometrics snapshot export --output-file metrics`,
}

// snapshotStatusCmd shows snapshot status.
var snapshotStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display snapshot statistics and connection details",
	Long: `Show detailed information about recorded snapshots.

Displays:
- Backend type and connection status
- Total number of sync runs and project rows
- Last and oldest run timestamps
- Row counts per table

Examples:
  repometrics snapshot status`,
	PreRunE: snapshotSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		store := iocache.Manager.GetSnapshotStore()
		if store == nil {
			return fmt.Errorf("snapshot store is not initialized")
		}
		status, err := store.GetStatus()
		if err != nil {
			return fmt.Errorf("failed to get snapshot status: %w", err)
		}
		iocache.PrintSnapshotStatus(os.Stdout, status)
		return nil
	},
}

// snapshotExportCmd exports snapshot data to Parquet files.
var snapshotExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export snapshot history to Parquet",
	Long: `Export all recorded snapshots to Parquet files for use with analytics tools.

Writes three files sharing the --output-file prefix:
- <prefix>.sync_runs.parquet
- <prefix>.project_metrics.parquet
- <prefix>.author_metrics.parquet

Examples:
  repometrics snapshot export --output-file metrics
  duckdb -c "SELECT * FROM read_parquet('metrics.project_metrics.parquet') LIMIT 10"`,
	PreRunE: snapshotSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := iocache.ExportSnapshots(iocache.Manager.GetSnapshotStore(), cfg.OutputFile, os.Stdout); err != nil {
			return fmt.Errorf("failed to export snapshots: %w", err)
		}
		return nil
	},
}

// snapshotClearCmd clears the snapshot data.
var snapshotClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded snapshots",
	Long: `Delete every sync run, project row and author row.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  repometrics snapshot export --output-file backup
  repometrics snapshot clear`,
	PreRunE: snapshotSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		iocache.CloseStores()
		dbFile := sqliteFile(cfg.SnapshotDBConnect, contract.GetSnapshotDBFilePath())
		if err := iocache.ClearSnapshots(cfg.SnapshotBackend, dbFile, cfg.SnapshotDBConnect); err != nil {
			return fmt.Errorf("failed to clear snapshots: %w", err)
		}
		fmt.Println("Snapshot data cleared successfully.")
		return nil
	},
}

// snapshotMigrateCmd runs database migrations for the snapshot store.
var snapshotMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage schema versions of the snapshot store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  repometrics snapshot migrate

  # Migrate to specific version
  repometrics snapshot migrate --target-version 2

  # Rollback everything
  repometrics snapshot migrate --target-version 0`,
	PreRunE: snapshotMigrateSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		targetVersion := viper.GetInt("target-version")
		result, err := iocache.MigrateSnapshots(cfg.SnapshotBackend, cfg.SnapshotDBConnect, targetVersion)
		if err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		if !result.Changed {
			fmt.Printf("Snapshot schema already at version %d.\n", result.ToVersion)
			return nil
		}
		fmt.Printf("Migrated snapshot schema from version %d to %d.\n", result.FromVersion, result.ToVersion)
		return nil
	},
}

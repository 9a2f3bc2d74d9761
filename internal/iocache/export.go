package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/internal/parquet"
)

// ExportSnapshots writes every sync run, project row and author row in store
// to three Parquet files sharing outputPrefix. Progress goes to w.
func ExportSnapshots(store contract.SnapshotStore, outputPrefix string, w io.Writer) error {
	if outputPrefix == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("snapshot store is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get snapshot status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no snapshot data found to export")
	}
	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)

	runs, err := store.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve sync runs: %w", err)
	}
	projects, err := store.ListProjectSnapshots()
	if err != nil {
		return fmt.Errorf("failed to retrieve project snapshots: %w", err)
	}
	authors, err := store.ListAuthorSnapshots()
	if err != nil {
		return fmt.Errorf("failed to retrieve author snapshots: %w", err)
	}

	runsFile := outputPrefix + ".sync_runs.parquet"
	if err := parquet.WriteSyncRunsParquet(parquet.ConvertSyncRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write sync runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d sync runs to: %s\n", len(runs), runsFile)

	projectsFile := outputPrefix + ".project_metrics.parquet"
	if err := parquet.WriteProjectSnapshotsParquet(parquet.ConvertProjectSnapshotRecords(projects), projectsFile); err != nil {
		return fmt.Errorf("failed to write project snapshots: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d project rows to: %s\n", len(projects), projectsFile)

	authorsFile := outputPrefix + ".author_metrics.parquet"
	if err := parquet.WriteAuthorSnapshotsParquet(parquet.ConvertAuthorSnapshotRecords(authors), authorsFile); err != nil {
		return fmt.Errorf("failed to write author snapshots: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d author rows to: %s\n", len(authors), authorsFile)
	return nil
}

// Package parquet exports snapshot history to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/repometrics/schema"
	"github.com/parquet-go/parquet-go"
)

// SyncRun maps to the repometrics_sync_runs table.
type SyncRun struct {
	RunID        string     `parquet:"run_id,snappy"`
	ScanRoot     string     `parquet:"scan_root,snappy"`
	Since        string     `parquet:"since,snappy"`
	Status       string     `parquet:"status,snappy"`
	StartedAt    time.Time  `parquet:"started_at,snappy"`
	FinishedAt   *time.Time `parquet:"finished_at,optional,snappy"`
	ProjectCount *int32     `parquet:"project_count,optional,snappy"`
	ErrorMessage *string    `parquet:"error_message,optional,snappy"`
}

// ProjectSnapshot maps to the repometrics_project_metrics table.
type ProjectSnapshot struct {
	RunID          string    `parquet:"run_id,snappy"`
	ProjectPath    string    `parquet:"project_path,snappy"`
	CapturedAt     time.Time `parquet:"captured_at,snappy"`
	LinesOfCode    int64     `parquet:"lines_of_code,snappy"`
	Churn          int64     `parquet:"churn,snappy"`
	CommitCount    int64     `parquet:"commit_count,snappy"`
	Coverage       *float64  `parquet:"coverage,optional,snappy"` // Null when no source produced a number
	CoverageSource string    `parquet:"coverage_source,snappy"`
}

// AuthorSnapshot maps to the repometrics_author_metrics table.
type AuthorSnapshot struct {
	RunID       string    `parquet:"run_id,snappy"`
	ProjectPath string    `parquet:"project_path,snappy"`
	Identity    string    `parquet:"identity,snappy"`
	CapturedAt  time.Time `parquet:"captured_at,snappy"`
	Additions   int64     `parquet:"additions,snappy"`
	Deletions   int64     `parquet:"deletions,snappy"`
	CommitCount int64     `parquet:"commit_count,snappy"`
}

// writeParquet writes rows to outputPath with a schema inferred from T.
func writeParquet[T any](rows []T, outputPath string) (err error) {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return nil
}

// WriteSyncRunsParquet writes sync runs to a Parquet file.
func WriteSyncRunsParquet(data []SyncRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteProjectSnapshotsParquet writes project snapshots to a Parquet file.
func WriteProjectSnapshotsParquet(data []ProjectSnapshot, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteAuthorSnapshotsParquet writes author snapshots to a Parquet file.
func WriteAuthorSnapshotsParquet(data []AuthorSnapshot, outputPath string) error {
	return writeParquet(data, outputPath)
}

func unixTime(ts int64) time.Time {
	return time.Unix(ts, 0).UTC()
}

// ConvertSyncRunRecords converts stored sync runs for Parquet export.
func ConvertSyncRunRecords(records []schema.SyncRunRecord) []SyncRun {
	result := make([]SyncRun, len(records))
	for i, record := range records {
		result[i] = SyncRun{
			RunID:        record.RunID,
			ScanRoot:     record.ScanRoot,
			Since:        record.Since,
			Status:       record.Status,
			StartedAt:    unixTime(record.StartedAt),
			ProjectCount: record.ProjectCount,
			ErrorMessage: record.ErrorMessage,
		}
		if record.FinishedAt != nil {
			finished := unixTime(*record.FinishedAt)
			result[i].FinishedAt = &finished
		}
	}
	return result
}

// ConvertProjectSnapshotRecords converts stored project rows for Parquet export.
func ConvertProjectSnapshotRecords(records []schema.ProjectSnapshotRecord) []ProjectSnapshot {
	result := make([]ProjectSnapshot, len(records))
	for i, record := range records {
		result[i] = ProjectSnapshot{
			RunID:          record.RunID,
			ProjectPath:    record.ProjectPath,
			CapturedAt:     unixTime(record.CapturedAt),
			LinesOfCode:    record.LinesOfCode,
			Churn:          record.Churn,
			CommitCount:    record.CommitCount,
			Coverage:       record.Coverage,
			CoverageSource: record.CoverageSource,
		}
	}
	return result
}

// ConvertAuthorSnapshotRecords converts stored author rows for Parquet export.
func ConvertAuthorSnapshotRecords(records []schema.AuthorSnapshotRecord) []AuthorSnapshot {
	result := make([]AuthorSnapshot, len(records))
	for i, record := range records {
		result[i] = AuthorSnapshot{
			RunID:       record.RunID,
			ProjectPath: record.ProjectPath,
			Identity:    record.Identity,
			CapturedAt:  unixTime(record.CapturedAt),
			Additions:   record.Additions,
			Deletions:   record.Deletions,
			CommitCount: record.CommitCount,
		}
	}
	return result
}

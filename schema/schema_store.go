package schema

// Timestamps are stored as Unix seconds so every backend shares one column type.

// SyncRunRecord represents a row from the repometrics_sync_runs table.
type SyncRunRecord struct {
	RunID        string  `db:"run_id"`
	ScanRoot     string  `db:"scan_root"`
	Since        string  `db:"since"`
	Status       string  `db:"status"`
	StartedAt    int64   `db:"started_at"`
	FinishedAt   *int64  `db:"finished_at"`
	ProjectCount *int32  `db:"project_count"`
	ErrorMessage *string `db:"error_message"`
}

// ProjectSnapshotRecord represents a row from the repometrics_project_metrics table.
type ProjectSnapshotRecord struct {
	RunID          string   `db:"run_id"`
	ProjectPath    string   `db:"project_path"`
	CapturedAt     int64    `db:"captured_at"`
	LinesOfCode    int64    `db:"lines_of_code"`
	Churn          int64    `db:"churn"`
	CommitCount    int64    `db:"commit_count"`
	Coverage       *float64 `db:"coverage"`
	CoverageSource string   `db:"coverage_source"`
}

// AuthorSnapshotRecord represents a row from the repometrics_author_metrics table.
type AuthorSnapshotRecord struct {
	RunID       string `db:"run_id"`
	ProjectPath string `db:"project_path"`
	Identity    string `db:"identity"`
	CapturedAt  int64  `db:"captured_at"`
	Additions   int64  `db:"additions"`
	Deletions   int64  `db:"deletions"`
	CommitCount int64  `db:"commit_count"`
}

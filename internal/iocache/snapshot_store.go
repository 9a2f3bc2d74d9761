package iocache

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/schema"
	"github.com/jmoiron/sqlx"
)

// Table names for snapshot tracking.
const (
	syncRunsTable       = "repometrics_sync_runs"
	projectMetricsTable = "repometrics_project_metrics"
	authorMetricsTable  = "repometrics_author_metrics"
)

// snapshotTables lists the snapshot tables in dependency order.
var snapshotTables = []string{syncRunsTable, projectMetricsTable, authorMetricsTable}

// SnapshotStoreImpl appends scan results to the snapshot tables. Rows are
// never updated except for the run that is still open.
type SnapshotStoreImpl struct {
	db      *sqlx.DB
	backend schema.DatabaseBackend
}

var _ contract.SnapshotStore = &SnapshotStoreImpl{} // Compile-time check

// NewSnapshotStore migrates the snapshot schema to the latest version and
// opens the store. NoneBackend returns a store that records nothing.
func NewSnapshotStore(backend schema.DatabaseBackend, connStr string) (*SnapshotStoreImpl, error) {
	if backend == schema.NoneBackend {
		return &SnapshotStoreImpl{backend: backend}, nil
	}
	if _, err := MigrateSnapshots(backend, connStr, -1); err != nil {
		return nil, fmt.Errorf("failed to migrate snapshot schema: %w", err)
	}
	db, err := openDB(backend, connStr, contract.GetSnapshotDBFilePath())
	if err != nil {
		return nil, err
	}
	return &SnapshotStoreImpl{db: db, backend: backend}, nil
}

func (s *SnapshotStoreImpl) disabled() bool {
	return s.backend == schema.NoneBackend || s.db == nil
}

func (s *SnapshotStoreImpl) table(name string) string {
	return quoteTableName(name, s.backend)
}

// BeginRun opens a sync run in the running state and returns its ID.
func (s *SnapshotStoreImpl) BeginRun(scanRoot, since string, startedAt time.Time) (string, error) {
	if s.disabled() {
		return "", nil
	}
	runID := uuid.NewString()
	query := s.db.Rebind(fmt.Sprintf(`INSERT INTO %s (run_id, scan_root, since, status, started_at) VALUES (?, ?, ?, ?, ?)`, s.table(syncRunsTable)))
	if _, err := s.db.Exec(query, runID, scanRoot, since, string(schema.SyncRunning), startedAt.Unix()); err != nil {
		return "", fmt.Errorf("failed to insert sync run: %w", err)
	}
	return runID, nil
}

// EndRun closes a sync run as idle, or as error when runErr is set.
func (s *SnapshotStoreImpl) EndRun(runID string, finishedAt time.Time, projectCount int, runErr error) error {
	if s.disabled() || runID == "" {
		return nil
	}
	status := schema.SyncIdle
	var message *string
	if runErr != nil {
		status = schema.SyncError
		msg := runErr.Error()
		message = &msg
	}
	query := s.db.Rebind(fmt.Sprintf(`UPDATE %s SET status = ?, finished_at = ?, project_count = ?, error_message = ? WHERE run_id = ?`, s.table(syncRunsTable)))
	res, err := s.db.Exec(query, string(status), finishedAt.Unix(), projectCount, message, runID)
	if err != nil {
		return fmt.Errorf("failed to update sync run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("sync run %s not found", runID)
	}
	return nil
}

// RecordProject appends one project row and one row per author in a single
// transaction.
func (s *SnapshotStoreImpl) RecordProject(runID string, capturedAt time.Time, metrics schema.ProjectMetrics) (err error) {
	if s.disabled() || runID == "" {
		return nil
	}
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	ts := capturedAt.Unix()
	projectQuery := tx.Rebind(fmt.Sprintf(`INSERT INTO %s (run_id, project_path, captured_at, lines_of_code, churn, commit_count, coverage, coverage_source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, s.table(projectMetricsTable)))
	if _, err = tx.Exec(projectQuery, runID, metrics.Path, ts, metrics.LinesOfCode, metrics.Churn,
		metrics.CommitCount, metrics.Coverage, string(metrics.CoverageSource)); err != nil {
		return fmt.Errorf("failed to insert project metrics: %w", err)
	}

	authorQuery := tx.Rebind(fmt.Sprintf(`INSERT INTO %s (run_id, project_path, identity, captured_at, additions, deletions, commit_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, s.table(authorMetricsTable)))
	for _, a := range metrics.Authors {
		if _, err = tx.Exec(authorQuery, runID, metrics.Path, a.Identity, ts, a.Additions, a.Deletions, a.CommitCount); err != nil {
			return fmt.Errorf("failed to insert author metrics for %s: %w", a.Identity, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit project metrics: %w", err)
	}
	return nil
}

// GetStatus returns status information about the snapshot store.
func (s *SnapshotStoreImpl) GetStatus() (schema.SnapshotStatus, error) {
	status := schema.SnapshotStatus{
		Backend:    string(s.backend),
		Connected:  s.db != nil,
		TableSizes: make(map[string]int64),
	}
	if s.disabled() {
		return status, nil
	}

	if err := s.db.Get(&status.TotalRuns, fmt.Sprintf("SELECT COUNT(*) FROM %s", s.table(syncRunsTable))); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var last schema.SyncRunRecord
		lastQuery := fmt.Sprintf("SELECT * FROM %s ORDER BY started_at DESC, run_id DESC LIMIT 1", s.table(syncRunsTable))
		if err := s.db.Get(&last, lastQuery); err != nil {
			return status, fmt.Errorf("failed to get last run: %w", err)
		}
		status.LastRunID = last.RunID
		status.LastRunStatus = schema.SyncStatus(last.Status)
		status.LastRunTime = time.Unix(last.StartedAt, 0)

		var oldest int64
		if err := s.db.Get(&oldest, fmt.Sprintf("SELECT MIN(started_at) FROM %s", s.table(syncRunsTable))); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = time.Unix(oldest, 0)

		if err := s.db.Get(&status.TotalProjects, fmt.Sprintf("SELECT COUNT(DISTINCT project_path) FROM %s", s.table(projectMetricsTable))); err != nil {
			return status, fmt.Errorf("failed to count projects: %w", err)
		}
	}

	for _, table := range snapshotTables {
		var count int64
		if err := s.db.Get(&count, fmt.Sprintf("SELECT COUNT(*) FROM %s", s.table(table))); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	return status, nil
}

// ListRuns returns every sync run, oldest first.
func (s *SnapshotStoreImpl) ListRuns() ([]schema.SyncRunRecord, error) {
	if s.disabled() {
		return nil, nil
	}
	var runs []schema.SyncRunRecord
	query := fmt.Sprintf("SELECT * FROM %s ORDER BY started_at, run_id", s.table(syncRunsTable))
	if err := s.db.Select(&runs, query); err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	return runs, nil
}

// ListProjectSnapshots returns every project row, oldest first.
func (s *SnapshotStoreImpl) ListProjectSnapshots() ([]schema.ProjectSnapshotRecord, error) {
	if s.disabled() {
		return nil, nil
	}
	var records []schema.ProjectSnapshotRecord
	query := fmt.Sprintf("SELECT * FROM %s ORDER BY captured_at, run_id, project_path", s.table(projectMetricsTable))
	if err := s.db.Select(&records, query); err != nil {
		return nil, fmt.Errorf("failed to query project snapshots: %w", err)
	}
	return records, nil
}

// ListAuthorSnapshots returns every author row, oldest first.
func (s *SnapshotStoreImpl) ListAuthorSnapshots() ([]schema.AuthorSnapshotRecord, error) {
	if s.disabled() {
		return nil, nil
	}
	var records []schema.AuthorSnapshotRecord
	query := fmt.Sprintf("SELECT * FROM %s ORDER BY captured_at, run_id, project_path, identity", s.table(authorMetricsTable))
	if err := s.db.Select(&records, query); err != nil {
		return nil, fmt.Errorf("failed to query author snapshots: %w", err)
	}
	return records, nil
}

// Close closes the underlying connection.
func (s *SnapshotStoreImpl) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Package contract provides interfaces and shared utilities for the internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/repometrics/schema"
)

// GitClient defines the git operations the scanner needs.
// This allows the core logic to be tested without needing a real git executable.
type GitClient interface {
	// Run executes a git command and returns its stdout.
	// Its use should be minimized in favor of the explicit methods below.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// GetNumstatLog returns the raw `git log --numstat` output for the window
	// starting at since. Each commit header has the form "--<hash>|<email>".
	GetNumstatLog(ctx context.Context, repoPath string, since string) ([]byte, error)

	// GetRepoHash returns the current HEAD commit hash of the repository.
	GetRepoHash(ctx context.Context, repoPath string) (string, error)

	// GetRepoRoot returns the absolute path to the root of the working copy
	// containing the given context path.
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)

	// GetRemoteURL returns the configured URL of the named remote.
	GetRemoteURL(ctx context.Context, repoPath string, remote string) (string, error)
}

// CoverageClient fetches a CI-reported coverage percentage for a remote.
// Implementations never return an error: nil means no coverage is available.
type CoverageClient interface {
	LatestCoverage(ctx context.Context, remoteURL string) *float64
}

// CacheManager defines the interface for managing persistence stores.
// This allows the storage layer to be mocked for testing.
type CacheManager interface {
	GetHistoryStore() CacheStore
	GetSnapshotStore() SnapshotStore
}

// CacheStore defines the interface for cache data storage.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// SnapshotStore appends immutable metric snapshots. Rows are never updated
// except for the bookkeeping columns of a sync run.
type SnapshotStore interface {
	// BeginRun records a new sync run in the running state and returns its ID.
	BeginRun(scanRoot, since string, startedAt time.Time) (string, error)

	// EndRun marks the run idle, or error when runErr is non-nil.
	EndRun(runID string, finishedAt time.Time, projectCount int, runErr error) error

	// RecordProject appends one project row and one row per author.
	RecordProject(runID string, capturedAt time.Time, metrics schema.ProjectMetrics) error

	// GetStatus returns status information about the snapshot store.
	GetStatus() (schema.SnapshotStatus, error)

	ListRuns() ([]schema.SyncRunRecord, error)
	ListProjectSnapshots() ([]schema.ProjectSnapshotRecord, error)
	ListAuthorSnapshots() ([]schema.AuthorSnapshotRecord, error)

	// Close closes the underlying connection.
	Close() error
}

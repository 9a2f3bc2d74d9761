package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and snapshots.
	DatabaseBackend string

	// CoverageSource records where a project's coverage number came from.
	CoverageSource string

	// SyncStatus is the lifecycle state of a scan run.
	SyncStatus string

	// RepoKind classifies a remote by hosting platform.
	RepoKind string

	// MatcherKind selects the declaration matcher used by the coverage heuristic.
	MatcherKind string
)

// All output modes supported.
const (
	TextOut OutputMode = "text" // default
	CSVOut  OutputMode = "csv"
	JSONOut OutputMode = "json"
	YAMLOut OutputMode = "yaml"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Coverage sources, in resolution order.
const (
	HeuristicCoverage CoverageSource = "heuristic"
	PipelineCoverage  CoverageSource = "pipeline"
	NoCoverage        CoverageSource = "none"
)

// Scan run states.
const (
	SyncIdle    SyncStatus = "idle"
	SyncRunning SyncStatus = "running"
	SyncError   SyncStatus = "error"
)

// Remote hosting platforms.
const (
	GitHubRepo RepoKind = "github"
	GitLabRepo RepoKind = "gitlab"
	LocalRepo  RepoKind = "local"
)

// Declaration matchers.
const (
	RegexMatcher      MatcherKind = "regex" // default
	TreeSitterMatcher MatcherKind = "treesitter"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut: {},
	CSVOut:  {},
	JSONOut: {},
	YAMLOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidMatcherKinds lists all valid declaration matchers.
var ValidMatcherKinds = map[MatcherKind]struct{}{
	RegexMatcher:      {},
	TreeSitterMatcher: {},
}

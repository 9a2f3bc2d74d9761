package contract

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/huangsam/repometrics/schema"
)

// Default values for configuration.
const (
	DefaultSince           = "24 hours ago"
	DefaultResultLimit     = 25
	MaxResultLimit         = 1000
	DefaultPrecision       = 2
	DefaultTestIndicator   = "Test"
	DefaultGitLabAPIURL    = "https://gitlab.com/api/v4"
	DefaultCoverageTimeout = 10 * time.Second
	DefaultLogLevel        = "warn"
)

// CacheGranularity is the resolution applied to resolved since times so that
// repeated scans within the same hour share cache keys.
const CacheGranularity = time.Hour

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// DefaultExtensions are the source file extensions counted by default.
var DefaultExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".cs", ".py", ".java", ".go", ".rs"}

// DefaultSkipDirs are directory names never descended into while counting lines.
var DefaultSkipDirs = []string{"node_modules", "bin", "obj", "dist", ".git", ".next"}

// Config holds the runtime configuration for a scan.
// This struct is the "final, validated" config.
type Config struct {
	RepoPath  string
	Since     string    // Value handed to git log --since
	SinceTime time.Time // Zero when Since could not be resolved locally
	Workers   int

	Projects     []string // Relative project paths; discovered when empty
	ProjectDepth int      // Discovery depth, 0 for unlimited
	RemoteURL    string
	SubPath      string // Normalized target of the coverage and files commands
	PathFilter   string

	Extensions    []string
	SkipDirs      []string
	TestIndicator string
	Matcher       schema.MatcherKind

	ResultLimit int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Detail      bool
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool
	Save        bool

	GitLabAPIURL    string
	GitLabHost      string
	GitLabToken     string // Please use env var as this is plaintext
	CoverageTimeout time.Duration

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	SnapshotBackend   schema.DatabaseBackend
	SnapshotDBConnect string // Please use env var as this is plaintext

	LogLevel string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Since             string `mapstructure:"since"`
	Workers           int    `mapstructure:"workers"`
	Output            string `mapstructure:"output"`
	OutputFile        string `mapstructure:"output-file"`
	Precision         int    `mapstructure:"precision"`
	Limit             int    `mapstructure:"limit"`
	Width             int    `mapstructure:"width"`
	Color             string `mapstructure:"color"`
	Extensions        string `mapstructure:"extensions"`
	SkipDirs          string `mapstructure:"skip-dirs"`
	TestIndicator     string `mapstructure:"test-indicator"`
	Matcher           string `mapstructure:"matcher"`
	CacheBackend      string `mapstructure:"cache-backend"`
	CacheDBConnect    string `mapstructure:"cache-db-connect"`
	SnapshotBackend   string `mapstructure:"snapshot-backend"`
	SnapshotDBConnect string `mapstructure:"snapshot-db-connect"`
	LogLevel          string `mapstructure:"log-level"`

	// --- GitLab fallback, usually from env ---
	GitLabAPIURL    string `mapstructure:"gitlab-api-url"`
	GitLabToken     string `mapstructure:"gitlab-token"`
	CoverageTimeout string `mapstructure:"coverage-timeout"`

	// --- Fields from scanCmd.Flags() ---
	Projects     []string `mapstructure:"project"`
	ProjectDepth int      `mapstructure:"project-depth"`
	RemoteURL    string   `mapstructure:"remote-url"`
	Save         bool     `mapstructure:"save"`
	Detail       bool     `mapstructure:"detail"`

	// --- Fields from filesCmd.Flags() and coverageCmd.Flags() ---
	Filter string `mapstructure:"filter"`
	Path   string `mapstructure:"path"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Projects = append([]string(nil), c.Projects...)
	clone.Extensions = append([]string(nil), c.Extensions...)
	clone.SkipDirs = append([]string(nil), c.SkipDirs...)
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processScanInputs(cfg, input); err != nil {
		return err
	}
	if err := processGitLabInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	cfg.Since, cfg.SinceTime = ResolveSince(input.Since, time.Now(), cfg.SinceGranularity())
	return resolveRepoPath(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// SplitList splits a comma separated value, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Detail = input.Detail
	cfg.Save = input.Save
	cfg.Width = input.Width
	cfg.RemoteURL = strings.TrimSpace(input.RemoteURL)
	cfg.PathFilter = strings.TrimSpace(input.Filter)

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 0 || input.Precision > 4 {
		return fmt.Errorf("precision must be between 0 and 4 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, yaml", input.Output)
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(input.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	return nil
}

// processScanInputs handles file classification and the project list.
func processScanInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Extensions = DefaultExtensions
	if input.Extensions != "" {
		cfg.Extensions = nil
		for _, ext := range SplitList(input.Extensions) {
			ext = strings.ToLower(ext)
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			cfg.Extensions = append(cfg.Extensions, ext)
		}
	}

	cfg.SkipDirs = DefaultSkipDirs
	if input.SkipDirs != "" {
		cfg.SkipDirs = SplitList(input.SkipDirs)
	}

	cfg.TestIndicator = input.TestIndicator
	if cfg.TestIndicator == "" {
		cfg.TestIndicator = DefaultTestIndicator
	}

	cfg.Matcher = schema.MatcherKind(strings.ToLower(input.Matcher))
	if cfg.Matcher == "" {
		cfg.Matcher = schema.RegexMatcher
	}
	if _, ok := schema.ValidMatcherKinds[cfg.Matcher]; !ok {
		return fmt.Errorf("invalid matcher '%s'. must be regex, treesitter", input.Matcher)
	}

	if input.ProjectDepth < 0 {
		return fmt.Errorf("project depth cannot be negative (received %d)", input.ProjectDepth)
	}
	cfg.ProjectDepth = input.ProjectDepth

	cfg.Projects = nil
	for _, p := range SplitList(strings.Join(input.Projects, ",")) {
		normalized, err := NormalizeSubPath("", p)
		if err != nil {
			return fmt.Errorf("invalid --project value: %w", err)
		}
		cfg.Projects = append(cfg.Projects, normalized)
	}
	return nil
}

// processGitLabInputs handles the pipeline coverage fallback settings.
func processGitLabInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.GitLabToken = strings.TrimSpace(input.GitLabToken)
	cfg.GitLabAPIURL = strings.TrimRight(strings.TrimSpace(input.GitLabAPIURL), "/")
	if cfg.GitLabAPIURL == "" {
		cfg.GitLabAPIURL = DefaultGitLabAPIURL
	}
	u, err := url.Parse(cfg.GitLabAPIURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("invalid GitLab API URL %q", input.GitLabAPIURL)
	}
	cfg.GitLabHost = u.Host

	cfg.CoverageTimeout = DefaultCoverageTimeout
	if input.CoverageTimeout != "" {
		timeout, err := time.ParseDuration(input.CoverageTimeout)
		if err != nil {
			return fmt.Errorf("invalid coverage timeout: %w", err)
		}
		if timeout <= 0 {
			return fmt.Errorf("coverage timeout must be positive (received %s)", input.CoverageTimeout)
		}
		cfg.CoverageTimeout = timeout
	}
	return nil
}

// validateBackendConfigs validates cache and snapshot backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	cfg.SnapshotBackend = schema.DatabaseBackend(strings.ToLower(input.SnapshotBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.SnapshotBackend]; !ok {
		return fmt.Errorf("invalid snapshot backend '%s'. must be sqlite, mysql, postgresql, none", input.SnapshotBackend)
	}
	cfg.SnapshotDBConnect = input.SnapshotDBConnect
	if err := ValidateDatabaseConnectionString(cfg.SnapshotBackend, cfg.SnapshotDBConnect); err != nil {
		return err
	}

	// Two sqlite handles on one file contend for the single writer lock
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.SnapshotBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		snapshotDBPath := cfg.SnapshotDBConnect
		if snapshotDBPath == "" {
			snapshotDBPath = GetSnapshotDBFilePath()
		}
		if cacheDBPath == snapshotDBPath {
			return fmt.Errorf("cache and snapshot storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}
	return nil
}

// SinceGranularity is the truncation applied to the since window. Only a
// cached scan needs a stable key; otherwise git gets the exact start.
func (c *Config) SinceGranularity() time.Duration {
	if c.CacheBackend == schema.NoneBackend || c.CacheBackend == "" {
		return 0
	}
	return CacheGranularity
}

// resolveRepoPath turns the positional argument into an absolute scan root
// and normalizes the sub path relative to it.
func resolveRepoPath(cfg *Config, input *ConfigRawInput) error {
	repoPath := input.RepoPathStr
	if repoPath == "" {
		repoPath = "."
	}
	absPath, err := filepath.Abs(repoPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path %q: %w", repoPath, err)
	}
	// The walkers do not descend through a symlinked root
	if resolved, err := filepath.EvalSymlinks(absPath); err == nil {
		absPath = resolved
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("scan root %q is not accessible: %w", absPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("scan root %q is not a directory", absPath)
	}
	cfg.RepoPath = absPath

	cfg.SubPath, err = NormalizeSubPath(cfg.RepoPath, strings.TrimSpace(input.Path))
	return err
}

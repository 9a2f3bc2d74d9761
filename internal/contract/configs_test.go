package contract

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/repometrics/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput(t *testing.T) *ConfigRawInput {
	t.Helper()
	return &ConfigRawInput{
		RepoPathStr:     t.TempDir(),
		Since:           "24 hours ago",
		Workers:         4,
		Output:          "text",
		Precision:       2,
		Limit:           10,
		Color:           "yes",
		CacheBackend:    "none",
		SnapshotBackend: "none",
	}
}

func TestProcessAndValidate_Defaults(t *testing.T) {
	input := validInput(t)
	cfg := &Config{}

	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.True(t, filepath.IsAbs(cfg.RepoPath))
	assert.Equal(t, DefaultExtensions, cfg.Extensions)
	assert.Equal(t, DefaultSkipDirs, cfg.SkipDirs)
	assert.Equal(t, DefaultTestIndicator, cfg.TestIndicator)
	assert.Equal(t, schema.RegexMatcher, cfg.Matcher)
	assert.Equal(t, DefaultGitLabAPIURL, cfg.GitLabAPIURL)
	assert.Equal(t, "gitlab.com", cfg.GitLabHost)
	assert.Equal(t, DefaultCoverageTimeout, cfg.CoverageTimeout)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.False(t, cfg.SinceTime.IsZero())
	assert.True(t, cfg.UseColors)
	assert.Empty(t, cfg.SubPath)
}

func TestProcessAndValidate_SinceGranularityFollowsCache(t *testing.T) {
	input := validInput(t)
	input.Since = "2025-01-15T12:30:00Z"

	uncached := &Config{}
	require.NoError(t, ProcessAndValidate(uncached, input))
	assert.Equal(t, "2025-01-15T12:30:00Z", uncached.Since)

	input.CacheBackend = "sqlite"
	input.CacheDBConnect = filepath.Join(t.TempDir(), "cache.db")
	cached := &Config{}
	require.NoError(t, ProcessAndValidate(cached, input))
	assert.Equal(t, "2025-01-15T12:00:00Z", cached.Since)
	assert.True(t, time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC).Equal(cached.SinceTime))
}

func TestProcessAndValidate_SymlinkedRoot(t *testing.T) {
	target := t.TempDir()
	link := filepath.Join(t.TempDir(), "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	input := validInput(t)
	input.RepoPathStr = link
	cfg := &Config{}

	require.NoError(t, ProcessAndValidate(cfg, input))
	want, err := filepath.EvalSymlinks(target)
	require.NoError(t, err)
	assert.Equal(t, want, cfg.RepoPath)
}

func TestProcessAndValidate_Overrides(t *testing.T) {
	input := validInput(t)
	input.Extensions = "CS, java"
	input.SkipDirs = "vendor"
	input.Projects = []string{"services/api, ./web/"}
	input.Matcher = "TreeSitter"
	input.GitLabAPIURL = "https://gitlab.example.com/api/v4/"
	input.CoverageTimeout = "3s"
	input.Output = "YAML"
	input.Path = "services"
	cfg := &Config{}

	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, []string{".cs", ".java"}, cfg.Extensions)
	assert.Equal(t, []string{"vendor"}, cfg.SkipDirs)
	assert.Equal(t, []string{"services/api", "web"}, cfg.Projects)
	assert.Equal(t, schema.TreeSitterMatcher, cfg.Matcher)
	assert.Equal(t, "https://gitlab.example.com/api/v4", cfg.GitLabAPIURL)
	assert.Equal(t, "gitlab.example.com", cfg.GitLabHost)
	assert.Equal(t, 3*time.Second, cfg.CoverageTimeout)
	assert.Equal(t, schema.YAMLOut, cfg.Output)
	assert.Equal(t, "services", cfg.SubPath)
}

func TestProcessAndValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ConfigRawInput)
	}{
		{"zero workers", func(in *ConfigRawInput) { in.Workers = 0 }},
		{"limit too high", func(in *ConfigRawInput) { in.Limit = MaxResultLimit + 1 }},
		{"bad precision", func(in *ConfigRawInput) { in.Precision = 9 }},
		{"bad output", func(in *ConfigRawInput) { in.Output = "xml" }},
		{"bad color", func(in *ConfigRawInput) { in.Color = "sometimes" }},
		{"bad matcher", func(in *ConfigRawInput) { in.Matcher = "llm" }},
		{"bad timeout", func(in *ConfigRawInput) { in.CoverageTimeout = "soon" }},
		{"negative timeout", func(in *ConfigRawInput) { in.CoverageTimeout = "-1s" }},
		{"bad gitlab url", func(in *ConfigRawInput) { in.GitLabAPIURL = "not a url" }},
		{"bad cache backend", func(in *ConfigRawInput) { in.CacheBackend = "redis" }},
		{"mysql without dsn", func(in *ConfigRawInput) { in.SnapshotBackend = "mysql" }},
		{"project escapes root", func(in *ConfigRawInput) { in.Projects = []string{"../other"} }},
		{"missing root", func(in *ConfigRawInput) { in.RepoPathStr = filepath.Join(in.RepoPathStr, "missing") }},
		{"same sqlite file", func(in *ConfigRawInput) {
			in.CacheBackend = "sqlite"
			in.SnapshotBackend = "sqlite"
			in.CacheDBConnect = "/tmp/shared.db"
			in.SnapshotDBConnect = "/tmp/shared.db"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput(t)
			tt.mutate(input)
			assert.Error(t, ProcessAndValidate(&Config{}, input))
		})
	}
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	assert.NoError(t, ValidateDatabaseConnectionString(schema.SQLiteBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "u:p@tcp(localhost:3306)/db"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "u:p@localhost"))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost dbname=metrics"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost"))
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{Projects: []string{"a"}, Extensions: []string{".go"}}
	clone := cfg.Clone()
	clone.Projects[0] = "b"
	assert.Equal(t, "a", cfg.Projects[0])
}
